package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Course struct {
	Model
	Title            string                      `gorm:"not null" json:"title"`
	Slug             string                      `gorm:"uniqueIndex;not null" json:"slug"`
	Description      *string                     `json:"description"`
	Duration         *string                     `json:"duration"`
	Fee              *float64                    `json:"fee"`
	ImageURL         *string                     `json:"image_url"`
	LearningOutcomes datatypes.JSONSlice[string] `json:"learning_outcomes"`
	Published        bool                        `gorm:"not null" json:"published"`
}

// LessonContent is one lesson of a course. Content may embed [IMAGE: url] markers.
type LessonContent struct {
	Model
	CourseID  uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	SortOrder int       `gorm:"not null;default:1" json:"sort_order"`
}

func (LessonContent) TableName() string {
	return "course_contents"
}
