package models

import (
	"time"

	"github.com/google/uuid"
)

const EnrollmentActive = "active"

type Enrollment struct {
	Model
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Status   string    `gorm:"not null" json:"status"`
	Course   *Course   `json:"course,omitempty"`
}

// LessonCompletion is the per-learner completion record of one lesson.
// A missing row means "not started".
type LessonCompletion struct {
	Model
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_content" json:"user_id"`
	ContentID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_content;index" json:"content_id"`
	Completed   bool       `gorm:"not null" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (LessonCompletion) TableName() string {
	return "content_progress"
}
