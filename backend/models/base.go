package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model replaces gorm.Model with a UUID primary key.
type Model struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&LessonContent{},
		&Enrollment{},
		&LessonCompletion{},
		&Testimonial{},
		&Announcement{},
		&Contact{},
	}
}
