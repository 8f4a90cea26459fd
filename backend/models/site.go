package models

type Testimonial struct {
	Model
	StudentName string `gorm:"not null" json:"student_name"`
	Message     string `gorm:"type:text;not null" json:"message"`
	Rating      int    `gorm:"not null;check:rating>=1 AND rating<=5" json:"rating"`
	Published   bool   `gorm:"not null" json:"published"`
}

type Announcement struct {
	Model
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
}

type Contact struct {
	Model
	Name    string  `gorm:"not null" json:"name"`
	Email   string  `gorm:"not null" json:"email"`
	Subject *string `json:"subject"`
	Message string  `gorm:"type:text;not null" json:"message"`
}
