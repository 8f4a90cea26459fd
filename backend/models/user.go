package models

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	Model
	Name         string  `gorm:"not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone        *string `json:"phone"`
	CNIC         *string `gorm:"column:cnic" json:"cnic"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Role         string  `gorm:"not null" json:"role"`
}
