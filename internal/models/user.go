package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold. Teacher-only endpoints re-check the role
// against the database on every request rather than trusting the token.
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
)

// User represents the user model
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Name         string    `json:"name"`
	Role         string    `gorm:"type:varchar(10)" json:"role"`
	PasswordHash string    `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
