package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course groups schedules under a subject the user is taking
type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"userId"`
	Name        string     `json:"name"`
	Code        string     `json:"code,omitempty"`
	Instructor  string     `json:"instructor,omitempty"`
	Color       string     `json:"color,omitempty"`
	Credits     int        `json:"credits,omitempty"`
	Semester    string     `json:"semester,omitempty"`
	Description string     `json:"description,omitempty"`
	Schedules   []Schedule `gorm:"constraint:OnDelete:SET NULL" json:"schedules,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
