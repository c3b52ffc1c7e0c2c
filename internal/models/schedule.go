package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule entry types
const (
	ScheduleTypeClass      = "CLASS"
	ScheduleTypeAssignment = "ASSIGNMENT"
	ScheduleTypeExam       = "EXAM"
	ScheduleTypeTask       = "TASK"
	ScheduleTypeOther      = "OTHER"
)

// Schedule priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Schedule is a dated calendar entry, optionally linked to a course
type Schedule struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `gorm:"type:varchar(16)" json:"type"`
	Date        time.Time  `gorm:"index" json:"date"`
	StartTime   string     `json:"startTime,omitempty"`
	EndTime     string     `json:"endTime,omitempty"`
	Location    string     `json:"location,omitempty"`
	CourseID    *uuid.UUID `gorm:"type:uuid;index" json:"courseId,omitempty"`
	Course      *Course    `json:"course,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	Priority    string     `gorm:"type:varchar(8)" json:"priority"`
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
