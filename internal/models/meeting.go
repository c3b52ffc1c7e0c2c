package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meeting request types
const (
	MeetingDoubtClarification = "DOUBT_CLARIFICATION"
	MeetingExam               = "EXAM"
	MeetingDiscussion         = "DISCUSSION"
)

// Meeting request statuses
const (
	MeetingPending   = "PENDING"
	MeetingScheduled = "SCHEDULED"
	MeetingCompleted = "COMPLETED"
	MeetingCancelled = "CANCELLED"
)

// MeetingRequest is a student's request for a live session with a teacher
type MeetingRequest struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	StudentID          uuid.UUID  `gorm:"type:uuid;index" json:"studentId"`
	TeacherID          *uuid.UUID `gorm:"type:uuid;index" json:"teacherId,omitempty"`
	PreferredTeacherID *uuid.UUID `gorm:"type:uuid" json:"preferredTeacherId,omitempty"`
	DoubtID            *uuid.UUID `gorm:"type:uuid" json:"doubtId,omitempty"`
	Type               string     `gorm:"type:varchar(24)" json:"type"`
	Subject            string     `json:"subject"`
	Description        string     `gorm:"type:text" json:"description"`
	Status             string     `gorm:"type:varchar(16)" json:"status"`
	ScheduledAt        *time.Time `json:"scheduledAt,omitempty"`
	Duration           int        `json:"duration,omitempty"`
	MeetLink           string     `json:"meetLink,omitempty"`

	Student          *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Teacher          *User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	PreferredTeacher *User `gorm:"foreignKey:PreferredTeacherID" json:"preferredTeacher,omitempty"`
}

func (m *MeetingRequest) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MeetingPending
	}
	return nil
}
