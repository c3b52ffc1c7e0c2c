package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Doubt statuses
const (
	DoubtOpen     = "OPEN"
	DoubtAnswered = "ANSWERED"
	DoubtClosed   = "CLOSED"
)

// Doubt is a question a student raises for a teacher to answer
type Doubt struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	StudentID          uuid.UUID  `gorm:"type:uuid;index" json:"studentId"`
	TeacherID          *uuid.UUID `gorm:"type:uuid;index" json:"teacherId,omitempty"`
	PreferredTeacherID *uuid.UUID `gorm:"type:uuid" json:"preferredTeacherId,omitempty"`
	Subject            string     `json:"subject"`
	Question           string     `gorm:"type:text" json:"question"`
	Answer             string     `gorm:"type:text" json:"answer,omitempty"`
	Status             string     `gorm:"type:varchar(16)" json:"status"`

	Student          *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Teacher          *User           `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	PreferredTeacher *User           `gorm:"foreignKey:PreferredTeacherID" json:"preferredTeacher,omitempty"`
	MeetingRequest   *MeetingRequest `gorm:"foreignKey:DoubtID" json:"meetingRequest,omitempty"`
}

func (d *Doubt) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DoubtOpen
	}
	return nil
}
