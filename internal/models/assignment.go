package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment types
const (
	AssignmentTypeTask    = "TASK"
	AssignmentTypeExam    = "EXAM"
	AssignmentTypeQuiz    = "QUIZ"
	AssignmentTypeProject = "PROJECT"
)

// Assignment statuses
const (
	AssignmentPending   = "PENDING"
	AssignmentSubmitted = "SUBMITTED"
	AssignmentGraded    = "GRADED"
)

// Assignment is work a teacher assigns to one student
type Assignment struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	TeacherID      uuid.UUID `gorm:"type:uuid;index" json:"teacherId"`
	StudentID      uuid.UUID `gorm:"type:uuid;index" json:"studentId"`
	Title          string    `json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Type           string    `gorm:"type:varchar(16)" json:"type"`
	DueDate        time.Time `json:"dueDate"`
	TotalMarks     *int      `json:"totalMarks,omitempty"`
	MarksObtained  *int      `json:"marksObtained,omitempty"`
	Feedback       string    `gorm:"type:text" json:"feedback,omitempty"`
	Status         string    `gorm:"type:varchar(16)" json:"status"`
	SubmissionText string    `gorm:"type:text" json:"submissionText,omitempty"`
	SubmissionURL  string    `json:"submissionUrl,omitempty"`

	Student *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Teacher *User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AssignmentPending
	}
	return nil
}
