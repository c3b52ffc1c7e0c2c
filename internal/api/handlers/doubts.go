package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

type CreateDoubtRequest struct {
	Subject            string     `json:"subject" binding:"required"`
	Question           string     `json:"question" binding:"required"`
	PreferredTeacherID *uuid.UUID `json:"preferredTeacherId"`
}

type AnswerDoubtRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// CreateDoubt lets a student raise a question for teachers.
func (h *handler) CreateDoubt(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	var req CreateDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject and question are required"})
		return
	}

	doubt := models.Doubt{
		StudentID:          student.ID,
		Subject:            req.Subject,
		Question:           req.Question,
		PreferredTeacherID: req.PreferredTeacherID,
	}

	if err := h.db.Create(&doubt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create doubt"})
		return
	}

	h.db.Preload("Student").Preload("PreferredTeacher").First(&doubt, "id = ?", doubt.ID)
	c.JSON(http.StatusCreated, gin.H{"doubt": doubt})
}

// ListStudentDoubts returns the acting student's doubts, newest first.
func (h *handler) ListStudentDoubts(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	var doubts []models.Doubt
	err := h.db.Preload("Teacher").Preload("PreferredTeacher").Preload("MeetingRequest").
		Where("student_id = ?", student.ID).
		Order("created_at DESC").
		Find(&doubts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch doubts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"doubts": doubts})
}

// ListAllDoubts returns every doubt for teacher review, newest first.
func (h *handler) ListAllDoubts(c *gin.Context) {
	if _, ok := h.requireRole(c, models.RoleTeacher); !ok {
		return
	}

	var doubts []models.Doubt
	err := h.db.Preload("Student").Preload("Teacher").Preload("PreferredTeacher").Preload("MeetingRequest").
		Order("created_at DESC").
		Find(&doubts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch doubts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"doubts": doubts})
}

// AnswerDoubt records a teacher's answer and marks the doubt answered.
func (h *handler) AnswerDoubt(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	doubtID, ok := parseIDParam(c, "doubtId")
	if !ok {
		return
	}

	var req AnswerDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answer is required"})
		return
	}

	var doubt models.Doubt
	if err := h.db.First(&doubt, "id = ?", doubtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doubt not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch doubt"})
		}
		return
	}

	doubt.TeacherID = &teacher.ID
	doubt.Answer = req.Answer
	doubt.Status = models.DoubtAnswered
	doubt.UpdatedAt = time.Now()

	if err := h.db.Save(&doubt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer doubt"})
		return
	}

	h.db.Preload("Student").Preload("Teacher").First(&doubt, "id = ?", doubt.ID)
	c.JSON(http.StatusOK, gin.H{"doubt": doubt})
}

// CloseDoubt closes a doubt. Only the raising student or the answering
// teacher may close it.
func (h *handler) CloseDoubt(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	doubtID, ok := parseIDParam(c, "doubtId")
	if !ok {
		return
	}

	var doubt models.Doubt
	if err := h.db.First(&doubt, "id = ?", doubtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doubt not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch doubt"})
		}
		return
	}

	isOwner := doubt.StudentID == user.ID
	isAnsweringTeacher := doubt.TeacherID != nil && *doubt.TeacherID == user.ID
	if !isOwner && !isAnsweringTeacher {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only close your own doubts"})
		return
	}

	doubt.Status = models.DoubtClosed
	doubt.UpdatedAt = time.Now()
	if err := h.db.Save(&doubt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close doubt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"doubt": doubt})
}
