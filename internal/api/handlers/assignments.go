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

type CreateAssignmentRequest struct {
	StudentID   uuid.UUID `json:"studentId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	TotalMarks  *int      `json:"totalMarks"`
}

type GradeAssignmentRequest struct {
	MarksObtained *int   `json:"marksObtained" binding:"required"`
	Feedback      string `json:"feedback"`
}

type SubmitAssignmentRequest struct {
	SubmissionText string `json:"submissionText"`
	SubmissionURL  string `json:"submissionUrl"`
}

var assignmentTypes = map[string]struct{}{
	models.AssignmentTypeTask:    {},
	models.AssignmentTypeExam:    {},
	models.AssignmentTypeQuiz:    {},
	models.AssignmentTypeProject: {},
}

// CreateAssignment lets a teacher assign work to a student.
func (h *handler) CreateAssignment(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": err.Error()})
		return
	}

	if _, ok := assignmentTypes[req.Type]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment type"})
		return
	}

	var student models.User
	err := h.db.First(&student, "id = ? AND role = ?", req.StudentID, models.RoleStudent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve student"})
		}
		return
	}

	assignment := models.Assignment{
		TeacherID:   teacher.ID,
		StudentID:   student.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		DueDate:     req.DueDate,
		TotalMarks:  req.TotalMarks,
	}

	if err := h.db.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignment"})
		return
	}

	assignment.Student = &student
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// ListTeacherAssignments returns the teacher's own assignments, newest first.
func (h *handler) ListTeacherAssignments(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	var assignments []models.Assignment
	err := h.db.Preload("Student").
		Where("teacher_id = ?", teacher.ID).
		Order("created_at DESC").
		Find(&assignments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// ListStudentAssignments returns the acting student's assignments by due date.
func (h *handler) ListStudentAssignments(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	var assignments []models.Assignment
	err := h.db.Preload("Teacher").
		Where("student_id = ?", student.ID).
		Order("due_date ASC").
		Find(&assignments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *handler) loadAssignment(c *gin.Context, assignmentID uuid.UUID) (models.Assignment, bool) {
	var assignment models.Assignment
	if err := h.db.First(&assignment, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignment"})
		}
		return models.Assignment{}, false
	}
	return assignment, true
}

// GradeAssignment records marks and feedback; only the assigning teacher may
// grade.
func (h *handler) GradeAssignment(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	var req GradeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Marks are required"})
		return
	}

	assignment, ok := h.loadAssignment(c, assignmentID)
	if !ok {
		return
	}

	if assignment.TeacherID != teacher.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only grade your own assignments"})
		return
	}

	assignment.MarksObtained = req.MarksObtained
	assignment.Feedback = req.Feedback
	assignment.Status = models.AssignmentGraded
	assignment.UpdatedAt = time.Now()

	if err := h.db.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grade assignment"})
		return
	}

	h.db.Preload("Student").First(&assignment, "id = ?", assignment.ID)
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// DeleteAssignment removes an assignment; only its teacher may delete it.
func (h *handler) DeleteAssignment(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, ok := h.loadAssignment(c, assignmentID)
	if !ok {
		return
	}

	if assignment.TeacherID != teacher.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own assignments"})
		return
	}

	if err := h.db.Delete(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// SubmitAssignment records a student's submission for their own assignment.
func (h *handler) SubmitAssignment(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	var req SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, ok := h.loadAssignment(c, assignmentID)
	if !ok {
		return
	}

	if assignment.StudentID != student.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This assignment is not assigned to you"})
		return
	}

	assignment.SubmissionText = req.SubmissionText
	assignment.SubmissionURL = req.SubmissionURL
	assignment.Status = models.AssignmentSubmitted
	assignment.UpdatedAt = time.Now()

	if err := h.db.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}
