package handlers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

const defaultMeetingDuration = 30 // minutes

type CreateMeetingRequest struct {
	Type               string     `json:"type" binding:"required"`
	Subject            string     `json:"subject" binding:"required"`
	Description        string     `json:"description" binding:"required"`
	DoubtID            *uuid.UUID `json:"doubtId"`
	PreferredTeacherID *uuid.UUID `json:"preferredTeacherId"`
}

type ScheduleMeetingRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Duration    int       `json:"duration"`
}

var meetingTypes = map[string]struct{}{
	models.MeetingDoubtClarification: {},
	models.MeetingExam:               {},
	models.MeetingDiscussion:         {},
}

// CreateMeetingRequest lets a student ask for a live session. A linked doubt
// must exist and belong to the requesting student.
func (h *handler) CreateMeeting(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": err.Error()})
		return
	}

	if _, ok := meetingTypes[req.Type]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting type"})
		return
	}

	if req.DoubtID != nil {
		var doubt models.Doubt
		if err := h.db.First(&doubt, "id = ?", req.DoubtID).Error; err != nil || doubt.StudentID != student.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doubt ID"})
			return
		}
	}

	meeting := models.MeetingRequest{
		StudentID:          student.ID,
		Type:               req.Type,
		Subject:            req.Subject,
		Description:        req.Description,
		DoubtID:            req.DoubtID,
		PreferredTeacherID: req.PreferredTeacherID,
	}

	if err := h.db.Create(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meeting request"})
		return
	}

	h.db.Preload("Student").Preload("PreferredTeacher").First(&meeting, "id = ?", meeting.ID)
	c.JSON(http.StatusCreated, gin.H{"meeting": meeting})
}

// ListStudentMeetings returns the acting student's meeting requests.
func (h *handler) ListStudentMeetings(c *gin.Context) {
	student, ok := h.requireRole(c, models.RoleStudent)
	if !ok {
		return
	}

	var meetings []models.MeetingRequest
	err := h.db.Preload("Teacher").Preload("PreferredTeacher").
		Where("student_id = ?", student.ID).
		Order("created_at DESC").
		Find(&meetings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// ListAllMeetings returns every meeting request for teacher review.
func (h *handler) ListAllMeetings(c *gin.Context) {
	if _, ok := h.requireRole(c, models.RoleTeacher); !ok {
		return
	}

	var meetings []models.MeetingRequest
	err := h.db.Preload("Student").Preload("Teacher").Preload("PreferredTeacher").
		Order("created_at DESC").
		Find(&meetings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

func (h *handler) loadMeeting(c *gin.Context, meetingID uuid.UUID) (models.MeetingRequest, bool) {
	var meeting models.MeetingRequest
	if err := h.db.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting request"})
		}
		return models.MeetingRequest{}, false
	}
	return meeting, true
}

// ScheduleMeeting lets a teacher accept a request, pick a time and attach a
// generated meet link.
func (h *handler) ScheduleMeeting(c *gin.Context) {
	teacher, ok := h.requireRole(c, models.RoleTeacher)
	if !ok {
		return
	}

	meetingID, ok := parseIDParam(c, "meetingId")
	if !ok {
		return
	}

	var req ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scheduled time is required"})
		return
	}

	meeting, ok := h.loadMeeting(c, meetingID)
	if !ok {
		return
	}

	duration := req.Duration
	if duration == 0 {
		duration = defaultMeetingDuration
	}

	meeting.TeacherID = &teacher.ID
	meeting.Status = models.MeetingScheduled
	meeting.ScheduledAt = &req.ScheduledAt
	meeting.Duration = duration
	meeting.MeetLink = generateMeetLink()
	meeting.UpdatedAt = time.Now()

	if err := h.db.Save(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule meeting"})
		return
	}

	h.db.Preload("Student").Preload("Teacher").First(&meeting, "id = ?", meeting.ID)
	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

// CompleteMeeting marks a meeting completed. Only a participant may do so.
func (h *handler) CompleteMeeting(c *gin.Context) {
	h.setMeetingStatus(c, models.MeetingCompleted)
}

// CancelMeeting cancels a meeting. Only a participant may do so.
func (h *handler) CancelMeeting(c *gin.Context) {
	h.setMeetingStatus(c, models.MeetingCancelled)
}

func (h *handler) setMeetingStatus(c *gin.Context, status string) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	meetingID, ok := parseIDParam(c, "meetingId")
	if !ok {
		return
	}

	meeting, ok := h.loadMeeting(c, meetingID)
	if !ok {
		return
	}

	isStudent := meeting.StudentID == user.ID
	isTeacher := meeting.TeacherID != nil && *meeting.TeacherID == user.ID
	if !isStudent && !isTeacher {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	meeting.Status = status
	meeting.UpdatedAt = time.Now()
	if err := h.db.Save(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

// generateMeetLink produces a meet-style link. A real deployment would call
// the Google Meet API here.
func generateMeetLink() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	code := make([]byte, 10)
	for i := range code {
		code[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("https://meet.google.com/%s-%s-%s", code[:3], code[3:7], code[7:])
}
