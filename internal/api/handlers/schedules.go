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

type ScheduleRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Date        time.Time  `json:"date" binding:"required"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Location    string     `json:"location"`
	CourseID    *uuid.UUID `json:"courseId"`
	Priority    string     `json:"priority"`
}

type UpdateScheduleRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	Date        *time.Time `json:"date"`
	StartTime   *string    `json:"startTime"`
	EndTime     *string    `json:"endTime"`
	Location    *string    `json:"location"`
	CourseID    *uuid.UUID `json:"courseId"`
	IsCompleted *bool      `json:"isCompleted"`
	Priority    *string    `json:"priority"`
}

// CreateSchedule adds a calendar entry for the authenticated user.
func (h *handler) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Schedule title and date are required"})
		return
	}

	if req.Type == "" {
		req.Type = models.ScheduleTypeOther
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	schedule := models.Schedule{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		CourseID:    req.CourseID,
		Priority:    req.Priority,
	}

	if err := h.db.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	h.db.Preload("Course").First(&schedule, "id = ?", schedule.ID)
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

// ListSchedules returns the user's schedules, filterable by date range,
// course and type, in date order.
func (h *handler) ListSchedules(c *gin.Context) {
	query := h.db.Preload("Course").Where("user_id = ?", currentUserID(c))

	if startDate := c.Query("startDate"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			query = query.Where("date >= ?", t)
		}
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			query = query.Where("date <= ?", t)
		}
	}
	if courseID := c.Query("courseId"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if scheduleType := c.Query("type"); scheduleType != "" {
		query = query.Where("type = ?", scheduleType)
	}

	var schedules []models.Schedule
	if err := query.Order("date ASC, start_time ASC").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

func (h *handler) loadOwnedSchedule(c *gin.Context, scheduleID uuid.UUID) (models.Schedule, bool) {
	var schedule models.Schedule
	if err := h.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		}
		return models.Schedule{}, false
	}

	if schedule.UserID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return models.Schedule{}, false
	}
	return schedule, true
}

// GetSchedule returns one schedule entry.
func (h *handler) GetSchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	schedule, ok := h.loadOwnedSchedule(c, scheduleID)
	if !ok {
		return
	}

	h.db.Preload("Course").First(&schedule, "id = ?", schedule.ID)
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// UpdateSchedule applies a partial update to a schedule entry.
func (h *handler) UpdateSchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, ok := h.loadOwnedSchedule(c, scheduleID)
	if !ok {
		return
	}

	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.Type != nil {
		schedule.Type = *req.Type
	}
	if req.Date != nil {
		schedule.Date = *req.Date
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.Location != nil {
		schedule.Location = *req.Location
	}
	if req.CourseID != nil {
		schedule.CourseID = req.CourseID
	}
	if req.IsCompleted != nil {
		schedule.IsCompleted = *req.IsCompleted
	}
	if req.Priority != nil {
		schedule.Priority = *req.Priority
	}
	schedule.UpdatedAt = time.Now()

	if err := h.db.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	h.db.Preload("Course").First(&schedule, "id = ?", schedule.ID)
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// DeleteSchedule removes a schedule entry.
func (h *handler) DeleteSchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	schedule, ok := h.loadOwnedSchedule(c, scheduleID)
	if !ok {
		return
	}

	if err := h.db.Delete(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// ToggleSchedule flips a schedule entry's completion flag.
func (h *handler) ToggleSchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	schedule, ok := h.loadOwnedSchedule(c, scheduleID)
	if !ok {
		return
	}

	schedule.IsCompleted = !schedule.IsCompleted
	schedule.UpdatedAt = time.Now()
	if err := h.db.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	h.db.Preload("Course").First(&schedule, "id = ?", schedule.ID)
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}
