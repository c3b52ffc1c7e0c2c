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

type CourseRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code"`
	Instructor  string `json:"instructor"`
	Color       string `json:"color"`
	Credits     int    `json:"credits"`
	Semester    string `json:"semester"`
	Description string `json:"description"`
}

type UpdateCourseRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Instructor  *string `json:"instructor"`
	Color       *string `json:"color"`
	Credits     *int    `json:"credits"`
	Semester    *string `json:"semester"`
	Description *string `json:"description"`
}

// CourseSummary annotates a course with its schedule count for list views.
type CourseSummary struct {
	models.Course
	ScheduleCount int64 `json:"scheduleCount"`
}

// CreateCourse adds a course for the authenticated user.
func (h *handler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course name is required"})
		return
	}

	course := models.Course{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Code:        req.Code,
		Instructor:  req.Instructor,
		Color:       req.Color,
		Credits:     req.Credits,
		Semester:    req.Semester,
		Description: req.Description,
	}

	if err := h.db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"course": course})
}

// ListCourses returns the user's courses with schedule counts, newest first.
func (h *handler) ListCourses(c *gin.Context) {
	var courses []models.Course
	err := h.db.Where("user_id = ?", currentUserID(c)).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	response := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		var count int64
		if err := h.db.Model(&models.Schedule{}).Where("course_id = ?", course.ID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}
		response = append(response, CourseSummary{Course: course, ScheduleCount: count})
	}

	c.JSON(http.StatusOK, gin.H{"courses": response})
}

func (h *handler) loadOwnedCourse(c *gin.Context, courseID uuid.UUID) (models.Course, bool) {
	var course models.Course
	if err := h.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		}
		return models.Course{}, false
	}

	if course.UserID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return models.Course{}, false
	}
	return course, true
}

// GetCourse returns a course with its schedules in date order.
func (h *handler) GetCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	course, ok := h.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	var schedules []models.Schedule
	err := h.db.Where("course_id = ?", course.ID).
		Order("date ASC").
		Find(&schedules).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}
	course.Schedules = schedules

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// UpdateCourse applies a partial update to one of the user's courses.
func (h *handler) UpdateCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, ok := h.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Color != nil {
		course.Color = *req.Color
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.Semester != nil {
		course.Semester = *req.Semester
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	course.UpdatedAt = time.Now()

	if err := h.db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// DeleteCourse removes one of the user's courses.
func (h *handler) DeleteCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	course, ok := h.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	if err := h.db.Delete(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}
