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

// StudentOverview is the teacher-dashboard row for one student.
type StudentOverview struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	TotalChats     int64     `json:"totalChats"`
	TotalMaterials int64     `json:"totalMaterials"`
	TotalMessages  int64     `json:"totalMessages"`
	LastActive     time.Time `json:"lastActive"`
}

// ListTeachers returns every teacher, for students picking a preferred one.
// Available to any authenticated user.
func (h *handler) ListTeachers(c *gin.Context) {
	var teachers []models.User
	err := h.db.Where("role = ?", models.RoleTeacher).
		Order("name ASC").
		Find(&teachers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch teachers"})
		return
	}

	response := make([]userSummary, 0, len(teachers))
	for i := range teachers {
		response = append(response, *summarize(&teachers[i]))
	}

	c.JSON(http.StatusOK, gin.H{"teachers": response})
}

// ListStudents returns every student with activity counts, newest first.
func (h *handler) ListStudents(c *gin.Context) {
	if _, ok := h.requireRole(c, models.RoleTeacher); !ok {
		return
	}

	var students []models.User
	err := h.db.Where("role = ?", models.RoleStudent).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	response := make([]StudentOverview, 0, len(students))
	for _, student := range students {
		overview, err := h.studentOverview(student)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
			return
		}
		response = append(response, overview)
	}

	c.JSON(http.StatusOK, gin.H{
		"students":      response,
		"totalStudents": len(response),
	})
}

func (h *handler) studentOverview(student models.User) (StudentOverview, error) {
	var totalChats, totalMaterials, totalMessages int64

	if err := h.db.Model(&models.Chat{}).Where("user_id = ?", student.ID).Count(&totalChats).Error; err != nil {
		return StudentOverview{}, err
	}
	if err := h.db.Model(&models.Material{}).Where("user_id = ?", student.ID).Count(&totalMaterials).Error; err != nil {
		return StudentOverview{}, err
	}
	if err := h.countStudentMessages(student.ID, &totalMessages); err != nil {
		return StudentOverview{}, err
	}

	lastActive := student.UpdatedAt
	var recentChat models.Chat
	err := h.db.Where("user_id = ?", student.ID).Order("updated_at DESC").First(&recentChat).Error
	if err == nil {
		lastActive = recentChat.UpdatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return StudentOverview{}, err
	}

	return StudentOverview{
		ID:             student.ID,
		Email:          student.Email,
		Name:           student.Name,
		Role:           student.Role,
		CreatedAt:      student.CreatedAt,
		UpdatedAt:      student.UpdatedAt,
		TotalChats:     totalChats,
		TotalMaterials: totalMaterials,
		TotalMessages:  totalMessages,
		LastActive:     lastActive,
	}, nil
}

func (h *handler) countStudentMessages(studentID uuid.UUID, out *int64) error {
	return h.db.Model(&models.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ?", studentID).
		Count(out).Error
}

// GetStudentDetails returns one student's profile, chats, materials and
// activity statistics.
func (h *handler) GetStudentDetails(c *gin.Context) {
	if _, ok := h.requireRole(c, models.RoleTeacher); !ok {
		return
	}

	studentID, ok := parseIDParam(c, "studentId")
	if !ok {
		return
	}

	var student models.User
	err := h.db.First(&student, "id = ? AND role = ?", studentID, models.RoleStudent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student"})
		}
		return
	}

	var chats []models.Chat
	if err := h.db.Where("user_id = ?", student.ID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student details"})
		return
	}
	chatCounts, err := h.messageCounts(chats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student details"})
		return
	}
	chatSummaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		chatSummaries = append(chatSummaries, ChatSummary{
			ID:           chat.ID,
			Title:        chat.Title,
			CreatedAt:    chat.CreatedAt,
			UpdatedAt:    chat.UpdatedAt,
			MessageCount: chatCounts[chat.ID],
		})
	}

	var materials []models.Material
	if err := h.db.Where("user_id = ?", student.ID).Order("created_at DESC").Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student details"})
		return
	}

	var totalMessages int64
	if err := h.countStudentMessages(student.ID, &totalMessages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student":       student,
		"chats":         chatSummaries,
		"materials":     materials,
		"totalMessages": totalMessages,
		"statistics": gin.H{
			"totalChats":     len(chats),
			"totalMaterials": len(materials),
			"totalMessages":  totalMessages,
		},
	})
}

// TeacherStats returns platform-wide totals for the teacher dashboard.
func (h *handler) TeacherStats(c *gin.Context) {
	if _, ok := h.requireRole(c, models.RoleTeacher); !ok {
		return
	}

	var totalStudents, totalChats, totalMaterials, totalMessages, recentStudents int64

	if err := h.db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := h.db.Model(&models.Chat{}).Count(&totalChats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := h.db.Model(&models.Material{}).Count(&totalMaterials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := h.db.Model(&models.Message{}).Count(&totalMessages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	err := h.db.Model(&models.User{}).
		Where("role = ? AND created_at >= ?", models.RoleStudent, sevenDaysAgo).
		Count(&recentStudents).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalStudents":  totalStudents,
		"totalChats":     totalChats,
		"totalMaterials": totalMaterials,
		"totalMessages":  totalMessages,
		"recentStudents": recentStudents,
	})
}
