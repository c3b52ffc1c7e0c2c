package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

// UploadMaterial ingests a study document: validates it, extracts its text,
// uploads the bytes to object storage and records the material. The
// extracted text becomes grounding context for all of the user's chats.
func (h *handler) UploadMaterial(c *gin.Context) {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedUploadTypes[mimeType]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PDF, TXT, and DOCX files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	if int64(len(data)) > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit"})
		return
	}

	if h.store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage is not configured"})
		return
	}

	extracted, err := h.extractUploadText(&attachmentUpload{
		fileName: fileHeader.Filename,
		mimeType: mimeType,
		size:     int64(len(data)),
		data:     data,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	path := fmt.Sprintf("materials/%s/%d-%s", userID, time.Now().UnixMilli(), fileHeader.Filename)
	if err := h.store.Upload(path, data, mimeType); err != nil {
		log.Printf("Storage upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload file to storage: %v", err)})
		return
	}

	material := models.Material{
		UserID:   userID,
		FileName: fileHeader.Filename,
		FileURL:  h.store.PublicURL(path),
		FileType: mimeType,
		FileSize: int64(len(data)),
		Content:  extracted,
	}
	if err := h.db.Create(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save material to database"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "File uploaded successfully",
		"material": material,
	})
}

// ListMaterials returns the user's materials, newest first.
func (h *handler) ListMaterials(c *gin.Context) {
	var materials []models.Material
	err := h.db.Where("user_id = ?", currentUserID(c)).
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch materials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

// DeleteMaterial removes one of the user's materials.
func (h *handler) DeleteMaterial(c *gin.Context) {
	materialID, ok := parseIDParam(c, "materialId")
	if !ok {
		return
	}

	var material models.Material
	if err := h.db.First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch material"})
		}
		return
	}

	if material.UserID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := h.db.Delete(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete material"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}
