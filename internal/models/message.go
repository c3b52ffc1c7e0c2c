package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message represents a single turn in a chat. Messages are immutable once
// created and ordered by creation time within their chat.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ChatID    uuid.UUID `gorm:"type:uuid;index" json:"chatId"`
	Role      string    `gorm:"type:varchar(10);check:role IN ('user', 'assistant')" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`

	// Attachment metadata, populated only when HasAttachment is true.
	// FileContent holds the extracted plain text; it stays nil for DOCX
	// uploads, which are stored but never extracted.
	HasAttachment bool    `json:"hasAttachment"`
	FileName      string  `json:"fileName,omitempty"`
	FileURL       string  `json:"fileUrl,omitempty"`
	FileType      string  `json:"fileType,omitempty"`
	FileSize      int64   `json:"fileSize,omitempty"`
	FileContent   *string `gorm:"type:text" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
