package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/ai"
	"github.com/bhanu100141/StudyBuddy/internal/models"
)

const (
	// maxUploadSize is the hard cap on attachment and material uploads.
	maxUploadSize = 10 * 1024 * 1024

	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// attachmentContextSeparator joins standing materials with the chat's
	// own attachment history inside the grounding context.
	attachmentContextSeparator = "\n\n=== Additional Context ===\n\n"

	messageCacheTTL = 24 * time.Hour
)

// allowedUploadTypes are the MIME types accepted for uploads. DOCX is
// accepted and stored but no text is extracted from it.
var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"text/plain":      {},
	docxMIME:          {},
}

type CreateChatRequest struct {
	Title string `json:"title"`
}

type UpdateChatRequest struct {
	Title string `json:"title"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// ChatSummary is the list-view shape of a chat, annotated with its
// message count.
type ChatSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int64     `json:"messageCount"`
}

// CreateChat creates a chat for the authenticated user. A missing title
// gets the placeholder, replaced once the first message arrives.
func (h *handler) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.DefaultChatTitle
	}

	chat := models.Chat{
		UserID: currentUserID(c),
		Title:  title,
	}

	if err := h.db.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// ListChats returns the user's chats with message counts, most recently
// updated first.
func (h *handler) ListChats(c *gin.Context) {
	userID := currentUserID(c)

	var chats []models.Chat
	if err := h.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	counts, err := h.messageCounts(chats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	response := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		response = append(response, ChatSummary{
			ID:           chat.ID,
			Title:        chat.Title,
			CreatedAt:    chat.CreatedAt,
			UpdatedAt:    chat.UpdatedAt,
			MessageCount: counts[chat.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"chats": response})
}

func (h *handler) messageCounts(chats []models.Chat) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(chats))
	if len(chats) == 0 {
		return counts, nil
	}

	ids := make([]uuid.UUID, 0, len(chats))
	for _, chat := range chats {
		ids = append(ids, chat.ID)
	}

	var rows []struct {
		ChatID uuid.UUID
		Count  int64
	}
	err := h.db.Model(&models.Message{}).
		Select("chat_id, count(*) as count").
		Where("chat_id IN ?", ids).
		Group("chat_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ChatID] = row.Count
	}
	return counts, nil
}

// loadOwnedChat resolves a chat by id for the acting user. The existence
// check runs strictly before the ownership check, so a missing chat is 404
// and someone else's chat is 403.
func (h *handler) loadOwnedChat(c *gin.Context, chatID uuid.UUID) (models.Chat, bool) {
	var chat models.Chat
	if err := h.db.First(&chat, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat"})
		}
		return models.Chat{}, false
	}

	if chat.UserID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return models.Chat{}, false
	}
	return chat, true
}

// GetChat returns a chat with its messages in creation order.
func (h *handler) GetChat(c *gin.Context) {
	chatID, ok := parseIDParam(c, "chatId")
	if !ok {
		return
	}

	chat, ok := h.loadOwnedChat(c, chatID)
	if !ok {
		return
	}

	messages, err := h.chatMessages(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	chat.Messages = messages

	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// UpdateChat renames a chat. The new title must be non-empty after trimming.
func (h *handler) UpdateChat(c *gin.Context) {
	chatID, ok := parseIDParam(c, "chatId")
	if !ok {
		return
	}

	var req UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat title is required"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat title is required"})
		return
	}

	chat, ok := h.loadOwnedChat(c, chatID)
	if !ok {
		return
	}

	chat.Title = title
	chat.UpdatedAt = time.Now()
	if err := h.db.Save(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// DeleteChat removes a chat and all its messages.
func (h *handler) DeleteChat(c *gin.Context) {
	chatID, ok := parseIDParam(c, "chatId")
	if !ok {
		return
	}

	chat, ok := h.loadOwnedChat(c, chatID)
	if !ok {
		return
	}

	if err := h.db.Where("chat_id = ?", chat.ID).Delete(&models.Message{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}
	if err := h.db.Delete(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}

	if h.redisClient != nil {
		h.redisClient.Del(c.Request.Context(), messageCacheKey(chat.ID))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}

// attachmentUpload carries a validated file through the turn pipeline.
type attachmentUpload struct {
	fileName string
	mimeType string
	size     int64
	data     []byte
}

// SendMessage accepts a new user turn, as plain JSON or as multipart form
// data with a single file, and responds with the persisted user and
// assistant messages. The two body shapes resolve here, once, into a single
// internal turn-creation call.
func (h *handler) SendMessage(c *gin.Context) {
	chatID, ok := parseIDParam(c, "chatId")
	if !ok {
		return
	}

	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		content := c.PostForm("content")
		if content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
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

		h.createTurn(c, chatID, content, &attachmentUpload{
			fileName: fileHeader.Filename,
			mimeType: fileHeader.Header.Get("Content-Type"),
			size:     int64(len(data)),
			data:     data,
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	h.createTurn(c, chatID, req.Content, nil)
}

// createTurn runs the full turn pipeline: ownership checks, optional
// attachment ingestion, context assembly, the generation call, persistence
// of both turns and title maintenance.
//
// Once the user turn is persisted, later failures are not rolled back: the
// user turn stays without a paired reply and the error is surfaced to the
// caller.
func (h *handler) createTurn(c *gin.Context, chatID uuid.UUID, content string, upload *attachmentUpload) {
	ctx := c.Request.Context()

	chat, ok := h.loadOwnedChat(c, chatID)
	if !ok {
		return
	}

	previousMessages, err := h.chatMessages(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history"})
		return
	}

	userMessage := models.Message{
		ChatID:  chat.ID,
		Role:    "user",
		Content: content,
	}

	if upload != nil {
		if _, ok := allowedUploadTypes[upload.mimeType]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PDF, TXT, and DOCX files are allowed"})
			return
		}
		if upload.size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit"})
			return
		}
		if h.store == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File storage is not configured"})
			return
		}

		path := fmt.Sprintf("chat-attachments/%s/%s/%d-%s",
			chat.UserID, chat.ID, time.Now().UnixMilli(), upload.fileName)
		if err := h.store.Upload(path, upload.data, upload.mimeType); err != nil {
			log.Printf("Storage upload error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload file: %v", err)})
			return
		}

		extracted, err := h.extractUploadText(upload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		userMessage.HasAttachment = true
		userMessage.FileName = upload.fileName
		userMessage.FileURL = h.store.PublicURL(path)
		userMessage.FileType = upload.mimeType
		userMessage.FileSize = upload.size
		userMessage.FileContent = extracted
	}

	if err := h.createAndCacheMessage(ctx, &userMessage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user message"})
		return
	}

	contextText, err := h.assembleContext(chat, upload != nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble context"})
		return
	}

	history := make([]ai.ChatMessage, 0, len(previousMessages)+1)
	for _, msg := range previousMessages {
		history = append(history, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, ai.ChatMessage{Role: "user", Content: content})

	reply, err := h.generator.Generate(ctx, history, contextText)
	if err != nil {
		// The user turn stays persisted without a paired reply.
		log.Printf("Generation error for chat %s: %v", chat.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	assistantMessage := models.Message{
		ChatID:  chat.ID,
		Role:    "assistant",
		Content: reply,
	}
	if err := h.createAndCacheMessage(ctx, &assistantMessage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save assistant message"})
		return
	}

	h.maintainTitle(&chat, content, len(previousMessages))

	c.JSON(http.StatusOK, gin.H{
		"userMessage":      userMessage,
		"assistantMessage": assistantMessage,
	})
}

// extractUploadText pulls plain text out of an upload. PDFs go through the
// extractor, text files are taken as UTF-8, and DOCX uploads yield nil
// since no extractor is wired for them.
func (h *handler) extractUploadText(upload *attachmentUpload) (*string, error) {
	switch upload.mimeType {
	case "application/pdf":
		text, err := h.extractor.ExtractPDF(upload.data)
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return &text, nil
	case "text/plain":
		text := string(upload.data)
		if text == "" {
			return nil, nil
		}
		return &text, nil
	default:
		return nil, nil
	}
}

// assembleContext builds the grounding context string for a generation call.
// The base is the owner's materials in insertion order joined by blank
// lines. Attachment turns additionally pull in every attachment in the chat
// that has extracted text, each prefixed with its filename.
func (h *handler) assembleContext(chat models.Chat, withAttachments bool) (string, error) {
	var materials []models.Material
	err := h.db.Where("user_id = ?", chat.UserID).
		Order("created_at ASC").
		Find(&materials).Error
	if err != nil {
		return "", err
	}

	var materialParts []string
	for _, m := range materials {
		if m.Content != nil && *m.Content != "" {
			materialParts = append(materialParts, *m.Content)
		}
	}
	materialContext := strings.Join(materialParts, "\n\n")

	if !withAttachments {
		return materialContext, nil
	}

	var attachments []models.Message
	err = h.db.Where("chat_id = ? AND has_attachment = ? AND file_content IS NOT NULL", chat.ID, true).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return "", err
	}

	var attachmentParts []string
	for _, a := range attachments {
		if a.FileContent != nil && *a.FileContent != "" {
			attachmentParts = append(attachmentParts, fmt.Sprintf("[From %s]\n%s", a.FileName, *a.FileContent))
		}
	}
	attachmentContext := strings.Join(attachmentParts, "\n\n")

	var groups []string
	for _, g := range []string{materialContext, attachmentContext} {
		if g != "" {
			groups = append(groups, g)
		}
	}
	return strings.Join(groups, attachmentContextSeparator), nil
}

// maintainTitle derives a title from the user's message when the chat still
// carries a placeholder title or had no messages before this turn; otherwise
// it only bumps the update timestamp.
func (h *handler) maintainTitle(chat *models.Chat, content string, priorMessageCount int) {
	if isDefaultChatTitle(chat.Title) || priorMessageCount == 0 {
		chat.Title = generateChatTitle(content)
	}
	chat.UpdatedAt = time.Now()
	if err := h.db.Save(chat).Error; err != nil {
		log.Printf("Failed to update chat title: %v", err)
	}
}

func messageCacheKey(chatID uuid.UUID) string {
	return fmt.Sprintf("chat:%s:messages", chatID)
}

// chatMessages returns a chat's messages in creation order, serving from
// the Redis cache when possible and repopulating it from the database
// otherwise.
func (h *handler) chatMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	if h.redisClient != nil {
		cached, err := h.getCachedMessages(ctx, messageCacheKey(chatID))
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var messages []models.Message
	if err := h.db.Where("chat_id = ?", chatID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	if h.redisClient != nil && len(messages) > 0 {
		if err := h.cacheMessagesFromDB(ctx, messageCacheKey(chatID), messages); err != nil {
			log.Printf("Failed to cache messages: %v", err)
		}
	}
	return messages, nil
}

func (h *handler) getCachedMessages(ctx context.Context, cacheKey string) ([]models.Message, error) {
	cachedMsgs, err := h.redisClient.LRange(ctx, cacheKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from cache: %w", err)
	}

	messages := make([]models.Message, 0, len(cachedMsgs))
	for _, msgStr := range cachedMsgs {
		var msg models.Message
		if err := json.Unmarshal([]byte(msgStr), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// createAndCacheMessage persists a message and appends it to the chat's
// cache list, keeping cached ordering identical to creation order.
func (h *handler) createAndCacheMessage(ctx context.Context, message *models.Message) error {
	if err := h.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	if h.redisClient != nil {
		msgJSON, err := json.Marshal(message)
		if err != nil {
			log.Printf("Failed to marshal message for cache: %v", err)
			return nil
		}
		pipe := h.redisClient.Pipeline()
		pipe.RPush(ctx, messageCacheKey(message.ChatID), msgJSON)
		pipe.Expire(ctx, messageCacheKey(message.ChatID), messageCacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("Failed to cache message: %v", err)
		}
	}
	return nil
}

func (h *handler) cacheMessagesFromDB(ctx context.Context, cacheKey string, messages []models.Message) error {
	pipe := h.redisClient.Pipeline()
	pipe.Del(ctx, cacheKey)

	for _, msg := range messages {
		msgJSON, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			continue
		}
		pipe.RPush(ctx, cacheKey, msgJSON)
	}

	pipe.Expire(ctx, cacheKey, messageCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache messages: %w", err)
	}
	return nil
}
