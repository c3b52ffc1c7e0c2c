package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/ai"
	"github.com/bhanu100141/StudyBuddy/internal/api/middleware"
	"github.com/bhanu100141/StudyBuddy/internal/config"
	"github.com/bhanu100141/StudyBuddy/internal/extract"
	"github.com/bhanu100141/StudyBuddy/internal/models"
	"github.com/bhanu100141/StudyBuddy/internal/storage"
)

// handler is the core struct with all dependencies
type handler struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	auth        *middleware.AuthMiddleware
	generator   ai.Generator
	store       storage.ObjectStore
	extractor   extract.TextExtractor
}

// NewHandler creates a new handler instance
func NewHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	config *config.Config,
	auth *middleware.AuthMiddleware,
	generator ai.Generator,
	store storage.ObjectStore,
	extractor extract.TextExtractor,
) *handler {
	return &handler{
		db:          db,
		redisClient: redisClient,
		config:      config,
		auth:        auth,
		generator:   generator,
		store:       store,
		extractor:   extractor,
	}
}

// currentUserID returns the authenticated user's ID set by the auth middleware.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("userID").(uuid.UUID)
}

// requireUser re-fetches the acting user from the database. Returns false
// after writing the error response when the user no longer exists.
func (h *handler) requireUser(c *gin.Context) (models.User, bool) {
	userID := currentUserID(c)
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		}
		return models.User{}, false
	}
	return user, true
}

// requireRole is requireUser plus a role check fetched fresh from the
// database; the token's role claim is never trusted for authorization.
func (h *handler) requireRole(c *gin.Context, role string) (models.User, bool) {
	user, ok := h.requireUser(c)
	if !ok {
		return models.User{}, false
	}
	if user.Role != role {
		if role == models.RoleTeacher {
			c.JSON(http.StatusForbidden, gin.H{"error": "Teacher access required"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "Student access required"})
		}
		return models.User{}, false
	}
	return user, true
}

// parseIDParam parses a uuid path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// userSummary is the trimmed user shape embedded in cross-user responses.
type userSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func summarize(u *models.User) *userSummary {
	if u == nil {
		return nil
	}
	return &userSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
