package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/ai"
	"github.com/bhanu100141/StudyBuddy/internal/api/middleware"
	"github.com/bhanu100141/StudyBuddy/internal/config"
	"github.com/bhanu100141/StudyBuddy/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGenerator is an ai.Generator returning a canned reply and recording
// the last call for assertions.
type fakeGenerator struct {
	mu          sync.Mutex
	reply       string
	err         error
	lastHistory []ai.ChatMessage
	lastContext string
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []ai.ChatMessage, contextText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHistory = messages
	f.lastContext = contextText
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return "A binary search tree is a sorted binary tree.", nil
	}
	return f.reply, nil
}

// fakeStore records uploads in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.objects[path] = data
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://files.test/" + path
}

// fakeExtractor returns fixed text for PDFs.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractPDF(data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	handler   *handler
	generator *fakeGenerator
	store     *fakeStore
	extractor *fakeExtractor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Material{},
		&models.Course{},
		&models.Schedule{},
		&models.Assignment{},
		&models.Doubt{},
		&models.MeetingRequest{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret", ServerPort: "8080"}
	auth := middleware.NewAuthMiddleware(cfg.JWTSecret)
	generator := &fakeGenerator{}
	store := newFakeStore()
	extractor := &fakeExtractor{text: "extracted pdf text"}

	h := NewHandler(db, nil, cfg, auth, generator, store, extractor)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.RegisterHandler)
	api.POST("/auth/login", h.LoginHandler)

	authed := api.Group("", auth.RequireAuth())
	authed.GET("/chats", h.ListChats)
	authed.POST("/chats", h.CreateChat)
	authed.GET("/chats/:chatId", h.GetChat)
	authed.PATCH("/chats/:chatId", h.UpdateChat)
	authed.DELETE("/chats/:chatId", h.DeleteChat)
	authed.POST("/chats/:chatId/messages", h.SendMessage)
	authed.GET("/materials", h.ListMaterials)
	authed.POST("/materials", h.UploadMaterial)
	authed.DELETE("/materials/:materialId", h.DeleteMaterial)
	authed.GET("/courses", h.ListCourses)
	authed.POST("/courses", h.CreateCourse)
	authed.GET("/courses/:courseId", h.GetCourse)
	authed.PATCH("/courses/:courseId", h.UpdateCourse)
	authed.DELETE("/courses/:courseId", h.DeleteCourse)
	authed.GET("/schedules", h.ListSchedules)
	authed.POST("/schedules", h.CreateSchedule)
	authed.GET("/schedules/:scheduleId", h.GetSchedule)
	authed.PATCH("/schedules/:scheduleId", h.UpdateSchedule)
	authed.DELETE("/schedules/:scheduleId", h.DeleteSchedule)
	authed.POST("/schedules/:scheduleId/toggle", h.ToggleSchedule)
	authed.GET("/teachers", h.ListTeachers)
	authed.GET("/student/doubts", h.ListStudentDoubts)
	authed.POST("/student/doubts", h.CreateDoubt)
	authed.POST("/student/doubts/:doubtId/close", h.CloseDoubt)
	authed.GET("/student/assignments", h.ListStudentAssignments)
	authed.POST("/student/assignments/:assignmentId/submit", h.SubmitAssignment)
	authed.GET("/student/meetings", h.ListStudentMeetings)
	authed.POST("/student/meetings", h.CreateMeeting)
	authed.GET("/teacher/students", h.ListStudents)
	authed.GET("/teacher/students/:studentId", h.GetStudentDetails)
	authed.GET("/teacher/stats", h.TeacherStats)
	authed.GET("/teacher/doubts", h.ListAllDoubts)
	authed.POST("/teacher/doubts/:doubtId/answer", h.AnswerDoubt)
	authed.GET("/teacher/assignments", h.ListTeacherAssignments)
	authed.POST("/teacher/assignments", h.CreateAssignment)
	authed.DELETE("/teacher/assignments/:assignmentId", h.DeleteAssignment)
	authed.POST("/teacher/assignments/:assignmentId/grade", h.GradeAssignment)
	authed.GET("/teacher/meetings", h.ListAllMeetings)
	authed.POST("/teacher/meetings/:meetingId/schedule", h.ScheduleMeeting)
	authed.POST("/meetings/:meetingId/complete", h.CompleteMeeting)
	authed.POST("/meetings/:meetingId/cancel", h.CancelMeeting)

	return &testEnv{
		db:        db,
		router:    r,
		handler:   h,
		generator: generator,
		store:     store,
		extractor: extractor,
	}
}

// registerUser creates an account through the API and returns its token and
// user ID.
func (e *testEnv) registerUser(t *testing.T, email, role string) (string, uuid.UUID) {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":"secret123","name":"Test User","role":%q}`, email, role)
	w := e.request(t, http.MethodPost, "/api/auth/register", "", strings.NewReader(body), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Token, resp.User.ID
}

func (e *testEnv) request(t *testing.T, method, path, token string, body *strings.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doJSON issues a JSON request and decodes the response body into out when
// non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := e.request(t, method, path, token, reader, "application/json")
	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response %s: %v", w.Body.String(), err)
		}
	}
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %s: %v", w.Body.String(), err)
	}
}

// multipartBody builds a multipart form with a content field and one file
// part carrying an explicit MIME type.
func multipartBody(t *testing.T, content, fileName, mimeType string, data []byte) (*strings.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("content", content); err != nil {
		t.Fatalf("failed to write form field: %v", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write file data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return strings.NewReader(buf.String()), writer.FormDataContentType()
}
