package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

type doubtEnvelope struct {
	Doubt struct {
		ID      uuid.UUID `json:"id"`
		Subject string    `json:"subject"`
		Answer  string    `json:"answer"`
		Status  string    `json:"status"`
		Teacher *struct {
			ID uuid.UUID `json:"id"`
		} `json:"teacher"`
	} `json:"doubt"`
}

func (e *testEnv) createDoubt(t *testing.T, token string) uuid.UUID {
	t.Helper()
	var resp doubtEnvelope
	w := e.doJSON(t, http.MethodPost, "/api/student/doubts", token,
		`{"subject":"Math","question":"Why does integration by parts work?"}`, &resp)
	if w.Code != http.StatusCreated {
		t.Fatalf("create doubt returned %d: %s", w.Code, w.Body.String())
	}
	return resp.Doubt.ID
}

func TestDoubtLifecycle(t *testing.T) {
	env := newTestEnv(t)
	studentToken, _ := env.registerUser(t, "student@example.com", "STUDENT")
	teacherToken, teacherID := env.registerUser(t, "teacher@example.com", "TEACHER")

	doubtID := env.createDoubt(t, studentToken)

	var resp doubtEnvelope
	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/teacher/doubts/%s/answer", doubtID), teacherToken,
		`{"answer":"It is the product rule in reverse."}`, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("answer doubt returned %d: %s", w.Code, w.Body.String())
	}
	if resp.Doubt.Status != "ANSWERED" {
		t.Errorf("expected status ANSWERED, got %q", resp.Doubt.Status)
	}
	if resp.Doubt.Teacher == nil || resp.Doubt.Teacher.ID != teacherID {
		t.Error("expected the answering teacher to be recorded")
	}

	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/student/doubts/%s/close", doubtID), studentToken, "", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("close doubt returned %d: %s", w.Code, w.Body.String())
	}
	if resp.Doubt.Status != "CLOSED" {
		t.Errorf("expected status CLOSED, got %q", resp.Doubt.Status)
	}
}

func TestDoubtRoleEnforcement(t *testing.T) {
	env := newTestEnv(t)
	studentToken, _ := env.registerUser(t, "student@example.com", "STUDENT")
	teacherToken, _ := env.registerUser(t, "teacher@example.com", "TEACHER")

	// Teachers cannot raise doubts, students cannot answer or list them all.
	w := env.doJSON(t, http.MethodPost, "/api/student/doubts", teacherToken,
		`{"subject":"Math","question":"?"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("teacher creating a doubt returned %d, want 403", w.Code)
	}

	doubtID := env.createDoubt(t, studentToken)
	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/teacher/doubts/%s/answer", doubtID), studentToken,
		`{"answer":"self answer"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("student answering returned %d, want 403", w.Code)
	}

	w = env.doJSON(t, http.MethodGet, "/api/teacher/doubts", studentToken, "", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("student listing all doubts returned %d, want 403", w.Code)
	}
}

func TestCloseDoubtParticipantsOnly(t *testing.T) {
	env := newTestEnv(t)
	studentToken, _ := env.registerUser(t, "student@example.com", "STUDENT")
	otherToken, _ := env.registerUser(t, "other@example.com", "STUDENT")
	teacherToken, _ := env.registerUser(t, "teacher@example.com", "TEACHER")
	bystanderToken, _ := env.registerUser(t, "bystander@example.com", "TEACHER")

	doubtID := env.createDoubt(t, studentToken)

	// A missing doubt is 404 before any ownership question.
	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/student/doubts/%s/close", uuid.NewString()), studentToken, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing doubt returned %d, want 404", w.Code)
	}

	for _, token := range []string{otherToken, bystanderToken} {
		w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/student/doubts/%s/close", doubtID), token, "", nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("non-participant close returned %d, want 403", w.Code)
		}
	}

	// The answering teacher becomes a participant and may close.
	env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/teacher/doubts/%s/answer", doubtID), teacherToken,
		`{"answer":"done"}`, nil)
	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/student/doubts/%s/close", doubtID), teacherToken, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("answering teacher close returned %d, want 200", w.Code)
	}
}

func TestListStudentDoubtsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerUser(t, "alice@example.com", "STUDENT")
	bobToken, _ := env.registerUser(t, "bob@example.com", "STUDENT")
	env.createDoubt(t, aliceToken)

	var resp struct {
		Doubts []doubtEnvelope `json:"doubts"`
	}
	w := env.doJSON(t, http.MethodGet, "/api/student/doubts", bobToken, "", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("list doubts returned %d: %s", w.Code, w.Body.String())
	}
	if len(resp.Doubts) != 0 {
		t.Errorf("expected no doubts for another student, got %d", len(resp.Doubts))
	}
}
