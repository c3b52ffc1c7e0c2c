package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

type courseEnvelope struct {
	Course struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Code      string    `json:"code"`
		Credits   int       `json:"credits"`
		Schedules []struct {
			Title string `json:"title"`
		} `json:"schedules"`
	} `json:"course"`
}

func (e *testEnv) createCourse(t *testing.T, token, body string) uuid.UUID {
	t.Helper()
	var resp courseEnvelope
	w := e.doJSON(t, http.MethodPost, "/api/courses", token, body, &resp)
	if w.Code != http.StatusCreated {
		t.Fatalf("create course returned %d: %s", w.Code, w.Body.String())
	}
	return resp.Course.ID
}

func TestCourseCRUD(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "alice@example.com", "STUDENT")

	w := env.doJSON(t, http.MethodPost, "/api/courses", token, `{"code":"CS101"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("course without name returned %d, want 400", w.Code)
	}

	courseID := env.createCourse(t, token, `{"name":"Algorithms","code":"CS301","credits":4}`)

	// Partial update touches only the provided fields.
	var resp courseEnvelope
	w = env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/courses/%s", courseID), token, `{"credits":3}`, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("update course returned %d: %s", w.Code, w.Body.String())
	}
	if resp.Course.Credits != 3 || resp.Course.Name != "Algorithms" || resp.Course.Code != "CS301" {
		t.Errorf("partial update clobbered fields: %+v", resp.Course)
	}

	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/courses/%s", courseID), token, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete course returned %d, want 200", w.Code)
	}
	w = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/courses/%s", courseID), token, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted course returned %d, want 404", w.Code)
	}
}

func TestCourseOwnership(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerUser(t, "alice@example.com", "STUDENT")
	bobToken, _ := env.registerUser(t, "bob@example.com", "STUDENT")
	courseID := env.createCourse(t, aliceToken, `{"name":"Databases"}`)

	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/courses/%s", uuid.NewString()), bobToken, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing course returned %d, want 404", w.Code)
	}
	w = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/courses/%s", courseID), bobToken, "", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("someone else's course returned %d, want 403", w.Code)
	}
}

func TestListCoursesScheduleCounts(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "alice@example.com", "STUDENT")
	courseID := env.createCourse(t, token, `{"name":"Networks"}`)
	env.createCourse(t, token, `{"name":"Compilers"}`)

	env.createSchedule(t, token,
		fmt.Sprintf(`{"title":"Lecture","date":"2026-09-01T09:00:00Z","type":"CLASS","courseId":%q}`, courseID))

	var resp struct {
		Courses []struct {
			ID            uuid.UUID `json:"id"`
			ScheduleCount int64     `json:"scheduleCount"`
		} `json:"courses"`
	}
	w := env.doJSON(t, http.MethodGet, "/api/courses", token, "", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("list courses returned %d: %s", w.Code, w.Body.String())
	}
	if len(resp.Courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(resp.Courses))
	}
	counts := map[uuid.UUID]int64{}
	for _, course := range resp.Courses {
		counts[course.ID] = course.ScheduleCount
	}
	if counts[courseID] != 1 {
		t.Errorf("expected 1 schedule on the linked course, got %d", counts[courseID])
	}
}

func TestGetCourseIncludesSchedules(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "alice@example.com", "STUDENT")
	courseID := env.createCourse(t, token, `{"name":"Operating Systems"}`)

	env.createSchedule(t, token,
		fmt.Sprintf(`{"title":"Later","date":"2026-09-10T09:00:00Z","courseId":%q}`, courseID))
	env.createSchedule(t, token,
		fmt.Sprintf(`{"title":"Sooner","date":"2026-09-02T09:00:00Z","courseId":%q}`, courseID))

	var resp courseEnvelope
	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/courses/%s", courseID), token, "", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("get course returned %d: %s", w.Code, w.Body.String())
	}
	if len(resp.Course.Schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(resp.Course.Schedules))
	}
	if resp.Course.Schedules[0].Title != "Sooner" {
		t.Errorf("schedules not in date order: %+v", resp.Course.Schedules)
	}
}
