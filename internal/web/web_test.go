package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/db"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

var testNow = time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *app.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	session, err := app.NewSession(
		&db.Backend{Name: db.BackendMemory, Tasks: store, Activity: store},
		activity.Aggregator{Filter: activity.FilterAny, Now: func() time.Time { return testNow }},
		app.SourceTasks,
	)
	require.NoError(t, err)
	return NewServer(session), session
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestAPITaskLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/tasks", `{"task":"Write tests","date":"2024-06-11"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created taskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2024-06-11", created.Date)
	assert.Equal(t, model.StatusPending, created.Status)

	w = do(t, s, http.MethodPatch, "/api/tasks/"+created.ID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tasks []taskResponse `json:"tasks"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.ID, list.Tasks[0].ID)

	w = do(t, s, http.MethodDelete, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodDelete, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIValidation(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"blank description", http.MethodPost, "/api/tasks", `{"task":"  "}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/tasks", `{"task":"x","date":"June"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/tasks", `{`, http.StatusBadRequest},
		{"bad status", http.MethodPatch, "/api/tasks/abc", `{"status":"done"}`, http.StatusBadRequest},
		{"missing status", http.MethodPatch, "/api/tasks/abc", `{}`, http.StatusBadRequest},
		{"unknown task", http.MethodPatch, "/api/tasks/abc", `{"status":"completed"}`, http.StatusNotFound},
		{"bad filter", http.MethodGet, "/api/tasks?status=later", "", http.StatusBadRequest},
		{"history unsupported", http.MethodGet, "/api/tasks/abc/history", "", http.StatusNotImplemented},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, s, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestAPIStatsAndGrid(t *testing.T) {
	s, session := newTestServer(t)
	ctx := context.Background()

	for ago := 0; ago < 3; ago++ {
		task, err := session.AddTask(ctx, "run", testNow.AddDate(0, 0, -ago))
		require.NoError(t, err)
		_, err = session.ToggleStatus(ctx, task)
		require.NoError(t, err)
	}

	w := do(t, s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Today string         `json:"today"`
		Stats activity.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "2024-06-12", stats.Today)
	assert.Equal(t, 3, stats.Stats.CurrentStreak)
	assert.Equal(t, 3, stats.Stats.TotalCompleted)

	w = do(t, s, http.MethodGet, "/api/grid", "")
	require.Equal(t, http.StatusOK, w.Code)
	var grid activity.Grid
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
	assert.Len(t, grid.Days, activity.DefaultWindowWeeks*7+1)
	assert.Equal(t, 3, grid.Total())
}

func TestIndexRendersDashboard(t *testing.T) {
	s, session := newTestServer(t)
	_, err := session.AddTask(context.Background(), "Stretch <daily>", testNow)
	require.NoError(t, err)

	w := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Stretch &lt;daily&gt;")
	assert.Contains(t, body, "current streak")
	assert.Contains(t, body, `class="cell l1"`)
	assert.Contains(t, body, "(today)")
}

func TestFormRoutes(t *testing.T) {
	s, session := newTestServer(t)
	ctx := context.Background()

	form := url.Values{"task": {"Journal"}, "date": {"2024-06-10"}}
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	tasks, err := session.Tasks(ctx, model.FilterAll)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	w = do(t, s, http.MethodPost, "/tasks/"+id+"/toggle", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	task, err := session.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, task.Status)

	w = do(t, s, http.MethodPost, "/tasks/"+id+"/delete", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	tasks, err = session.Tasks(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	empty := url.Values{"task": {" "}}
	req = httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(empty.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")
}
