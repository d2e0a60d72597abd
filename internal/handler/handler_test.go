package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/jobhunter-dashboard/internal/config"
	"github.com/yourusername/jobhunter-dashboard/internal/gateway"
	"github.com/yourusername/jobhunter-dashboard/internal/middleware"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/session"
	"github.com/yourusername/jobhunter-dashboard/internal/store"
	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend records the requests it serves
type backend struct {
	mu       sync.Mutex
	requests []string
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
	b.mu.Unlock()
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	b := &backend{}
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b.record(r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1","username":"` + req.Username + `","assigned_slot":"slot_2","status":"active"}}`))
	})
	mux.HandleFunc("POST /api/auth/logout", reply(`{}`))
	mux.HandleFunc("GET /api/users/u1/dashboard/stats", reply(`{"jobsScrapedToday":12,"topMatches":3,"pendingReview":1,"appliedThisWeek":2}`))
	mux.HandleFunc("GET /api/users/u1/dashboard/top-jobs", reply(`[{"id":"t1","job_title":"SRE","overall_score":91,"platform":"linkedin"}]`))
	mux.HandleFunc("GET /api/users/u1/scores", reply(`[]`))
	mux.HandleFunc("GET /api/users/u1/applications", reply(`[{"id":"a1","applied":true,"job_title":"SRE"}]`))
	mux.HandleFunc("GET /api/users/u1/stats", reply(`{"applied_count":1}`))
	mux.HandleFunc("POST /api/users/u1/applications", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate key value violates unique constraint"}`))
	})
	mux.HandleFunc("GET /api/users/u1/preferences", reply(`{"target_roles":["Go Engineer"],"min_salary_inr":2500000}`))
	mux.HandleFunc("PUT /api/users/u1/preferences", reply(`{}`))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

type harness struct {
	router  *gin.Engine
	backend *backend
}

func newHarness(t *testing.T) *harness {
	b, srv := newBackend(t)

	api := gateway.NewClient(context.Background(), srv.URL, store.NewMemoryStore())
	sess := session.New(api)
	toasts := notify.NewCenter(20)
	deps := view.Deps{
		API:     api,
		Session: sess,
		Toasts:  toasts,
		Catalog: config.DefaultCatalog(),
		Now:     func() time.Time { return time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC) },
	}
	mounter := view.NewMounter(deps, sess)
	sess.Restore()

	auth := NewAuthHandler(view.NewLogin(sess, toasts), sess)
	views := NewViewHandler(mounter)

	r := gin.New()
	r.GET("/session", auth.Session)
	r.POST("/auth/login", auth.Login)
	r.GET("/toasts", NewToastHandler(toasts).Drain)

	authed := r.Group("/", middleware.RequireSession(sess))
	authed.POST("/auth/logout", auth.Logout)
	authed.GET("/views/dashboard", views.Dashboard)
	authed.GET("/views/schedule", views.Schedule)
	authed.GET("/views/analytics", views.Analytics)
	authed.PUT("/views/jobs/filters", views.SetJobFilters)
	authed.POST("/views/jobs/:id/apply", views.ApplyToJob)
	authed.PUT("/views/applications/expand", views.ExpandApplications)
	authed.PUT("/views/preferences", views.EditPreferences)
	authed.POST("/views/preferences/save", views.SavePreferences)
	authed.POST("/views/preferences/resume/validate", views.ValidateResume)

	return &harness{router: r, backend: b}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) signIn(t *testing.T) {
	w := h.do(http.MethodPost, "/auth/login", `{"username":"asha","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestViewsRequireSignIn(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/views/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, "/session", "")
	assert.Equal(t, "unauthenticated", decode[map[string]any](t, w)["state"])
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/login", `{"username":"asha","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decode[map[string]string](t, w)["error"])

	w = h.do(http.MethodPost, "/auth/login", `{"username":"asha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardAfterSignIn(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodGet, "/views/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)

	snap := decode[view.DashboardSnapshot](t, w)
	assert.False(t, snap.Loading)
	assert.Equal(t, 12, snap.Stats.JobsScrapedToday)
	require.Len(t, snap.TopJobs, 1)
	assert.Equal(t, "SRE", snap.TopJobs[0].JobTitle)
	// Slot 2 runs at 10:00 AM, half an hour after the fixed clock
	assert.Equal(t, "Morning", snap.Slot.Label)
	assert.Equal(t, 0, snap.Countdown.Hours)
	assert.Equal(t, 30, snap.Countdown.Minutes)

	// A second view of the page does not refetch
	h.do(http.MethodGet, "/views/dashboard", "")
	count := 0
	for _, r := range h.backend.seen() {
		if strings.Contains(r, "/dashboard/") {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestApplyDuplicateIsWarning(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.do(http.MethodGet, "/toasts", "")

	w := h.do(http.MethodPost, "/views/jobs/j1/apply", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	toasts := decode[[]notify.Toast](t, h.do(http.MethodGet, "/toasts", ""))
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Warning, toasts[0].Kind)
	assert.Equal(t, "Already marked as applied", toasts[0].Message)
}

func TestInvalidInputIsBadRequest(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPut, "/views/jobs/filters", `{"dateRange":14}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/views/applications/expand", `{"status":"ghosted"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/views/analytics?range=14", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpandSendsStatusFilter(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPut, "/views/applications/expand", `{"status":"applied"}`)
	require.Equal(t, http.StatusOK, w.Code)

	snap := decode[view.ApplicationsSnapshot](t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "applied", string(snap.Items[0].Status))
	assert.Contains(t, h.backend.seen(), "GET /api/users/u1/applications?limit=20&offset=0&status=applied")
}

func TestMalformedResumeIsNotSaved(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPut, "/views/preferences", `{"add_role":"SRE","resume_text":"{oops"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Go Engineer", "SRE"}, decode[view.PreferencesSnapshot](t, w).Preferences.TargetRoles)

	w = h.do(http.MethodPost, "/views/preferences/resume/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invalid JSON format", decode[view.PreferencesSnapshot](t, w).JSONError)

	w = h.do(http.MethodPost, "/views/preferences/save", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, h.backend.seen(), "PUT /api/users/u1/preferences")

	w = h.do(http.MethodPut, "/views/preferences", `{"resume_text":"{\"name\":\"Asha\"}"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPost, "/views/preferences/save", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, h.backend.seen(), "PUT /api/users/u1/preferences")
}

func TestSaveBeforeViewingLoadsStoredPreferences(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPost, "/views/preferences/save", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	snap := decode[view.PreferencesSnapshot](t, w)
	assert.Equal(t, []string{"Go Engineer"}, snap.Preferences.TargetRoles)
	assert.Equal(t, 2500000, snap.Preferences.MinSalary)

	seen := h.backend.seen()
	require.Contains(t, seen, "GET /api/users/u1/preferences")
	assert.Less(t, indexOf(seen, "GET /api/users/u1/preferences"), indexOf(seen, "PUT /api/users/u1/preferences"))
}

func TestRejectedEditLeavesFormUntouched(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPut, "/views/preferences", `{"min_salary_inr":900000,"toggle_location":"Atlantis"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/views/preferences", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[view.PreferencesSnapshot](t, w)
	assert.Equal(t, 2500000, snap.Preferences.MinSalary)
	assert.Empty(t, snap.Preferences.PreferredLocations)
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

func TestLogoutUnmountsViews(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.do(http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(http.MethodGet, "/views/schedule", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
