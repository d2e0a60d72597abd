package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/jobhunter-dashboard/internal/config"
	"github.com/yourusername/jobhunter-dashboard/internal/gateway"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/session"
)

var testNow = time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)

type fixedSession struct {
	user *model.UserProfile
}

func (s fixedSession) State() session.State {
	if s.user == nil {
		return session.StateUnauthenticated
	}
	return session.StateAuthenticated
}
func (s fixedSession) User() *model.UserProfile { return s.user }
func (s fixedSession) Loading() bool            { return false }

func testUser() *model.UserProfile {
	return &model.UserProfile{ID: "u1", Username: "asha", Name: "Asha", AssignedSlot: model.Slot3, Status: model.UserStatusActive}
}

func newDeps(api Backend) (Deps, *notify.Center) {
	toasts := notify.NewCenter(20)
	return Deps{
		API:     api,
		Session: fixedSession{user: testUser()},
		Toasts:  toasts,
		Catalog: config.DefaultCatalog(),
		Now:     func() time.Time { return testNow },
	}, toasts
}

func messages(c *notify.Center) []string {
	var out []string
	for _, t := range c.Recent() {
		out = append(out, string(t.Kind)+": "+t.Message)
	}
	return out
}

// fakeBackend is an in-memory Backend. Zero-valued hooks return empty data.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	dashboardStats *model.DashboardStats
	dashboardErr   error
	topJobs        []model.TopJob

	scores    []model.JobScore
	scoresErr error

	createAppErr error

	stats    *model.ApplicationStats
	statsErr error
	apps     []model.Application
	appsErr  error
	markErr  error
	patchErr error
	patches  []model.ApplicationPatch

	portals       []model.Portal
	portalsErr    error
	userPortals   func(call int) ([]model.UserPortalSetting, error)
	portalCalls   int
	updatePortal  func(portal string, u model.PortalUpdate) (*model.UserPortalSetting, error)
	portalUpdates []model.PortalUpdate

	proxy    *model.ProxyTestResult
	proxyErr error

	prefs        *model.Preferences
	prefsErr     error
	savedPrefs   []model.Preferences
	savePrefsErr error

	summary    *model.AnalyticsSummary
	summaryErr error
}

func (f *fakeBackend) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return append([]T{}, items...)
	}
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return append([]T{}, items[offset:end]...)
}

func (f *fakeBackend) GetDashboardStats(_ context.Context, userID string) (*model.DashboardStats, error) {
	f.record("GetDashboardStats %s", userID)
	if f.dashboardErr != nil {
		return nil, f.dashboardErr
	}
	if f.dashboardStats == nil {
		return &model.DashboardStats{}, nil
	}
	return f.dashboardStats, nil
}

func (f *fakeBackend) GetDashboardTopJobs(_ context.Context, userID string) ([]model.TopJob, error) {
	f.record("GetDashboardTopJobs %s", userID)
	return f.topJobs, nil
}

func (f *fakeBackend) GetUserScores(_ context.Context, userID, rec string, limit, offset int) ([]model.JobScore, error) {
	f.record("GetUserScores %s limit=%d offset=%d", userID, limit, offset)
	if f.scoresErr != nil {
		return nil, f.scoresErr
	}
	return page(f.scores, limit, offset), nil
}

func (f *fakeBackend) CreateApplication(_ context.Context, userID, jobID string, autoApply bool) (*model.Application, error) {
	f.record("CreateApplication %s %s %t", userID, jobID, autoApply)
	if f.createAppErr != nil {
		return nil, f.createAppErr
	}
	return &model.Application{ID: "a-" + jobID, UserID: userID, JobID: jobID}, nil
}

func (f *fakeBackend) GetUserStats(_ context.Context, userID string) (*model.ApplicationStats, error) {
	f.record("GetUserStats %s", userID)
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	if f.stats == nil {
		return &model.ApplicationStats{}, nil
	}
	return f.stats, nil
}

func (f *fakeBackend) GetUserApplications(_ context.Context, userID, status string, limit, offset int) ([]model.Application, error) {
	f.record("GetUserApplications %s status=%s limit=%d offset=%d", userID, status, limit, offset)
	if f.appsErr != nil {
		return nil, f.appsErr
	}
	return page(f.apps, limit, offset), nil
}

func (f *fakeBackend) MarkAsApplied(_ context.Context, id string) (*model.Application, error) {
	f.record("MarkAsApplied %s", id)
	if f.markErr != nil {
		return nil, f.markErr
	}
	return &model.Application{ID: id, Applied: true}, nil
}

func (f *fakeBackend) UpdateApplication(_ context.Context, id string, patch model.ApplicationPatch) (*model.Application, error) {
	f.record("UpdateApplication %s", id)
	f.mu.Lock()
	f.patches = append(f.patches, patch)
	f.mu.Unlock()
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	return &model.Application{ID: id}, nil
}

func (f *fakeBackend) GetPortals(context.Context) ([]model.Portal, error) {
	f.record("GetPortals")
	return f.portals, f.portalsErr
}

func (f *fakeBackend) GetUserPortals(_ context.Context, userID string) ([]model.UserPortalSetting, error) {
	f.record("GetUserPortals %s", userID)
	f.mu.Lock()
	f.portalCalls++
	call := f.portalCalls
	f.mu.Unlock()
	if f.userPortals == nil {
		return []model.UserPortalSetting{}, nil
	}
	return f.userPortals(call)
}

func (f *fakeBackend) UpdateUserPortal(_ context.Context, userID, portal string, u model.PortalUpdate) (*model.UserPortalSetting, error) {
	f.record("UpdateUserPortal %s %s", userID, portal)
	f.mu.Lock()
	f.portalUpdates = append(f.portalUpdates, u)
	f.mu.Unlock()
	if f.updatePortal != nil {
		return f.updatePortal(portal, u)
	}
	s := &model.UserPortalSetting{ID: "srv-" + portal, PortalID: portal, PortalConfig: u.PortalConfig}
	if u.IsEnabled != nil {
		s.IsEnabled = *u.IsEnabled
	}
	if u.Priority != nil {
		s.Priority = *u.Priority
	}
	return s, nil
}

func (f *fakeBackend) TestProxy(_ context.Context, key string) (*model.ProxyTestResult, error) {
	f.record("TestProxy %s", key)
	if f.proxyErr != nil {
		return nil, f.proxyErr
	}
	if f.proxy == nil {
		return &model.ProxyTestResult{Success: true}, nil
	}
	return f.proxy, nil
}

func (f *fakeBackend) GetUserPreferences(_ context.Context, userID string) (*model.Preferences, error) {
	f.record("GetUserPreferences %s", userID)
	return f.prefs, f.prefsErr
}

func (f *fakeBackend) UpdateUserPreferences(_ context.Context, userID string, p model.Preferences) (*model.Preferences, error) {
	f.record("UpdateUserPreferences %s", userID)
	f.mu.Lock()
	f.savedPrefs = append(f.savedPrefs, p)
	f.mu.Unlock()
	if f.savePrefsErr != nil {
		return nil, f.savePrefsErr
	}
	return &p, nil
}

func (f *fakeBackend) GetAnalytics(_ context.Context, userID string, days int) (*model.AnalyticsSummary, error) {
	f.record("GetAnalytics %s days=%d", userID, days)
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary == nil {
		return &model.AnalyticsSummary{}, nil
	}
	return f.summary, nil
}

func apiErr(status int, msg string) error {
	return &gateway.APIError{Status: status, Message: msg}
}

func ptr[T any](v T) *T { return &v }
