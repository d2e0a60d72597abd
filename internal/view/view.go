// Package view holds one controller per dashboard page. A controller fetches
// its slice of backend state through the gateway, keeps it under its own
// mutex and exposes a Snapshot for rendering. Network calls are never made
// while a controller's lock is held.
package view

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/yourusername/jobhunter-dashboard/internal/config"
	"github.com/yourusername/jobhunter-dashboard/internal/gateway"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/session"
)

var (
	// ErrSignedOut is returned by actions that need a user while none is signed in
	ErrSignedOut = errors.New("not signed in")
	// ErrInvalid wraps input the page controls cannot produce
	ErrInvalid = errors.New("invalid input")
)

// Backend is the part of the gateway the views call
type Backend interface {
	GetDashboardStats(ctx context.Context, userID string) (*model.DashboardStats, error)
	GetDashboardTopJobs(ctx context.Context, userID string) ([]model.TopJob, error)
	GetUserScores(ctx context.Context, userID, recommendation string, limit, offset int) ([]model.JobScore, error)
	CreateApplication(ctx context.Context, userID, jobID string, autoApply bool) (*model.Application, error)

	GetUserStats(ctx context.Context, userID string) (*model.ApplicationStats, error)
	GetUserApplications(ctx context.Context, userID, status string, limit, offset int) ([]model.Application, error)
	MarkAsApplied(ctx context.Context, applicationID string) (*model.Application, error)
	UpdateApplication(ctx context.Context, applicationID string, patch model.ApplicationPatch) (*model.Application, error)

	GetPortals(ctx context.Context) ([]model.Portal, error)
	GetUserPortals(ctx context.Context, userID string) ([]model.UserPortalSetting, error)
	UpdateUserPortal(ctx context.Context, userID, portal string, update model.PortalUpdate) (*model.UserPortalSetting, error)
	TestProxy(ctx context.Context, apiKey string) (*model.ProxyTestResult, error)

	GetUserPreferences(ctx context.Context, userID string) (*model.Preferences, error)
	UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) (*model.Preferences, error)

	GetAnalytics(ctx context.Context, userID string, days int) (*model.AnalyticsSummary, error)
}

var _ Backend = (*gateway.Client)(nil)

// Deps is what every view is built from
type Deps struct {
	API     Backend
	Session session.Reader
	Toasts  notify.Notifier
	Catalog config.Catalog
	// Now defaults to time.Now
	Now func() time.Time
}

func (d Deps) user() (*model.UserProfile, error) {
	if d.Session == nil {
		return nil, ErrSignedOut
	}
	user := d.Session.User()
	if user == nil {
		return nil, ErrSignedOut
	}
	return user, nil
}

func (d Deps) userID() (string, error) {
	user, err := d.user()
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) toast(message string, kind notify.Kind) {
	if d.Toasts != nil {
		d.Toasts.Show(message, kind)
	}
}

func validJSON(text string) bool {
	return json.Valid([]byte(text))
}
