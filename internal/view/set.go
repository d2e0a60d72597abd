package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/session"
)

// Page names a mountable view
type Page string

const (
	PageDashboard    Page = "dashboard"
	PageJobs         Page = "jobs"
	PageApplications Page = "applications"
	PagePortals      Page = "portals"
	PagePreferences  Page = "preferences"
	PageAnalytics    Page = "analytics"
)

// Set is every view mounted for one signed-in user
type Set struct {
	Dashboard    *Dashboard
	Jobs         *JobFeed
	Applications *Applications
	Portals      *Portals
	Preferences  *Preferences
	Analytics    *Analytics
	Schedule     *Schedule

	mu     sync.Mutex
	loaded map[Page]bool
}

func NewSet(deps Deps) *Set {
	return &Set{
		Dashboard:    NewDashboard(deps),
		Jobs:         NewJobFeed(deps),
		Applications: NewApplications(deps),
		Portals:      NewPortals(deps),
		Preferences:  NewPreferences(deps),
		Analytics:    NewAnalytics(deps),
		Schedule:     NewSchedule(deps),
		loaded:       map[Page]bool{},
	}
}

// Ensure performs a page's initial fetch the first time it is shown. A
// failed first fetch is retried on the next call.
func (s *Set) Ensure(ctx context.Context, page Page) error {
	s.mu.Lock()
	if s.loaded[page] {
		s.mu.Unlock()
		return nil
	}
	s.loaded[page] = true
	s.mu.Unlock()

	var err error
	switch page {
	case PageDashboard:
		err = s.Dashboard.Load(ctx)
	case PageJobs:
		err = s.Jobs.Refresh(ctx)
	case PageApplications:
		err = s.Applications.LoadStats(ctx)
	case PagePortals:
		err = s.Portals.Load(ctx)
	case PagePreferences:
		err = s.Preferences.Load(ctx)
	case PageAnalytics:
		err = s.Analytics.Load(ctx, DefaultAnalyticsRange)
	}

	if err != nil {
		s.mu.Lock()
		s.loaded[page] = false
		s.mu.Unlock()
	}
	return err
}

// Close unmounts every view; responses still in flight are dropped
func (s *Set) Close() {
	s.Dashboard.Close()
	s.Jobs.Close()
	s.Applications.Close()
}

// Mounter keeps a Set mounted exactly while the session is authenticated
type Mounter struct {
	deps Deps

	mu      sync.RWMutex
	current *Set
}

// NewMounter subscribes to sess. Call it before the session is restored so
// the initial transition mounts the views.
func NewMounter(deps Deps, sess *session.Session) *Mounter {
	m := &Mounter{deps: deps}
	sess.Subscribe(m.onSession)
	return m
}

func (m *Mounter) onSession(state session.State, user *model.UserProfile) {
	m.mu.Lock()
	old := m.current
	m.current = nil
	if state == session.StateAuthenticated {
		m.current = NewSet(m.deps)
	}
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if user != nil {
		log.Info().Str("user", user.Username).Str("state", string(state)).Msg("Views remounted")
	} else {
		log.Info().Str("state", string(state)).Msg("Views unmounted")
	}
}

// Current is the mounted set, or nil while signed out
func (m *Mounter) Current() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
