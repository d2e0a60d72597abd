package view

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/jobhunter-dashboard/internal/metrics"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/present"
)

// Dashboard is the home page: headline stats, top matches and the
// countdown to the user's next scraping run
type Dashboard struct {
	deps Deps

	mu      sync.Mutex
	loading bool
	stats   model.DashboardStats
	topJobs []model.TopJob
	closed  bool
}

func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{deps: deps, loading: true}
}

// Load fetches stats and top jobs concurrently. Both must succeed for
// either to be shown.
func (v *Dashboard) Load(ctx context.Context) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	var (
		stats   *model.DashboardStats
		topJobs []model.TopJob
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = v.deps.API.GetDashboardStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		topJobs, err = v.deps.API.GetDashboardTopJobs(gctx, userID)
		return err
	})
	err = g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.loading = false
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch dashboard data")
		return err
	}
	v.stats = *stats
	v.topJobs = topJobs
	return nil
}

// Close unmounts the view
func (v *Dashboard) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Countdown is the time left until a scheduled run
type Countdown struct {
	NextRun time.Time `json:"nextRun"`
	Hours   int       `json:"hours"`
	Minutes int       `json:"minutes"`
}

// countdownTo computes the next run of slot from now. A malformed slot
// time yields a zero countdown.
func countdownTo(now time.Time, slot present.SlotInfo) Countdown {
	clock, err := metrics.ParseClock(slot.Time)
	if err != nil {
		log.Warn().Err(err).Str("slot", string(slot.Key)).Msg("Unparseable slot time")
		return Countdown{NextRun: now}
	}
	next, remaining := metrics.NextRun(now, clock)
	h, m := metrics.Countdown(remaining)
	return Countdown{NextRun: next, Hours: h, Minutes: m}
}

type TopJobCard struct {
	model.TopJob
	Variant present.Variant `json:"variant"`
}

type DashboardSnapshot struct {
	Loading   bool                 `json:"loading"`
	Stats     model.DashboardStats `json:"stats"`
	TopJobs   []TopJobCard         `json:"topJobs"`
	Slot      present.SlotInfo     `json:"slot"`
	Countdown Countdown            `json:"countdown"`
}

// Snapshot recomputes the countdown from the wall clock on every call
func (v *Dashboard) Snapshot() DashboardSnapshot {
	v.mu.Lock()
	snap := DashboardSnapshot{
		Loading: v.loading,
		Stats:   v.stats,
		TopJobs: make([]TopJobCard, 0, len(v.topJobs)),
	}
	for _, j := range v.topJobs {
		if j.Platform == "" {
			j.Platform = "Unknown"
		}
		snap.TopJobs = append(snap.TopJobs, TopJobCard{TopJob: j, Variant: present.ScoreVariant(j.OverallScore)})
	}
	v.mu.Unlock()

	if user, err := v.deps.user(); err == nil {
		snap.Slot = present.SlotFor(user.AssignedSlot)
		snap.Countdown = countdownTo(v.deps.now(), snap.Slot)
	}
	return snap
}
