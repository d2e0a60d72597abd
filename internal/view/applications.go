package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/funnel"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/paging"
	"github.com/yourusername/jobhunter-dashboard/internal/present"
)

const ApplicationPageSize = 20

// Applications is the tracker: one count card per funnel status, and a
// paginated list of the applications in whichever status is expanded
type Applications struct {
	deps Deps
	list *paging.List[model.Application]

	mu          sync.Mutex
	stats       model.ApplicationStats
	statsLoaded bool
	expanded    funnel.Status
}

func NewApplications(deps Deps) *Applications {
	v := &Applications{deps: deps}
	v.list = paging.New("applications", ApplicationPageSize, v.fetch, func(error) {
		deps.toast("Failed to load applications", notify.Error)
	})
	return v
}

// fetch filters server-side by the expanded status
func (v *Applications) fetch(ctx context.Context, limit, offset int) ([]model.Application, error) {
	userID, err := v.deps.userID()
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	status := v.expanded
	v.mu.Unlock()
	return v.deps.API.GetUserApplications(ctx, userID, string(status), limit, offset)
}

func (v *Applications) LoadStats(ctx context.Context) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	stats, err := v.deps.API.GetUserStats(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch application stats")
		v.deps.toast("Failed to load stats", notify.Error)
		v.mu.Lock()
		v.statsLoaded = true
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.stats = *stats
	v.statsLoaded = true
	v.mu.Unlock()
	return nil
}

// Expand shows the applications in status, replacing whatever was listed.
// Expanding the already expanded status, or the empty status, collapses.
func (v *Applications) Expand(ctx context.Context, status funnel.Status) error {
	if status != "" && !funnel.Valid(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	v.mu.Lock()
	if status == v.expanded {
		status = ""
	}
	v.expanded = status
	v.mu.Unlock()

	if status == "" {
		v.list.Clear()
		return nil
	}
	return v.list.Reset(ctx)
}

// LoadMore is the end-of-list trigger; it does nothing while collapsed
func (v *Applications) LoadMore(ctx context.Context) (bool, error) {
	v.mu.Lock()
	expanded := v.expanded
	v.mu.Unlock()
	if expanded == "" {
		return false, nil
	}
	return v.list.LoadMore(ctx)
}

// MarkApplied marks an application as applied today
func (v *Applications) MarkApplied(ctx context.Context, applicationID string) error {
	if _, err := v.deps.API.MarkAsApplied(ctx, applicationID); err != nil {
		log.Error().Err(err).Str("application_id", applicationID).Msg("Failed to mark as applied")
		v.deps.toast("Failed to update status", notify.Error)
		return err
	}

	now := v.deps.now()
	v.list.Update(func(items []model.Application) {
		for i := range items {
			if items[i].ID == applicationID {
				items[i] = funnel.Apply(items[i], funnel.Applied)
				items[i].AppliedAt = &now
			}
		}
	})
	v.deps.toast("Marked as applied!", notify.Success)
	return nil
}

// Update moves an application to status and replaces its notes, then
// refreshes the counts
func (v *Applications) Update(ctx context.Context, applicationID string, status funnel.Status, notes string) error {
	if !funnel.Valid(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	if _, err := v.deps.API.UpdateApplication(ctx, applicationID, funnel.Patch(status, notes)); err != nil {
		log.Error().Err(err).Str("application_id", applicationID).Msg("Failed to update application")
		v.deps.toast("Failed to update application", notify.Error)
		return err
	}

	v.list.Update(func(items []model.Application) {
		for i := range items {
			if items[i].ID == applicationID {
				items[i] = funnel.Apply(items[i], status)
				items[i].Notes = notes
			}
		}
	})

	// A stats failure has its own toast and does not undo the update
	_ = v.LoadStats(ctx)

	v.deps.toast("Application updated", notify.Success)
	return nil
}

func (v *Applications) Close() {
	v.list.Close()
}

type StatusCard struct {
	Status   funnel.Status `json:"status"`
	Label    string        `json:"label"`
	Count    int           `json:"count"`
	Expanded bool          `json:"expanded"`
}

type ApplicationRow struct {
	model.Application
	Status       funnel.Status   `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	ScoreVariant present.Variant `json:"scoreVariant"`
}

type ApplicationsSnapshot struct {
	Loading  bool             `json:"loading"`
	Cards    []StatusCard     `json:"cards"`
	Expanded funnel.Status    `json:"expanded"`
	Items    []ApplicationRow `json:"items"`
	Paging   paging.State     `json:"paging"`
}

func statusCount(stats model.ApplicationStats, s funnel.Status) int {
	switch s {
	case funnel.Interested:
		return stats.InterestedCount
	case funnel.Applied:
		return stats.AppliedCount
	case funnel.Callback:
		return stats.CallbackCount
	case funnel.Interview:
		return stats.InterviewCount
	case funnel.Offer:
		return stats.OfferCount
	case funnel.Rejected:
		return stats.RejectedCount
	}
	return 0
}

func (v *Applications) Snapshot() ApplicationsSnapshot {
	v.mu.Lock()
	stats, loaded, expanded := v.stats, v.statsLoaded, v.expanded
	v.mu.Unlock()

	cards := make([]StatusCard, 0, len(funnel.Statuses))
	for _, s := range funnel.Statuses {
		cards = append(cards, StatusCard{
			Status:   s,
			Label:    funnel.Label(s),
			Count:    statusCount(stats, s),
			Expanded: s == expanded,
		})
	}

	items := v.list.Items()
	rows := make([]ApplicationRow, 0, len(items))
	for _, app := range items {
		if app.Platform == "" {
			app.Platform = "Unknown"
		}
		if app.Location == "" {
			app.Location = "Remote"
		}
		status := funnel.StatusOf(app)
		rows = append(rows, ApplicationRow{
			Application:  app,
			Status:       status,
			StatusLabel:  funnel.Label(status),
			ScoreVariant: present.ScoreVariant(app.SkillMatchScore),
		})
	}

	return ApplicationsSnapshot{
		Loading:  !loaded,
		Cards:    cards,
		Expanded: expanded,
		Items:    rows,
		Paging:   v.list.State(),
	}
}
