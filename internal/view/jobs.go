package view

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/metrics"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/paging"
	"github.com/yourusername/jobhunter-dashboard/internal/present"
)

const (
	JobPageSize = 12
	AllPortals  = "all"
)

// DateRanges are the selectable feed windows in days
var DateRanges = []int{1, 7, 30, 365}

// JobFilters narrow the feed. They are applied to the pages already
// loaded, not sent to the backend.
type JobFilters struct {
	Portal        string `json:"portal"`
	MinScore      int    `json:"minScore"`
	DateRangeDays int    `json:"dateRange"`
}

func DefaultJobFilters() JobFilters {
	return JobFilters{Portal: AllPortals, MinScore: 0, DateRangeDays: 7}
}

// Validate rejects values the filter controls cannot produce
func (f JobFilters) Validate() error {
	if f.MinScore < 0 || f.MinScore > 100 {
		return fmt.Errorf("%w: minimum score %d out of range 0-100", ErrInvalid, f.MinScore)
	}
	for _, d := range DateRanges {
		if d == f.DateRangeDays {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported date range %d", ErrInvalid, f.DateRangeDays)
}

// JobFeed is the infinite-scroll list of scored jobs
type JobFeed struct {
	deps Deps
	list *paging.List[model.JobScore]

	mu      sync.Mutex
	filters JobFilters
}

func NewJobFeed(deps Deps) *JobFeed {
	v := &JobFeed{deps: deps, filters: DefaultJobFilters()}
	v.list = paging.New("jobs", JobPageSize, v.fetch, func(error) {
		deps.toast("Failed to load jobs", notify.Error)
	})
	return v
}

func (v *JobFeed) fetch(ctx context.Context, limit, offset int) ([]model.JobScore, error) {
	userID, err := v.deps.userID()
	if err != nil {
		return nil, err
	}
	return v.deps.API.GetUserScores(ctx, userID, "", limit, offset)
}

// Refresh reloads from the first page
func (v *JobFeed) Refresh(ctx context.Context) error {
	return v.list.Reset(ctx)
}

// LoadMore is the end-of-list trigger
func (v *JobFeed) LoadMore(ctx context.Context) (bool, error) {
	return v.list.LoadMore(ctx)
}

func (v *JobFeed) SetFilters(f JobFilters) error {
	if f.Portal == "" {
		f.Portal = AllPortals
	}
	if err := f.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	v.filters = f
	v.mu.Unlock()
	return nil
}

func (v *JobFeed) ResetFilters() {
	v.mu.Lock()
	v.filters = DefaultJobFilters()
	v.mu.Unlock()
}

// Apply records an application for jobID. A duplicate is reported as a
// warning rather than a failure.
func (v *JobFeed) Apply(ctx context.Context, jobID string) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	if _, err := v.deps.API.CreateApplication(ctx, userID, jobID, false); err != nil {
		if isDuplicate(err) {
			v.deps.toast("Already marked as applied", notify.Warning)
			return nil
		}
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to create application")
		v.deps.toast("Failed to mark as applied", notify.Error)
		return err
	}

	v.deps.toast("Marked as applied!", notify.Success)
	return nil
}

func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "EXISTS")
}

// Close unmounts the feed
func (v *JobFeed) Close() {
	v.list.Close()
}

// JobCard is a scored job as the feed renders it
type JobCard struct {
	model.JobScore
	ScoreVariant          present.Variant `json:"scoreVariant"`
	RecommendationLabel   string          `json:"recommendationLabel"`
	RecommendationVariant present.Variant `json:"recommendationVariant"`
}

func jobCard(s model.JobScore) JobCard {
	if s.JobID == "" {
		s.JobID = s.ID
	}
	if s.Platform == "" {
		s.Platform = "Unknown"
	}
	if s.Location == "" {
		s.Location = "Remote"
	}
	if s.MissingSkills == nil {
		s.MissingSkills = []string{}
	}
	return JobCard{
		JobScore:              s,
		ScoreVariant:          present.ScoreVariant(s.SkillMatchScore),
		RecommendationLabel:   present.RecommendationLabel(s.AIRecommendation),
		RecommendationVariant: present.RecommendationVariant(s.AIRecommendation),
	}
}

// JobFeedSnapshot is the filtered feed. Portals lists "all" followed by
// every platform seen in the loaded jobs.
type JobFeedSnapshot struct {
	Filters JobFilters   `json:"filters"`
	Portals []string     `json:"portals"`
	Jobs    []JobCard    `json:"jobs"`
	Found   int          `json:"found"`
	Loaded  int          `json:"loaded"`
	Paging  paging.State `json:"paging"`
}

func (v *JobFeed) Snapshot() JobFeedSnapshot {
	v.mu.Lock()
	filters := v.filters
	v.mu.Unlock()

	items := v.list.Items()
	cutoff := metrics.Since(v.deps.now(), filters.DateRangeDays)

	portals := []string{AllPortals}
	seen := map[string]bool{}
	jobs := make([]JobCard, 0, len(items))
	for _, s := range items {
		card := jobCard(s)
		if !seen[card.Platform] {
			seen[card.Platform] = true
			portals = append(portals, card.Platform)
		}

		if filters.Portal != AllPortals && card.Platform != filters.Portal {
			continue
		}
		if card.SkillMatchScore < filters.MinScore {
			continue
		}
		if !metrics.InWindow(card.ScoredAt, cutoff) {
			continue
		}
		jobs = append(jobs, card)
	}

	return JobFeedSnapshot{
		Filters: filters,
		Portals: portals,
		Jobs:    jobs,
		Found:   len(jobs),
		Loaded:  len(items),
		Paging:  v.list.State(),
	}
}
