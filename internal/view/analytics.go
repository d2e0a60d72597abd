package view

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/jobhunter-dashboard/internal/metrics"
	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// AnalyticsRanges are the selectable windows in days
var AnalyticsRanges = []int{7, 30, 90}

const DefaultAnalyticsRange = 30

type AnalyticsStats struct {
	TotalJobs         int    `json:"totalJobs"`
	TotalApplications int    `json:"totalApplications"`
	AverageScore      int    `json:"averageScore"`
	ConversionRate    int    `json:"conversionRate"`
	TopPlatform       string `json:"topPlatform"`
}

// AnalyticsSnapshot is the rendered page. FromSummary is set when the
// numbers come from the backend's pre-aggregated summary rather than raw
// scores.
type AnalyticsSnapshot struct {
	Loading        bool               `json:"loading"`
	Range          int                `json:"range"`
	Stats          AnalyticsStats     `json:"stats"`
	JobsByPlatform []model.NamedCount `json:"jobsByPlatform"`
	JobsByScore    map[string]int     `json:"jobsByScore"`
	Funnel         metrics.Funnel     `json:"funnel"`
	FromSummary    bool               `json:"fromSummary"`
}

func emptyAnalytics(days int) AnalyticsSnapshot {
	return AnalyticsSnapshot{
		Loading:        true,
		Range:          days,
		Stats:          AnalyticsStats{TopPlatform: "N/A"},
		JobsByPlatform: []model.NamedCount{},
		JobsByScore:    metrics.EmptyHistogram(),
	}
}

// Analytics is the insights page over a selectable time window
type Analytics struct {
	deps Deps

	mu   sync.Mutex
	snap AnalyticsSnapshot
}

func NewAnalytics(deps Deps) *Analytics {
	return &Analytics{deps: deps, snap: emptyAnalytics(DefaultAnalyticsRange)}
}

// Load recomputes everything for a window of days. Failures are logged
// and leave the previous numbers in place.
func (v *Analytics) Load(ctx context.Context, days int) error {
	if !slices.Contains(AnalyticsRanges, days) {
		return fmt.Errorf("%w: unsupported range %d", ErrInvalid, days)
	}
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.snap.Range = days
	v.snap.Loading = true
	v.mu.Unlock()

	snap, err := v.compute(ctx, userID, days)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Loading = false
	if err != nil {
		log.Error().Err(err).Int("days", days).Msg("Failed to fetch analytics")
		return err
	}
	// A later Load for another range owns the snapshot now
	if v.snap.Range != days {
		return nil
	}
	v.snap = snap
	return nil
}

func (v *Analytics) compute(ctx context.Context, userID string, days int) (AnalyticsSnapshot, error) {
	var (
		scores []model.JobScore
		apps   []model.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scores, err = v.deps.API.GetUserScores(gctx, userID, "", 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = v.deps.API.GetUserApplications(gctx, userID, "", 0, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return AnalyticsSnapshot{}, err
	}

	cutoff := metrics.Since(v.deps.now(), days)
	scores = slices.DeleteFunc(scores, func(s model.JobScore) bool {
		return !metrics.DatedInWindow(s.ScoredAt, cutoff)
	})
	apps = slices.DeleteFunc(apps, func(a model.Application) bool {
		return !metrics.DatedInWindow(&a.CreatedAt, cutoff)
	})

	if len(scores) == 0 {
		if snap, ok := v.fromSummary(ctx, userID, days, apps); ok {
			return snap, nil
		}
	}

	platforms := make([]string, len(scores))
	values := make([]int, len(scores))
	for i, s := range scores {
		platforms[i] = s.Platform
		values[i] = s.SkillMatchScore
	}
	byPlatform := metrics.PlatformCounts(platforms)
	if byPlatform == nil {
		byPlatform = []model.NamedCount{}
	}

	return AnalyticsSnapshot{
		Range: days,
		Stats: AnalyticsStats{
			TotalJobs:         len(scores),
			TotalApplications: len(apps),
			AverageScore:      metrics.AverageScore(values),
			ConversionRate:    metrics.ConversionRate(len(apps), len(scores)),
			TopPlatform:       metrics.TopPlatform(byPlatform),
		},
		JobsByPlatform: byPlatform,
		JobsByScore:    metrics.Histogram(values),
		Funnel:         metrics.BuildFunnel(scores, apps),
	}, nil
}

// fromSummary builds the page from the backend aggregate. It reports false
// when the backend has nothing for the window.
func (v *Analytics) fromSummary(ctx context.Context, userID string, days int, apps []model.Application) (AnalyticsSnapshot, bool) {
	summary, err := v.deps.API.GetAnalytics(ctx, userID, days)
	if err != nil {
		log.Warn().Err(err).Msg("Analytics summary unavailable")
		return AnalyticsSnapshot{}, false
	}

	hist := metrics.EmptyHistogram()
	bucketed := 0
	for _, key := range metrics.BucketOrder {
		hist[key] = summary.JobsByScore[key]
		bucketed += summary.JobsByScore[key]
	}
	total := summary.TotalJobs
	if total == 0 {
		total = bucketed
	}
	if total == 0 && len(summary.JobsByPlatform) == 0 {
		return AnalyticsSnapshot{}, false
	}

	totalApps := len(apps)
	if totalApps == 0 {
		totalApps = summary.TotalApps
	}
	byPlatform := summary.JobsByPlatform
	if byPlatform == nil {
		byPlatform = []model.NamedCount{}
	}

	funnel := metrics.BuildFunnel(nil, apps)
	funnel.Scraped = total
	funnel.Matched = hist[metrics.BucketMid] + hist[metrics.BucketHigh]

	return AnalyticsSnapshot{
		Range: days,
		Stats: AnalyticsStats{
			TotalJobs:         total,
			TotalApplications: totalApps,
			AverageScore:      int(math.Round(metrics.HistogramAverage(hist))),
			ConversionRate:    metrics.ConversionRate(totalApps, total),
			TopPlatform:       metrics.TopPlatform(byPlatform),
		},
		JobsByPlatform: byPlatform,
		JobsByScore:    hist,
		Funnel:         funnel,
		FromSummary:    true,
	}, true
}

func (v *Analytics) Snapshot() AnalyticsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.snap
	snap.JobsByPlatform = slices.Clone(v.snap.JobsByPlatform)
	snap.JobsByScore = maps.Clone(v.snap.JobsByScore)
	return snap
}
