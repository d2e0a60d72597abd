// Package metrics computes the read-side numbers the dashboard and
// analytics pages show. Everything here is a pure function of its inputs.
package metrics

import (
	"math"
	"time"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// ── Score buckets ────────────────────────────────────

// Bucket keys, in display order
const (
	BucketLow  = "0-59"
	BucketMid  = "60-79"
	BucketHigh = "80-100"
)

var BucketOrder = []string{BucketLow, BucketMid, BucketHigh}

// bucketMidpoints reconstructs an average from bucket counts alone
var bucketMidpoints = map[string]float64{
	BucketLow:  30,
	BucketMid:  70,
	BucketHigh: 90,
}

// BucketOf places a score in exactly one bucket. Scores below 0 land in
// the low bucket and above 100 in the high one.
func BucketOf(score int) string {
	switch {
	case score < 60:
		return BucketLow
	case score < 80:
		return BucketMid
	default:
		return BucketHigh
	}
}

// Histogram counts scores per bucket; all three keys are always present
func Histogram(scores []int) map[string]int {
	h := EmptyHistogram()
	for _, s := range scores {
		h[BucketOf(s)]++
	}
	return h
}

func EmptyHistogram() map[string]int {
	return map[string]int{BucketLow: 0, BucketMid: 0, BucketHigh: 0}
}

// HistogramAverage estimates the mean score from bucket counts using the
// bucket midpoints. Unknown keys are ignored; an empty histogram gives 0.
func HistogramAverage(h map[string]int) float64 {
	var total, weighted float64
	for key, count := range h {
		mid, ok := bucketMidpoints[key]
		if !ok || count <= 0 {
			continue
		}
		total += float64(count)
		weighted += mid * float64(count)
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// ── Platforms ────────────────────────────────────────

// PlatformCounts counts items per platform in first-seen order. Empty
// platform names count as "Unknown".
func PlatformCounts(platforms []string) []model.NamedCount {
	index := make(map[string]int)
	var out []model.NamedCount
	for _, p := range platforms {
		if p == "" {
			p = "Unknown"
		}
		if i, ok := index[p]; ok {
			out[i].Count++
			continue
		}
		index[p] = len(out)
		out = append(out, model.NamedCount{Name: p, Count: 1})
	}
	return out
}

// TopPlatform is the platform with the highest count; the earliest entry
// wins a tie. Returns "N/A" for no data.
func TopPlatform(counts []model.NamedCount) string {
	best := -1
	for i, c := range counts {
		if best < 0 || c.Count > counts[best].Count {
			best = i
		}
	}
	if best < 0 {
		return "N/A"
	}
	return counts[best].Name
}

// ── Rates ────────────────────────────────────────────

// AverageScore is the rounded mean, 0 for no scores
func AverageScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return roundHalfUp(float64(sum) / float64(len(scores)))
}

// ConversionRate is applications per scraped job as a rounded percentage
func ConversionRate(applications, jobs int) int {
	if jobs == 0 {
		return 0
	}
	return roundHalfUp(float64(applications) / float64(jobs) * 100)
}

// Funnel is the scraped → matched → applied → callback progression
type Funnel struct {
	Scraped  int `json:"scraped"`
	Matched  int `json:"matched"`
	Applied  int `json:"applied"`
	Callback int `json:"callback"`
}

// MatchThreshold is the score at which a job counts as matched
const MatchThreshold = 60

func BuildFunnel(scores []model.JobScore, apps []model.Application) Funnel {
	f := Funnel{Scraped: len(scores)}
	for _, s := range scores {
		if s.SkillMatchScore >= MatchThreshold {
			f.Matched++
		}
	}
	for _, a := range apps {
		if a.Applied {
			f.Applied++
		}
		if a.Callback {
			f.Callback++
		}
	}
	return f
}

// ── Time windows ─────────────────────────────────────

// Since returns the cutoff days before now
func Since(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// InWindow reports whether t is at or after the cutoff. A nil timestamp is
// treated as "now", matching how undated rows render as fresh.
func InWindow(t *time.Time, cutoff time.Time) bool {
	if t == nil {
		return true
	}
	return !t.Before(cutoff)
}

// DatedInWindow is InWindow for reports that only count rows with a date.
// A nil or zero timestamp is outside every window.
func DatedInWindow(t *time.Time, cutoff time.Time) bool {
	if t == nil || t.IsZero() {
		return false
	}
	return !t.Before(cutoff)
}

// roundHalfUp matches JavaScript's Math.round for the values shown here
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
