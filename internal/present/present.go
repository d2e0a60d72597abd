// Package present holds stateless display helpers: badges, labels and
// the fixed catalogs the views render from.
package present

import (
	"fmt"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// ── Slots ────────────────────────────────────────────

type SlotInfo struct {
	Key   model.Slot `json:"key"`
	Label string     `json:"label"`
	Time  string     `json:"time"`
}

// Slots is the fixed slot catalog in display order
var Slots = []SlotInfo{
	{Key: model.Slot1, Label: "Early Morning", Time: "6:00 AM"},
	{Key: model.Slot2, Label: "Morning", Time: "10:00 AM"},
	{Key: model.Slot3, Label: "Afternoon", Time: "2:00 PM"},
	{Key: model.Slot4, Label: "Evening", Time: "6:00 PM"},
}

// SlotFor looks up a slot; unknown keys fall back to the first slot
func SlotFor(key model.Slot) SlotInfo {
	for _, s := range Slots {
		if s.Key == key {
			return s
		}
	}
	return Slots[0]
}

// ── Badges ───────────────────────────────────────────

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
	VariantInfo    Variant = "info"
	VariantPurple  Variant = "purple"
)

// ScoreVariant colours a match score
func ScoreVariant(score int) Variant {
	switch {
	case score >= 80:
		return VariantSuccess
	case score >= 60:
		return VariantWarning
	default:
		return VariantDanger
	}
}

// RecommendationLabel maps the scorer's tag to a button label
func RecommendationLabel(rec string) string {
	switch rec {
	case model.RecommendAutoApply:
		return "Apply"
	case model.RecommendHumanReview:
		return "Review"
	default:
		return "Skip"
	}
}

func RecommendationVariant(rec string) Variant {
	switch rec {
	case model.RecommendAutoApply:
		return VariantSuccess
	case model.RecommendHumanReview:
		return VariantWarning
	default:
		return VariantDefault
	}
}

// ── Money ────────────────────────────────────────────

// LPA formats rupees as lakhs, e.g. 1200000 -> "₹12.0L"
func LPA(amount int) string {
	return fmt.Sprintf("₹%.1fL", float64(amount)/100000)
}

// SalaryRange formats an optional min/max pair
func SalaryRange(min, max int) string {
	switch {
	case min == 0 && max == 0:
		return "Not specified"
	case min != 0 && max != 0:
		return LPA(min) + " - " + LPA(max)
	case min != 0:
		return LPA(min) + "+"
	default:
		return "Up to " + LPA(max)
	}
}
