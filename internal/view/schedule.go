package view

import (
	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/metrics"
	"github.com/yourusername/jobhunter-dashboard/internal/present"
)

// Schedule shows the user's scraping slot and how the day's slots stand.
// It has no backend state.
type Schedule struct {
	deps Deps
}

func NewSchedule(deps Deps) *Schedule {
	return &Schedule{deps: deps}
}

type SlotRow struct {
	present.SlotInfo
	Phase string `json:"phase"`
}

type ScheduleSnapshot struct {
	Slot      present.SlotInfo `json:"slot"`
	Countdown Countdown        `json:"countdown"`
	Slots     []SlotRow        `json:"slots"`
}

// Snapshot is computed from the wall clock on every call
func (v *Schedule) Snapshot() (ScheduleSnapshot, error) {
	user, err := v.deps.user()
	if err != nil {
		return ScheduleSnapshot{}, err
	}

	now := v.deps.now()
	mine := present.SlotFor(user.AssignedSlot)
	snap := ScheduleSnapshot{
		Slot:      mine,
		Countdown: countdownTo(now, mine),
		Slots:     make([]SlotRow, 0, len(present.Slots)),
	}

	for _, s := range present.Slots {
		clock, err := metrics.ParseClock(s.Time)
		if err != nil {
			log.Warn().Err(err).Str("slot", string(s.Key)).Msg("Unparseable slot time")
			continue
		}
		snap.Slots = append(snap.Slots, SlotRow{
			SlotInfo: s,
			Phase:    metrics.SlotPhase(now, clock, s.Key == mine.Key),
		})
	}
	return snap, nil
}
