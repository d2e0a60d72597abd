package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day
type Clock struct {
	Hour   int // 0-23
	Minute int
}

// ParseClock reads a 12-hour "h:mm AM|PM" string
func ParseClock(s string) (Clock, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid clock %q: want \"h:mm AM|PM\"", s)
	}

	hm := strings.SplitN(parts[0], ":", 2)
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute := 0
	if len(hm) == 2 {
		minute, err = strconv.Atoi(hm[1])
		if err != nil || minute < 0 || minute > 59 {
			return Clock{}, fmt.Errorf("invalid minute in %q", s)
		}
	}

	switch strings.ToUpper(parts[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return Clock{}, fmt.Errorf("invalid period in %q", s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// NextRun returns the next occurrence of c at or after now, in now's
// location, and the time remaining until it. A slot whose time has
// passed today runs tomorrow.
func NextRun(now time.Time, c Clock) (time.Time, time.Duration) {
	next := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, now.Location())
	if next.Before(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, c.Hour, c.Minute, 0, 0, now.Location())
	}
	return next, next.Sub(now)
}

// Countdown splits a duration into whole hours and leftover minutes
func Countdown(d time.Duration) (hours, minutes int) {
	if d < 0 {
		d = 0
	}
	hours = int(d / time.Hour)
	minutes = int((d % time.Hour) / time.Minute)
	return hours, minutes
}

// Slot phases for the schedule page
const (
	PhaseYours     = "your_slot"
	PhaseCompleted = "completed_today"
	PhaseUpcoming  = "upcoming_today"
)

// SlotPhase classifies a slot relative to now. Only the hour is compared,
// so a slot in the current hour still counts as upcoming.
func SlotPhase(now time.Time, c Clock, isUserSlot bool) string {
	switch {
	case isUserSlot:
		return PhaseYours
	case c.Hour < now.Hour():
		return PhaseCompleted
	default:
		return PhaseUpcoming
	}
}
