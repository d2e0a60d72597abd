// Package funnel maps the tracker's six display statuses onto the backend's
// boolean application columns and back.
//
// The backend stores applied, callback, interview_stage, offer_received and
// rejected independently, so combinations such as offer_received together
// with rejected are representable. Derive resolves them by precedence and
// does not try to repair them.
package funnel

import "github.com/yourusername/jobhunter-dashboard/internal/model"

type Status string

const (
	Interested Status = "interested"
	Applied    Status = "applied"
	Callback   Status = "callback"
	Interview  Status = "interview"
	Offer      Status = "offer"
	Rejected   Status = "rejected"
)

// Statuses in funnel display order
var Statuses = []Status{Interested, Applied, Callback, Interview, Offer, Rejected}

// interview_stage labels written for the interview and offer statuses
const (
	StageInitial = "Initial"
	StageOffered = "Offered"
)

// Valid reports whether s is one of the six statuses
func Valid(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Label is the display name of s
func Label(s Status) string {
	switch s {
	case Interested:
		return "Interested"
	case Applied:
		return "Applied"
	case Callback:
		return "Callback"
	case Interview:
		return "Interview"
	case Offer:
		return "Offer"
	case Rejected:
		return "Rejected"
	}
	return string(s)
}

// Flags is the status-bearing subset of an application row
type Flags struct {
	Applied        bool
	Callback       bool
	InterviewStage *string
	OfferReceived  bool
	Rejected       bool
}

// FlagsOf extracts the status columns of app
func FlagsOf(app model.Application) Flags {
	return Flags{
		Applied:        app.Applied,
		Callback:       app.Callback,
		InterviewStage: app.InterviewStage,
		OfferReceived:  app.OfferReceived,
		Rejected:       app.Rejected,
	}
}

// Forward computes the columns to store for status s
func Forward(s Status) Flags {
	f := Flags{
		Applied:       s == Applied || s == Callback || s == Interview || s == Offer,
		Callback:      s == Callback || s == Interview || s == Offer,
		OfferReceived: s == Offer,
		Rejected:      s == Rejected,
	}
	switch s {
	case Interview:
		f.InterviewStage = stage(StageInitial)
	case Offer:
		f.InterviewStage = stage(StageOffered)
	}
	return f
}

// Derive computes the displayed status: first match wins in the order
// offer, rejected, interview, callback, applied, interested
func Derive(f Flags) Status {
	switch {
	case f.OfferReceived:
		return Offer
	case f.Rejected:
		return Rejected
	case f.InterviewStage != nil && *f.InterviewStage != "":
		return Interview
	case f.Callback:
		return Callback
	case f.Applied:
		return Applied
	default:
		return Interested
	}
}

// StatusOf derives the displayed status of an application row
func StatusOf(app model.Application) Status {
	return Derive(FlagsOf(app))
}

// Patch builds the PATCH body that moves an application to s with notes
func Patch(s Status, notes string) model.ApplicationPatch {
	f := Forward(s)
	return model.ApplicationPatch{
		Notes:          &notes,
		Applied:        f.Applied,
		Callback:       f.Callback,
		InterviewStage: f.InterviewStage,
		OfferReceived:  f.OfferReceived,
		Rejected:       f.Rejected,
	}
}

// Apply writes the status columns of s onto a local copy of app
func Apply(app model.Application, s Status) model.Application {
	f := Forward(s)
	app.Applied = f.Applied
	app.Callback = f.Callback
	app.InterviewStage = f.InterviewStage
	app.OfferReceived = f.OfferReceived
	app.Rejected = f.Rejected
	return app
}

func stage(label string) *string {
	return &label
}
