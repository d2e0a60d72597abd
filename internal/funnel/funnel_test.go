package funnel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

func TestRoundTrip(t *testing.T) {
	for _, s := range Statuses {
		t.Run(string(s), func(t *testing.T) {
			assert.Equal(t, s, Derive(Forward(s)))
		})
	}
}

func TestForward(t *testing.T) {
	tests := []struct {
		status   Status
		applied  bool
		callback bool
		stage    string
		offer    bool
		rejected bool
	}{
		{Interested, false, false, "", false, false},
		{Applied, true, false, "", false, false},
		{Callback, true, true, "", false, false},
		{Interview, true, true, StageInitial, false, false},
		{Offer, true, true, StageOffered, true, false},
		{Rejected, false, false, "", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := Forward(tt.status)
			assert.Equal(t, tt.applied, f.Applied)
			assert.Equal(t, tt.callback, f.Callback)
			assert.Equal(t, tt.offer, f.OfferReceived)
			assert.Equal(t, tt.rejected, f.Rejected)
			if tt.stage == "" {
				assert.Nil(t, f.InterviewStage)
			} else {
				require.NotNil(t, f.InterviewStage)
				assert.Equal(t, tt.stage, *f.InterviewStage)
			}
		})
	}
}

func TestDerive_Precedence(t *testing.T) {
	initial := StageInitial
	empty := ""

	tests := []struct {
		name  string
		flags Flags
		want  Status
	}{
		{"offer beats rejected", Flags{OfferReceived: true, Rejected: true}, Offer},
		{"rejected beats interview", Flags{Rejected: true, InterviewStage: &initial, Callback: true, Applied: true}, Rejected},
		{"interview beats callback", Flags{InterviewStage: &initial, Callback: true}, Interview},
		{"empty stage is not an interview", Flags{InterviewStage: &empty, Callback: true}, Callback},
		{"callback without applied", Flags{Callback: true}, Callback},
		{"applied only", Flags{Applied: true}, Applied},
		{"nothing set", Flags{}, Interested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.flags))
		})
	}
}

func TestDerive_IsPure(t *testing.T) {
	stageA, stageB := "Initial", "Initial"
	a := model.Application{ID: "a", Callback: true, InterviewStage: &stageA}
	b := model.Application{ID: "b", Callback: true, InterviewStage: &stageB, Notes: "different notes"}
	assert.Equal(t, StatusOf(a), StatusOf(b))
}

func TestPatch_SerializesNullStage(t *testing.T) {
	body, err := json.Marshal(Patch(Applied, "sent via referral"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Contains(t, decoded, "interview_stage")
	assert.Nil(t, decoded["interview_stage"])
	assert.Equal(t, "sent via referral", decoded["notes"])
	assert.Equal(t, true, decoded["applied"])
	assert.Equal(t, false, decoded["callback"])
}

func TestApply(t *testing.T) {
	app := model.Application{ID: "a", Rejected: true, Notes: "keep"}
	moved := Apply(app, Offer)

	assert.Equal(t, Offer, StatusOf(moved))
	assert.False(t, moved.Rejected)
	assert.Equal(t, "keep", moved.Notes)
	assert.True(t, app.Rejected, "input is not mutated")
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Callback))
	assert.False(t, Valid("withdrawn"))
}
