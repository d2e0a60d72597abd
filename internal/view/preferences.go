package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/present"
)

// Form defaults for users with no stored preferences
const (
	DefaultMinSalary     = 1200000
	DefaultMaxExperience = 15
)

// ErrInvalidResume is returned when the resume text is not valid JSON
var ErrInvalidResume = errors.New("invalid resume JSON")

const invalidJSONMessage = "Invalid JSON format"

func defaultPreferences() model.Preferences {
	return model.Preferences{
		TargetRoles:        []string{},
		MinSalary:          DefaultMinSalary,
		PreferredLocations: []string{},
		MaxExperience:      DefaultMaxExperience,
		ResumeJSON:         json.RawMessage(`{}`),
	}
}

// Preferences is the preferences editor. Edits stay local until Save.
type Preferences struct {
	deps Deps

	mu         sync.Mutex
	prefs      model.Preferences
	resumeText string
	jsonError  string
	loading    bool
	saving     bool
}

func NewPreferences(deps Deps) *Preferences {
	return &Preferences{
		deps:       deps,
		prefs:      defaultPreferences(),
		resumeText: "{}",
		loading:    true,
	}
}

// Load fetches stored preferences. A user with none keeps the defaults.
func (v *Preferences) Load(ctx context.Context) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	stored, err := v.deps.API.GetUserPreferences(ctx, userID)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false

	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch preferences")
		v.deps.toast("Failed to load preferences", notify.Error)
		return err
	}
	if stored == nil {
		return nil
	}

	v.prefs = withDefaults(*stored)
	v.resumeText = indentJSON(v.prefs.ResumeJSON)
	v.jsonError = ""
	return nil
}

// withDefaults fills the zero values the form cannot show
func withDefaults(p model.Preferences) model.Preferences {
	if p.TargetRoles == nil {
		p.TargetRoles = []string{}
	}
	if p.PreferredLocations == nil {
		p.PreferredLocations = []string{}
	}
	if p.MinSalary == 0 {
		p.MinSalary = DefaultMinSalary
	}
	if p.MaxExperience == 0 {
		p.MaxExperience = DefaultMaxExperience
	}
	if len(p.ResumeJSON) == 0 || string(p.ResumeJSON) == "null" {
		p.ResumeJSON = json.RawMessage(`{}`)
	}
	return p
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// PreferencesEdit carries the scalar form fields; nil fields are left as is
type PreferencesEdit struct {
	MinSalary       *int  `json:"min_salary_inr"`
	MaxSalary       *int  `json:"max_salary_inr"`
	ClearMaxSalary  bool  `json:"clear_max_salary"`
	RemoteOnly      *bool `json:"remote_only"`
	InternshipsOnly *bool `json:"internships_only"`
	MinExperience   *int  `json:"min_experience_years"`
	MaxExperience   *int  `json:"max_experience_years"`
}

// PreferencesChange is one form submission. It is applied whole or not at all.
type PreferencesChange struct {
	PreferencesEdit
	AddRole        string  `json:"add_role"`
	RemoveRole     string  `json:"remove_role"`
	ToggleLocation string  `json:"toggle_location"`
	ResumeText     *string `json:"resume_text"`
}

var errStillLoading = fmt.Errorf("%w: preferences are still loading", ErrInvalid)

func edited(p model.Preferences, e PreferencesEdit) (model.Preferences, error) {
	if e.MinSalary != nil {
		p.MinSalary = *e.MinSalary
	}
	if e.ClearMaxSalary {
		p.MaxSalary = nil
	} else if e.MaxSalary != nil {
		ceiling := *e.MaxSalary
		p.MaxSalary = &ceiling
	}
	if e.RemoteOnly != nil {
		p.RemoteOnly = *e.RemoteOnly
	}
	if e.InternshipsOnly != nil {
		p.InternshipsOnly = *e.InternshipsOnly
	}
	if e.MinExperience != nil {
		p.MinExperience = *e.MinExperience
	}
	if e.MaxExperience != nil {
		p.MaxExperience = *e.MaxExperience
	}

	if p.MinSalary < 0 || p.MinExperience < 0 {
		return p, fmt.Errorf("%w: negative values are not allowed", ErrInvalid)
	}
	if p.MaxSalary != nil && *p.MaxSalary < p.MinSalary {
		return p, fmt.Errorf("%w: maximum salary below minimum", ErrInvalid)
	}
	if p.MaxExperience < p.MinExperience {
		return p, fmt.Errorf("%w: maximum experience below minimum", ErrInvalid)
	}
	return p, nil
}

func withRole(roles []string, role string) ([]string, bool) {
	role = strings.TrimSpace(role)
	if role == "" || slices.Contains(roles, role) {
		return roles, false
	}
	return append(slices.Clone(roles), role), true
}

func without(values []string, value string) []string {
	return slices.DeleteFunc(slices.Clone(values), func(v string) bool {
		return v == value
	})
}

// toggled selects or deselects a location. Selection order is priority
// order, so a new location goes last.
func toggled(locations []string, location string) []string {
	if slices.Contains(locations, location) {
		return without(locations, location)
	}
	return append(slices.Clone(locations), location)
}

func (v *Preferences) checkLocation(location string) error {
	if locs := v.deps.Catalog.Locations; len(locs) > 0 && !slices.Contains(locs, location) {
		return fmt.Errorf("%w: unknown location %q", ErrInvalid, location)
	}
	return nil
}

func (v *Preferences) Edit(e PreferencesEdit) error {
	return v.Change(PreferencesChange{PreferencesEdit: e})
}

// Change validates the whole submission before touching the form. The form
// cannot change until the stored preferences have loaded.
func (v *Preferences) Change(c PreferencesChange) error {
	if c.ToggleLocation != "" {
		if err := v.checkLocation(c.ToggleLocation); err != nil {
			return err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loading {
		return errStillLoading
	}

	next, err := edited(v.prefs, c.PreferencesEdit)
	if err != nil {
		return err
	}
	if c.AddRole != "" {
		next.TargetRoles, _ = withRole(next.TargetRoles, c.AddRole)
	}
	if c.RemoveRole != "" {
		next.TargetRoles = without(next.TargetRoles, c.RemoveRole)
	}
	if c.ToggleLocation != "" {
		next.PreferredLocations = toggled(next.PreferredLocations, c.ToggleLocation)
	}

	v.prefs = next
	if c.ResumeText != nil {
		v.resumeText = *c.ResumeText
		v.jsonError = ""
	}
	return nil
}

// AddRole appends a trimmed role; blanks and duplicates are ignored, as is
// everything before the form has loaded. It reports whether the role was added.
func (v *Preferences) AddRole(role string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loading {
		return false
	}
	var added bool
	v.prefs.TargetRoles, added = withRole(v.prefs.TargetRoles, role)
	return added
}

func (v *Preferences) RemoveRole(role string) error {
	return v.Change(PreferencesChange{RemoveRole: role})
}

func (v *Preferences) ToggleLocation(location string) error {
	return v.Change(PreferencesChange{ToggleLocation: location})
}

// SetResumeText replaces the editor contents and clears any shown error
func (v *Preferences) SetResumeText(text string) error {
	return v.Change(PreferencesChange{ResumeText: &text})
}

// ValidateResume parses the editor text. Failure is shown inline only.
func (v *Preferences) ValidateResume() error {
	v.mu.Lock()
	if !validJSON(v.resumeText) {
		v.jsonError = invalidJSONMessage
		v.mu.Unlock()
		return ErrInvalidResume
	}
	v.prefs.ResumeJSON = json.RawMessage(v.resumeText)
	v.jsonError = ""
	v.mu.Unlock()

	v.deps.toast("Resume JSON validated ✓", notify.Success)
	return nil
}

// Save sends the form. Malformed resume JSON is refused locally without
// calling the backend, and so is a form whose stored values have not loaded.
func (v *Preferences) Save(ctx context.Context) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return errStillLoading
	}
	if !validJSON(v.resumeText) {
		v.jsonError = invalidJSONMessage
		v.mu.Unlock()
		v.deps.toast("Invalid JSON in resume - please check formatting", notify.Error)
		return ErrInvalidResume
	}
	body := v.prefs
	body.UserID = ""
	body.TargetRoles = slices.Clone(v.prefs.TargetRoles)
	body.PreferredLocations = slices.Clone(v.prefs.PreferredLocations)
	body.ResumeJSON = json.RawMessage(v.resumeText)
	v.saving = true
	v.mu.Unlock()

	_, err = v.deps.API.UpdateUserPreferences(ctx, userID, body)

	v.mu.Lock()
	v.saving = false
	if err == nil {
		v.prefs.ResumeJSON = body.ResumeJSON
	}
	v.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Failed to save preferences")
		v.deps.toast("Failed to save preferences", notify.Error)
		return err
	}
	v.deps.toast("Preferences saved successfully!", notify.Success)
	return nil
}

// LocationOption is one picklist entry. Priority is the 1-based selection
// position, 0 when unselected.
type LocationOption struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Priority int    `json:"priority"`
}

type PreferencesSnapshot struct {
	Loading     bool              `json:"loading"`
	Saving      bool              `json:"saving"`
	Preferences model.Preferences `json:"preferences"`
	SalaryRange string            `json:"salaryRange"`
	ResumeText  string            `json:"resumeText"`
	JSONError   string            `json:"jsonError,omitempty"`
	Locations   []LocationOption  `json:"locations"`
	Slot        present.SlotInfo  `json:"slot"`
	Status      string            `json:"status"`
}

func (v *Preferences) Snapshot() PreferencesSnapshot {
	v.mu.Lock()
	prefs := v.prefs
	prefs.TargetRoles = slices.Clone(v.prefs.TargetRoles)
	prefs.PreferredLocations = slices.Clone(v.prefs.PreferredLocations)
	snap := PreferencesSnapshot{
		Loading:     v.loading,
		Saving:      v.saving,
		Preferences: prefs,
		ResumeText:  v.resumeText,
		JSONError:   v.jsonError,
	}
	v.mu.Unlock()

	maxSalary := 0
	if prefs.MaxSalary != nil {
		maxSalary = *prefs.MaxSalary
	}
	snap.SalaryRange = present.SalaryRange(prefs.MinSalary, maxSalary)

	names := v.deps.Catalog.Locations
	for _, l := range prefs.PreferredLocations {
		if !slices.Contains(names, l) {
			names = append(slices.Clone(names), l)
		}
	}
	snap.Locations = make([]LocationOption, 0, len(names))
	for _, name := range names {
		idx := slices.Index(prefs.PreferredLocations, name)
		snap.Locations = append(snap.Locations, LocationOption{
			Name:     name,
			Selected: idx >= 0,
			Priority: idx + 1,
		})
	}

	if user, err := v.deps.user(); err == nil {
		snap.Slot = present.SlotFor(user.AssignedSlot)
		snap.Status = user.Status
	}
	return snap
}
