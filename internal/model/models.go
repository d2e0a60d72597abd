package model

import (
	"encoding/json"
	"time"
)

// ── Users ──────────────────────────────────────────────

// Slot identifies one of the four fixed daily scraping windows
type Slot string

const (
	Slot1 Slot = "slot_1"
	Slot2 Slot = "slot_2"
	Slot3 Slot = "slot_3"
	Slot4 Slot = "slot_4"
)

// Account statuses
const (
	UserStatusActive   = "active"
	UserStatusPaused   = "paused"
	UserStatusInactive = "inactive"
)

// UserProfile is the authenticated user as returned by the backend
type UserProfile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	AssignedSlot Slot       `json:"assigned_slot"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// ── Jobs & scores ──────────────────────────────────────

// Recommendation tags assigned by the backend's scorer
const (
	RecommendAutoApply   = "auto_apply"
	RecommendHumanReview = "human_review"
)

// Job is a raw scraped listing
type Job struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	JobLink     string    `json:"job_link"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// JobScore is a scored job for a specific user
type JobScore struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	JobID            string     `json:"job_id"`
	Platform         string     `json:"platform"`
	JobTitle         string     `json:"job_title"`
	Company          string     `json:"company"`
	Location         string     `json:"location"`
	JobDescription   string     `json:"job_description"`
	SkillMatchScore  int        `json:"skill_match_score"`
	RoleStretchScore int        `json:"role_stretch_score"`
	RiskRewardScore  int        `json:"risk_reward_score"`
	AIRecommendation string     `json:"ai_recommendation"`
	Reason           string     `json:"reason"`
	MissingSkills    []string   `json:"missing_skills"`
	JobLink          string     `json:"job_link"`
	ScoredAt         *time.Time `json:"scored_at,omitempty"`
}

// TopJob is a compact row from the dashboard top-jobs endpoint
type TopJob struct {
	ID           string `json:"id"`
	JobID        string `json:"job_id"`
	JobTitle     string `json:"job_title"`
	Company      string `json:"company"`
	OverallScore int    `json:"overall_score"`
	Platform     string `json:"platform"`
}

// ── Applications ───────────────────────────────────────

// Application is an application row as stored by the backend. The
// displayed status is derived from the boolean columns, see package funnel.
type Application struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	JobID          string     `json:"job_id"`
	Applied        bool       `json:"applied"`
	Callback       bool       `json:"callback"`
	InterviewStage *string    `json:"interview_stage"`
	OfferReceived  bool       `json:"offer_received"`
	Rejected       bool       `json:"rejected"`
	Notes          string     `json:"notes"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
	CallbackAt     *time.Time `json:"callback_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	// Joined job data
	JobTitle        string `json:"job_title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	SkillMatchScore int    `json:"skill_match_score"`
	JobLink         string `json:"job_link"`
	Platform        string `json:"platform"`
}

// ApplicationPatch is the partial update sent to PATCH /api/applications/{id}.
// InterviewStage is always serialized so that null clears it server-side.
type ApplicationPatch struct {
	Notes          *string `json:"notes,omitempty"`
	Applied        bool    `json:"applied"`
	Callback       bool    `json:"callback"`
	InterviewStage *string `json:"interview_stage"`
	OfferReceived  bool    `json:"offer_received"`
	Rejected       bool    `json:"rejected"`
}

// ApplicationStats holds per-status counts for the tracker cards
type ApplicationStats struct {
	InterestedCount int `json:"interested_count"`
	AppliedCount    int `json:"applied_count"`
	CallbackCount   int `json:"callback_count"`
	InterviewCount  int `json:"interview_count"`
	OfferCount      int `json:"offer_count"`
	RejectedCount   int `json:"rejected_count"`
}

// ── Portals ────────────────────────────────────────────

// Portal is an external job source the backend can scrape
type Portal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

// UserPortalSetting is the per-user configuration of one portal
type UserPortalSetting struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	PortalID     string         `json:"portal_id"`
	IsEnabled    bool           `json:"is_enabled"`
	Priority     int            `json:"priority"`
	PortalConfig map[string]any `json:"portal_config,omitempty"`
}

// PortalUpdate is the body of PUT /api/users/{id}/portals/{portal}
type PortalUpdate struct {
	IsEnabled    *bool          `json:"is_enabled,omitempty"`
	Priority     *int           `json:"priority,omitempty"`
	PortalConfig map[string]any `json:"portal_config,omitempty"`
}

// ── Preferences ────────────────────────────────────────

// Preferences drives what the backend scrapes and how it scores
type Preferences struct {
	UserID             string          `json:"user_id,omitempty"`
	TargetRoles        []string        `json:"target_roles"`
	MinSalary          int             `json:"min_salary_inr"`
	MaxSalary          *int            `json:"max_salary_inr"`
	PreferredLocations []string        `json:"preferred_locations"`
	RemoteOnly         bool            `json:"remote_only"`
	InternshipsOnly    bool            `json:"internships_only"`
	MinExperience      int             `json:"min_experience_years"`
	MaxExperience      int             `json:"max_experience_years"`
	ResumeJSON         json.RawMessage `json:"resume_json,omitempty"`
}

// ── Dashboard & analytics ──────────────────────────────

// DashboardStats is computed by the backend and displayed as-is
type DashboardStats struct {
	JobsScrapedToday int `json:"jobsScrapedToday"`
	TopMatches       int `json:"topMatches"`
	PendingReview    int `json:"pendingReview"`
	AppliedThisWeek  int `json:"appliedThisWeek"`
}

// NamedCount is one entry of an ordered count series
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AnalyticsSummary is the pre-aggregated analytics payload. Either field may
// be empty when the backend has not computed it.
type AnalyticsSummary struct {
	JobsByPlatform []NamedCount   `json:"jobs_by_platform"`
	JobsByScore    map[string]int `json:"jobs_by_score"`
	TotalJobs      int            `json:"total_jobs"`
	TotalApps      int            `json:"total_applications"`
}

// ProxyTestResult is returned by the proxy key check
type ProxyTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
