package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// ── Users ────────────────────────────────────────────

func (c *Client) GetUsers(ctx context.Context) ([]model.UserProfile, error) {
	var users []model.UserProfile
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserResume returns the resume document as raw JSON
func (c *Client) GetUserResume(ctx context.Context, userID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, userPath(userID, "/resume"), nil, &raw)
	return raw, err
}

func (c *Client) UpdateUserResume(ctx context.Context, userID string, resume json.RawMessage) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/resume"), resume, nil)
}

// ── Jobs ─────────────────────────────────────────────

// JobFilter narrows GET /api/jobs. Zero values are omitted.
type JobFilter struct {
	Platform string
	Hours    int
}

func (c *Client) GetJobs(ctx context.Context, f JobFilter) ([]model.Job, error) {
	params := url.Values{}
	if f.Platform != "" {
		params.Set("platform", f.Platform)
	}
	if f.Hours > 0 {
		params.Set("hours", strconv.Itoa(f.Hours))
	}

	var jobs []model.Job
	err := c.do(ctx, http.MethodGet, withQuery("/api/jobs", params), nil, &jobs)
	return jobs, err
}

func (c *Client) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) GetUnscoredJobs(ctx context.Context, userID string) ([]model.Job, error) {
	var jobs []model.Job
	err := c.do(ctx, http.MethodGet, userPath(userID, "/jobs/unscored"), nil, &jobs)
	return jobs, err
}

// ── Scores ───────────────────────────────────────────

// GetUserScores returns one page of scored jobs; recommendation is optional
func (c *Client) GetUserScores(ctx context.Context, userID, recommendation string, limit, offset int) ([]model.JobScore, error) {
	params := pageParams(limit, offset)
	if recommendation != "" {
		params.Set("recommendation", recommendation)
	}

	var scores []model.JobScore
	err := c.do(ctx, http.MethodGet, withQuery(userPath(userID, "/scores"), params), nil, &scores)
	return scores, err
}

func (c *Client) GetJobScore(ctx context.Context, userID, jobID string) (*model.JobScore, error) {
	var score model.JobScore
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/jobs/"+url.PathEscape(jobID)+"/score"), nil, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// ── Applications ─────────────────────────────────────

// GetUserApplications returns one page of applications; status is optional
func (c *Client) GetUserApplications(ctx context.Context, userID, status string, limit, offset int) ([]model.Application, error) {
	params := pageParams(limit, offset)
	if status != "" {
		params.Set("status", status)
	}

	var apps []model.Application
	err := c.do(ctx, http.MethodGet, withQuery(userPath(userID, "/applications"), params), nil, &apps)
	return apps, err
}

func (c *Client) CreateApplication(ctx context.Context, userID, jobID string, autoApply bool) (*model.Application, error) {
	var app model.Application
	err := c.do(ctx, http.MethodPost, userPath(userID, "/applications"), map[string]any{
		"job_id":     jobID,
		"auto_apply": autoApply,
	}, &app)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) MarkAsApplied(ctx context.Context, applicationID string) (*model.Application, error) {
	var app model.Application
	if err := c.do(ctx, http.MethodPut, applicationPath(applicationID, "/apply"), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) UpdateApplication(ctx context.Context, applicationID string, patch model.ApplicationPatch) (*model.Application, error) {
	var app model.Application
	if err := c.do(ctx, http.MethodPatch, applicationPath(applicationID, ""), patch, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) MarkCallback(ctx context.Context, applicationID, notes string) (*model.Application, error) {
	var app model.Application
	err := c.do(ctx, http.MethodPut, applicationPath(applicationID, "/callback"), map[string]string{
		"notes": notes,
	}, &app)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) GetPendingAutoApply(ctx context.Context, userID string) ([]model.Application, error) {
	var apps []model.Application
	err := c.do(ctx, http.MethodGet, userPath(userID, "/applications/auto-apply"), nil, &apps)
	return apps, err
}

func (c *Client) GetUserStats(ctx context.Context, userID string) (*model.ApplicationStats, error) {
	var stats model.ApplicationStats
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ── Preferences ──────────────────────────────────────

// GetUserPreferences returns nil without error when the backend has no
// preferences stored for the user (JSON null body)
func (c *Client) GetUserPreferences(ctx context.Context, userID string) (*model.Preferences, error) {
	var prefs *model.Preferences
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/preferences"), nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (c *Client) UpdateUserPreferences(ctx context.Context, userID string, prefs model.Preferences) (*model.Preferences, error) {
	var saved *model.Preferences
	if err := c.do(ctx, http.MethodPut, userPath(userID, "/preferences"), prefs, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// ── Portals ──────────────────────────────────────────

func (c *Client) GetPortals(ctx context.Context) ([]model.Portal, error) {
	var portals []model.Portal
	err := c.do(ctx, http.MethodGet, "/api/portals", nil, &portals)
	return portals, err
}

func (c *Client) GetUserPortals(ctx context.Context, userID string) ([]model.UserPortalSetting, error) {
	var settings []model.UserPortalSetting
	err := c.do(ctx, http.MethodGet, userPath(userID, "/portals"), nil, &settings)
	return settings, err
}

func (c *Client) GetUserPortal(ctx context.Context, userID, portal string) (*model.UserPortalSetting, error) {
	var setting model.UserPortalSetting
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/portals/"+url.PathEscape(portal)), nil, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateUserPortal upserts the user's setting for one portal
func (c *Client) UpdateUserPortal(ctx context.Context, userID, portal string, update model.PortalUpdate) (*model.UserPortalSetting, error) {
	var setting model.UserPortalSetting
	if err := c.do(ctx, http.MethodPut, userPath(userID, "/portals/"+url.PathEscape(portal)), update, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// TestProxy checks a scraping proxy key through the backend
func (c *Client) TestProxy(ctx context.Context, apiKey string) (*model.ProxyTestResult, error) {
	var result model.ProxyTestResult
	err := c.do(ctx, http.MethodPost, "/api/proxy/test", map[string]string{"api_key": apiKey}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Dashboard & analytics ────────────────────────────

func (c *Client) GetDashboardStats(ctx context.Context, userID string) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/dashboard/stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetDashboardTopJobs(ctx context.Context, userID string) ([]model.TopJob, error) {
	var jobs []model.TopJob
	err := c.do(ctx, http.MethodGet, userPath(userID, "/dashboard/top-jobs"), nil, &jobs)
	return jobs, err
}

func (c *Client) GetAnalytics(ctx context.Context, userID string, days int) (*model.AnalyticsSummary, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var summary model.AnalyticsSummary
	if err := c.do(ctx, http.MethodGet, withQuery(userPath(userID, "/analytics"), params), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ── Path helpers ─────────────────────────────────────

func userPath(userID, suffix string) string {
	return "/api/users/" + url.PathEscape(userID) + suffix
}

func applicationPath(applicationID, suffix string) string {
	return "/api/applications/" + url.PathEscape(applicationID) + suffix
}

// pageParams omits limit and offset when limit is not positive, which asks
// the backend for everything
func pageParams(limit, offset int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
	}
	return params
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
