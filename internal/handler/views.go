package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/gateway"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

// ViewHandler serves the views mounted for the signed-in user. Every route
// answers with the page's snapshot after the action, so a client renders
// straight from the response.
type ViewHandler struct {
	mounter *view.Mounter
}

func NewViewHandler(mounter *view.Mounter) *ViewHandler {
	return &ViewHandler{mounter: mounter}
}

// views returns the mounted set, answering 401 when there is none
func (h *ViewHandler) views(c *gin.Context) (*view.Set, bool) {
	set := h.mounter.Current()
	if set == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return nil, false
	}
	return set, true
}

// ensure performs the page's first fetch. A failed fetch still renders:
// the page shows its own error state and the user got a toast.
func (h *ViewHandler) ensure(c *gin.Context, set *view.Set, page view.Page) bool {
	err := set.Ensure(c.Request.Context(), page)
	if errors.Is(err, view.ErrSignedOut) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return false
	}
	return true
}

// fail maps a view error onto a status code and {error} body
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, view.ErrSignedOut):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
	case errors.Is(err, view.ErrInvalid),
		errors.Is(err, view.ErrInvalidResume),
		errors.Is(err, view.ErrNoProxyKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Warn().Err(err).Int("backend_status", gateway.StatusOf(err)).Str("path", c.FullPath()).Msg("View action failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// ── Dashboard ────────────────────────────────────────

// Dashboard handles GET /views/dashboard
func (h *ViewHandler) Dashboard(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PageDashboard) {
		return
	}
	c.JSON(http.StatusOK, set.Dashboard.Snapshot())
}

// ── Analytics ────────────────────────────────────────

// Analytics handles GET /views/analytics?range=7|30|90. Without a range the
// page loads once with the default window.
func (h *ViewHandler) Analytics(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	raw := c.Query("range")
	if raw == "" {
		if h.ensure(c, set, view.PageAnalytics) {
			c.JSON(http.StatusOK, set.Analytics.Snapshot())
		}
		return
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid range"})
		return
	}
	if err := set.Analytics.Load(c.Request.Context(), days); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Analytics.Snapshot())
}

// ── Schedule ─────────────────────────────────────────

// Schedule handles GET /views/schedule
func (h *ViewHandler) Schedule(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	snap, err := set.Schedule.Snapshot()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ── Toasts ───────────────────────────────────────────

type ToastHandler struct {
	center *notify.Center
}

func NewToastHandler(center *notify.Center) *ToastHandler {
	return &ToastHandler{center: center}
}

// Drain handles GET /toasts, returning and clearing pending toasts
func (h *ToastHandler) Drain(c *gin.Context) {
	c.JSON(http.StatusOK, h.center.Drain())
}
