package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

// Preferences handles GET /views/preferences
func (h *ViewHandler) Preferences(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PagePreferences) {
		return
	}
	c.JSON(http.StatusOK, set.Preferences.Snapshot())
}

// EditPreferences handles PUT /views/preferences. Edits stay local until
// the form is saved, and a rejected request leaves the form untouched.
func (h *ViewHandler) EditPreferences(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PagePreferences) {
		return
	}

	var req view.PreferencesChange
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := set.Preferences.Change(req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Preferences.Snapshot())
}

// ValidateResume handles POST /views/preferences/resume/validate. An
// invalid resume is reported inline in the snapshot, not as an error.
func (h *ViewHandler) ValidateResume(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PagePreferences) {
		return
	}
	_ = set.Preferences.ValidateResume()
	c.JSON(http.StatusOK, set.Preferences.Snapshot())
}

// SavePreferences handles POST /views/preferences/save
func (h *ViewHandler) SavePreferences(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PagePreferences) {
		return
	}
	if err := set.Preferences.Save(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Preferences.Snapshot())
}
