package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

// Portals handles GET /views/portals
func (h *ViewHandler) Portals(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PagePortals) {
		return
	}
	c.JSON(http.StatusOK, set.Portals.Snapshot())
}

// TogglePortal handles PUT /views/portals/:portal/enabled
func (h *ViewHandler) TogglePortal(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}
	if err := set.Portals.Toggle(c.Request.Context(), c.Param("portal"), *req.Enabled); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Portals.Snapshot())
}

// SetPortalPriority handles PUT /views/portals/:portal/priority
func (h *ViewHandler) SetPortalPriority(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		Priority int `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority is required"})
		return
	}
	if err := set.Portals.SetPriority(c.Request.Context(), c.Param("portal"), req.Priority); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Portals.Snapshot())
}

// SavePortalConfig handles PUT /views/portals/:portal/config
func (h *ViewHandler) SavePortalConfig(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := set.Portals.SaveConfig(c.Request.Context(), c.Param("portal"), req.APIKey); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Portals.Snapshot())
}

// TestPortalKey handles POST /views/portals/:portal/test. The body is
// optional; without a key the last one entered for the portal is tested.
func (h *ViewHandler) TestPortalKey(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		APIKey string `json:"api_key"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	if err := set.Portals.TestKey(c.Request.Context(), c.Param("portal"), req.APIKey); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
