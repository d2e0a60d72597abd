package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/funnel"
	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

// Applications handles GET /views/applications
func (h *ViewHandler) Applications(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PageApplications) {
		return
	}
	c.JSON(http.StatusOK, set.Applications.Snapshot())
}

// ExpandApplications handles PUT /views/applications/expand. Sending the
// expanded status again, or an empty one, collapses the list.
func (h *ViewHandler) ExpandApplications(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		Status funnel.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := set.Applications.Expand(c.Request.Context(), req.Status); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Applications.Snapshot())
}

// MoreApplications handles POST /views/applications/more
func (h *ViewHandler) MoreApplications(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	if _, err := set.Applications.LoadMore(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Applications.Snapshot())
}

// MarkApplied handles POST /views/applications/:id/applied
func (h *ViewHandler) MarkApplied(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	if err := set.Applications.MarkApplied(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Applications.Snapshot())
}

// UpdateApplication handles PATCH /views/applications/:id
func (h *ViewHandler) UpdateApplication(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	var req struct {
		Status funnel.Status `json:"status" binding:"required"`
		Notes  string        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	if err := set.Applications.Update(c.Request.Context(), c.Param("id"), req.Status, req.Notes); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Applications.Snapshot())
}
