package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

// Jobs handles GET /views/jobs
func (h *ViewHandler) Jobs(c *gin.Context) {
	set, ok := h.views(c)
	if !ok || !h.ensure(c, set, view.PageJobs) {
		return
	}
	c.JSON(http.StatusOK, set.Jobs.Snapshot())
}

// RefreshJobs handles POST /views/jobs/refresh
func (h *ViewHandler) RefreshJobs(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	if err := set.Jobs.Refresh(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Jobs.Snapshot())
}

// MoreJobs handles POST /views/jobs/more, the end-of-list trigger
func (h *ViewHandler) MoreJobs(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	if _, err := set.Jobs.LoadMore(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Jobs.Snapshot())
}

// SetJobFilters handles PUT /views/jobs/filters
func (h *ViewHandler) SetJobFilters(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}

	filters := view.DefaultJobFilters()
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := set.Jobs.SetFilters(filters); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set.Jobs.Snapshot())
}

// ResetJobFilters handles DELETE /views/jobs/filters
func (h *ViewHandler) ResetJobFilters(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	set.Jobs.ResetFilters()
	c.JSON(http.StatusOK, set.Jobs.Snapshot())
}

// ApplyToJob handles POST /views/jobs/:id/apply. A duplicate application
// is not an error.
func (h *ViewHandler) ApplyToJob(c *gin.Context) {
	set, ok := h.views(c)
	if !ok {
		return
	}
	if err := set.Jobs.Apply(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
