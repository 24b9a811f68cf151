package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishek017/GradPilot/internal/graduate"
)

// StageControl serves the operator panel: current presenter plus the
// walk order.
func (h *Handler) StageControl(c *gin.Context) {
	current, err := h.stage.Current(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	eligible, err := h.stage.Eligible(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	if eligible == nil {
		eligible = []graduate.Graduate{}
	}
	c.JSON(http.StatusOK, gin.H{"current": current, "eligible": eligible})
}

// StageReset clears the screen.
func (h *Handler) StageReset(c *gin.Context) {
	if err := h.stage.Reset(c.Request.Context()); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": nil})
}

type stageShowRequest struct {
	GradID string `json:"grad_id" form:"grad_id" binding:"required"`
}

// StageShow puts a chosen graduate on screen ("show" / "start from
// here"). Ineligible or unknown targets are rejected, not ignored.
func (h *Handler) StageShow(c *gin.Context) {
	var req stageShowRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grad_id required"})
		return
	}
	g, err := h.stage.Select(c.Request.Context(), req.GradID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": g})
}

// StageNext advances to the next eligible graduate; past the end the
// screen clears.
func (h *Handler) StageNext(c *gin.Context) {
	next, err := h.stage.Advance(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": next})
}

// StageDisplay is the public big-screen readback; no mutation, no auth.
func (h *Handler) StageDisplay(c *gin.Context) {
	current, err := h.stage.Current(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	if current == nil {
		c.JSON(http.StatusOK, gin.H{"presenting": false})
		return
	}
	name := current.DisplayName
	if name == "" {
		name = current.Name
	}
	course := current.CourseName
	if course == "" && current.Qualification != nil {
		course = *current.Qualification
	}
	c.JSON(http.StatusOK, gin.H{
		"presenting":   true,
		"display_name": name,
		"course_name":  course,
		"photo_path":   current.PhotoPath,
	})
}
