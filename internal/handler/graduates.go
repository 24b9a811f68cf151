package handler

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/graduate"
)

// Dashboard serves the grad-admin overview: aggregate tallies plus the
// full roster in unique-id order.
func (h *Handler) Dashboard(c *gin.Context) {
	counts, err := h.grads.Counts(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	grads, err := h.grads.List(c.Request.Context(), "unique_id", false)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if grads == nil {
		grads = []graduate.Graduate{}
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts, "graduates": grads})
}

// ListGraduates returns every record, sortable by name, unique_id,
// attended or gown_collected; anything else gets the ceremony default
// order (presentation order then name, unordered last).
func (h *Handler) ListGraduates(c *gin.Context) {
	grads, err := h.grads.List(c.Request.Context(), c.Query("sort"), c.Query("dir") == "desc")
	if err != nil {
		h.renderError(c, err)
		return
	}
	if grads == nil {
		grads = []graduate.Graduate{}
	}
	c.JSON(http.StatusOK, gin.H{"graduates": grads})
}

// SearchGraduates is the desk search box: substring match over student
// id, name, email, unique id and submission id. No query, no results.
func (h *Handler) SearchGraduates(c *gin.Context) {
	grads, err := h.grads.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	if grads == nil {
		grads = []graduate.Graduate{}
	}
	c.JSON(http.StatusOK, gin.H{"graduates": grads})
}

// GetGraduate returns one record.
func (h *Handler) GetGraduate(c *gin.Context) {
	g, err := h.grads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// UpdateAdmin is the combined student-detail form.
func (h *Handler) UpdateAdmin(c *gin.Context) {
	h.applyScreen(c, graduate.ScreenAdmin, true)
}

// UpdateCheckIn is the check-in desk form.
func (h *Handler) UpdateCheckIn(c *gin.Context) {
	h.applyScreen(c, graduate.ScreenCheckIn, true)
}

// UpdateGown is the gown desk form; no photo on this screen.
func (h *Handler) UpdateGown(c *gin.Context) {
	h.applyScreen(c, graduate.ScreenGown, false)
}

// applyScreen runs the shared search-select-edit-save flow: validate and
// apply the allow-listed fields, then handle the photo side effects. A
// photo that fails to process or store never blocks the field save; the
// record keeps whatever photo it had.
func (h *Handler) applyScreen(c *gin.Context, screen graduate.Screen, withPhoto bool) {
	id := c.Param("id")
	form, err := requestForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form submission"})
		return
	}

	g, err := h.grads.ApplyScreen(c.Request.Context(), id, screen, form)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if withPhoto {
		g = h.applyPhotoChange(c, g, form)
	}

	c.JSON(http.StatusOK, g)
}

// applyPhotoChange uploads a new photo or clears the current one. The
// previous file is deleted only after the record points elsewhere.
func (h *Handler) applyPhotoChange(c *gin.Context, g graduate.Graduate, form url.Values) graduate.Graduate {
	ctx := c.Request.Context()

	file, _, err := c.Request.FormFile("photo")
	if err == nil {
		defer file.Close()
		upload, err := io.ReadAll(file)
		if err != nil {
			h.log.Warn("photo read failed", zap.String("graduate", g.ID), zap.Error(err))
			return g
		}
		rel, err := h.photos.Save(upload)
		if err != nil {
			h.log.Warn("photo processing failed, keeping previous photo",
				zap.String("graduate", g.ID), zap.Error(err))
			return g
		}
		old := g.PhotoPath
		updated, err := h.grads.SetPhotoPath(ctx, g.ID, rel)
		if err != nil {
			h.log.Warn("photo reference update failed", zap.String("graduate", g.ID), zap.Error(err))
			h.photos.Remove(rel)
			return g
		}
		if old != "" && old != rel {
			h.photos.Remove(old)
		}
		return updated
	}

	if graduate.ParseCheckbox(form.Get("remove_photo")) && g.PhotoPath != "" {
		old := g.PhotoPath
		updated, err := h.grads.SetPhotoPath(ctx, g.ID, "")
		if err != nil {
			h.log.Warn("photo clear failed", zap.String("graduate", g.ID), zap.Error(err))
			return g
		}
		h.photos.Remove(old)
		return updated
	}

	return g
}

// requestForm collects submitted values from either a multipart or a
// urlencoded body.
func requestForm(c *gin.Context) (url.Values, error) {
	ct := c.ContentType()
	if ct == "multipart/form-data" {
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
	} else {
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
	}
	return c.Request.PostForm, nil
}
