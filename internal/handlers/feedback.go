package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bobsgarage/api/internal/cache"
	"bobsgarage/api/internal/middleware"
	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/repository"
)

type feedbackRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

type feedbackResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFeedbackResponse(fb models.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:        fb.ID,
		Name:      fb.Name,
		Message:   fb.Message,
		Rating:    fb.Rating,
		Approved:  fb.Approved,
		CreatedAt: fb.CreatedAt,
	}
}

// ListFeedback serves approved entries publicly. Admins with ?all=true see
// the moderation queue too.
func (h HandlerSet) ListFeedback(c *gin.Context) {
	if c.Query("all") == "true" {
		if user, ok := middleware.CurrentUser(c); ok && user.IsAdmin {
			entries, err := h.feedback.ListAll(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"feedback": toFeedbackResponses(entries)})
			return
		}
	}

	var cached []feedbackResponse
	if err := h.content.Get(c.Request.Context(), cache.KeyFeedback, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"feedback": cached})
		return
	}

	entries, err := h.feedback.ListApproved(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := toFeedbackResponses(entries)
	h.content.Set(c.Request.Context(), cache.KeyFeedback, resp)

	c.JSON(http.StatusOK, gin.H{"feedback": resp})
}

func toFeedbackResponses(entries []models.Feedback) []feedbackResponse {
	resp := make([]feedbackResponse, 0, len(entries))
	for _, fb := range entries {
		resp = append(resp, toFeedbackResponse(fb))
	}
	return resp
}

func (h HandlerSet) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb := models.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if err := h.feedback.Create(c.Request.Context(), &fb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": toFeedbackResponse(fb)})
}

func (h HandlerSet) ApproveFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_feedback_id"})
		return
	}

	if err := h.feedback.Approve(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyFeedback)

	c.JSON(http.StatusOK, gin.H{"id": id, "approved": true})
}

func (h HandlerSet) DeleteFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_feedback_id"})
		return
	}

	if err := h.feedback.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyFeedback)

	c.Status(http.StatusNoContent)
}
