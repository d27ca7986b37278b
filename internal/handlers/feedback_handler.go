package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/models"
)

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var feedback models.Feedback
	if !bindJSON(c, &feedback) {
		return
	}
	id, err := h.Feedback.Submit(c.Request.Context(), &feedback)
	respondInserted(c, id, err)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	feedback, err := h.Feedback.List(c.Request.Context())
	respond(c, feedback, err)
}
