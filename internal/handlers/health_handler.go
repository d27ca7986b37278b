package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
)

const readyTimeout = 2 * time.Second

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "server is running")
}

func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the store answers a ping.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		respondError(c, apperrors.StoreUnavailable(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
