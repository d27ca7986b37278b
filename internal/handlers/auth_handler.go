package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/harentsoaR/meetdoc-api/internal/errors"
)

type tokenRequest struct {
	Email string `json:"email" binding:"required"`
}

// IssueToken signs a token for the given email carrying its resolved role.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	role, err := h.Identity.Role(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Tokens.GenerateJWT(req.Email, role)
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) IsAdmin(c *gin.Context) {
	admin, err := h.Identity.IsAdmin(c.Request.Context(), c.Param("email"))
	respond(c, gin.H{"admin": admin}, err)
}

func (h *Handler) IsDoctor(c *gin.Context) {
	doctor, err := h.Identity.IsDoctor(c.Request.Context(), c.Param("email"))
	respond(c, gin.H{"doctor": doctor}, err)
}

func (h *Handler) PromoteAdmin(c *gin.Context) {
	res, err := h.Identity.PromoteAdmin(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}

func (h *Handler) PromoteDoctor(c *gin.Context) {
	res, err := h.Identity.PromoteDoctor(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}
