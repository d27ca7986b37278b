package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/services"
)

type updateUserRequest struct {
	Email string  `json:"email" binding:"required"`
	URL   *string `json:"url"`
	Bio   *string `json:"bio"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var user models.User
	if !bindJSON(c, &user) {
		return
	}
	reg, err := h.Identity.RegisterUser(c.Request.Context(), &user)
	respondRegistration(c, reg, err)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Identity.ListUsers(c.Request.Context())
	respond(c, users, err)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Identity.GetUser(c.Request.Context(), c.Param("email"))
	respondFound(c, user, err)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Identity.UpdateUser(c.Request.Context(), req.Email, services.UserPatch{
		URL: req.URL,
		Bio: req.Bio,
	})
	respond(c, res, err)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	res, err := h.Identity.DeleteUser(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}
