package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/services"
)

type updateDoctorRequest struct {
	Email         string  `json:"email" binding:"required"`
	Institute     *string `json:"institute"`
	Category      *string `json:"category"`
	Qualification *string `json:"qualification"`
	Fee           any     `json:"fee"`
	URL           *string `json:"url"`
	Bio           *string `json:"bio"`
}

// RegisterDoctor rejects, without error, an email already held by a user or a doctor.
func (h *Handler) RegisterDoctor(c *gin.Context) {
	var doctor models.Doctor
	if !bindJSON(c, &doctor) {
		return
	}
	reg, err := h.Identity.RegisterDoctor(c.Request.Context(), &doctor)
	respondRegistration(c, reg, err)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Identity.ListDoctors(c.Request.Context())
	respond(c, doctors, err)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.Identity.GetDoctor(c.Request.Context(), c.Param("email"))
	respondFound(c, doctor, err)
}

func (h *Handler) DoctorsByCategory(c *gin.Context) {
	doctors, err := h.Identity.DoctorsByCategory(c.Request.Context(), c.Param("category"))
	respond(c, doctors, err)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Identity.UpdateDoctor(c.Request.Context(), req.Email, services.DoctorPatch{
		Institute:     req.Institute,
		Category:      req.Category,
		Qualification: req.Qualification,
		Fee:           req.Fee,
		URL:           req.URL,
		Bio:           req.Bio,
	})
	respond(c, res, err)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	res, err := h.Identity.DeleteDoctor(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}
