package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/models"
)

type paymentIntentRequest struct {
	Price    *float64 `json:"price" binding:"required"`
	Currency string   `json:"currency"`
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var payment models.Payment
	if !bindJSON(c, &payment) {
		return
	}
	id, err := h.Payments.Record(c.Request.Context(), &payment)
	respondInserted(c, id, err)
}

func (h *Handler) PaymentsByEmail(c *gin.Context) {
	payments, err := h.Payments.ListByEmail(c.Request.Context(), c.Param("email"))
	respond(c, payments, err)
}

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}
	secret, err := h.Payments.CreateIntent(c.Request.Context(), *req.Price, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, gin.H{"clientSecret": secret}, nil)
}
