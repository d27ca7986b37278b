package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/models"
)

func (h *Handler) RequestMeeting(c *gin.Context) {
	var meeting models.Meeting
	if !bindJSON(c, &meeting) {
		return
	}
	id, err := h.Meetings.Request(c.Request.Context(), &meeting)
	respondInserted(c, id, err)
}

func (h *Handler) ListMeetings(c *gin.Context) {
	meetings, err := h.Meetings.List(c.Request.Context())
	respond(c, meetings, err)
}

func (h *Handler) GetMeeting(c *gin.Context) {
	meeting, err := h.Meetings.Get(c.Request.Context(), c.Param("id"))
	respondFound(c, meeting, err)
}

func (h *Handler) MeetingsByRequester(c *gin.Context) {
	meetings, err := h.Meetings.ListByRequester(c.Request.Context(), c.Param("email"))
	respond(c, meetings, err)
}

func (h *Handler) MeetingsByDoctor(c *gin.Context) {
	meetings, err := h.Meetings.ListByDoctor(c.Request.Context(), c.Param("email"))
	respond(c, meetings, err)
}

func (h *Handler) AcceptMeeting(c *gin.Context) {
	res, err := h.Meetings.Accept(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}

func (h *Handler) ConfirmMeetingPayment(c *gin.Context) {
	res, err := h.Meetings.ConfirmPayment(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}

func (h *Handler) DeleteMeeting(c *gin.Context) {
	res, err := h.Meetings.Delete(c.Request.Context(), c.Param("id"))
	respond(c, res, err)
}
