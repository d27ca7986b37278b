package handlers

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)

	r.POST("/jwt", h.IssueToken)

	r.POST("/users", h.RegisterUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:email", h.GetUser)
	r.PATCH("/updateUser", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	r.PATCH("/users/admin/:id", h.PromoteAdmin)
	r.GET("/users/admin/:email", h.IsAdmin)
	r.PATCH("/users/doctor/:id", h.PromoteDoctor)
	r.GET("/users/doctor/:email", h.IsDoctor)

	r.POST("/doctors", h.RegisterDoctor)
	r.GET("/doctors", h.ListDoctors)
	r.GET("/doctors/:category", h.DoctorsByCategory)
	r.GET("/doctor/:email", h.GetDoctor)
	r.PATCH("/updateDoctor", h.UpdateDoctor)
	r.DELETE("/doctors/:id", h.DeleteDoctor)

	r.POST("/setMeeting", h.RequestMeeting)
	r.GET("/meetings", h.ListMeetings)
	r.GET("/meetings/:id", h.GetMeeting)
	r.GET("/getMeeting/:email", h.MeetingsByRequester)
	r.GET("/getDocMeeting/:email", h.MeetingsByDoctor)
	r.PATCH("/acceptRequest/:id", h.AcceptMeeting)
	r.PATCH("/acceptPayment/:id", h.ConfirmMeetingPayment)
	r.DELETE("/meetings/:id", h.DeleteMeeting)

	r.POST("/stripePay", h.RecordPayment)
	r.POST("/create-payment-intent", h.IntentLimiter.RateLimit(), h.CreatePaymentIntent)
	r.GET("/payments/:email", h.PaymentsByEmail)

	r.POST("/feedback", h.SubmitFeedback)
	r.GET("/feedback", h.ListFeedback)
}
