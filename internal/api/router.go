// internal/api/router.go

// Package api exposes the external HTTP interface: member ID generation for
// the admin form, Razorpay order creation and the gateway success callback.
package api

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handlers, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Healthz)

	authed := r.Group("/", JWTAuth(jwtSecret))
	authed.POST("/createRazorpayOrder", h.CreateRazorpayOrder)
	authed.POST("/razorpayCallback", h.RazorpayCallback)

	admin := authed.Group("/", RequireAdmin())
	admin.POST("/generateMemberID", h.GenerateMemberID)
	admin.POST("/updateWhatsAppGroups", h.UpdateWhatsAppGroups)

	return r
}
