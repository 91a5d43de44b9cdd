package http

import (
	"github.com/gin-gonic/gin"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// Register attaches the record routes. requireUser guards the owner-scoped
// routes; requireAdmin guards the submissions listing, which is not
// registered when requireAdmin is nil.
func (h *Handler) Register(r gin.IRouter, requireUser, requireAdmin gin.HandlerFunc) {
	r.POST("/submit", h.submit(domain.FormLead))

	api := r.Group("/api")
	api.POST("/submit-project", h.submit(domain.FormProject))
	if requireAdmin != nil {
		api.GET("/submissions", requireAdmin, h.listSubmissions)
	}

	authed := api.Group("", requireUser)

	projects := authed.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:id", h.getProject)
	projects.PUT("/:id", h.updateProject)
	projects.DELETE("/:id", h.deleteProject)

	bookings := authed.Group("/bookings")
	bookings.GET("", h.listBookings)
	bookings.POST("", h.createBooking)
	bookings.GET("/:id", h.getBooking)
	bookings.PUT("/:id", h.updateBooking)
	bookings.DELETE("/:id", h.deleteBooking)

	authed.GET("/dashboard/stats", h.dashboardStats)
}
