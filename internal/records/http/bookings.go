package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrimeSandy/Alpha-Dev/internal/auth"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/service"
)

func (h *Handler) listBookings(c *gin.Context) {
	items, err := h.bookings.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getBooking(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) createBooking(c *gin.Context) {
	var in service.BookingInput
	if err := bindJSON(c, &in); err != nil {
		badBody(c)
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		h.writeError(c, err, "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) updateBooking(c *gin.Context) {
	var in service.BookingInput
	if err := bindJSON(c, &in); err != nil {
		badBody(c)
		return
	}

	b, err := h.bookings.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err, "Failed to update booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) deleteBooking(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to delete booking")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to fetch dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
