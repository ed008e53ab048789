package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/api"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Request a booking
// @Description  Student-only: request a seat on a session. The booking starts pending until the coach approves or rejects it.
// @Tags         bookings,student
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/book [post]
func (h *Handler) RequestBooking(c *gin.Context) {
	studentID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	booking, err := h.service.RequestBooking(c.Request.Context(), sessionID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
		case errors.Is(err, ErrSessionUnavailable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Session is not open for booking"})
		case errors.Is(err, ErrAlreadyRequested):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have an active booking for this session"})
		case errors.Is(err, ErrSessionFull):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Session is full"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// @Summary      Approve a booking
// @Description  Coach-only: confirm a pending booking on an owned session. Fails when confirmed seats already reach capacity; the booking stays pending.
// @Tags         bookings,coach
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/bookings/{bookingID}/approve [post]
func (h *Handler) ApproveBooking(c *gin.Context) {
	coachID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := h.service.ApproveBooking(c.Request.Context(), bookingID, coachID)
	if err != nil {
		h.respondActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      Reject a booking
// @Description  Coach-only: reject a pending booking on an owned session.
// @Tags         bookings,coach
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/bookings/{bookingID}/reject [post]
func (h *Handler) RejectBooking(c *gin.Context) {
	coachID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := h.service.RejectBooking(c.Request.Context(), bookingID, coachID)
	if err != nil {
		h.respondActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      Cancel a booking
// @Description  Student-only: cancel an own booking. Cancelling an already cancelled booking is a no-op.
// @Tags         bookings,student
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	studentID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), bookingID, studentID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      List my bookings
// @Description  Student-only: bookings of the authenticated student with session details.
// @Tags         bookings,student
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} booking.BookingWithSession
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	studentID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.GetStudentBookings(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Session roster
// @Description  Coach-only: bookings for an owned session with student details.
// @Tags         bookings,coach
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {array} booking.BookingWithStudent
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/sessions/{sessionID}/bookings [get]
func (h *Handler) ListSessionBookings(c *gin.Context) {
	coachID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	bookings, err := h.service.GetSessionRoster(c.Request.Context(), sessionID, coachID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) respondActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, ErrBookingNotPending):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not pending"})
	case errors.Is(err, ErrSessionFull):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Session is full"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update booking"})
	}
}
