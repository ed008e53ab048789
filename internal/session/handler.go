package session

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

// CreateSessionsResponse is the batch creation summary returned to coaches.
type CreateSessionsResponse struct {
	Message string     `json:"message"`
	Created []Session  `json:"created"`
	Skipped []Conflict `json:"skipped"`
}

// @Summary      Create sessions
// @Description  Coach-only: create a session, optionally recurring daily or weekly. Occurrences whose window overlaps an existing session are skipped and reported.
// @Tags         sessions,coach
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body session.CreateSessionsRequest true "Session template and recurrence"
// @Success      201 {object} session.CreateSessionsResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} session.CreateSessionsResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/sessions [post]
func (h *Handler) CreateSessions(c *gin.Context) {
	coachID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.CreateSessions(ctx, coachID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired),
			errors.Is(err, ErrInvalidTimeFormat),
			errors.Is(err, ErrInvalidTimeWindow),
			errors.Is(err, ErrInvalidCapacity),
			errors.Is(err, ErrInvalidPrice),
			errors.Is(err, ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create sessions"})
		}
		return
	}

	resp := CreateSessionsResponse{
		Message: result.Message(),
		Created: result.Created,
		Skipped: result.Skipped,
	}

	// 201 when anything was scheduled, 409 when every occurrence conflicted
	status := http.StatusCreated
	if len(result.Created) == 0 {
		status = http.StatusConflict
	}

	c.JSON(status, resp)
}

// @Summary      List my sessions
// @Description  Coach-only: list all sessions owned by the authenticated coach.
// @Tags         sessions,coach
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} session.Session
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/sessions [get]
func (h *Handler) ListMySessions(c *gin.Context) {
	coachID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sessions, err := h.service.GetCoachSessions(c.Request.Context(), coachID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Discover sessions
// @Description  List public available sessions with remaining capacity.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        only_future query bool false "Only sessions starting in the future"
// @Success      200 {array} session.SessionWithAvailability
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /sessions [get]
func (h *Handler) DiscoverSessions(c *gin.Context) {
	onlyFuture := c.DefaultQuery("only_future", "true") == "true"

	sessions, err := h.service.DiscoverSessions(c.Request.Context(), onlyFuture)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Get session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} session.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID} [get]
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	sess, err := h.service.GetSessionByID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// @Summary      Delete session
// @Description  Coach-only: delete an owned session with no confirmed bookings. Pending and cancelled bookings are removed with it.
// @Tags         sessions,coach
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /coach/sessions/{sessionID} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
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

	err = h.service.DeleteSession(c.Request.Context(), sessionID, coachID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Session deleted"})
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
	case errors.Is(err, ErrSessionHasConfirmed):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Session has confirmed bookings"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete session"})
	}
}
