package visit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/handler"
	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/internal/service/visit"
	apperrors "github.com/smilecare/practice-api/pkg/errors"
)

type Handler struct {
	visits *visit.Service
}

func NewHandler(visits *visit.Service) *Handler {
	return &Handler{visits: visits}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/:id/transition", h.Transition)
		appointments.POST("/:id/check-in", h.CheckIn)
		appointments.POST("/:id/check-out", h.CheckOut)
	}
}

// Transition is the general lifecycle endpoint; any valid target status
// can be requested.
func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid transition payload", err))
		return
	}

	h.transition(c, id, req.Status, visit.TransitionOptions{Reason: req.Reason, Auto: req.Auto})
}

// CheckIn is front-desk shorthand for the checked_in transition; the
// response carries the queue number for the ticket printer.
func (h *Handler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}
	h.transition(c, id, model.AppointmentStatusCheckedIn, visit.TransitionOptions{})
}

// CheckOut completes the visit; it fails with 402 until billing
// confirms payment.
func (h *Handler) CheckOut(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}
	h.transition(c, id, model.AppointmentStatusCompleted, visit.TransitionOptions{})
}

func (h *Handler) transition(c *gin.Context, id uuid.UUID, target model.AppointmentStatus, opts visit.TransitionOptions) {
	result, err := h.visits.Transition(c.Request.Context(), id, target, opts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			handler.Fail(c, apperrors.NotFound("appointment", err))
			return
		}
		if errors.Is(err, repository.ErrStaleStatus) {
			handler.Fail(c, apperrors.Conflict("appointment changed concurrently, retry", err))
			return
		}
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusOK, result)
}
