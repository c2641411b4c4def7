package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/handler"
	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/internal/service/scheduling"
	apperrors "github.com/smilecare/practice-api/pkg/errors"
)

type Handler struct {
	scheduling *scheduling.Service
}

func NewHandler(scheduling *scheduling.Service) *Handler {
	return &Handler{scheduling: scheduling}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	blocks := r.Group("/blocked-slots")
	{
		blocks.POST("", h.CreateBlockedSlot)
		blocks.DELETE("/:id", h.DeleteBlockedSlot)
	}
	r.GET("/calendar", h.CalendarView)
}

func (h *Handler) CreateBlockedSlot(c *gin.Context) {
	var req model.CreateBlockedSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid blocked slot payload", err))
		return
	}

	slot, err := h.scheduling.CreateBlock(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusCreated, slot)
}

func (h *Handler) DeleteBlockedSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid blocked slot ID", err))
		return
	}

	if err := h.scheduling.DeleteBlock(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			handler.Fail(c, apperrors.NotFound("blocked slot", err))
			return
		}
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusOK, nil)
}

// CalendarView renders one day, week, or month of a clinic calendar
// with occupancy statistics. The reference date defaults to today.
func (h *Handler) CalendarView(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Query("clinic_id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	kind := model.CalendarViewKind(c.DefaultQuery("view", string(model.CalendarViewDay)))
	if !kind.IsValid() {
		handler.Fail(c, apperrors.BadRequest("view must be day, week or month", nil))
		return
	}

	at := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("invalid date, want YYYY-MM-DD", err))
			return
		}
		at = parsed
	}

	var dentistID *uuid.UUID
	if id := c.Query("dentist_id"); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("invalid dentist ID", err))
			return
		}
		dentistID = &parsed
	}

	view, err := h.scheduling.CalendarView(c.Request.Context(), clinicID, dentistID, at, kind)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusOK, view)
}
