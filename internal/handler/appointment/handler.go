package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smilecare/practice-api/internal/handler"
	"github.com/smilecare/practice-api/internal/model"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/internal/service/reschedule"
	"github.com/smilecare/practice-api/internal/service/scheduling"
	apperrors "github.com/smilecare/practice-api/pkg/errors"
)

type Handler struct {
	scheduling *scheduling.Service
	reschedule *reschedule.Service
}

func NewHandler(scheduling *scheduling.Service, reschedule *reschedule.Service) *Handler {
	return &Handler{scheduling: scheduling, reschedule: reschedule}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/reschedule", h.Reschedule)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment payload", err))
		return
	}

	appointment, err := h.scheduling.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusCreated, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	appointment, err := h.scheduling.GetAppointment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			handler.Fail(c, apperrors.NotFound("appointment", err))
			return
		}
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusOK, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Query("clinic_id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	filters := &model.AppointmentFilters{ClinicID: clinicID}

	if id := c.Query("dentist_id"); id != "" {
		dentistID, err := uuid.Parse(id)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("invalid dentist ID", err))
			return
		}
		filters.DentistID = &dentistID
	}
	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		filters.PatientID = &patientID
	}
	if status := c.Query("status"); status != "" {
		s := model.AppointmentStatus(status)
		if !s.IsValid() {
			handler.Fail(c, apperrors.BadRequest("unknown appointment status", nil))
			return
		}
		filters.Status = &s
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filters.From = from
	} else {
		return
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filters.To = to
	} else {
		return
	}

	appointments, err := h.scheduling.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, http.StatusOK, appointments)
}

// Reschedule serves both halves of a drag move: without confirmed it
// returns the proposal for the confirm dialog, with confirmed it
// commits.
func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid reschedule payload", err))
		return
	}

	if !req.Confirmed {
		proposal, err := h.reschedule.Preview(c.Request.Context(), id, req.TargetDay, req.TargetHour)
		if err != nil {
			handler.Fail(c, notFoundOr(err))
			return
		}
		handler.OK(c, http.StatusOK, proposal)
		return
	}

	appointment, err := h.reschedule.Commit(c.Request.Context(), id, req.TargetDay, req.TargetHour)
	if err != nil {
		handler.Fail(c, notFoundOr(err))
		return
	}
	handler.OK(c, http.StatusOK, appointment)
}

func notFoundOr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	return err
}

// parseTimeQuery reads an optional RFC 3339 query parameter. On a
// malformed value it writes the error response and reports false.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid "+name+" timestamp", err))
		return nil, false
	}
	return &t, true
}
