package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/schedules"
	"github.com/saltyorg/schedulr/internal/web/respond"
)

const msgScheduleNotFound = "Schedule not found or not authorized"

// ScheduleHandlers serves the schedule store endpoints
type ScheduleHandlers struct {
	service *schedules.Service
}

// NewScheduleHandlers creates the schedule endpoint handlers
func NewScheduleHandlers(service *schedules.Service) *ScheduleHandlers {
	return &ScheduleHandlers{service: service}
}

// Routes registers the schedule endpoints on r
func (h *ScheduleHandlers) Routes(r chi.Router) {
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id:[0-9]+}", h.Get)
		r.Put("/{id:[0-9]+}", h.Update)
		r.Delete("/{id:[0-9]+}", h.Delete)
	})
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// List returns every schedule of the owner
func (h *ScheduleHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// Create stores a new schedule
func (h *ScheduleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req schedules.NewSchedule
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if !validateRequest(w, r, &req, "Title is required") {
		return
	}

	schedule, err := h.service.Create(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	log.Debug().Int64("schedule_id", schedule.ID).Str("title", schedule.Title).Msg("Schedule created")
	respond.JSON(w, http.StatusCreated, createdResponse{
		Message: "Schedule added successfully",
		ID:      schedule.ID,
	})
}

// Get returns a single schedule
func (h *ScheduleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}

	schedule, err := h.service.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if schedule == nil {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}
	respond.JSON(w, http.StatusOK, schedule)
}

// Update applies a partial update to a schedule
func (h *ScheduleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}

	var patch schedules.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respond.Error(w, r, err)
		return
	}

	schedule, err := h.service.Update(r.Context(), id, patch)
	if errors.Is(err, schedules.ErrTitleRequired) {
		respond.Error(w, r, errs.NewBadRequestError("Title cannot be empty", []errs.FieldError{
			{Field: "title", Error: "cannot be empty"},
		}))
		return
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if schedule == nil {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}

	log.Debug().Int64("schedule_id", id).Msg("Schedule updated")
	respond.OK(w, http.StatusOK, "Schedule updated successfully")
}

// Delete removes a schedule
func (h *ScheduleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !deleted {
		respond.Error(w, r, errs.NewNotFoundError(msgScheduleNotFound))
		return
	}

	log.Debug().Int64("schedule_id", id).Msg("Schedule deleted")
	respond.OK(w, http.StatusOK, "Schedule deleted successfully")
}
