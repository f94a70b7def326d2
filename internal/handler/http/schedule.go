package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/handler/http/middleware"
	"github.com/valstrz/payroll-engine/internal/handler/http/response"
)

type ScheduleHandler interface {
	ListWorkSchedules(w http.ResponseWriter, r *http.Request)
	ListShiftSchedules(w http.ResponseWriter, r *http.Request)
	GetShiftSchedule(w http.ResponseWriter, r *http.Request)
	SeedTemplates(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{scheduleService: scheduleService}
}

func (h *scheduleHandlerImpl) ListWorkSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.scheduleService.WorkSchedules(ctx, middleware.TenantID(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.NewWorkScheduleResponses(list))
}

func (h *scheduleHandlerImpl) ListShiftSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.scheduleService.ShiftSchedules(ctx, middleware.TenantID(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.NewShiftScheduleResponses(list))
}

func (h *scheduleHandlerImpl) GetShiftSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.scheduleService.ShiftSchedule(ctx, middleware.TenantID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.NewShiftScheduleResponse(s))
}

func (h *scheduleHandlerImpl) SeedTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	created, err := h.scheduleService.SeedTemplates(ctx, middleware.TenantID(ctx), middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift schedule templates created", schedule.NewShiftScheduleResponses(created))
}
