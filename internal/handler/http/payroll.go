package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/handler/http/middleware"
	"github.com/valstrz/payroll-engine/internal/handler/http/response"
)

type PayrollHandler interface {
	// Working payroll
	StartMonth(w http.ResponseWriter, r *http.Request)
	CalculateMonth(w http.ResponseWriter, r *http.Request)
	PreviewEmployee(w http.ResponseWriter, r *http.Request)
	EmployeeResult(w http.ResponseWriter, r *http.Request)
	AuditTrail(w http.ResponseWriter, r *http.Request)

	// Closing
	CloseMonth(w http.ResponseWriter, r *http.Request)
	ReopenMonth(w http.ResponseWriter, r *http.Request)

	// Snapshots
	ListSnapshots(w http.ResponseWriter, r *http.Request)
	SnapshotHistory(w http.ResponseWriter, r *http.Request)
	Payslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	closingService payroll.ClosingService
}

func NewPayrollHandler(payrollService payroll.PayrollService, closingService payroll.ClosingService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService, closingService: closingService}
}

// ========== WORKING PAYROLL ==========

func (h *payrollHandlerImpl) StartMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.payrollService.StartMonth(ctx, middleware.TenantID(ctx), year, month, middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll month started", payroll.NewPayrollResponse(result))
}

func (h *payrollHandlerImpl) CalculateMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.payrollService.CalculateMonth(ctx, middleware.TenantID(ctx), year, month, middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Payroll calculated"
	if result.Partial() {
		message = fmt.Sprintf("Payroll calculated with %d failed employees", len(result.Failures))
	}
	response.SuccessWithMessage(w, message, payroll.NewBatchResponse(result))
}

func (h *payrollHandlerImpl) PreviewEmployee(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	ctx := r.Context()
	result, err := h.payrollService.CalculateEmployee(ctx, middleware.TenantID(ctx), employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewCalculationResponse(result))
}

// EmployeeResult returns the stored working result, unlike PreviewEmployee
// which recalculates.
func (h *payrollHandlerImpl) EmployeeResult(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	ctx := r.Context()
	result, err := h.payrollService.Result(ctx, middleware.TenantID(ctx), employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewCalculationResponse(result))
}

func (h *payrollHandlerImpl) AuditTrail(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	entries, err := h.payrollService.AuditTrail(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, audit.NewEntryResponses(entries))
}

// ========== CLOSING ==========

func (h *payrollHandlerImpl) CloseMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.closingService.Close(ctx, middleware.TenantID(ctx), year, month, middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll month closed", payroll.NewMonthClosingResponse(result))
}

func (h *payrollHandlerImpl) ReopenMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.ReopenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.closingService.Reopen(ctx, middleware.TenantID(ctx), year, month, middleware.Actor(ctx), req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll month reopened", payroll.NewPayrollResponse(result))
}

// ========== SNAPSHOTS ==========

func (h *payrollHandlerImpl) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	snapshots, err := h.closingService.Snapshots(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]payroll.CalculationResponse, 0, len(snapshots))
	for _, s := range snapshots {
		result = append(result, payroll.NewSnapshotResponse(s))
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) SnapshotHistory(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	ctx := r.Context()
	snapshots, err := h.closingService.SnapshotHistory(ctx, middleware.TenantID(ctx), employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]payroll.CalculationResponse, 0, len(snapshots))
	for _, s := range snapshots {
		result = append(result, payroll.NewSnapshotResponse(s))
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) Payslip(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	ctx := r.Context()
	pdf, err := h.closingService.Payslip(ctx, middleware.TenantID(ctx), employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, "application/pdf", fmt.Sprintf("payslip_%s_%d_%02d.pdf", employeeID, year, month), pdf)
}
