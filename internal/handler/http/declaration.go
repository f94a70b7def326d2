package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/handler/http/middleware"
	"github.com/valstrz/payroll-engine/internal/handler/http/response"
)

type DeclarationHandler interface {
	PrepareSubmission(w http.ResponseWriter, r *http.Request)
	PreviewD1(w http.ResponseWriter, r *http.Request)
	ListSubmissions(w http.ResponseWriter, r *http.Request)
	GenerateAccounting(w http.ResponseWriter, r *http.Request)
	ListAccountingEntries(w http.ResponseWriter, r *http.Request)
	BankPayments(w http.ResponseWriter, r *http.Request)
}

type declarationHandlerImpl struct {
	declarationService declaration.DeclarationService
}

func NewDeclarationHandler(declarationService declaration.DeclarationService) DeclarationHandler {
	return &declarationHandlerImpl{declarationService: declarationService}
}

func (h *declarationHandlerImpl) PrepareSubmission(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req declaration.PrepareSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.declarationService.PrepareSubmission(ctx, middleware.TenantID(ctx), year, month,
		declaration.SubmissionType(req.Type), declaration.CorrectionCode(req.CorrectionCode), middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Submission generated", declaration.NewSubmissionResponse(result))
}

// PreviewD1 returns the D1 file body without storing a submission.
func (h *declarationHandlerImpl) PreviewD1(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.declarationService.PreviewD1(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		response.Success(w, declaration.NewSubmissionResponse(result))
		return
	}
	response.File(w, "text/plain; charset=windows-1251", result.FileName, result.Content)
}

func (h *declarationHandlerImpl) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	submissions, err := h.declarationService.Submissions(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]declaration.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, declaration.NewSubmissionResponse(s))
	}
	response.Success(w, out)
}

func (h *declarationHandlerImpl) GenerateAccounting(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	entries, err := h.declarationService.GenerateAccounting(ctx, middleware.TenantID(ctx), year, month, middleware.Actor(ctx))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Accounting entries generated", declaration.NewAccountingEntryResponses(entries))
}

func (h *declarationHandlerImpl) ListAccountingEntries(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	entries, err := h.declarationService.AccountingEntries(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, declaration.NewAccountingEntryResponses(entries))
}

func (h *declarationHandlerImpl) BankPayments(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromURL(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ctx := r.Context()
	file, err := h.declarationService.BankPaymentFile(ctx, middleware.TenantID(ctx), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		response.Success(w, declaration.NewBankFileResponse(file))
		return
	}
	w.Header().Set("X-Payment-Total", file.Total.StringFixed(2))
	w.Header().Set("X-Payment-Warnings", strconv.Itoa(len(file.Warnings)))
	response.File(w, "text/csv; charset=windows-1251", file.FileName, file.Content)
}
