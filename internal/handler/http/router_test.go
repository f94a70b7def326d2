package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/config"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/handler/http/response"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/jwt"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubPayrollService struct {
	payroll.PayrollService
	batch   payroll.BatchResult
	tenant  string
	actor   string
	calcErr error
}

func (s *stubPayrollService) CalculateMonth(ctx context.Context, tenantID string, year, month int, actor string) (payroll.BatchResult, error) {
	s.tenant, s.actor = tenantID, actor
	return s.batch, s.calcErr
}

type stubClosingService struct {
	payroll.ClosingService
	closeErr  error
	reopenArg string
}

func (s *stubClosingService) Close(ctx context.Context, tenantID string, year, month int, actor string) (payroll.MonthClosingSnapshot, error) {
	if s.closeErr != nil {
		return payroll.MonthClosingSnapshot{}, s.closeErr
	}
	return payroll.MonthClosingSnapshot{ID: "mc-1", Year: year, Month: month, EmployeeCount: 2, TotalNet: money.MustParse("2329.48")}, nil
}

func (s *stubClosingService) Reopen(ctx context.Context, tenantID string, year, month int, actor, reason string) (payroll.Payroll, error) {
	s.reopenArg = reason
	return payroll.Payroll{ID: "p-2", Year: year, Month: month, Revision: 2, Status: payroll.PayrollStatusDraft}, nil
}

func (s *stubClosingService) Payslip(ctx context.Context, tenantID, employeeID string, year, month int) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

type stubDeclarationService struct {
	declaration.DeclarationService
}

func (s *stubDeclarationService) PrepareSubmission(ctx context.Context, tenantID string, year, month int, typ declaration.SubmissionType, code declaration.CorrectionCode, actor string) (declaration.NapSubmission, error) {
	return declaration.NapSubmission{}, payroll.ErrMonthNotClosed
}

type stubScheduleService struct {
	schedule.ScheduleService
}

func (s *stubScheduleService) ShiftSchedule(ctx context.Context, tenantID, id string) (schedule.ShiftSchedule, error) {
	if id != "ss-1" || tenantID != "tenant-1" {
		return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
	}
	return schedule.ShiftSchedule{ID: id, Code: "SHIFT_12_24", ReferenceMonths: 4, Rotation: schedule.ParseRotation([]int{1, 0, 0})}, nil
}

type routerFixture struct {
	router  http.Handler
	token   string
	payroll *stubPayrollService
	closing *stubClosingService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	token, _, err := jwtService.GenerateAccessToken("user-1", "tenant-1")
	require.NoError(t, err)

	f := &routerFixture{token: token, payroll: &stubPayrollService{}, closing: &stubClosingService{}}
	f.router = NewRouter(
		config.AppConfig{Name: "payroll-engine", Version: "test", Env: "test", LogLevel: "error"},
		jwtService,
		NewPayrollHandler(f.payroll, f.closing),
		NewDeclarationHandler(&stubDeclarationService{}),
		NewScheduleHandler(&stubScheduleService{}),
	)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/calculate", nil, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayrollHandler_CalculateMonth_ReportsFailures(t *testing.T) {
	// Setup
	f := newRouterFixture(t)
	f.payroll.batch = payroll.BatchResult{
		PayrollID:    "p-1",
		Year:         2025,
		Month:        3,
		Calculations: []payroll.Calculation{{EmployeeID: "emp-1", NetSalary: money.MustParse("1164.74")}},
		Failures:     []payroll.EmployeeFailure{{EmployeeID: "emp-2", Code: apperror.CodeInvalidInput, Field: "occupationGroup", Message: "must be between 1 and 9"}},
	}

	// Act
	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/calculate", nil, true)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant-1", f.payroll.tenant)
	assert.Equal(t, "user-1", f.payroll.actor)

	var body struct {
		Data payroll.BatchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Partial)
	require.Len(t, body.Data.Failures, 1)
	assert.Equal(t, "occupationGroup", body.Data.Failures[0].Field)
}

func TestPayrollHandler_InvalidPeriod(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/13/calculate", nil, true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error.Details, "month")
}

func TestPayrollHandler_CloseConflict(t *testing.T) {
	f := newRouterFixture(t)
	f.closing.closeErr = apperror.ConcurrentClose("tenant-1:2025-03")

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/close", nil, true)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Equal(t, apperror.CodeConcurrentCloseConflict, decodeResponse(t, rec).Error.Code)
}

func TestPayrollHandler_CloseBlockedByEmployeeFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.closing.closeErr = apperror.ConfigurationMissing("no contributions for insured type %q", "99")

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/close", nil, true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeConfigurationMissing, decodeResponse(t, rec).Error.Code)
}

func TestPayrollHandler_Reopen(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/reopen", map[string]string{}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/payroll/2025/3/reopen", map[string]string{"reason": "late sick leave"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "late sick leave", f.closing.reopenArg)
}

func TestPayrollHandler_Payslip(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/payroll/2025/3/snapshots/emp-1/payslip.pdf", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip_emp-1_2025_03.pdf")
}

func TestDeclarationHandler_ValidatesBody(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/declarations/2025/3", map[string]any{"type": "D9"}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/declarations/2025/3", map[string]any{"type": "D1", "correction_code": 0}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScheduleHandler_GetShiftSchedule(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/shift-schedules/ss-1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data schedule.ShiftScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int{1, 0, 0}, body.Data.Rotation)

	rec = f.do(t, http.MethodGet, "/api/v1/shift-schedules/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
