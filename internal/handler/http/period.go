package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
)

// periodFromURL reads and validates the {year}/{month} URL parameters.
func periodFromURL(r *http.Request) (year, month int, err error) {
	req := payroll.PeriodRequest{}
	// Non-numeric values stay zero and fail validation.
	req.Year, _ = strconv.Atoi(chi.URLParam(r, "year"))
	req.Month, _ = strconv.Atoi(chi.URLParam(r, "month"))
	if err := req.Validate(); err != nil {
		return 0, 0, err
	}
	return req.Year, req.Month, nil
}
