package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/valstrz/payroll-engine/internal/config"
	"github.com/valstrz/payroll-engine/internal/handler/http/middleware"
	"github.com/valstrz/payroll-engine/internal/pkg/jwt"
)

func NewRouter(app config.AppConfig, JWTService jwt.Service, payrollHandler PayrollHandler, declarationHandler DeclarationHandler, scheduleHandler ScheduleHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       app.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app.Name),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	origins := app.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Payment-Total", "X-Payment-Warnings"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
		r.Use(middleware.RequireTenant)

		r.Route("/payroll/{year}/{month}", func(r chi.Router) {
			r.Post("/start", payrollHandler.StartMonth)
			r.Post("/calculate", payrollHandler.CalculateMonth)
			r.Get("/employees/{employeeId}/preview", payrollHandler.PreviewEmployee)
			r.Get("/employees/{employeeId}/result", payrollHandler.EmployeeResult)
			r.Get("/audit", payrollHandler.AuditTrail)

			r.Post("/close", payrollHandler.CloseMonth)
			r.Post("/reopen", payrollHandler.ReopenMonth)

			r.Route("/snapshots", func(r chi.Router) {
				r.Get("/", payrollHandler.ListSnapshots)
				r.Get("/{employeeId}/history", payrollHandler.SnapshotHistory)
				r.Get("/{employeeId}/payslip.pdf", payrollHandler.Payslip)
			})
		})

		r.Route("/declarations/{year}/{month}", func(r chi.Router) {
			r.Get("/", declarationHandler.ListSubmissions)
			r.Post("/", declarationHandler.PrepareSubmission)
			r.Get("/d1/preview", declarationHandler.PreviewD1)
		})

		r.Route("/accounting/{year}/{month}", func(r chi.Router) {
			r.Get("/", declarationHandler.ListAccountingEntries)
			r.Post("/", declarationHandler.GenerateAccounting)
		})
		r.Get("/bank-payments/{year}/{month}", declarationHandler.BankPayments)

		r.Get("/work-schedules", scheduleHandler.ListWorkSchedules)
		r.Route("/shift-schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.ListShiftSchedules)
			r.Post("/templates", scheduleHandler.SeedTemplates)
			r.Get("/{id}", scheduleHandler.GetShiftSchedule)
		})
	})
	return r
}
