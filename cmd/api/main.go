package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valstrz/payroll-engine/internal/config"
	appHTTP "github.com/valstrz/payroll-engine/internal/handler/http"
	"github.com/valstrz/payroll-engine/internal/pkg/cron"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
	"github.com/valstrz/payroll-engine/internal/pkg/events"
	"github.com/valstrz/payroll-engine/internal/pkg/jwt"
	"github.com/valstrz/payroll-engine/internal/pkg/lock"
	"github.com/valstrz/payroll-engine/internal/repository/postgresql"
	auditService "github.com/valstrz/payroll-engine/internal/service/audit"
	calendarService "github.com/valstrz/payroll-engine/internal/service/calendar"
	closingService "github.com/valstrz/payroll-engine/internal/service/closing"
	declarationService "github.com/valstrz/payroll-engine/internal/service/declaration"
	payrollService "github.com/valstrz/payroll-engine/internal/service/payroll"
	"github.com/valstrz/payroll-engine/internal/service/rules"
	scheduleService "github.com/valstrz/payroll-engine/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.SlogLevel()})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)

	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	insuranceRepo := postgresql.NewInsuranceConfigRepository(db)
	calendarRepo := postgresql.NewCalendarRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	itemRepo := postgresql.NewItemRepository(db)
	snapshotRepo := postgresql.NewSnapshotRepository(db)
	declarationRepo := postgresql.NewDeclarationRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	recorder := auditService.NewRecorder(auditRepo)
	calendars := calendarService.NewCalendarService(calendarRepo, cfg.Payroll.DefaultHoursPerDay)
	loader := rules.NewLoader(insuranceRepo)

	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollService.Repositories{
			Payroll:    payrollRepo,
			Items:      itemRepo,
			Employees:  employeeRepo,
			Schedules:  scheduleRepo,
			Attendance: attendanceRepo,
		},
		calendars,
		loader,
		recorder,
		cfg.Payroll.DefaultHoursPerDay,
		cfg.Payroll.CalcWorkers,
	)

	var locker lock.Locker = lock.NewKeyedLocker()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(redisClient, "payroll:close:", cfg.Payroll.CloseLockTTL)
		slog.Info("using redis close lock", "addr", cfg.Redis.Addr)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		writer := events.NewWriter(cfg.Kafka.Brokers)
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer)
		slog.Info("publishing payroll events", "brokers", cfg.Kafka.Brokers)
	}

	closingSvc := closingService.NewClosingService(
		txManager,
		closingService.Repositories{
			Payroll:    payrollRepo,
			Snapshots:  snapshotRepo,
			Items:      itemRepo,
			Attendance: attendanceRepo,
			Companies:  companyRepo,
		},
		payrollSvc,
		declarationRepo,
		locker,
		publisher,
		recorder,
	)
	declarationSvc := declarationService.NewDeclarationService(
		txManager,
		declarationService.Repositories{
			Declarations: declarationRepo,
			Payroll:      payrollRepo,
			Snapshots:    snapshotRepo,
			Companies:    companyRepo,
		},
		recorder,
	)
	scheduleSvc := scheduleService.NewScheduleService(txManager, scheduleRepo, recorder)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc, closingSvc)
	declarationHandler := appHTTP.NewDeclarationHandler(declarationSvc)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)
	router := appHTTP.NewRouter(cfg.App, JWTService, payrollHandler, declarationHandler, scheduleHandler)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(companyRepo, payrollSvc).RegisterJobs(scheduler, cfg.Payroll.OpenMonthInterval)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	scheduler.Stop()
}
