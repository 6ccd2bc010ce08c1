package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/vollmed/clinic-api/internal/config"
	"github.com/vollmed/clinic-api/internal/email"
	appointmentHandler "github.com/vollmed/clinic-api/internal/handler/appointment"
	authHandler "github.com/vollmed/clinic-api/internal/handler/auth"
	doctorHandler "github.com/vollmed/clinic-api/internal/handler/doctor"
	healthHandler "github.com/vollmed/clinic-api/internal/handler/health"
	patientHandler "github.com/vollmed/clinic-api/internal/handler/patient"
	"github.com/vollmed/clinic-api/internal/middleware"
	"github.com/vollmed/clinic-api/internal/repository/postgres"
	"github.com/vollmed/clinic-api/internal/router"
	authService "github.com/vollmed/clinic-api/internal/service/auth"
	doctorService "github.com/vollmed/clinic-api/internal/service/doctor"
	patientService "github.com/vollmed/clinic-api/internal/service/patient"
	"github.com/vollmed/clinic-api/internal/service/scheduling"
	"github.com/vollmed/clinic-api/pkg/auth"
	"github.com/vollmed/clinic-api/pkg/logger"
	"github.com/vollmed/clinic-api/pkg/messaging/redis"
	"github.com/vollmed/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	hooks := scheduling.Hooks{
		Metrics: metrics.New("clinic"),
	}
	if cfg.Redis.Enabled {
		broker, err := redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
		hooks.Broker = broker
	}
	if cfg.SMTP.Enabled {
		hooks.Notifier = email.NewService(cfg.SMTP, patientRepo, doctorRepo, log)
	}

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry(),
		RefreshExpiry: cfg.JWT.RefreshExpiry(),
	})

	selector := scheduling.NewDoctorSelector(doctorRepo, nil)
	schedulingSvc := scheduling.NewService(
		doctorRepo, patientRepo, appointmentRepo, txManager, selector, hooks, log, nil,
	)
	doctorSvc := doctorService.NewService(doctorRepo, log)
	patientSvc := patientService.NewService(patientRepo, log)
	authSvc := authService.NewService(userRepo, jwtSvc, log)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r, err := router.New(
		router.Config{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
		log,
		authMiddleware,
		[]router.Handler{
			authHandler.NewHandler(authSvc),
			healthHandler.NewHandler(db),
		},
		[]router.Handler{
			appointmentHandler.NewHandler(schedulingSvc),
			doctorHandler.NewHandler(doctorSvc),
			patientHandler.NewHandler(patientSvc),
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
