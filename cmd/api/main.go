package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/smilecare/practice-api/internal/config"
	appointmentHandler "github.com/smilecare/practice-api/internal/handler/appointment"
	healthHandler "github.com/smilecare/practice-api/internal/handler/health"
	scheduleHandler "github.com/smilecare/practice-api/internal/handler/schedule"
	visitHandler "github.com/smilecare/practice-api/internal/handler/visit"
	"github.com/smilecare/practice-api/internal/middleware"
	"github.com/smilecare/practice-api/internal/notification"
	"github.com/smilecare/practice-api/internal/repository"
	"github.com/smilecare/practice-api/internal/repository/postgres"
	redisrepo "github.com/smilecare/practice-api/internal/repository/redis"
	"github.com/smilecare/practice-api/internal/router"
	"github.com/smilecare/practice-api/internal/service/reschedule"
	"github.com/smilecare/practice-api/internal/service/scheduling"
	"github.com/smilecare/practice-api/internal/service/visit"
	"github.com/smilecare/practice-api/pkg/logger"
	"github.com/smilecare/practice-api/pkg/metrics"
	brokerredis "github.com/smilecare/practice-api/pkg/messaging/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("practice", "scheduling")

	appointmentRepo := postgres.NewAppointmentRepository(db, m)
	blockedSlotRepo := postgres.NewBlockedSlotRepository(db, m)
	paymentRepo := postgres.NewPaymentRepository(db, m)

	// Check-in counters default to postgres; redis serves multi-instance
	// deployments.
	var counterRepo repository.CounterRepository
	switch cfg.Queue.Backend {
	case "redis":
		counterRepo, err = redisrepo.NewCounterRepository(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis counter backend")
		}
	default:
		counterRepo = postgres.NewCounterRepository(db, m)
	}

	notifier := buildNotifier(cfg, appLogger)

	schedulingSvc := scheduling.NewService(appointmentRepo, blockedSlotRepo, notifier, m)
	rescheduleSvc := reschedule.NewService(schedulingSvc, m)
	visitSvc := visit.NewService(appointmentRepo, counterRepo, paymentRepo, notifier, m)

	r := router.NewRouter(
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORSConfig:       corsConfig(cfg),
			MetricsEnabled:   cfg.Monitoring.PrometheusEnabled,
			MetricsPath:      cfg.Monitoring.MetricsPath,
		},
		healthHandler.NewHandler(db),
		appointmentHandler.NewHandler(schedulingSvc, rescheduleSvc),
		scheduleHandler.NewHandler(schedulingSvc),
		visitHandler.NewHandler(visitSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// buildNotifier assembles the outbound side: broker fanout for the
// surrounding application, optional email to the front desk. Both are
// best effort; a nil return disables notifications entirely.
func buildNotifier(cfg *config.Config, appLogger *logger.Logger) notification.Publisher {
	if !cfg.Notifications.Enabled {
		return nil
	}

	var publishers []notification.Publisher

	broker, err := brokerredis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		log.Warn().Err(err).Msg("broker unavailable, continuing without event publishing")
	} else {
		publishers = append(publishers, notification.NewBrokerPublisher(broker, cfg.Notifications.Channel))
	}

	if email := cfg.Notifications.Email; email.Enabled {
		publishers = append(publishers, notification.NewEmailNotifier(notification.EmailConfig{
			Host:     email.Host,
			Port:     email.Port,
			Username: email.Username,
			Password: email.Password,
			From:     email.From,
			To:       email.FrontDesk,
		}))
	}

	if len(publishers) == 0 {
		return nil
	}
	return notification.NewFanout(publishers...)
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return corsCfg
}
