package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"schoolattend/internal/attendance"
	"schoolattend/internal/badge"
	"schoolattend/internal/checkin"
	"schoolattend/internal/cloudinary"
	"schoolattend/internal/config"
	"schoolattend/internal/httpapi"
	"schoolattend/internal/ledgercron"
	"schoolattend/internal/logger"
	"schoolattend/internal/metrics"
	"schoolattend/internal/roster"
	"schoolattend/internal/schedule"
	"schoolattend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg)

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.WithError(err).Fatal("http server failed")
	}
}

func runHTTP(cfg config.App, log *logrus.Logger) error {
	ctx := context.Background()
	loc := cfg.Location()

	db, err := store.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.WithField("addr", cfg.RedisAddr).Warn("redis not reachable, roster cache will be bypassed until it is")
	}

	fallback, err := schedule.ParseWindow(cfg.WorkStartTime, cfg.WorkEndTime)
	if err != nil {
		log.WithError(err).Warn("invalid WORK_START_TIME/WORK_END_TIME, using 08:00-14:00")
		fallback = schedule.DefaultWindow()
	}

	students := roster.NewRepository(db.Client)
	cached := roster.NewCached(students, redisClient.Client, cfg.RosterCacheTTL, log)
	records := attendance.NewRepository(db.Client)
	settings := schedule.NewRepository(db.Client, fallback)
	ledger := checkin.NewLedger()

	pipeline := checkin.New(cached, records, settings, ledger, checkin.Options{
		Location: loc,
		Timeout:  cfg.CheckInTimeout,
		Cooldown: cfg.Cooldown,
		Log:      log,
		Metrics:  metrics.NewCheckin(prometheus.DefaultRegisterer),
		Sinks:    []checkin.FeedbackSink{checkin.LogSink{Log: log}},
	})

	rotation := ledgercron.New(ledger, cfg.LedgerResetSpec, loc, log)
	if err := rotation.Start(); err != nil {
		return err
	}
	defer rotation.Stop()

	badges := badge.NewGenerator(cfg.BadgeSize)
	// Cloudinary publisher (nil when not configured)
	var publisher *badge.Publisher
	if cfg.CloudinaryConfigured() {
		cdn := cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		publisher = &badge.Publisher{Generator: badges, Uploader: cdn}
		log.WithField("cloud", cfg.CloudinaryCloudName).Info("cloudinary configured")
	} else {
		log.Info("cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	r := httpapi.NewRouter(httpapi.Deps{
		Tokens: httpapi.TokenConfig{
			Issuer:     cfg.JWTIssuer,
			SigningKey: cfg.JWTSigningKey,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		Pipeline:   pipeline,
		Students:   students,
		Cache:      cached,
		Attendance: attendance.NewService(records),
		Settings:   settings,
		Badges:     badges,
		Publisher:  publisher,
		Health: map[string]httpapi.HealthCheck{
			"db":    db.Healthy,
			"redis": redisClient.Healthy,
		},
		Metrics:   promhttp.Handler(),
		RateLimit: cfg.RateLimitPerMin,
		Log:       log,
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.HTTPPort,
			"window":   fallback.String(),
			"timezone": loc.String(),
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced shutdown")
	}

	log.Info("server exited")
	return nil
}
