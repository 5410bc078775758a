package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"schoolattend/internal/attendance"
	"schoolattend/internal/checkin"
	"schoolattend/internal/config"
	"schoolattend/internal/ledgercron"
	"schoolattend/internal/logger"
	"schoolattend/internal/metrics"
	"schoolattend/internal/queue"
	"schoolattend/internal/roster"
	"schoolattend/internal/scan"
	"schoolattend/internal/schedule"
	"schoolattend/internal/store"
)

// Worker is a headless scanner station: it decodes codes from stdin or a
// Redis list and runs each through the check-in pipeline.
func main() {
	cfg := config.Load()
	log := logger.Init(cfg)
	// stdout carries the operator feedback lines
	log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	fallback, err := schedule.ParseWindow(cfg.WorkStartTime, cfg.WorkEndTime)
	if err != nil {
		log.WithError(err).Warn("invalid WORK_START_TIME/WORK_END_TIME, using 08:00-14:00")
		fallback = schedule.DefaultWindow()
	}

	loc := cfg.Location()
	ledger := checkin.NewLedger()
	pipeline := checkin.New(
		roster.NewCached(roster.NewRepository(db.Client), redisClient.Client, cfg.RosterCacheTTL, log),
		attendance.NewRepository(db.Client),
		schedule.NewRepository(db.Client, fallback),
		ledger,
		checkin.Options{
			Location: loc,
			Timeout:  cfg.CheckInTimeout,
			Cooldown: cfg.Cooldown,
			Log:      log,
			Metrics:  metrics.NewCheckin(prometheus.DefaultRegisterer),
			Sinks: []checkin.FeedbackSink{
				checkin.WriterSink{W: os.Stdout, Bell: cfg.TerminalBell},
				checkin.LogSink{Log: log},
			},
		},
	)

	rotation := ledgercron.New(ledger, cfg.LedgerResetSpec, loc, log)
	if err := rotation.Start(); err != nil {
		log.WithError(err).Fatal("ledger rotation init failed")
	}
	defer rotation.Stop()

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, prometheus.DefaultGatherer)
	go func() {
		log.WithField("port", cfg.MetricsPort).Info("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	codes, err := decoderFor(cfg, redisClient, log).Decode(ctx)
	if err != nil {
		log.WithError(err).Fatal("decoder init failed")
	}

	log.WithField("backend", cfg.QueueBackend).Info("station started, waiting for scans...")
	for code := range codes {
		if _, processed := pipeline.ProcessFrom(ctx, code.Source, code.Text); !processed {
			log.WithFields(logrus.Fields{
				"raw":    code.Text,
				"source": code.Source,
			}).Debug("scan ignored during cool-down")
		}
	}

	counts := ledger.Counts()
	log.WithFields(logrus.Fields{
		"success":   counts.Success,
		"duplicate": counts.Duplicate,
		"error":     counts.Error,
	}).Info("station stopped")
}

// decoderFor picks the scan source: a keyboard-wedge scanner on stdin for the
// memory backend, the shared Redis list otherwise.
func decoderFor(cfg config.App, redisClient *store.Redis, log logrus.FieldLogger) scan.Decoder {
	if cfg.QueueBackend == "memory" {
		return scan.LineDecoder{Reader: os.Stdin, Queue: queue.NewInMemory(64), Log: log}
	}
	return scan.QueueDecoder{Queue: queue.NewRedisQueue(redisClient.Client, cfg.ScanQueueKey), Log: log}
}
