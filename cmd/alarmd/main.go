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

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	app "github.com/kode4food/alarm"
	"github.com/kode4food/alarm/internal/config"
	"github.com/kode4food/alarm/internal/relay"
	"github.com/kode4food/alarm/internal/server"
	"github.com/kode4food/alarm/pkg/log"
	"github.com/kode4food/alarm/pkg/scheduler"
)

var ErrConnectRelay = errors.New("failed to connect relay")

type alarmd struct {
	cfg        *config.Config
	sched      *scheduler.Scheduler
	apiServer  *server.Server
	httpServer *http.Server
	relay      *relay.Redis
	stopRelay  context.CancelFunc
	quit       chan os.Signal
}

func main() {
	// a missing .env file is fine; the environment may already be set
	_ = godotenv.Load(".env")

	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &alarmd{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *alarmd) run() error {
	s.initializeScheduler()
	s.startServer()
	if err := s.startRelay(); err != nil {
		s.shutdown()
		return err
	}

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *alarmd) setupLogging() {
	level, ok := log.ParseLevel(s.cfg.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Alarm daemon starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort),
		slog.Int64("max_delay_ms", s.cfg.MaxDelay),
		slog.String("redis_addr", s.cfg.RedisAddr),
		slog.String("redis_channel", s.cfg.RedisChannel))
}

func (s *alarmd) initializeScheduler() {
	now, makeTimer := scheduler.FromClock(clock.New())
	s.sched = scheduler.New(s.cfg.MaxDelayDuration(), scheduler.Dependencies{
		Clock:            now,
		TimerConstructor: makeTimer,
		Metrics:          scheduler.NewMetrics(prometheus.DefaultRegisterer),
	})
}

func (s *alarmd) startServer() {
	s.apiServer = server.NewServer(s.sched, prometheus.DefaultGatherer)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			s.quit <- syscall.SIGTERM
		}
	}()
}

func (s *alarmd) startRelay() error {
	if s.cfg.RedisAddr == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()
	r, err := relay.NewRedis(ctx, s.cfg.RedisAddr, s.cfg.RedisChannel)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectRelay, err)
	}

	s.relay = r
	var relayCtx context.Context
	relayCtx, s.stopRelay = context.WithCancel(context.Background())
	s.apiServer.Forward(relayCtx, r)

	slog.Info("Relaying fired alarms",
		slog.String("redis_addr", s.cfg.RedisAddr),
		slog.String("channel", r.Channel()))
	return nil
}

func (s *alarmd) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.sched.Stop()
	s.apiServer.Close()

	if s.relay != nil {
		s.stopRelay()
		_ = s.relay.Close()
	}

	slog.Info("Server exited")
}
