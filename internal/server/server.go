package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kode4food/alarm/internal/util"
	"github.com/kode4food/alarm/pkg/api"
	"github.com/kode4food/alarm/pkg/log"
	"github.com/kode4food/alarm/pkg/scheduler"
)

type (
	// Server implements the HTTP API server for the alarm daemon
	Server struct {
		sched    *scheduler.Scheduler
		gatherer prometheus.Gatherer
		fired    topic.Topic[*api.FiredAlarm]
		producer topic.Producer[*api.FiredAlarm]
		alarms   map[api.AlarmID]*pendingAlarm
		sockets  util.Set[*Client]
		mu       sync.Mutex
		closeMu  sync.RWMutex
		closed   bool
	}

	// Sink receives fired alarms forwarded by the server
	Sink interface {
		Publish(context.Context, *api.FiredAlarm) error
	}

	pendingAlarm struct {
		at   time.Time
		task scheduler.TaskID
	}
)

var (
	ErrInvalidBody     = errors.New("request body is not valid JSON")
	ErrMissingTime     = errors.New("request is missing an alarm time")
	ErrInvalidMaxDelay = errors.New("max delay must be positive")
)

// NewServer creates a new HTTP API server over sched. Metrics are served
// from gatherer, or from the default Prometheus registry when it is nil
func NewServer(
	sched *scheduler.Scheduler, gatherer prometheus.Gatherer,
) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	fired := caravan.NewTopic[*api.FiredAlarm]()
	return &Server{
		sched:    sched,
		gatherer: gatherer,
		fired:    fired,
		producer: fired.NewProducer(),
		alarms:   map[api.AlarmID]*pendingAlarm{},
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}),
	))

	alarms := router.Group("/alarm")
	{
		alarms.GET("", s.listAlarms)
		alarms.POST("", s.scheduleAlarm)
		alarms.DELETE("/:alarmID", s.cancelAlarm)
	}

	router.PUT("/config/max-delay", s.updateMaxDelay)
	router.GET("/ws", s.handleWebSocket)

	return router
}

// Close disconnects WebSocket clients and stops publishing fired alarms.
// Alarms that fire afterward are dropped
func (s *Server) Close() {
	s.CloseWebSockets()

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.producer.Close()
}

func (s *Server) publish(fired *api.FiredAlarm) bool {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return false
	}
	s.producer.Send() <- fired
	return true
}

// Forward delivers every alarm fired from now on to sink until ctx is done
// or the server is closed. Delivery failures are logged and skipped
func (s *Server) Forward(ctx context.Context, sink Sink) {
	consumer := s.fired.NewConsumer()
	go func() {
		defer consumer.Close()
		for {
			select {
			case fired, ok := <-consumer.Receive():
				if !ok {
					return
				}
				if err := sink.Publish(ctx, fired); err != nil {
					slog.Error("Failed to forward fired alarm",
						log.AlarmID(fired.ID),
						log.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:     "ok",
		Pending:    len(s.sched.Pending()),
		MaxDelayMS: s.sched.MaxDelay().Milliseconds(),
	})
}

func (s *Server) updateMaxDelay(c *gin.Context) {
	var req api.MaxDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, ErrInvalidBody)
		return
	}
	if req.MaxDelayMS <= 0 {
		writeError(c, http.StatusBadRequest, ErrInvalidMaxDelay)
		return
	}

	ms := min(req.MaxDelayMS, scheduler.MaxTimerDelay.Milliseconds())
	s.sched.SetMaxDelay(time.Duration(ms) * time.Millisecond)
	slog.Info("Max delay updated",
		slog.Int64("max_delay_ms", s.sched.MaxDelay().Milliseconds()))

	c.JSON(http.StatusOK, api.MaxDelayResponse{
		MaxDelayMS: s.sched.MaxDelay().Milliseconds(),
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Values()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
