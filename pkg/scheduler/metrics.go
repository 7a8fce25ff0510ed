package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics reports scheduler activity to Prometheus. A nil *Metrics is valid
// and records nothing
type Metrics struct {
	scheduled prometheus.Counter
	immediate prometheus.Counter
	executed  prometheus.Counter
	failed    prometheus.Counter
	cancelled prometheus.Counter
	armed     prometheus.Counter
	fired     prometheus.Counter
	pending   prometheus.Gauge
}

const (
	metricNamespace = "alarm"
	metricSubsystem = "scheduler"
)

// NewMetrics creates the scheduler collectors and registers them with reg
// when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scheduled: newCounter("tasks_scheduled_total",
			"Tasks placed in the queue"),
		immediate: newCounter("tasks_immediate_total",
			"Tasks run inline because their time had already passed"),
		executed: newCounter("tasks_executed_total",
			"Task callbacks that completed without error"),
		failed: newCounter("tasks_failed_total",
			"Task callbacks that returned an error or panicked"),
		cancelled: newCounter("tasks_cancelled_total",
			"Pending tasks removed by cancellation"),
		armed: newCounter("timer_armed_total",
			"Platform timers started"),
		fired: newCounter("timer_fired_total",
			"Platform timer wake-ups handled"),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "tasks_pending",
			Help:      "Tasks currently waiting in the queue",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.scheduled, m.immediate, m.executed, m.failed,
			m.cancelled, m.armed, m.fired, m.pending,
		)
	}
	return m
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricNamespace,
		Subsystem: metricSubsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Metrics) taskScheduled(pending int) {
	if m == nil {
		return
	}
	m.scheduled.Inc()
	m.pending.Set(float64(pending))
}

func (m *Metrics) taskImmediate() {
	if m != nil {
		m.immediate.Inc()
	}
}

func (m *Metrics) taskExecuted() {
	if m != nil {
		m.executed.Inc()
	}
}

func (m *Metrics) taskFailed() {
	if m != nil {
		m.failed.Inc()
	}
}

func (m *Metrics) taskCancelled() {
	if m != nil {
		m.cancelled.Inc()
	}
}

func (m *Metrics) timerArmed() {
	if m != nil {
		m.armed.Inc()
	}
}

func (m *Metrics) timerFired() {
	if m != nil {
		m.fired.Inc()
	}
}

func (m *Metrics) setPending(pending int) {
	if m != nil {
		m.pending.Set(float64(pending))
	}
}
