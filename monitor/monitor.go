// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/cardauction/game"
)

type Metrics struct {
	OnlinePlayers     prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	ActionsTotal      prometheus.Counter
	RejectionsTotal   prometheus.Counter
	AuctionsCompleted prometheus.Counter
	ActionLatency     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		ActionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total player actions processed",
		}),
		RejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_actions_total",
			Help:      "Total player actions rejected by the state machine",
		}),
		AuctionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auctions_completed_total",
			Help:      "Total completed auction transactions",
		}),
		ActionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_latency_seconds",
			Help:      "Action processing latency inside the room worker",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.ActionsTotal,
		m.RejectionsTotal,
		m.AuctionsCompleted,
		m.ActionLatency,
	)

	return m
}

// Monitor exposes prometheus metrics plus a couple of expvar basics. It also
// implements room.Observer so room workers can feed it directly.
type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))
	mux.Handle("/debug/vars", expvar.Handler())

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

// --- room.Observer ---

func (m *Monitor) RoomEvent(roomID string, ev game.Event) {
	if ev.Kind == game.EventAuctionComplete {
		m.metrics.AuctionsCompleted.Inc()
	}
}

func (m *Monitor) RoomFinished(roomID string, final *game.State) {}

func (m *Monitor) ActionProcessed(roomID string, took time.Duration, rejected bool) {
	m.metrics.ActionsTotal.Inc()
	if rejected {
		m.metrics.RejectionsTotal.Inc()
	}
	m.metrics.ActionLatency.Observe(took.Seconds())
}
