// Package metrics exposes Prometheus instrumentation for the notification
// pipeline and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/notify"
)

// Metrics holds the collectors. Each instance owns its registry so several
// servers (and tests) never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	EventsPublished  *prometheus.CounterVec
	EventsDropped    *prometheus.CounterVec
	SubscriberPanics *prometheus.CounterVec

	Notifications prometheus.Gauge
	Unread        prometheus.Gauge
	BadgeClients  prometheus.Gauge
}

// New registers every collector, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hope_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hope_http_request_duration_seconds",
				Help:    "Histogram of response durations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hope_events_published_total",
				Help: "Events accepted onto the bus",
			},
			[]string{"event"},
		),
		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hope_events_dropped_total",
				Help: "Events dropped because the bus buffer was full",
			},
			[]string{"event"},
		),
		SubscriberPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hope_event_subscriber_panics_total",
				Help: "Recovered panics in event subscribers",
			},
			[]string{"event"},
		),
		Notifications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hope_notifications",
			Help: "Notifications currently in the feed",
		}),
		Unread: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hope_notifications_unread",
			Help: "Unread notifications currently in the feed",
		}),
		BadgeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hope_badge_clients",
			Help: "Connected badge websocket clients",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCount,
		m.RequestDuration,
		m.EventsPublished,
		m.EventsDropped,
		m.SubscriberPanics,
		m.Notifications,
		m.Unread,
		m.BadgeClients,
	)
	return m
}

// ObserveBus counts published, dropped and panicking events.
func (m *Metrics) ObserveBus(bus *eventbus.EventBus) {
	bus.OnPublish(func(e eventbus.Event, _ any) {
		m.EventsPublished.WithLabelValues(string(e)).Inc()
	})
	bus.OnDrop(func(e eventbus.Event, _ any) {
		m.EventsDropped.WithLabelValues(string(e)).Inc()
	})
	bus.OnPanic(func(e eventbus.Event, _ any, _ any) {
		m.SubscriberPanics.WithLabelValues(string(e)).Inc()
	})
}

// ObserveStore keeps the feed gauges in step with store. The returned
// function stops observing.
func (m *Metrics) ObserveStore(store *notify.Store) func() {
	snap := store.Snapshot()
	m.Notifications.Set(float64(len(snap.Items)))
	m.Unread.Set(float64(snap.Unread))

	return store.Subscribe(func(s notify.Snapshot) {
		m.Notifications.Set(float64(len(s.Items)))
		m.Unread.Set(float64(s.Unread))
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
