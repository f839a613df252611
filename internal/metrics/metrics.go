// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProviderSet is metrics providers.
var ProviderSet = wire.NewSet(NewRegistry, New)

const namespace = "ambassador"

// Metrics groups the domain and transport collectors.
type Metrics struct {
	registry *prometheus.Registry

	ClicksRecorded        *prometheus.CounterVec
	ClicksEnriched        *prometheus.CounterVec
	GeoLookups            *prometheus.CounterVec
	IntegrationLoads      prometheus.Counter
	InvitationsSent       *prometheus.CounterVec
	InvitationTransitions *prometheus.CounterVec
	SignupEvents          *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates and registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ClicksRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clicks_recorded_total",
				Help:      "Chat clicks received, by outcome",
			},
			[]string{"outcome"},
		),
		ClicksEnriched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clicks_enriched_total",
				Help:      "Click enrichment attempts, by result",
			},
			[]string{"result"},
		),
		GeoLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geo_lookups_total",
				Help:      "IP geolocation lookups, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		IntegrationLoads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "widget_loads_total",
				Help:      "Widget load beacons recorded",
			},
		),
		InvitationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invitations_sent_total",
				Help:      "Invitations created, by email delivery result",
			},
			[]string{"delivered"},
		),
		InvitationTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invitation_transitions_total",
				Help:      "Invitation status changes, by target status and source",
			},
			[]string{"to", "source"},
		),
		SignupEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signup_events_total",
				Help:      "User registration events consumed from the broker, by result",
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by operation and code",
			},
			[]string{"operation", "code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGeoLookup matches geo.WithObserver.
func (m *Metrics) ObserveGeoLookup(provider, outcome string) {
	m.GeoLookups.WithLabelValues(provider, outcome).Inc()
}
