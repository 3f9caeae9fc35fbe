// Package metrics exports worker events as Prometheus metrics.
//
// A Collector is a worker.EventHandler. Register it with
// worker.WithEventHandler and serve its registry with Handler:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	w, _ := worker.New[Settings](hooks, worker.WithEventHandler(c))
//	http.Handle("/metrics", c.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/threadworker/pkg/worker"
)

// Collector records worker events on a Prometheus registry.
type Collector struct {
	worker.BaseEventHandler

	gatherer prometheus.Gatherer

	state        *prometheus.GaugeVec
	transitions  *prometheus.CounterVec
	hooks        *prometheus.CounterVec
	hookDuration *prometheus.HistogramVec
	rejected     *prometheus.CounterVec
}

// NewCollector creates the worker metrics and registers them on reg.
// It panics if they are already registered there.
func NewCollector(reg *prometheus.Registry) *Collector {
	f := promauto.With(reg)

	return &Collector{
		gatherer: reg,

		// State holds the numeric lifecycle state of each worker.
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "threadworker_state",
			Help: "Current lifecycle state (0 uninitialized, 1 running, 2 paused, 3 resuming, 4 shutdown).",
		}, []string{"worker"}),

		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "threadworker_transitions_total",
			Help: "Total number of lifecycle state transitions.",
		}, []string{"worker", "from", "to"}),

		hooks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "threadworker_hook_invocations_total",
			Help: "Total number of hook invocations.",
		}, []string{"worker", "hook"}),

		hookDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "threadworker_hook_duration_seconds",
			Help:    "Duration of hook invocations in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"worker", "hook"}),

		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "threadworker_configurations_rejected_total",
			Help: "Total number of configurations rejected because one was pending.",
		}, []string{"worker"}),
	}
}

// OnStateChange implements worker.EventHandler.
func (c *Collector) OnStateChange(e worker.StateChangeEvent) {
	c.state.WithLabelValues(e.Name).Set(float64(e.Current))
	c.transitions.WithLabelValues(e.Name, e.Previous.String(), e.Current.String()).Inc()
}

// OnHook implements worker.EventHandler.
func (c *Collector) OnHook(e worker.HookEvent) {
	hook := e.Hook.String()
	c.hooks.WithLabelValues(e.Name, hook).Inc()
	c.hookDuration.WithLabelValues(e.Name, hook).Observe(e.Duration.Seconds())
}

// OnConfigurationRejected implements worker.EventHandler.
func (c *Collector) OnConfigurationRejected(e worker.ConfigurationRejectedEvent) {
	c.rejected.WithLabelValues(e.Name).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

var _ worker.EventHandler = (*Collector)(nil)
