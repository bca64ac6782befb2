// Package metrics provides Prometheus instrumentation for the skill server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the counters and histograms the skill exposes. One
// instance is shared by every component; all methods are safe for concurrent
// use.
type Collector struct {
	commands     *prometheus.CounterVec
	addItems     *prometheus.CounterVec
	authRequests *prometheus.CounterVec
	tokenCache   *prometheus.CounterVec
	retries      prometheus.Counter
	upstream     prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skill_commands_total",
			Help: "Inbound Alexa commands by kind.",
		}, []string{"command"}),
		addItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skill_add_item_total",
			Help: "Add-item attempts against Cookidoo by result.",
		}, []string{"result"}),
		authRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skill_auth_requests_total",
			Help: "Cookidoo token grants by grant type and result.",
		}, []string{"grant", "result"}),
		tokenCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skill_token_cache_events_total",
			Help: "Token cache events (hit, miss, invalidate).",
		}, []string{"event"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skill_unauthorized_retries_total",
			Help: "Add-item retries triggered by an unauthorized response.",
		}),
		upstream: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skill_upstream_latency_seconds",
			Help:    "Latency of outbound Cookidoo requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.commands,
		c.addItems,
		c.authRequests,
		c.tokenCache,
		c.retries,
		c.upstream,
	)

	return c
}

// RecordCommand counts one inbound Alexa command.
func (c *Collector) RecordCommand(kind string) {
	c.commands.WithLabelValues(kind).Inc()
}

// RecordAddItem counts one add-item attempt with its result
// (success, auth_failed, request_failed).
func (c *Collector) RecordAddItem(result string) {
	c.addItems.WithLabelValues(result).Inc()
}

// RecordAuthRequest counts one token grant attempt.
func (c *Collector) RecordAuthRequest(grant, result string) {
	c.authRequests.WithLabelValues(grant, result).Inc()
}

// RecordTokenCacheEvent counts one token cache event.
func (c *Collector) RecordTokenCacheEvent(event string) {
	c.tokenCache.WithLabelValues(event).Inc()
}

// RecordUnauthorizedRetry counts one 401-triggered add-item retry.
func (c *Collector) RecordUnauthorizedRetry() {
	c.retries.Inc()
}

// RecordUpstreamLatency records the duration of one outbound Cookidoo request.
func (c *Collector) RecordUpstreamLatency(d time.Duration) {
	c.upstream.Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
