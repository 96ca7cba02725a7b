// Package metrics collects and exposes Prometheus metrics for the pipeline
// and the HTTP boundary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service metrics. It implements
// usecase.PipelineMetrics.
type Collector struct {
	registry *prometheus.Registry

	stageFailures     *prometheus.CounterVec
	pipelineSuccess   prometheus.Counter
	extractionLatency prometheus.Histogram
	httpRequests      *prometheus.CounterVec
}

// NewCollector creates a collector backed by its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "buybuddy_pipeline_stage_failures_total",
			Help: "Pipeline failures by stage.",
		}, []string{"stage"}),
		pipelineSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buybuddy_pipeline_success_total",
			Help: "Completed pipeline invocations.",
		}),
		extractionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "buybuddy_extraction_latency_seconds",
			Help:    "Product page extraction latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "buybuddy_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}

	c.registry.MustRegister(
		c.stageFailures,
		c.pipelineSuccess,
		c.extractionLatency,
		c.httpRequests,
	)

	return c
}

// RecordStageFailure counts a pipeline failure at the given stage.
func (c *Collector) RecordStageFailure(stage string) {
	c.stageFailures.WithLabelValues(stage).Inc()
}

// RecordPipelineSuccess counts a completed pipeline invocation.
func (c *Collector) RecordPipelineSuccess() {
	c.pipelineSuccess.Inc()
}

// RecordExtractionLatency observes one extraction duration.
func (c *Collector) RecordExtractionLatency(d time.Duration) {
	c.extractionLatency.Observe(d.Seconds())
}

// RecordHTTPRequest counts a handled HTTP request.
func (c *Collector) RecordHTTPRequest(method string, status int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler returns the Prometheus exposition handler for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
