package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface with Prometheus collectors on a
// private registry.
type Prometheus struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	records       prometheus.Gauge
	boxes         prometheus.Gauge

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	submissions    *prometheus.CounterVec
	profileChecks  *prometheus.CounterVec
	profileLatency prometheus.Histogram
}

// NewPrometheus creates the collectors and registers them, together with the
// Go runtime and process collectors, on a new registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "stage_errors_total",
			Help:      "Failed pipeline stages.",
		}, []string{"stage"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atlas",
			Name:      "records",
			Help:      "Records in the last successful fetch.",
		}),
		boxes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atlas",
			Name:      "layout_boxes",
			Help:      "Category boxes in the last computed layout.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"kind", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests.",
		}, []string{"method", "host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "http_client_duration_seconds",
			Help:      "Outgoing HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "submissions_total",
			Help:      "Submission attempts.",
		}, []string{"queue", "result", "custom_category"}),
		profileChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "profile_checks_total",
			Help:      "Profile URL checks by outcome.",
		}, []string{"status"}),
		profileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "profile_check_duration_seconds",
			Help:      "Profile URL check latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.stageDuration, p.stageErrors, p.records, p.boxes,
		p.cacheOps, p.cacheBytes,
		p.httpRequests, p.httpDuration,
		p.submissions, p.profileChecks, p.profileLatency,
	)
	return p
}

// Register installs p for every hook category.
func Register(p *Prometheus) {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
	SetSubmitHooks(p)
	SetProfileHooks(p)
}

// Registry returns the registry holding p's collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) OnFetchStart(context.Context, string) {}

func (p *Prometheus) OnFetchComplete(_ context.Context, _ string, n int, d time.Duration, err error) {
	p.stage("fetch", d, err)
	if err == nil {
		p.records.Set(float64(n))
	}
}

func (p *Prometheus) OnLayoutStart(context.Context, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, boxes int, d time.Duration, err error) {
	p.stage("layout", d, err)
	if err == nil {
		p.boxes.Set(float64(boxes))
	}
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.stage("render", d, err)
}

func (p *Prometheus) stage(name string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(name).Inc()
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, kind string) {
	p.cacheOps.WithLabelValues(kind, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, kind string) {
	p.cacheOps.WithLabelValues(kind, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, kind string, size int) {
	p.cacheOps.WithLabelValues(kind, "set").Inc()
	p.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.httpRequests.WithLabelValues(method, host, "error").Inc()
}

func (p *Prometheus) OnSubmit(_ context.Context, queue string, custom bool, _ time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.submissions.WithLabelValues(queue, result, strconv.FormatBool(custom)).Inc()
}

func (p *Prometheus) OnProfileCheck(_ context.Context, status string, d time.Duration) {
	p.profileChecks.WithLabelValues(status).Inc()
	p.profileLatency.Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
	_ SubmitHooks   = (*Prometheus)(nil)
	_ ProfileHooks  = (*Prometheus)(nil)
)
