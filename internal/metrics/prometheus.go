package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	log logrus.FieldLogger

	jobsCreatedTotal  prometheus.Counter
	applicationsTotal *prometheus.CounterVec
	blobBytesTotal    prometheus.Counter
	compensatedTotal  prometheus.Counter

	eventsPublishedTotal *prometheus.CounterVec
	eventsDroppedTotal   *prometheus.CounterVec
	subscribers          prometheus.Gauge

	orphansRemovedTotal prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusSink creates a sink whose collectors are registered on reg.
func NewPrometheusSink(reg prometheus.Registerer, log logrus.FieldLogger) *PrometheusSink {
	s := &PrometheusSink{log: log}
	s.initPipelineMetrics(reg)
	s.initHubMetrics(reg)
	s.initHTTPMetrics(reg)
	return s
}

func (s *PrometheusSink) initPipelineMetrics(reg prometheus.Registerer) {
	s.jobsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "careers_jobs_created_total",
		Help: "Total number of job openings created.",
	})
	s.applicationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "careers_applications_total",
		Help: "Application submissions by outcome.",
	}, []string{"outcome"})
	s.blobBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "careers_resume_bytes_stored_total",
		Help: "Total bytes of resume content written to the blob store.",
	})
	s.compensatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "careers_resume_compensations_total",
		Help: "Resumes deleted because the candidate insert failed.",
	})
	s.orphansRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "careers_resume_orphans_removed_total",
		Help: "Unreferenced resumes removed by the sweeper.",
	})

	s.register(reg, s.jobsCreatedTotal, "careers_jobs_created_total")
	s.register(reg, s.applicationsTotal, "careers_applications_total")
	s.register(reg, s.blobBytesTotal, "careers_resume_bytes_stored_total")
	s.register(reg, s.compensatedTotal, "careers_resume_compensations_total")
	s.register(reg, s.orphansRemovedTotal, "careers_resume_orphans_removed_total")
}

func (s *PrometheusSink) initHubMetrics(reg prometheus.Registerer) {
	s.eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "careers_events_published_total",
		Help: "Events published to the notification hub.",
	}, []string{"event"})
	s.eventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "careers_events_dropped_total",
		Help: "Per-subscriber deliveries dropped because the subscriber buffer was full.",
	}, []string{"event"})
	s.subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "careers_event_subscribers",
		Help: "Currently connected event stream subscribers.",
	})

	s.register(reg, s.eventsPublishedTotal, "careers_events_published_total")
	s.register(reg, s.eventsDroppedTotal, "careers_events_dropped_total")
	s.register(reg, s.subscribers, "careers_event_subscribers")
}

func (s *PrometheusSink) initHTTPMetrics(reg prometheus.Registerer) {
	s.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "careers_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
	s.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "careers_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method"})

	s.register(reg, s.requestsTotal, "careers_http_requests_total")
	s.register(reg, s.requestDuration, "careers_http_request_duration_seconds")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil && s.log != nil {
		s.log.WithError(err).Warnf("metrics: failed to register %s", name)
	}
}

func (s *PrometheusSink) JobCreated() {
	s.jobsCreatedTotal.Inc()
}

func (s *PrometheusSink) ApplicationSubmitted(outcome string) {
	s.applicationsTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) BlobStored(bytes int64) {
	s.blobBytesTotal.Add(float64(bytes))
}

func (s *PrometheusSink) BlobCompensated() {
	s.compensatedTotal.Inc()
}

func (s *PrometheusSink) EventPublished(name string) {
	s.eventsPublishedTotal.WithLabelValues(name).Inc()
}

func (s *PrometheusSink) EventDropped(name string) {
	s.eventsDroppedTotal.WithLabelValues(name).Inc()
}

func (s *PrometheusSink) SubscribersUpdate(count int) {
	s.subscribers.Set(float64(count))
}

func (s *PrometheusSink) OrphansRemoved(count int) {
	s.orphansRemovedTotal.Add(float64(count))
}

func (s *PrometheusSink) RequestObserved(method string, status int, duration time.Duration) {
	s.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	s.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
