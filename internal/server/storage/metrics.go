package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer receives telemetry for object store operations.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes uint64, err error)
	RecordDelete(duration time.Duration, err error)
	RecordResolve(duration time.Duration, found bool, err error)
}

// PrometheusObserver exports storage metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
	misses      prometheus.Counter
}

var _ Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the storage metrics on reg. Collectors that
// are already registered are reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "snapster_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of object store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	errs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Count of failed object store operations.",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	uploadBytes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative payload size successfully written to object storage.",
	}))
	if err != nil {
		return nil, err
	}
	misses, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_misses_total",
		Help:      "URL resolutions for objects that do not exist.",
	}))
	if err != nil {
		return nil, err
	}

	return &PrometheusObserver{
		duration:    duration,
		errors:      errs,
		uploadBytes: uploadBytes,
		misses:      misses,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register storage metric: %w", err)
	}
	return c, nil
}

// RecordUpload tracks upload latency, payload size and failures.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes uint64, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("upload").Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	o.record("delete", duration, err)
}

func (o *PrometheusObserver) RecordResolve(duration time.Duration, found bool, err error) {
	o.record("resolve", duration, err)
	if o != nil && err == nil && !found {
		o.misses.Inc()
	}
}

func (o *PrometheusObserver) record(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, uint64, error) {}

func (nopObserver) RecordDelete(time.Duration, error) {}

func (nopObserver) RecordResolve(time.Duration, bool, error) {}
