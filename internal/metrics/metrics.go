// Package metrics exports run telemetry in the Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

const namespace = "clarifyflow"

// Recorder receives run telemetry from the orchestrator.
type Recorder interface {
	RecordTask(task string, outcome string)
	RecordVerification(variant domain.Variant, result domain.TestRunResult, duration time.Duration)
	RecordFallback(variant domain.Variant)
	RecordClarification(provenance domain.Provenance)
	RecordImprovement(task string, improvement int)
}

// Task outcomes passed to RecordTask.
const (
	OutcomeReported = "reported"
	OutcomeSkipped  = "skipped"
)

// Prometheus records into its own registry.
type Prometheus struct {
	registry       *prometheus.Registry
	tasks          *prometheus.CounterVec
	cases          *prometheus.CounterVec
	verifyDuration *prometheus.HistogramVec
	fallbacks      *prometheus.CounterVec
	clarifications *prometheus.CounterVec
	improvement    *prometheus.GaugeVec
}

// NewPrometheus registers all collectors on a fresh registry.
func NewPrometheus() (*Prometheus, error) {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks processed, by outcome.",
		}, []string{"outcome"}),
		cases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Test cases executed, by variant and result.",
		}, []string{"variant", "result"}),
		verifyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "Time spent verifying one artifact.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variant"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_fallbacks_total",
			Help:      "Code strategy failures that fell back to templates.",
		}, []string{"variant"}),
		clarifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clarifications_total",
			Help:      "Non-empty clarification records, by provenance.",
		}, []string{"provenance"}),
		improvement: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "improvement_cases",
			Help:      "Clarified minus baseline passing cases for the last run of a task.",
		}, []string{"task"}),
	}

	collectors := []prometheus.Collector{p.tasks, p.cases, p.verifyDuration, p.fallbacks, p.clarifications, p.improvement}
	for _, c := range collectors {
		if err := p.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return p, nil
}

// RecordTask counts a processed task.
func (p *Prometheus) RecordTask(_ string, outcome string) {
	p.tasks.WithLabelValues(outcome).Inc()
}

// RecordVerification counts case results and observes the duration.
func (p *Prometheus) RecordVerification(variant domain.Variant, result domain.TestRunResult, duration time.Duration) {
	v := string(variant)
	p.cases.WithLabelValues(v, "pass").Add(float64(result.Passed))
	p.cases.WithLabelValues(v, "fail").Add(float64(result.Total - result.Passed))
	p.verifyDuration.WithLabelValues(v).Observe(duration.Seconds())
}

// RecordFallback counts a generation fallback.
func (p *Prometheus) RecordFallback(variant domain.Variant) {
	p.fallbacks.WithLabelValues(string(variant)).Inc()
}

// RecordClarification counts a non-empty clarification record.
func (p *Prometheus) RecordClarification(provenance domain.Provenance) {
	p.clarifications.WithLabelValues(string(provenance)).Inc()
}

// RecordImprovement sets the improvement gauge for task.
func (p *Prometheus) RecordImprovement(task string, improvement int) {
	p.improvement.WithLabelValues(task).Set(float64(improvement))
}

// Gatherer exposes the underlying registry.
func (p *Prometheus) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteFile writes every metric to path in the text exposition format.
func (p *Prometheus) WriteFile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics file path: %w", cferrors.ErrEmptyValue)
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTask(string, string) {}

func (Nop) RecordVerification(domain.Variant, domain.TestRunResult, time.Duration) {}

func (Nop) RecordFallback(domain.Variant) {}

func (Nop) RecordClarification(domain.Provenance) {}

func (Nop) RecordImprovement(string, int) {}
