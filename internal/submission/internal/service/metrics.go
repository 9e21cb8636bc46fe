package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeReplaced = "replaced"
)

// GenerationMetrics 评审生成的结果和耗时
type GenerationMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewGenerationMetrics(reg prometheus.Registerer, namespace string) *GenerationMetrics {
	factory := promauto.With(reg)
	return &GenerationMetrics{
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "generation_total",
			Help:      "评审生成次数，按结果区分",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "generation_duration_seconds",
			Help:      "评审生成耗时",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
	}
}

func (m *GenerationMetrics) observe(outcome string, seconds float64) {
	m.total.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(seconds)
}
