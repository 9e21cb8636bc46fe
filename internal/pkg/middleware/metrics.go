package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsBuilder struct {
	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec
	// 命中限流的请求单独计数
	throttled *prometheus.CounterVec
}

// NewMetricsBuilder 同一个 reg 上只能调用一次，否则重复注册会 panic
func NewMetricsBuilder(reg prometheus.Registerer, namespace string) *MetricsBuilder {
	factory := promauto.With(reg)
	summaryVec := factory.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		},
		[]string{"method", "path", "status_code"},
	)

	counterVec := factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	throttled := factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_throttled_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		},
		[]string{"method", "path"},
	)

	return &MetricsBuilder{
		summaryVec: summaryVec,
		counterVec: counterVec,
		throttled:  throttled,
	}
}

func (a *MetricsBuilder) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// 处理请求
		ctx.Next()

		duration := time.Since(start).Seconds()

		method := ctx.Request.Method
		// 用路由模板，避免路径参数导致指标爆炸
		path := ctx.FullPath()
		if path == "" {
			path = ctx.Request.URL.Path
		}
		status := ctx.Writer.Status()
		statusCode := strconv.Itoa(status)

		a.summaryVec.WithLabelValues(method, path, statusCode).Observe(duration)
		a.counterVec.WithLabelValues(method, path, statusCode).Inc()
		if status == 429 {
			a.throttled.WithLabelValues(method, path).Inc()
		}
	}
}
