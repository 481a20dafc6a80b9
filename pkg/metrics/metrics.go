// Package metrics 定义了服务暴露给 Prometheus 的指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	actionsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studylife",
			Name:      "actions_dispatched_total",
			Help:      "AI actions processed by the dispatcher, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studylife",
			Name:      "ai_gateway_requests_total",
			Help:      "Calls to the external AI service.",
		},
		[]string{"status"},
	)

	gatewayLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "studylife",
			Name:      "ai_gateway_latency_seconds",
			Help:      "Latency of calls to the external AI service.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	summariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studylife",
			Name:      "summaries_generated_total",
			Help:      "Daily/monthly summaries generated, by kind and whether the local fallback was used.",
		},
		[]string{"kind", "fallback"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studylife",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// 动作结果标签
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// RecordAction 记录一条动作的处理结果。
func RecordAction(actionType, outcome string) {
	actionsDispatchedTotal.WithLabelValues(actionType, outcome).Inc()
}

// ObserveGateway 记录一次 AI 服务调用。
func ObserveGateway(start time.Time, failed bool) {
	gatewayLatency.Observe(time.Since(start).Seconds())
	status := "ok"
	if failed {
		status = "error"
	}
	gatewayRequestsTotal.WithLabelValues(status).Inc()
}

// RecordSummary 记录一次总结生成。
func RecordSummary(kind string, fallback bool) {
	fb := "false"
	if fallback {
		fb = "true"
	}
	summariesTotal.WithLabelValues(kind, fb).Inc()
}

// ObserveHTTP 记录一次 HTTP 请求。route 使用路由模板而不是原始路径。
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler 返回 /metrics 的 gin 处理函数。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
