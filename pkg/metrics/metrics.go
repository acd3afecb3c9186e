// Package metrics 提供基于Prometheus的指标收集
//
// 指标命名规范：
// - Counter以_total结尾（borrows_total）
// - Histogram以单位结尾（_seconds）
// - Gauge使用现在时态（http_requests_in_progress）
//
// 标签只用低基数维度（method、path、status、result），
// 不要把user_id、book_id这类高基数值做成标签。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// BorrowsTotal 借阅总数（Counter）
	// 标签：result（success/unavailable/conflict/error）
	BorrowsTotal *prometheus.CounterVec

	// ReturnsTotal 归还总数（Counter）
	// 标签：result（success/conflict/forbidden/error）
	ReturnsTotal *prometheus.CounterVec

	// FinesAssessedTotal 累计产生的罚金金额（Counter）
	FinesAssessedTotal prometheus.Counter

	// BorrowDuration 借阅事务耗时（Histogram）
	BorrowDuration prometheus.Histogram

	// 逾期巡检指标

	// OverdueMarkedTotal 被标记为逾期的记录总数（Counter）
	OverdueMarkedTotal prometheus.Counter

	// SweepDuration 逾期巡检耗时（Histogram）
	SweepDuration prometheus.Histogram

	// 通知指标

	// NoticesPublishedTotal 催还通知发布总数（Counter）
	// 标签：result（success/failure）
	NoticesPublishedTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry。
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	BorrowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borrows_total",
			Help: "借阅操作总数",
		},
		[]string{"result"},
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "returns_total",
			Help: "归还操作总数",
		},
		[]string{"result"},
	)

	FinesAssessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fines_assessed_total",
			Help: "累计产生的罚金金额",
		},
	)

	BorrowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "borrow_duration_seconds",
			Help:    "借阅事务耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// 逾期巡检指标
	OverdueMarkedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overdue_marked_total",
			Help: "被标记为逾期的借阅记录总数",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overdue_sweep_duration_seconds",
			Help:    "逾期巡检耗时（秒）",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30},
		},
	)

	// 通知指标
	NoticesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdue_notices_published_total",
			Help: "催还通知发布总数",
		},
		[]string{"result"},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// AddCounter 累加Counter
func AddCounter(counter prometheus.Counter, value float64) {
	if counter == nil {
		return
	}
	counter.Add(value)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}
