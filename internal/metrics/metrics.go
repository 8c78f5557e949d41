package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pressdesk"

// DOI 登记结果标签
const (
	DOIResultRegistered = "registered"
	DOIResultFailed     = "failed"
	DOIResultSkipped    = "skipped"
	DOIResultInProgress = "in_progress"
)

var (
	contentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_transitions_total",
			Help:      "Content status transitions applied, by source and target status",
		},
		[]string{"from", "to"},
	)
	doiRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doi_registrations_total",
			Help:      "DOI registration attempts by result",
		},
		[]string{"result"},
	)
	crossrefDepositSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crossref_deposit_duration_seconds",
			Help:      "Latency of Crossref deposit requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
	)
	reviewQueueItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "review_queue_items",
			Help:      "Items returned by the last pending-review snapshot",
		},
		[]string{"kind"},
	)
	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and response code",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

var registerOnce sync.Once

// Register 注册全部指标到默认 registry（可重复调用）
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			contentTransitions,
			doiRegistrations,
			crossrefDepositSeconds,
			reviewQueueItems,
			httpRequestSeconds,
		)
	})
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTransition 记录一次状态流转
func ObserveTransition(from, to string) {
	contentTransitions.WithLabelValues(from, to).Inc()
}

// ObserveDOIRegistration 记录 DOI 登记结果
func ObserveDOIRegistration(result string) {
	doiRegistrations.WithLabelValues(result).Inc()
}

// ObserveDeposit 记录 Crossref 提交耗时
func ObserveDeposit(duration time.Duration) {
	crossrefDepositSeconds.Observe(duration.Seconds())
}

// SetReviewQueueSize 记录审核队列快照大小
func SetReviewQueueSize(kind string, size int) {
	reviewQueueItems.WithLabelValues(kind).Set(float64(size))
}

// ObserveHTTPRequest 记录一次 HTTP 请求
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestSeconds.WithLabelValues(method, route, strconv.Itoa(code)).Observe(duration.Seconds())
}
