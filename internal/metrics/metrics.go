// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordUserMinted()
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordHTTPStatus(statusCode int)
	RecordLLMLatency(duration time.Duration)
	RecordLLMFailure(kind string)
	RecordReportRefreshed()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	userMinted      prometheus.Counter
	cacheHit        *prometheus.CounterVec
	cacheMiss       *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	llmLatency      prometheus.Histogram
	llmFail         *prometheus.CounterVec
	reportRefreshed prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		userMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bedrock_users_minted_total",
			Help: "新規発行されたユーザーIDの合計数",
		}),
		cacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bedrock_cache_hit_total",
			Help: "キャッシュヒットの合計数",
		}, []string{"cache"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bedrock_cache_miss_total",
			Help: "キャッシュミスの合計数",
		}, []string{"cache"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bedrock_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bedrock_llm_latency_seconds",
			Help:    "LLM呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		llmFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bedrock_llm_fail_total",
			Help: "LLM呼び出し失敗の合計数",
		}, []string{"kind"}),
		reportRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bedrock_report_refreshed_total",
			Help: "再生成された秘書レポートの合計数",
		}),
	}

	reg.MustRegister(
		c.userMinted,
		c.cacheHit,
		c.cacheMiss,
		c.httpStatus,
		c.llmLatency,
		c.llmFail,
		c.reportRefreshed,
	)

	return c
}

// RecordUserMinted は新規ユーザーIDの発行を記録する。
func (c *Collector) RecordUserMinted() {
	c.userMinted.Inc()
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(cache string) {
	c.cacheHit.WithLabelValues(cache).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(cache string) {
	c.cacheMiss.WithLabelValues(cache).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordLLMLatency はLLM呼び出しのレイテンシを記録する。
func (c *Collector) RecordLLMLatency(duration time.Duration) {
	c.llmLatency.Observe(duration.Seconds())
}

// RecordLLMFailure はLLM呼び出し失敗を記録する。kindは"summary"または"report"。
func (c *Collector) RecordLLMFailure(kind string) {
	c.llmFail.WithLabelValues(kind).Inc()
}

// RecordReportRefreshed は秘書レポートの再生成を記録する。
func (c *Collector) RecordReportRefreshed() {
	c.reportRefreshed.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
