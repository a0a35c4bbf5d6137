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
// ミドルウェアとサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordLikeApplied()
	RecordLikeRemoved()
	RecordCommentAdded()
	RecordCommentRemoved()
	RecordVersionConflict()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	likesApplied    prometheus.Counter
	likesRemoved    prometheus.Counter
	commentsAdded   prometheus.Counter
	commentsRemoved prometheus.Counter
	versionConflict prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devconnect_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devconnect_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		likesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devconnect_likes_applied_total",
			Help: "付与されたいいねの合計数",
		}),
		likesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devconnect_likes_removed_total",
			Help: "取り消されたいいねの合計数",
		}),
		commentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devconnect_comments_added_total",
			Help: "追加されたコメントの合計数",
		}),
		commentsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devconnect_comments_removed_total",
			Help: "削除されたコメントの合計数",
		}),
		versionConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devconnect_version_conflict_total",
			Help: "投稿・プロフィール更新時のバージョン競合（リトライ発生）の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.likesApplied,
		c.likesRemoved,
		c.commentsAdded,
		c.commentsRemoved,
		c.versionConflict,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLikeApplied はいいね付与を記録する。
func (c *Collector) RecordLikeApplied() {
	c.likesApplied.Inc()
}

// RecordLikeRemoved はいいね取り消しを記録する。
func (c *Collector) RecordLikeRemoved() {
	c.likesRemoved.Inc()
}

// RecordCommentAdded はコメント追加を記録する。
func (c *Collector) RecordCommentAdded() {
	c.commentsAdded.Inc()
}

// RecordCommentRemoved はコメント削除を記録する。
func (c *Collector) RecordCommentRemoved() {
	c.commentsRemoved.Inc()
}

// RecordVersionConflict は更新時のバージョン競合を記録する。
func (c *Collector) RecordVersionConflict() {
	c.versionConflict.Inc()
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
