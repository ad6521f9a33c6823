package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosignals_scans_total",
		Help: "Total number of signal scans by real-only mode",
	}, []string{"real_only"})
	ScanDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosignals_scan_duration_ms",
		Help:    "Scan duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	LayerFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosignals_layer_fail_total",
		Help: "Geometry layer fetch failures (layer degraded to empty)",
	}, []string{"layer"})
	LayerFeatures = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geosignals_layer_features",
		Help:    "Features returned per geometry layer fetch",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
	}, []string{"layer"})
	ConnectorDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geosignals_connector_duration_ms",
		Help:    "External connector call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"connector"})
	HotspotProviderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosignals_hotspot_provider_total",
		Help: "Hotspot provider outcomes (used, empty, error)",
	}, []string{"provider", "outcome"})
	PublishFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosignals_publish_fail_total",
		Help: "Envelope publication failures by sink",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(ScansTotal)
	prometheus.MustRegister(ScanDurationMs)
	prometheus.MustRegister(LayerFailTotal)
	prometheus.MustRegister(LayerFeatures)
	prometheus.MustRegister(ConnectorDurationMs)
	prometheus.MustRegister(HotspotProviderTotal)
	prometheus.MustRegister(PublishFailTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
