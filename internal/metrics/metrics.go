package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	TessellationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_tessellations_total",
		Help: "Tessellation recomputes by kind (full, geometry)",
	}, []string{"kind"})
	TessellationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_tessellation_duration_ms",
		Help:    "Tessellation recompute duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	})
	TessellationSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_tessellation_skipped_total",
		Help: "Tessellation recomputes skipped because the projection was not ready",
	})
	EliminationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_eliminations_total",
		Help: "Territory toggles by territory kind and resulting action (eliminate, undo)",
	}, []string{"kind", "action"})
	ZapsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_zaps_total",
		Help: "Total zap clicks",
	})
	ZappedTerritoriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_zapped_territories_total",
		Help: "Total eliminated territories removed by zap",
	})
	ModeSwitchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_mode_switches_total",
		Help: "Mode switches by target mode",
	}, []string{"mode"})
	DistrictFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_district_fetch_total",
		Help: "District dataset loads by status (ok, error, cache_hit)",
	}, []string{"status"})
	DistrictFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_district_fetch_duration_ms",
		Help:    "District dataset fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	FrameSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "territory_frame_subscribers",
		Help: "Connected websocket frame subscribers",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(TessellationsTotal)
	prometheus.MustRegister(TessellationDurationMs)
	prometheus.MustRegister(TessellationSkippedTotal)
	prometheus.MustRegister(EliminationsTotal)
	prometheus.MustRegister(ZapsTotal)
	prometheus.MustRegister(ZappedTerritoriesTotal)
	prometheus.MustRegister(ModeSwitchesTotal)
	prometheus.MustRegister(DistrictFetchTotal)
	prometheus.MustRegister(DistrictFetchDurationMs)
	prometheus.MustRegister(FrameSubscribers)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
