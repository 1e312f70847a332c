package tessellation

import (
	"time"

	"territory-engine/internal/geo"
	"territory-engine/internal/logger"
	"territory-engine/internal/metrics"
	"territory-engine/internal/projection"

	"github.com/paulmach/orb"
)

// 文档注释：一次性镶嵌（纯函数）
// 背景：投影全部地标 → 三角剖分 → Voronoi → 投影裁剪框裁剪，返回平面图；不做逆投影。
// 约束：投影未就绪时返回 nil；单个地标不可投影时该地标得到空格子，不影响其他格子。
func Compute(landmarks []geo.Landmark, bounds geo.BoundingBox, a projection.Adapter) *Diagram {
	if !a.Ready() {
		return nil
	}
	clip := a.ProjectRing(bounds.Ring())
	sites := make([]orb.Point, len(landmarks))
	valid := make([]bool, len(landmarks))
	for i, lm := range landmarks {
		if p, ok := a.Project(lm.GeoPoint); ok {
			sites[i] = p
			valid[i] = true
		}
	}
	return &Diagram{Sites: sites, Cells: computeCells(sites, valid, clip), Clip: clip}
}

// Unproject：平面图 → 地理格子；逆投影失败的顶点被丢弃
func Unproject(d *Diagram, a projection.Adapter) []orb.Ring {
	out := make([]orb.Ring, d.Len())
	for i := range out {
		c := d.Cell(i)
		if len(c) == 0 {
			continue
		}
		out[i] = a.UnprojectRing(c)
	}
	return out
}

// 文档注释：镶嵌构建器
// 背景：持有当前地标列表与最近一次的平面图/地理格子；拖动中只重算平面图（仅几何模式），手势结束后完整重算并发布地理格子。
// 约束：非并发安全，由引擎在单一所有者下调用；发布的切片视为只读。
type Builder struct {
	bounds    geo.BoundingBox
	landmarks []geo.Landmark
	diagram   *Diagram
	cells     []orb.Ring
}

func NewBuilder(bounds geo.BoundingBox) *Builder {
	return &Builder{bounds: bounds}
}

// SetLandmarks：替换地标列表；旧的平面图与格子立即作废
func (b *Builder) SetLandmarks(ls []geo.Landmark) {
	b.landmarks = append([]geo.Landmark(nil), ls...)
	b.diagram = nil
	b.cells = nil
}

func (b *Builder) Landmarks() []geo.Landmark { return b.landmarks }

// 文档注释：重算镶嵌
// 参数：geometryOnly 为 true 时仅刷新平面图缓存，不重新发布地理格子。
// 返回：是否完成重算；投影未就绪时保持原状并返回 false。
func (b *Builder) Recompute(a projection.Adapter, geometryOnly bool) bool {
	t0 := time.Now()
	d := Compute(b.landmarks, b.bounds, a)
	if d == nil {
		metrics.TessellationSkippedTotal.Inc()
		logger.Component("tessellation").Debug("tessellation_skipped", "reason", "projection_not_ready")
		return false
	}
	b.diagram = d
	kind := "geometry"
	if !geometryOnly {
		b.cells = Unproject(d, a)
		kind = "full"
	}
	ms := float64(time.Since(t0).Microseconds()) / 1000
	metrics.TessellationsTotal.WithLabelValues(kind).Inc()
	metrics.TessellationDurationMs.Observe(ms)
	logger.Component("tessellation").Debug("tessellation_built", "kind", kind, "sites", len(b.landmarks), "ms", ms)
	return true
}

// Diagram：最近一次的平面图（可能为 nil）
func (b *Builder) Diagram() *Diagram { return b.diagram }

// Cells：最近一次发布的地理格子，与地标下标对齐
func (b *Builder) Cells() []orb.Ring { return b.cells }
