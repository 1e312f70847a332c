// 包 projection：平面投影适配层，几何运算统一在屏幕平面进行，结果以地理坐标存储
package projection

import (
	"errors"

	"territory-engine/internal/geo"

	"github.com/paulmach/orb"
)

var ErrNotReady = errors.New("projection not ready")

// 文档注释：投影提供方契约（外部视口）
// 背景：由视口组件实现正向（地理→平面）与逆向（平面→地理）投影。
// 约束：视口未就绪或坐标超出可投影范围时返回 false；任何视图变化后旧的平面坐标全部失效，调用方不得跨视图缓存。
type Projector interface {
	Project(p geo.GeoPoint) (orb.Point, bool)
	Unproject(p orb.Point) (geo.GeoPoint, bool)
}

// 文档注释：投影适配器
// 背景：在 Projector 之上提供环/多边形的批量投影，失败顶点直接丢弃而不是让整个多边形失败。
// 约束：零值可用，视为“未就绪”。
type Adapter struct {
	p Projector
}

func NewAdapter(p Projector) Adapter { return Adapter{p: p} }

// Ready：投影提供方存在且可用
func (a Adapter) Ready() bool {
	if a.p == nil {
		return false
	}
	if r, ok := a.p.(interface{ Ready() bool }); ok {
		return r.Ready()
	}
	return true
}

func (a Adapter) Project(g geo.GeoPoint) (orb.Point, bool) {
	if a.p == nil {
		return orb.Point{}, false
	}
	return a.p.Project(g)
}

func (a Adapter) Unproject(p orb.Point) (geo.GeoPoint, bool) {
	if a.p == nil {
		return geo.GeoPoint{}, false
	}
	return a.p.Unproject(p)
}

// ProjectRing：地理环 → 平面环，投影失败的顶点被跳过
func (a Adapter) ProjectRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, pt := range r {
		if q, ok := a.Project(geo.FromOrb(pt)); ok {
			out = append(out, q)
		}
	}
	return out
}

// UnprojectRing：平面环 → 地理环，逆投影失败的顶点被丢弃
func (a Adapter) UnprojectRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, pt := range r {
		if g, ok := a.Unproject(pt); ok {
			out = append(out, g.Orb())
		}
	}
	return out
}

func (a Adapter) ProjectPolygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		out = append(out, a.ProjectRing(r))
	}
	return out
}

func (a Adapter) ProjectMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		out = append(out, a.ProjectPolygon(p))
	}
	return out
}
