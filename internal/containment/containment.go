// 包 containment：平面点入多边形判定
package containment

import (
	"territory-engine/internal/geo"
	"territory-engine/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：点入区域判定（平面坐标）
// 背景：格子查找、行政区查找、清除命中与“我所在区域”高亮统一走此谓词。
// 约束：边界上的点视为在内（orb/planar 射线法语义）；洞边界上的点视为在洞内，即不在区域内；
// 少于 3 个顶点的环视为空区域。支持 orb.Ring / orb.Polygon / orb.MultiPolygon / orb.Bound。
func Contains(region orb.Geometry, pt orb.Point) bool {
	switch g := region.(type) {
	case orb.Ring:
		return ringContains(g, pt)
	case orb.Polygon:
		return polygonContains(g, pt)
	case orb.MultiPolygon:
		for _, p := range g {
			if polygonContains(p, pt) {
				return true
			}
		}
		return false
	case orb.Bound:
		return g.Contains(pt)
	}
	return false
}

func ringContains(r orb.Ring, pt orb.Point) bool {
	if len(r) < 3 {
		return false
	}
	return planar.RingContains(r, pt)
}

func polygonContains(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 || !ringContains(p[0], pt) {
		return false
	}
	for _, hole := range p[1:] {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

// 文档注释：地理区域与地理点的判定（先投影再判定）
// 背景：所有判定必须在当前视图的平面空间执行；区域顶点与测试点都经当前投影转换。
// 约束：投影未就绪或测试点不可投影时返回 false；不可投影的区域顶点被跳过。
func ContainsGeo(a projection.Adapter, region orb.Geometry, pt geo.GeoPoint) bool {
	q, ok := a.Project(pt)
	if !ok {
		return false
	}
	switch g := region.(type) {
	case orb.Ring:
		return Contains(a.ProjectRing(g), q)
	case orb.Polygon:
		return Contains(a.ProjectPolygon(g), q)
	case orb.MultiPolygon:
		return Contains(a.ProjectMultiPolygon(g), q)
	}
	return false
}
