package territory

import (
	"territory-engine/internal/geo"
	"territory-engine/internal/projection"
	"territory-engine/internal/tessellation"

	"github.com/paulmach/orb"
)

// 文档注释：按聚焦地标选取格子区域
// 背景：将聚焦地标投影到当前平面，找出包含该点的全部格子（通常只有地标自己的格子）；others 为 true 时取不包含该点的全部格子。
// 约束：优先使用已发布的地理格子，仅几何重算尚未发布时对平面格子逐顶点逆投影；空格子被跳过；投影未就绪或无平面图时返回 nil。
func SelectCells(d *tessellation.Diagram, published []orb.Ring, a projection.Adapter, focus geo.GeoPoint, others bool) orb.MultiPolygon {
	if d.Len() == 0 {
		return nil
	}
	p, ok := a.Project(focus)
	if !ok {
		return nil
	}
	var out orb.MultiPolygon
	for i := 0; i < d.Len(); i++ {
		if d.Contains(i, p) == others {
			continue
		}
		var ring orb.Ring
		if len(published) == d.Len() {
			ring = published[i]
		} else if c := d.Cell(i); len(c) > 0 {
			ring = a.UnprojectRing(c)
		}
		if len(ring) < 3 {
			continue
		}
		out = append(out, orb.Polygon{ring})
	}
	return out
}
