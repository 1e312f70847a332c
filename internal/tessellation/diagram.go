// 包 tessellation：地标点集 → 有界 Voronoi 镶嵌（平面计算，地理存储）
package tessellation

import (
	"territory-engine/internal/containment"

	"github.com/paulmach/orb"
)

// 文档注释：平面 Voronoi 图（一次重算的只读结果）
// 背景：每次重算返回全新值，下游只读；拖动过程中作为命中判定的缓存，手势结束后随完整重算一起替换。
// 约束：Cells 与输入地标按下标对齐；空环表示退化格子（重合站点或站点不可投影）。
type Diagram struct {
	Sites []orb.Point
	Cells []orb.Ring
	Clip  orb.Ring
}

func (d *Diagram) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cells)
}

// Cell：第 i 个平面格子
func (d *Diagram) Cell(i int) orb.Ring {
	if d == nil || i < 0 || i >= len(d.Cells) {
		return nil
	}
	return d.Cells[i]
}

// Contains：第 i 个格子是否包含平面点 p
func (d *Diagram) Contains(i int, p orb.Point) bool {
	return containment.Contains(d.Cell(i), p)
}

// 文档注释：查找包含平面点的全部格子下标
// 约束：边界共享时可能返回多个下标；无命中时返回空切片。
func (d *Diagram) CellsContaining(p orb.Point) []int {
	var out []int
	for i := 0; i < d.Len(); i++ {
		if d.Contains(i, p) {
			out = append(out, i)
		}
	}
	return out
}
