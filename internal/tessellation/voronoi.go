package tessellation

import (
	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// 文档注释：有界 Voronoi 计算（平面）
// 背景：每个站点的格子 = 裁剪多边形 ∩ 与各 Delaunay 邻居的垂直平分半平面；Delaunay 只用于缩小邻居集合。
// 约束：clip 必须为凸多边形（投影后的裁剪框）；valid[i]==false 的站点得到空格子；
// 重合站点由最先出现者拥有格子，其余为空格子；三角剖分失败（少于 3 个站点或全部共线）时退化为全体两两求交。
func computeCells(sites []orb.Point, valid []bool, clip orb.Ring) []orb.Ring {
	cells := make([]orb.Ring, len(sites))
	base := openRing(clip)
	if len(base) < 3 {
		return cells
	}

	// 去重：重合站点只保留第一个
	owner := make(map[orb.Point]int, len(sites))
	var uniq []int
	for i, s := range sites {
		if !valid[i] {
			continue
		}
		if _, dup := owner[s]; dup {
			continue
		}
		owner[s] = i
		uniq = append(uniq, i)
	}

	neighbors := delaunayNeighbors(sites, uniq)
	for _, i := range uniq {
		poly := append(orb.Ring(nil), base...)
		for _, j := range neighbors[i] {
			poly = clipHalfPlane(poly, sites[i], sites[j])
			if len(poly) == 0 {
				break
			}
		}
		if len(poly) >= 3 {
			cells[i] = closeRing(poly)
		}
	}
	return cells
}

// delaunayNeighbors：返回每个站点的 Delaunay 邻居（按原始下标）
func delaunayNeighbors(sites []orb.Point, uniq []int) map[int][]int {
	out := make(map[int][]int, len(uniq))
	if len(uniq) >= 3 {
		pts := make([]delaunay.Point, len(uniq))
		for k, i := range uniq {
			pts[k] = delaunay.Point{X: sites[i][0], Y: sites[i][1]}
		}
		tri, err := delaunay.Triangulate(pts)
		if err == nil && tri != nil && len(tri.Triangles) >= 3 {
			seen := make(map[[2]int]bool)
			add := func(a, b int) {
				ia, ib := uniq[a], uniq[b]
				if ia > ib {
					ia, ib = ib, ia
				}
				if seen[[2]int{ia, ib}] {
					return
				}
				seen[[2]int{ia, ib}] = true
				out[ia] = append(out[ia], ib)
				out[ib] = append(out[ib], ia)
			}
			t := tri.Triangles
			for k := 0; k+2 < len(t); k += 3 {
				add(t[k], t[k+1])
				add(t[k+1], t[k+2])
				add(t[k+2], t[k])
			}
			return out
		}
	}
	// 退化输入：两两求交
	for _, i := range uniq {
		for _, j := range uniq {
			if i != j {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

// 文档注释：Sutherland-Hodgman 半平面裁剪
// 保留距离 a 不远于 b 的一侧：(p - m)·(b - a) <= 0，m 为 ab 中点。
func clipHalfPlane(src orb.Ring, a, b orb.Point) orb.Ring {
	if len(src) == 0 {
		return nil
	}
	nx, ny := b[0]-a[0], b[1]-a[1]
	mx, my := (a[0]+b[0])/2, (a[1]+b[1])/2
	side := func(p orb.Point) float64 { return (p[0]-mx)*nx + (p[1]-my)*ny }

	result := make(orb.Ring, 0, len(src)+1)
	prev := src[len(src)-1]
	sp := side(prev)
	for _, cur := range src {
		sc := side(cur)
		if sc <= 0 {
			if sp > 0 {
				result = append(result, intersect(prev, cur, sp, sc))
			}
			result = append(result, cur)
		} else if sp <= 0 {
			result = append(result, intersect(prev, cur, sp, sc))
		}
		prev, sp = cur, sc
	}
	return result
}

func intersect(p, q orb.Point, sp, sq float64) orb.Point {
	t := sp / (sp - sq)
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

func openRing(r orb.Ring) orb.Ring {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

func closeRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	out = append(out, r...)
	return append(out, r[0])
}
