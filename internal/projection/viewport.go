package projection

import (
	"math"

	"territory-engine/internal/geo"

	"github.com/paulmach/orb"
)

const (
	// TileSize：与矢量瓦片地图一致的 512 像素世界基准
	TileSize = 512.0
	// MaxLatitude：Web 墨卡托可表示的纬度上限
	MaxLatitude = 85.051128779807
)

// 文档注释：平面视口（Web 墨卡托，支持旋转，不支持倾斜）
// 背景：服务端持有的视口状态，与前端地图组件保持同一投影公式，便于在服务端完成镶嵌与命中判定。
// 约束：Bearing 为顺时针角度；屏幕坐标原点在左上，y 向下；宽高为 0 视为未就绪。
type Viewport struct {
	Center  geo.GeoPoint `json:"center"`
	Zoom    float64      `json:"zoom"`
	Bearing float64      `json:"bearing"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
}

func (v Viewport) Ready() bool { return v.Width > 0 && v.Height > 0 }

func (v Viewport) worldSize() float64 { return TileSize * math.Pow(2, v.Zoom) }

func mercatorX(lng float64) float64 { return (180 + lng) / 360 }

func mercatorY(lat float64) float64 {
	return (180 - 180/math.Pi*math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))) / 360
}

func lngFromMercatorX(x float64) float64 { return x*360 - 180 }

func latFromMercatorY(y float64) float64 {
	y2 := 180 - y*360
	return 360/math.Pi*math.Atan(math.Exp(y2*math.Pi/180)) - 90
}

// Project：地理坐标 → 屏幕坐标
func (v Viewport) Project(g geo.GeoPoint) (orb.Point, bool) {
	if !v.Ready() || math.Abs(g.Latitude) > MaxLatitude || math.IsNaN(g.Longitude) || math.IsNaN(g.Latitude) {
		return orb.Point{}, false
	}
	ws := v.worldSize()
	dx := (mercatorX(g.Longitude) - mercatorX(v.Center.Longitude)) * ws
	dy := (mercatorY(g.Latitude) - mercatorY(v.Center.Latitude)) * ws
	a := -v.Bearing * math.Pi / 180
	sin, cos := math.Sincos(a)
	x := dx*cos - dy*sin
	y := dx*sin + dy*cos
	return orb.Point{v.Width/2 + x, v.Height/2 + y}, true
}

// Unproject：屏幕坐标 → 地理坐标；落在墨卡托世界之外（纬度不可逆）时返回 false
func (v Viewport) Unproject(p orb.Point) (geo.GeoPoint, bool) {
	if !v.Ready() || math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return geo.GeoPoint{}, false
	}
	ws := v.worldSize()
	x := p[0] - v.Width/2
	y := p[1] - v.Height/2
	a := v.Bearing * math.Pi / 180
	sin, cos := math.Sincos(a)
	dx := x*cos - y*sin
	dy := x*sin + y*cos
	my := mercatorY(v.Center.Latitude) + dy/ws
	if my < 0 || my > 1 {
		return geo.GeoPoint{}, false
	}
	lat := latFromMercatorY(my)
	if math.Abs(lat) > MaxLatitude {
		return geo.GeoPoint{}, false
	}
	lng := lngFromMercatorX(mercatorX(v.Center.Longitude) + dx/ws)
	return geo.GeoPoint{Longitude: lng, Latitude: lat}, true
}
