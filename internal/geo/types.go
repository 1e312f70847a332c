// 包 geo：地理坐标与地标的基础数据结构，供镶嵌、判定、状态存储共享
package geo

import "github.com/paulmach/orb"

// 文档注释：地理坐标（WGS84）
// 背景：地标、点击位置、当前定位均使用该值类型；与 orb.Point 互转时经度在前。
// 约束：不可变值语义，按值传递。
type GeoPoint struct {
	Longitude float64 `json:"lng" yaml:"lng"`
	Latitude  float64 `json:"lat" yaml:"lat"`
}

// Orb：转换为 orb.Point（[经度, 纬度]）
func (p GeoPoint) Orb() orb.Point { return orb.Point{p.Longitude, p.Latitude} }

// FromOrb：由 orb.Point 还原地理坐标
func FromOrb(p orb.Point) GeoPoint { return GeoPoint{Longitude: p[0], Latitude: p[1]} }

// 文档注释：地标
// 背景：目录中的具名坐标；名称在所属目录内唯一，同时作为格子领地的键。
type Landmark struct {
	GeoPoint `yaml:",inline"`
	Name     string `json:"name" yaml:"name"`
}

// 文档注释：镶嵌裁剪框
// 背景：按部署固定（城市范围），与当前视口无关；保证边缘地标的格子有限。
type BoundingBox struct {
	TopLeft     GeoPoint `json:"topLeft" yaml:"top_left"`
	BottomRight GeoPoint `json:"bottomRight" yaml:"bottom_right"`
}

// Corners：按 左上、右上、右下、左下 顺序返回四个角
func (b BoundingBox) Corners() [4]GeoPoint {
	return [4]GeoPoint{
		b.TopLeft,
		{Longitude: b.BottomRight.Longitude, Latitude: b.TopLeft.Latitude},
		b.BottomRight,
		{Longitude: b.TopLeft.Longitude, Latitude: b.BottomRight.Latitude},
	}
}

// Ring：裁剪框的地理闭合环
func (b BoundingBox) Ring() orb.Ring {
	c := b.Corners()
	return orb.Ring{c[0].Orb(), c[1].Orb(), c[2].Orb(), c[3].Orb(), c[0].Orb()}
}
