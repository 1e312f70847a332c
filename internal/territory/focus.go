package territory

import "territory-engine/internal/geo"

// FocusKind：聚焦对象类型
type FocusKind int

const (
	FocusLandmark FocusKind = iota
	FocusDistrict
)

// 文档注释：聚焦选择（弹窗 / 光标下的候选领地）
// 约束：同一时刻至多一个；地标聚焦使用 Landmark 与 Index，行政区聚焦使用 District；Anchor 为弹窗位置（地标坐标或点击点）。
type Focus struct {
	Kind     FocusKind
	Landmark geo.Landmark
	Index    int
	District int
	Anchor   geo.GeoPoint
}

// ID：聚焦对象对应的领地键；others 为 true 时取“其余”变体
func (f Focus) ID(others bool) ID {
	if f.Kind == FocusDistrict {
		if others {
			return DistrictOthersID(f.District)
		}
		return DistrictID(f.District)
	}
	if others {
		return CellOthersID(f.Landmark.Name)
	}
	return CellID(f.Landmark.Name)
}

// Focus：当前聚焦选择
func (s *Store) Focus() (Focus, bool) {
	if s.focus == nil {
		return Focus{}, false
	}
	return *s.focus, true
}

func (s *Store) SetFocus(f Focus) { s.focus = &f }

func (s *Store) ClearFocus() { s.focus = nil }
