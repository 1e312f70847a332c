package engine

import (
	"strconv"

	"territory-engine/internal/geo"
	"territory-engine/internal/territory"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FocusView：弹窗内容；Eliminated / OthersEliminated 决定按钮显示“撤销”还是“淘汰”
type FocusView struct {
	Kind             string       `json:"kind"`
	Name             string       `json:"name"`
	District         int          `json:"district,omitempty"`
	Anchor           geo.GeoPoint `json:"anchor"`
	Eliminated       bool         `json:"eliminated"`
	OthersEliminated bool         `json:"othersEliminated"`
}

// Highlight：包含当前定位的格子（地标名称）与行政区号
type Highlight struct {
	Cells     []string `json:"cells"`
	Districts []int    `json:"districts"`
}

// 文档注释：输出帧（渲染层接口）
// 背景：每次状态变化后输出当前格子、行政区轮廓、已淘汰领地与聚焦选择；渲染层不回传任何状态。
// 约束：几何均为地理坐标 GeoJSON；ShowEliminated 关闭时 Eliminated 为空集合。
// Seq 随每次状态变化递增，订阅者收到的 Seq 严格递增。
type Frame struct {
	Seq           uint64                     `json:"seq"`
	Mode          string                     `json:"mode"`
	UsesDistricts bool                       `json:"usesDistricts"`
	Ready         bool                       `json:"ready"`
	Landmarks     []geo.Landmark             `json:"landmarks"`
	Cells         *geojson.FeatureCollection `json:"cells"`
	Districts     *geojson.FeatureCollection `json:"districts"`
	Eliminated    *geojson.FeatureCollection `json:"eliminated"`
	Focus         *FocusView                 `json:"focus"`
	Location      *geo.GeoPoint              `json:"location,omitempty"`
	Highlight     Highlight                  `json:"highlight"`
	Switches      Switches                   `json:"switches"`
}

// Frame：当前帧
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

// commitLocked：记录一次状态变化并构建对应的帧
func (e *Engine) commitLocked() Frame {
	e.seq++
	return e.frameLocked()
}

func (e *Engine) frameLocked() Frame {
	m := e.modes.Current()
	f := Frame{
		Seq:           e.seq,
		Mode:          m.ID,
		UsesDistricts: m.UsesDistricts,
		Ready:         e.view.Ready(),
		Landmarks:     e.builder.Landmarks(),
		Cells:         geojson.NewFeatureCollection(),
		Districts:     geojson.NewFeatureCollection(),
		Eliminated:    geojson.NewFeatureCollection(),
		Focus:         e.focusView(),
		Location:      e.location,
		Switches:      e.switches,
	}
	if f.Landmarks == nil {
		f.Landmarks = []geo.Landmark{}
	}

	ls := e.builder.Landmarks()
	for i, ring := range e.builder.Cells() {
		if len(ring) < 3 {
			continue
		}
		ft := geojson.NewFeature(orb.Polygon{closed(ring)})
		ft.Properties["index"] = i
		ft.Properties["name"] = ls[i].Name
		f.Cells.Append(ft)
	}

	ds := e.dataset()
	if m.UsesDistricts {
		for _, d := range ds.All() {
			ft := geojson.NewFeature(d.Shape)
			ft.Properties["sup_dist_num"] = strconv.Itoa(d.Number)
			f.Districts.Append(ft)
		}
	}

	if e.switches.ShowEliminated {
		for _, t := range append(e.store.Cells(), e.store.Districts()...) {
			ft := geojson.NewFeature(t.Regions)
			ft.Properties["key"] = t.ID.String()
			ft.Properties["kind"] = t.ID.Kind.String()
			f.Eliminated.Append(ft)
		}
	}

	f.Highlight = e.highlightLocked()
	return f
}

func (e *Engine) focusView() *FocusView {
	focus, ok := e.store.Focus()
	if !ok {
		return nil
	}
	v := &FocusView{
		Anchor:           focus.Anchor,
		Eliminated:       e.store.Has(focus.ID(false)),
		OthersEliminated: e.store.Has(focus.ID(true)),
	}
	if focus.Kind == territory.FocusDistrict {
		v.Kind = "district"
		v.Name = strconv.Itoa(focus.District)
		v.District = focus.District
	} else {
		v.Kind = "landmark"
		v.Name = focus.Landmark.Name
	}
	return v
}

// highlightLocked：高亮开关打开且已有定位时，返回包含定位点的格子与行政区
func (e *Engine) highlightLocked() Highlight {
	h := Highlight{Cells: []string{}, Districts: []int{}}
	if !e.switches.HighlightMine || e.location == nil {
		return h
	}
	a := e.adapter()
	if p, ok := a.Project(*e.location); ok {
		ls := e.builder.Landmarks()
		for _, i := range e.builder.Diagram().CellsContaining(p) {
			h.Cells = append(h.Cells, ls[i].Name)
		}
	}
	if e.modes.Current().UsesDistricts {
		if n := e.dataset().Containing(a, *e.location); n != nil {
			h.Districts = n
		}
	}
	return h
}

func closed(r orb.Ring) orb.Ring {
	if r[0] == r[len(r)-1] {
		return r
	}
	out := append(orb.Ring(nil), r...)
	return append(out, r[0])
}
