package engine

import (
	"territory-engine/internal/district"
	"territory-engine/internal/geo"
	"territory-engine/internal/logger"
	"territory-engine/internal/projection"
	"territory-engine/internal/territory"

	"github.com/paulmach/orb"
)

// ClickAction：点击的处理结果
type ClickAction string

const (
	ClickNone    ClickAction = "none"
	ClickZap     ClickAction = "zap"
	ClickDismiss ClickAction = "dismiss"
	ClickFocus   ClickAction = "focus"
)

// ClickResult：点击结果；Zapped 仅在清除时非空
type ClickResult struct {
	Action ClickAction    `json:"action"`
	Zapped []territory.ID `json:"zapped,omitempty"`
	Focus  *FocusView     `json:"focus,omitempty"`
}

// 文档注释：淘汰 / 撤销聚焦对象
// 参数：others 为 true 时操作“其余”领地。
// 背景：淘汰或撤销成功后聚焦清空（弹窗关闭）；失败时聚焦保持不变。
// 返回：切换后的状态；无聚焦返回 territory.ErrNoFocus；行政区数据缺失返回 district.ErrNotLoaded；
// 视口未就绪导致无法选取格子时返回 projection.ErrNotReady。所有错误路径都不改变状态。
func (e *Engine) Eliminate(others bool) (territory.State, error) {
	e.mu.Lock()
	st, err := e.eliminateLocked(others)
	if err != nil {
		e.mu.Unlock()
		logger.Component("engine").Debug("eliminate_noop", "others", others, "err", err)
		return st, err
	}
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
	return st, nil
}

func (e *Engine) eliminateLocked(others bool) (territory.State, error) {
	focus, ok := e.store.Focus()
	if !ok {
		return territory.Active, territory.ErrNoFocus
	}
	id := focus.ID(others)

	if focus.Kind == territory.FocusDistrict {
		ds := e.dataset()
		if ds == nil {
			return e.store.State(id), district.ErrNotLoaded
		}
		st, err := e.store.Toggle(id, func() orb.MultiPolygon {
			if others {
				return ds.Others(focus.District)
			}
			mp, _ := ds.Polygon(focus.District)
			return mp
		})
		if err != nil {
			return st, err
		}
		e.store.ClearFocus()
		return st, nil
	}

	a := e.adapter()
	if !e.store.Has(id) && (!a.Ready() || e.builder.Diagram() == nil) {
		return territory.Active, projection.ErrNotReady
	}
	st, err := e.store.Toggle(id, func() orb.MultiPolygon {
		return territory.SelectCells(e.builder.Diagram(), e.builder.Cells(), a, focus.Landmark.GeoPoint, others)
	})
	if err != nil {
		return st, err
	}
	e.store.ClearFocus()
	return st, nil
}

// 文档注释：地图点击
// 背景：清除模式且显示已淘汰区域时执行清除；弹窗打开时点击地图只关闭弹窗；
// 行政区模式聚焦点击处的行政区；格子模式聚焦包含点击点的格子所属地标。
func (e *Engine) Click(pt geo.GeoPoint) ClickResult {
	e.mu.Lock()
	res := e.clickLocked(pt)
	if res.Action == ClickNone {
		e.mu.Unlock()
		return res
	}
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
	return res
}

func (e *Engine) clickLocked(pt geo.GeoPoint) ClickResult {
	if e.switches.ZapperMode && e.switches.ShowEliminated {
		return ClickResult{Action: ClickZap, Zapped: e.store.Zap(pt, e.adapter())}
	}
	if _, open := e.store.Focus(); open {
		e.store.ClearFocus()
		return ClickResult{Action: ClickDismiss}
	}
	a := e.adapter()
	if e.modes.Current().UsesDistricts {
		n, ok := e.dataset().At(a, pt)
		if !ok {
			return ClickResult{Action: ClickNone}
		}
		e.store.SetFocus(territory.Focus{Kind: territory.FocusDistrict, District: n, Anchor: pt})
		return ClickResult{Action: ClickFocus, Focus: e.focusView()}
	}
	p, ok := a.Project(pt)
	if !ok {
		return ClickResult{Action: ClickNone}
	}
	hit := e.builder.Diagram().CellsContaining(p)
	if len(hit) == 0 {
		return ClickResult{Action: ClickNone}
	}
	e.focusLandmarkLocked(hit[0])
	return ClickResult{Action: ClickFocus, Focus: e.focusView()}
}

// 文档注释：清除（Zap）
// 约束：仅在显示已淘汰区域时生效；返回被移除的领地键。
func (e *Engine) Zap(pt geo.GeoPoint) []territory.ID {
	e.mu.Lock()
	if !e.switches.ShowEliminated {
		e.mu.Unlock()
		return nil
	}
	hit := e.store.Zap(pt, e.adapter())
	if len(hit) == 0 {
		e.mu.Unlock()
		return hit
	}
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
	return hit
}
