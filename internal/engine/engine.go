// 包 engine：领地划分与淘汰引擎（单一所有者编排：模式、视图、聚焦、点击、淘汰与帧输出）
package engine

import (
	"errors"
	"sync"

	"territory-engine/internal/district"
	"territory-engine/internal/geo"
	"territory-engine/internal/logger"
	"territory-engine/internal/mode"
	"territory-engine/internal/projection"
	"territory-engine/internal/tessellation"
	"territory-engine/internal/territory"
)

var ErrUnknownLandmark = errors.New("landmark not in active catalog")

// Switches：展示开关
type Switches struct {
	ShowEliminated bool `json:"showEliminated"`
	ZapperMode     bool `json:"zapperMode"`
	HighlightMine  bool `json:"highlightMine"`
}

// Config：引擎初始配置
type Config struct {
	Bounds geo.BoundingBox
	Modes  []mode.Mode
	View   projection.Viewport
}

// 文档注释：引擎
// 背景：视图、模式、镶嵌构建器与领地存储只由引擎持有；HTTP/WebSocket 等并发入口经互斥锁串行化，
// 等价于单线程事件模型。每次状态变化后构建一帧并推送给订阅者。
// 约束：订阅回调在状态锁外按 Seq 顺序串行调用，过期帧被丢弃；回调中可以再次调用引擎只读方法。
type Engine struct {
	mu        sync.Mutex
	view      projection.Viewport
	modes     *mode.Controller
	builder   *tessellation.Builder
	store     *territory.Store
	districts *district.Source
	switches  Switches
	location  *geo.GeoPoint
	seq       uint64

	subMu  sync.Mutex
	subs   map[int]func(Frame)
	nextID int

	pubMu   sync.Mutex
	lastSeq uint64
}

// 文档注释：创建引擎
// 参数：districts 可为 nil（行政区数据始终缺失）；数据集异步加载完成后引擎推送新帧。
func New(cfg Config, districts *district.Source) *Engine {
	e := &Engine{
		view:      cfg.View,
		modes:     mode.NewController(cfg.Modes),
		builder:   tessellation.NewBuilder(cfg.Bounds),
		store:     territory.NewStore(),
		districts: districts,
		switches:  Switches{ShowEliminated: true},
		subs:      make(map[int]func(Frame)),
	}
	e.applyMode(e.modes.Current())
	if districts != nil {
		districts.OnLoad(func(ds *district.Dataset) {
			logger.Component("engine").Info("districts_available", "districts", ds.Len())
			e.mu.Lock()
			f := e.commitLocked()
			e.mu.Unlock()
			e.publish(f)
		})
	}
	return e
}

func (e *Engine) adapter() projection.Adapter { return projection.NewAdapter(e.view) }

func (e *Engine) dataset() *district.Dataset {
	if e.districts == nil {
		return nil
	}
	return e.districts.Dataset()
}

// Modes：全部模式
func (e *Engine) Modes() []mode.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes.Modes()
}

// 文档注释：切换模式
// 背景：清空聚焦（弹窗随之关闭），替换地标列表；格子模式立即完整重算镶嵌。已淘汰集合保持不变。
func (e *Engine) SetMode(id string) (mode.Mode, error) {
	e.mu.Lock()
	m, err := e.modes.Switch(id)
	if err != nil {
		e.mu.Unlock()
		return m, err
	}
	e.store.ClearFocus()
	e.applyMode(m)
	f := e.commitLocked()
	e.mu.Unlock()
	logger.Component("engine").Info("mode_switched", "mode", m.ID, "landmarks", len(m.Landmarks))
	e.publish(f)
	return m, nil
}

func (e *Engine) applyMode(m mode.Mode) {
	e.builder.SetLandmarks(m.Landmarks)
	if !m.UsesDistricts {
		e.builder.Recompute(e.adapter(), false)
	}
}

// 文档注释：视图变化
// 参数：settled 为 false 表示手势进行中，只刷新平面图缓存；为 true 时完整重算并发布地理格子。
// 返回：镶嵌是否完成重算（视口未就绪时为 false）。
func (e *Engine) ViewChanged(v projection.Viewport, settled bool) bool {
	e.mu.Lock()
	e.view = v
	ok := true
	if !e.modes.Current().UsesDistricts {
		ok = e.builder.Recompute(e.adapter(), !settled)
	}
	var f Frame
	if settled {
		f = e.commitLocked()
	}
	e.mu.Unlock()
	if settled {
		e.publish(f)
	}
	return ok
}

// View：当前视口
func (e *Engine) View() projection.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// FocusLandmark：点选地标标记，打开其弹窗
func (e *Engine) FocusLandmark(name string) error {
	e.mu.Lock()
	idx := -1
	ls := e.builder.Landmarks()
	for i, l := range ls {
		if l.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return ErrUnknownLandmark
	}
	e.focusLandmarkLocked(idx)
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
	return nil
}

func (e *Engine) focusLandmarkLocked(idx int) {
	l := e.builder.Landmarks()[idx]
	e.store.SetFocus(territory.Focus{Kind: territory.FocusLandmark, Landmark: l, Index: idx, Anchor: l.GeoPoint})
}

// Dismiss：关闭弹窗并清空聚焦
func (e *Engine) Dismiss() {
	e.mu.Lock()
	e.store.ClearFocus()
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
}

// SetLocation：更新当前定位
func (e *Engine) SetLocation(pt geo.GeoPoint) {
	e.mu.Lock()
	e.location = &pt
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
}

// SetSwitches：更新展示开关
func (e *Engine) SetSwitches(s Switches) {
	e.mu.Lock()
	e.switches = s
	f := e.commitLocked()
	e.mu.Unlock()
	e.publish(f)
}

// 文档注释：订阅帧推送
// 返回：取消订阅函数，可重复调用。
func (e *Engine) Subscribe(fn func(Frame)) func() {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// 文档注释：推送帧
// 背景：帧在状态锁内构建、锁外推送，并发请求的推送顺序可能与修改顺序相反；
// 按 Seq 串行推送并丢弃比已推送帧更旧的帧，订阅者最后收到的总是最新状态。
func (e *Engine) publish(f Frame) {
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	if f.Seq <= e.lastSeq {
		logger.Component("engine").Debug("frame_stale_dropped", "seq", f.Seq, "last", e.lastSeq)
		return
	}
	e.lastSeq = f.Seq
	e.subMu.Lock()
	fns := make([]func(Frame), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(f)
	}
}
