package territory

import (
	"errors"

	"territory-engine/internal/containment"
	"territory-engine/internal/geo"
	"territory-engine/internal/logger"
	"territory-engine/internal/metrics"
	"territory-engine/internal/projection"

	"github.com/paulmach/orb"
)

var (
	ErrNoFocus           = errors.New("no focused selection")
	ErrAlreadyEliminated = errors.New("territory already eliminated")
	ErrNotEliminated     = errors.New("territory not eliminated")
	ErrEmptyTerritory    = errors.New("territory has no region")
)

// State：单个领地键的状态
type State int

const (
	Active State = iota
	Eliminated
)

func (s State) String() string {
	if s == Eliminated {
		return "eliminated"
	}
	return "active"
}

// 文档注释：已淘汰领地
// 约束：Regions 为地理坐标；格子领地每个命中的格子一个多边形，行政区领地为整份多多边形。
type Territory struct {
	ID      ID               `json:"id"`
	Regions orb.MultiPolygon `json:"-"`
}

// 文档注释：领地状态存储
// 背景：格子与行政区两类来源统一存放在以 ID 为键的 map 中，两个来源各自维护插入顺序以便稳定输出；
// 同时持有当前聚焦选择（弹窗对象）。
// 约束：非并发安全，由引擎单一所有者串行调用；模式切换只清空聚焦，不清空已淘汰集合。
type Store struct {
	regions   map[ID]orb.MultiPolygon
	cells     []ID
	districts []ID
	focus     *Focus
}

func NewStore() *Store {
	return &Store{regions: make(map[ID]orb.MultiPolygon)}
}

// State：查询领地键的状态；未记录的键为 Active
func (s *Store) State(id ID) State {
	if _, ok := s.regions[id]; ok {
		return Eliminated
	}
	return Active
}

func (s *Store) Has(id ID) bool { return s.State(id) == Eliminated }

func (s *Store) Len() int { return len(s.regions) }

// 文档注释：ACTIVE → ELIMINATED
// 约束：已淘汰的键返回 ErrAlreadyEliminated；空区域返回 ErrEmptyTerritory 且不记录。
func (s *Store) Eliminate(id ID, regions orb.MultiPolygon) error {
	if s.Has(id) {
		return ErrAlreadyEliminated
	}
	if len(regions) == 0 {
		return ErrEmptyTerritory
	}
	s.regions[id] = regions
	if id.IsDistrict() {
		s.districts = append(s.districts, id)
	} else {
		s.cells = append(s.cells, id)
	}
	metrics.EliminationsTotal.WithLabelValues(id.Kind.String(), "eliminate").Inc()
	logger.Component("territory").Debug("territory_eliminated", "id", id.String(), "polygons", len(regions))
	return nil
}

// 文档注释：ELIMINATED → ACTIVE
// 约束：移除该键下的全部多边形；未淘汰的键返回 ErrNotEliminated。
func (s *Store) Restore(id ID) error {
	if !s.Has(id) {
		return ErrNotEliminated
	}
	delete(s.regions, id)
	if id.IsDistrict() {
		s.districts = without(s.districts, id)
	} else {
		s.cells = without(s.cells, id)
	}
	metrics.EliminationsTotal.WithLabelValues(id.Kind.String(), "undo").Inc()
	logger.Component("territory").Debug("territory_restored", "id", id.String())
	return nil
}

// 文档注释：切换领地状态（淘汰 / 撤销）
// 背景：对已淘汰的键再次执行淘汰即撤销；仅在需要淘汰时才调用 build 计算区域。
// 返回：切换后的状态；build 返回空区域时保持 Active 并返回 ErrEmptyTerritory。
func (s *Store) Toggle(id ID, build func() orb.MultiPolygon) (State, error) {
	if s.Has(id) {
		return Active, s.Restore(id)
	}
	var regions orb.MultiPolygon
	if build != nil {
		regions = build()
	}
	if err := s.Eliminate(id, regions); err != nil {
		return Active, err
	}
	return Eliminated, nil
}

// 文档注释：清除（Zap）
// 背景：将地理点击点与全部已淘汰领地在当前平面视图下逐一判定，移除所有包含该点的领地键（整组移除）。
// 约束：投影未就绪时不移除任何领地；返回被移除的键，按格子在前、行政区在后的插入顺序。
func (s *Store) Zap(pt geo.GeoPoint, a projection.Adapter) []ID {
	metrics.ZapsTotal.Inc()
	if !a.Ready() {
		return nil
	}
	var hit []ID
	for _, id := range s.order() {
		if containment.ContainsGeo(a, s.regions[id], pt) {
			hit = append(hit, id)
		}
	}
	for _, id := range hit {
		_ = s.Restore(id)
	}
	metrics.ZappedTerritoriesTotal.Add(float64(len(hit)))
	if len(hit) > 0 {
		logger.Component("territory").Debug("territory_zapped", "count", len(hit))
	}
	return hit
}

// Cells：已淘汰的格子领地（插入顺序）
func (s *Store) Cells() []Territory { return s.list(s.cells) }

// Districts：已淘汰的行政区领地（插入顺序）
func (s *Store) Districts() []Territory { return s.list(s.districts) }

func (s *Store) list(ids []ID) []Territory {
	out := make([]Territory, 0, len(ids))
	for _, id := range ids {
		out = append(out, Territory{ID: id, Regions: s.regions[id]})
	}
	return out
}

func (s *Store) order() []ID {
	out := make([]ID, 0, len(s.cells)+len(s.districts))
	out = append(out, s.cells...)
	return append(out, s.districts...)
}

func without(ids []ID, id ID) []ID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
