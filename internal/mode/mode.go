// 包 mode：模式控制器（地标目录与领地来源的选择）
package mode

import (
	"errors"

	"territory-engine/internal/catalog"
	"territory-engine/internal/geo"
	"territory-engine/internal/metrics"
)

// 内置模式 ID
const (
	None                = "none"
	SupervisorDistricts = "supervisor_districts"
)

var ErrUnknownMode = errors.New("unknown mode")

// 文档注释：模式（带标签的变体）
// 背景：每种模式在切换时一次性解析为“地标列表 + 是否以行政区为领地来源”，事件处理中不再按模式分派。
// 约束：UsesDistricts 为 true 时 Landmarks 为空；None 模式两者皆空（镶嵌为空）。
type Mode struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Landmarks     []geo.Landmark `json:"-"`
	UsesDistricts bool           `json:"usesDistricts"`
}

// 文档注释：模式控制器
// 约束：非并发安全，由引擎单一所有者调用；模式列表顺序即展示顺序。
type Controller struct {
	modes   []Mode
	current int
}

// NewController：以模式列表构造控制器，初始为第一个模式
func NewController(modes []Mode) *Controller {
	if len(modes) == 0 {
		modes = []Mode{{ID: None, Label: "None"}}
	}
	return &Controller{modes: modes}
}

func (c *Controller) Current() Mode { return c.modes[c.current] }

func (c *Controller) Modes() []Mode { return c.modes }

// 文档注释：切换模式
// 返回：新模式；未知 ID 返回 ErrUnknownMode 且当前模式不变。切换到当前模式同样视为一次切换（调用方据此重置聚焦）。
func (c *Controller) Switch(id string) (Mode, error) {
	for i, m := range c.modes {
		if m.ID == id {
			c.current = i
			metrics.ModeSwitchesTotal.WithLabelValues(id).Inc()
			return m, nil
		}
	}
	return c.Current(), ErrUnknownMode
}

// 文档注释：由目录文件构造模式列表
// 背景：顺序为 None、前四个目录、行政区模式、其余目录（与地图下拉框一致）。
func FromCatalogs(cats []catalog.Catalog) []Mode {
	modes := []Mode{{ID: None, Label: "None"}}
	districts := Mode{ID: SupervisorDistricts, Label: "Supervisor Districts", UsesDistricts: true}
	for i, c := range cats {
		if i == 4 {
			modes = append(modes, districts)
		}
		modes = append(modes, Mode{ID: c.ID, Label: c.Label, Landmarks: c.Landmarks})
	}
	if len(cats) <= 4 {
		modes = append(modes, districts)
	}
	return modes
}
