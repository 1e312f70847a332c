// 包 catalog：地标目录（内置 YAML 与外部来源统一结构）
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"territory-engine/internal/geo"

	"gopkg.in/yaml.v3"
)

//go:embed catalogs.yaml
var builtinYAML []byte

// 文档注释：地标目录
// 约束：只读；Landmarks 顺序即镶嵌格子顺序；名称在目录内唯一。
type Catalog struct {
	ID        string         `json:"id" yaml:"id"`
	Label     string         `json:"label" yaml:"label"`
	Landmarks []geo.Landmark `json:"landmarks" yaml:"landmarks"`
}

// DefaultView：初始视图中心与缩放
type DefaultView struct {
	geo.GeoPoint `yaml:",inline"`
	Zoom         float64 `json:"zoom" yaml:"zoom"`
}

// 文档注释：目录文件
// 背景：按部署固定裁剪框、默认视图与全部目录；内置文件为旧金山数据。
type File struct {
	Bounds      geo.BoundingBox `yaml:"bounds"`
	DefaultView DefaultView     `yaml:"default_view"`
	Catalogs    []Catalog       `yaml:"catalogs"`
}

// Find：按 ID 查找目录
func (f *File) Find(id string) (Catalog, bool) {
	for _, c := range f.Catalogs {
		if c.ID == id {
			return c, true
		}
	}
	return Catalog{}, false
}

// Parse：解析目录文件并校验
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	if f.Bounds.TopLeft == f.Bounds.BottomRight {
		return nil, errors.New("catalog bounds missing")
	}
	for _, c := range f.Catalogs {
		if err := Validate(c); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// Builtin：内置目录文件
func Builtin() (*File, error) { return Parse(builtinYAML) }

// 文档注释：目录校验
// 约束：ID 非空；地标名称非空且目录内唯一。
func Validate(c Catalog) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("catalog id empty")
	}
	seen := make(map[string]bool, len(c.Landmarks))
	for _, lm := range c.Landmarks {
		if lm.Name == "" {
			return fmt.Errorf("catalog %s: landmark without name", c.ID)
		}
		if seen[lm.Name] {
			return fmt.Errorf("catalog %s: duplicate landmark %q", c.ID, lm.Name)
		}
		seen[lm.Name] = true
	}
	return nil
}
