// 包 district：行政区数据源（远程 GeoJSON，一次性拉取，之后只读）
package district

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"territory-engine/internal/containment"
	"territory-engine/internal/geo"
	"territory-engine/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xeipuuv/gojsonschema"
)

// NumberProperty：要素属性中的区号字段（1 起始）
const NumberProperty = "sup_dist_num"

// 载荷结构校验：只约束本服务实际读取的字段
const payloadSchema = `{
  "type": "object",
  "required": ["type", "features"],
  "properties": {
    "type": {"const": "FeatureCollection"},
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["geometry"],
        "properties": {
          "geometry": {
            "type": "object",
            "required": ["type", "coordinates"],
            "properties": {"type": {"enum": ["Polygon", "MultiPolygon"]}}
          },
          "properties": {"type": ["object", "null"]}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(payloadSchema)

// 文档注释：单个行政区
// 约束：Shape 为地理坐标多多边形；单多边形几何被提升为只含一个成员的多多边形。
type District struct {
	Number int              `json:"number"`
	Shape  orb.MultiPolygon `json:"-"`
}

// 文档注释：行政区数据集
// 背景：拉取完成后只读，可被多个读者共享；nil 数据集表示“尚无行政区”，所有方法安全返回空结果。
// 约束：按区号升序排列；区号唯一。
type Dataset struct {
	districts []District
	index     map[int]int
}

// 文档注释：解析行政区载荷
// 背景：先按 JSON Schema 校验结构，再用 orb/geojson 解码；区号取 sup_dist_num（字符串或数字），缺失时按要素顺序 1 起始编号。
// 返回：校验失败、区号重复或无要素时返回错误。
func Parse(payload []byte) (*Dataset, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("district payload: %w", err)
	}
	if !res.Valid() {
		var msgs []string
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("district payload invalid: %s", strings.Join(msgs, "; "))
	}
	fc, err := geojson.UnmarshalFeatureCollection(payload)
	if err != nil {
		return nil, fmt.Errorf("district geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("district payload has no features")
	}
	list := make([]District, 0, len(fc.Features))
	for i, f := range fc.Features {
		n := featureNumber(f, i)
		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.MultiPolygon:
			mp = g
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		}
		list = append(list, District{Number: n, Shape: mp})
	}
	return NewDataset(list)
}

// NewDataset：由已解码的行政区构造数据集
func NewDataset(list []District) (*Dataset, error) {
	ds := &Dataset{districts: append([]District(nil), list...), index: make(map[int]int, len(list))}
	sort.SliceStable(ds.districts, func(i, j int) bool { return ds.districts[i].Number < ds.districts[j].Number })
	for i, d := range ds.districts {
		if _, dup := ds.index[d.Number]; dup {
			return nil, fmt.Errorf("duplicate district %d", d.Number)
		}
		ds.index[d.Number] = i
	}
	return ds, nil
}

func featureNumber(f *geojson.Feature, i int) int {
	switch v := f.Properties[NumberProperty].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case float64:
		return int(v)
	}
	return i + 1
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.districts)
}

// All：全部行政区（区号升序）
func (d *Dataset) All() []District {
	if d == nil {
		return nil
	}
	return d.districts
}

// Polygon：区号 n 的多多边形
func (d *Dataset) Polygon(n int) (orb.MultiPolygon, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[n]
	if !ok {
		return nil, false
	}
	return d.districts[i].Shape, true
}

// Others：除 n 以外全部行政区的多边形合并（成员拼接，不做几何求并）
func (d *Dataset) Others(n int) orb.MultiPolygon {
	var out orb.MultiPolygon
	for _, x := range d.All() {
		if x.Number != n {
			out = append(out, x.Shape...)
		}
	}
	return out
}

// 文档注释：查找包含地理点的行政区
// 约束：在当前平面视图下判定；多个命中（共享边界）时返回区号最小者。
func (d *Dataset) At(a projection.Adapter, pt geo.GeoPoint) (int, bool) {
	for _, x := range d.All() {
		if containment.ContainsGeo(a, x.Shape, pt) {
			return x.Number, true
		}
	}
	return 0, false
}

// Containing：包含地理点的全部行政区号
func (d *Dataset) Containing(a projection.Adapter, pt geo.GeoPoint) []int {
	var out []int
	for _, x := range d.All() {
		if containment.ContainsGeo(a, x.Shape, pt) {
			out = append(out, x.Number)
		}
	}
	return out
}
