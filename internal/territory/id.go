// 包 territory：淘汰领地的状态存储（格子与行政区两类来源，显式 ACTIVE/ELIMINATED 状态机）
package territory

import "strconv"

// Kind：领地标识的变体
type Kind int

const (
	CellName Kind = iota
	CellOthers
	District
	DistrictOthers
)

func (k Kind) String() string {
	switch k {
	case CellName:
		return "cell"
	case CellOthers:
		return "cell_others"
	case District:
		return "district"
	case DistrictOthers:
		return "district_others"
	}
	return "unknown"
}

// 文档注释：领地标识（带标签的变体，可直接作 map 键）
// 背景：格子领地以地标名称标识，行政区领地以 1 起始的区号标识；“其余”选择是独立的变体而不是字符串拼接，
// 因此名为 "district-3-others" 的地标不会与行政区键冲突。
// 约束：格子变体只使用 Name，行政区变体只使用 District。
type ID struct {
	Kind     Kind
	Name     string
	District int
}

func CellID(name string) ID { return ID{Kind: CellName, Name: name} }
func CellOthersID(name string) ID { return ID{Kind: CellOthers, Name: name} }
func DistrictID(n int) ID { return ID{Kind: District, District: n} }
func DistrictOthersID(n int) ID { return ID{Kind: DistrictOthers, District: n} }
func (id ID) IsDistrict() bool { return id.Kind == District || id.Kind == DistrictOthers }
func (id ID) IsOthers() bool { return id.Kind == CellOthers || id.Kind == DistrictOthers }

// String：渲染层使用的键文本（"X"、"X-others"、"district-n"、"district-n-others"），仅用于展示
func (id ID) String() string {
	switch id.Kind {
	case CellName:
		return id.Name
	case CellOthers:
		return id.Name + "-others"
	case District:
		return "district-" + strconv.Itoa(id.District)
	case DistrictOthers:
		return "district-" + strconv.Itoa(id.District) + "-others"
	}
	return ""
}

// MarshalText：JSON 编码时输出展示键
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
