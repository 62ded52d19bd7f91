// Package variant 负责把商品属性（颜色、尺码等）展开为具体的 SKU 变体。
package variant

import (
	"math"
	"sort"
	"strings"
)

// WeightUnit 重量单位
type WeightUnit string

// DimensionUnit 尺寸单位
type DimensionUnit string

const (
	WeightGram     WeightUnit = "g"
	WeightKilogram WeightUnit = "kg"
	WeightPound    WeightUnit = "lb"
	WeightOunce    WeightUnit = "oz"

	DimensionMillimeter DimensionUnit = "mm"
	DimensionCentimeter DimensionUnit = "cm"
	DimensionInch       DimensionUnit = "in"
)

// Attribute 变体属性（一个变化维度）
type Attribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Weight 重量
type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// Dimensions 外形尺寸
type Dimensions struct {
	Length float64       `json:"length"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   DimensionUnit `json:"unit"`
}

// Variation 一个具体的属性组合及其默认运营元数据
type Variation struct {
	Options           map[string]string `json:"options"`             // 小写属性名 -> 选中值
	InitialStock      int               `json:"initial_stock"`       // 初始库存
	LowStockThreshold int               `json:"low_stock_threshold"` // 低库存阈值
	MinReorderQty     int               `json:"min_reorder_qty"`     // 最小补货量
	Weight            Weight            `json:"weight"`
	Dimensions        Dimensions        `json:"dimensions"`
	IsActive          bool              `json:"is_active"`
}

// DefaultMaxVariations 单个商品允许展开的变体数上限
const DefaultMaxVariations = 1000

// Defaults 展开时附加的默认元数据与展开上限
type Defaults struct {
	InitialStock      int
	LowStockThreshold int
	MinReorderQty     int
	WeightUnit        WeightUnit
	DimensionUnit     DimensionUnit
	MaxVariations     int // <= 0 时取 DefaultMaxVariations
}

// DefaultDefaults 返回内置默认值：库存 0，低库存阈值 10，最小补货 5，g / mm，上限 1000
func DefaultDefaults() Defaults {
	return Defaults{
		InitialStock:      0,
		LowStockThreshold: 10,
		MinReorderQty:     5,
		WeightUnit:        WeightGram,
		DimensionUnit:     DimensionMillimeter,
		MaxVariations:     DefaultMaxVariations,
	}
}

// Limit 返回生效的展开上限
func (d Defaults) Limit() int {
	if d.MaxVariations <= 0 {
		return DefaultMaxVariations
	}
	return d.MaxVariations
}

// NewVariation 使用内置默认值构建变体
func NewVariation(options map[string]string) Variation {
	return newVariation(options, DefaultDefaults())
}

func newVariation(options map[string]string, d Defaults) Variation {
	if options == nil {
		options = map[string]string{}
	}
	return Variation{
		Options:           options,
		InitialStock:      d.InitialStock,
		LowStockThreshold: d.LowStockThreshold,
		MinReorderQty:     d.MinReorderQty,
		Weight:            Weight{Value: 0, Unit: d.WeightUnit},
		Dimensions:        Dimensions{Unit: d.DimensionUnit},
		IsActive:          true,
	}
}

// Key 返回按属性名排序的规范键，例如 "color=Red;size=S"
func (v Variation) Key() string {
	if len(v.Options) == 0 {
		return ""
	}
	names := make([]string, 0, len(v.Options))
	for name := range v.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v.Options[name])
	}
	return b.String()
}

// Clone 深拷贝变体
func (v Variation) Clone() Variation {
	out := v
	out.Options = make(map[string]string, len(v.Options))
	for k, val := range v.Options {
		out.Options[k] = val
	}
	return out
}

// Count 返回展开后的变体数量（各属性选项数之积），零属性返回 0，超出 int 范围时返回 math.MaxInt
func Count(attrs []Attribute) int {
	n, ok := CountWithin(attrs, math.MaxInt)
	if !ok {
		return math.MaxInt
	}
	return n
}

// CountWithin 计算展开数量，乘积超过 limit 时立即返回 (0, false)，不会溢出
func CountWithin(attrs []Attribute, limit int) (int, bool) {
	if len(attrs) == 0 {
		return 0, true
	}
	total := 1
	for _, attr := range attrs {
		n := len(attr.Options)
		if n == 0 {
			return 0, true
		}
		if total > limit/n {
			return 0, false
		}
		total *= n
	}
	return total, true
}

// Conforms 判断 variations 是否恰好覆盖 attrs 的全部组合：按属性名与选项值比较，忽略顺序与元数据。
// 没有属性时只接受至多一个无选项的默认变体。
func Conforms(attrs []Attribute, variations []Variation) bool {
	if len(attrs) == 0 {
		if len(variations) > 1 {
			return false
		}
		for _, v := range variations {
			if len(v.Options) > 0 {
				return false
			}
		}
		return true
	}
	want, ok := CountWithin(attrs, len(variations))
	if !ok || want != len(variations) {
		return false
	}
	allowed := make(map[string]map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		values := make(map[string]struct{}, len(attr.Options))
		for _, opt := range attr.Options {
			values[opt] = struct{}{}
		}
		allowed[strings.ToLower(attr.Name)] = values
	}
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		if len(v.Options) != len(allowed) {
			return false
		}
		for name, value := range v.Options {
			if _, ok := allowed[name][value]; !ok {
				return false
			}
		}
		key := v.Key()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Expand 使用内置默认值展开属性
func Expand(attrs []Attribute) ([]Variation, error) {
	return ExpandWithDefaults(attrs, DefaultDefaults())
}

// ExpandWithDefaults 计算属性选项的笛卡尔积。
// 第一个属性变化最慢，最后一个属性变化最快；任一属性无选项、属性名忽略大小写重复
// 或组合数超过 d.Limit() 时返回 *ValidationError，超限在分配内存之前判定。
func ExpandWithDefaults(attrs []Attribute, d Defaults) ([]Variation, error) {
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}
	if _, ok := CountWithin(attrs, d.Limit()); !ok {
		return nil, tooManyVariationsError(d.Limit())
	}
	if len(attrs) == 0 {
		return []Variation{}, nil
	}

	type pair struct {
		name  string
		value string
	}

	combos := make([][]pair, 0, len(attrs[0].Options))
	first := strings.ToLower(attrs[0].Name)
	for _, opt := range attrs[0].Options {
		combos = append(combos, []pair{{name: first, value: opt}})
	}
	for _, attr := range attrs[1:] {
		name := strings.ToLower(attr.Name)
		next := make([][]pair, 0, len(combos)*len(attr.Options))
		for _, combo := range combos {
			for _, opt := range attr.Options {
				branch := make([]pair, len(combo), len(combo)+1)
				copy(branch, combo)
				next = append(next, append(branch, pair{name: name, value: opt}))
			}
		}
		combos = next
	}

	out := make([]Variation, 0, len(combos))
	for _, combo := range combos {
		options := make(map[string]string, len(combo))
		for _, p := range combo {
			options[p.name] = p.value
		}
		out = append(out, newVariation(options, d))
	}
	return out, nil
}

func validateAttributes(attrs []Attribute) error {
	seen := make(map[string]struct{}, len(attrs))
	for i, attr := range attrs {
		if len(attr.Options) == 0 {
			return emptyOptionsError(i, attr.Name)
		}
		key := strings.ToLower(attr.Name)
		if _, ok := seen[key]; ok {
			return duplicateNameError(i, attr.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
