package wizard

import (
	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
)

// BasicPatch 基础信息的局部更新，nil 字段保持原值
type BasicPatch struct {
	Name        *string `json:"name,omitempty"`
	SKUPrefix   *string `json:"sku_prefix,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PricingPatch 价格的局部更新
type PricingPatch struct {
	Price          *decimal.Decimal `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Cost           *decimal.Decimal `json:"cost,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
}

// MediaPatch 图片的局部更新
type MediaPatch struct {
	Images *[]string `json:"images,omitempty"`
}

// Patch 草稿的局部更新。切片字段整体替换，结构体字段逐项合并。
type Patch struct {
	Step       *Step                `json:"step,omitempty"`
	Basic      *BasicPatch          `json:"basic,omitempty"`
	CategoryID *uint                `json:"category_id,omitempty"`
	Attributes *[]variant.Attribute `json:"attributes,omitempty"`
	Variations *[]variant.Variation `json:"variations,omitempty"`
	Pricing    *PricingPatch        `json:"pricing,omitempty"`
	Media      *MediaPatch          `json:"media,omitempty"`
	Tags       *[]string            `json:"tags,omitempty"`
}

// Empty 判断补丁是否不包含任何字段
func (p Patch) Empty() bool {
	return p.Step == nil && p.Basic == nil && p.CategoryID == nil && p.Attributes == nil &&
		p.Variations == nil && p.Pricing == nil && p.Media == nil && p.Tags == nil
}

// Merge 将补丁合并到草稿，返回新草稿；入参不会被修改
func Merge(d Draft, p Patch) Draft {
	out := d.Clone()

	if p.Step != nil {
		out.Step = *p.Step
	}
	if p.Basic != nil {
		mergeString(&out.Basic.Name, p.Basic.Name)
		mergeString(&out.Basic.SKUPrefix, p.Basic.SKUPrefix)
		mergeString(&out.Basic.Brand, p.Basic.Brand)
		mergeString(&out.Basic.Description, p.Basic.Description)
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.Attributes != nil {
		out.Attributes = cloneAttributes(*p.Attributes)
	}
	if p.Variations != nil {
		out.Variations = cloneVariations(*p.Variations)
	}
	if p.Pricing != nil {
		mergeDecimal(&out.Pricing.Price, p.Pricing.Price)
		mergeDecimal(&out.Pricing.CompareAtPrice, p.Pricing.CompareAtPrice)
		mergeDecimal(&out.Pricing.Cost, p.Pricing.Cost)
		mergeString(&out.Pricing.Currency, p.Pricing.Currency)
	}
	if p.Media != nil && p.Media.Images != nil {
		out.Media.Images = cloneStrings(*p.Media.Images)
	}
	if p.Tags != nil {
		out.Tags = cloneStrings(*p.Tags)
	}
	return out
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func mergeDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

// Regenerate 根据草稿属性重新展开变体。
// 这是破坏性操作：已有变体（包括用户编辑过的元数据）会被整体替换；失败时返回原草稿。
func Regenerate(d Draft) (Draft, error) {
	return RegenerateWithDefaults(d, variant.DefaultDefaults())
}

// RegenerateWithDefaults 使用指定默认值重新展开变体
func RegenerateWithDefaults(d Draft, defaults variant.Defaults) (Draft, error) {
	variations, err := variant.ExpandWithDefaults(d.Attributes, defaults)
	if err != nil {
		return d, err
	}
	out := d.Clone()
	out.Variations = variations
	return out, nil
}
