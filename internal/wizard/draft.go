// Package wizard 定义新增商品向导的表单状态，以及带类型的局部更新合并。
package wizard

import (
	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
)

// Step 向导步骤
type Step string

const (
	StepBasic    Step = "basic"
	StepCategory Step = "category"
	StepVariants Step = "variants"
	StepPricing  Step = "pricing"
	StepMedia    Step = "media"
	StepReview   Step = "review"
)

// Steps 步骤的固定顺序
var Steps = []Step{StepBasic, StepCategory, StepVariants, StepPricing, StepMedia, StepReview}

// Valid 判断步骤是否存在
func (s Step) Valid() bool {
	for _, step := range Steps {
		if step == s {
			return true
		}
	}
	return false
}

// Basic 基础信息
type Basic struct {
	Name        string `json:"name"`
	SKUPrefix   string `json:"sku_prefix"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
}

// Pricing 价格信息
type Pricing struct {
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compare_at_price"`
	Cost           decimal.Decimal `json:"cost"`
	Currency       string          `json:"currency"`
}

// Media 图片
type Media struct {
	Images []string `json:"images"`
}

// Draft 向导表单状态
type Draft struct {
	Step       Step                `json:"step"`
	Basic      Basic               `json:"basic"`
	CategoryID uint                `json:"category_id"`
	Attributes []variant.Attribute `json:"attributes"`
	Variations []variant.Variation `json:"variations"`
	Pricing    Pricing             `json:"pricing"`
	Media      Media               `json:"media"`
	Tags       []string            `json:"tags"`
}

// Default 返回一个空白草稿
func Default() Draft {
	return Draft{
		Step:       StepBasic,
		Attributes: []variant.Attribute{},
		Variations: []variant.Variation{},
		Pricing: Pricing{
			Price:          decimal.Zero,
			CompareAtPrice: decimal.Zero,
			Cost:           decimal.Zero,
			Currency:       "CNY",
		},
		Media: Media{Images: []string{}},
		Tags:  []string{},
	}
}

// Clone 深拷贝草稿
func (d Draft) Clone() Draft {
	out := d
	out.Attributes = cloneAttributes(d.Attributes)
	out.Variations = cloneVariations(d.Variations)
	out.Media.Images = cloneStrings(d.Media.Images)
	out.Tags = cloneStrings(d.Tags)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneAttributes(in []variant.Attribute) []variant.Attribute {
	if in == nil {
		return nil
	}
	out := make([]variant.Attribute, len(in))
	for i, attr := range in {
		out[i] = variant.Attribute{Name: attr.Name, Options: cloneStrings(attr.Options)}
	}
	return out
}

func cloneVariations(in []variant.Variation) []variant.Variation {
	if in == nil {
		return nil
	}
	out := make([]variant.Variation, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}
