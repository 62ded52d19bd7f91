package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stockdesk/internal/variant"
)

// ErrStepInvalid 未知的步骤
var ErrStepInvalid = errors.New("wizard step invalid")

// ErrIncomplete 草稿某一步缺少必填项
var ErrIncomplete = errors.New("wizard draft incomplete")

// StepError 描述某一步缺失或非法的字段
type StepError struct {
	Step   Step
	Fields []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s incomplete: %s", e.Step, strings.Join(e.Fields, ", "))
}

// Is 使 errors.Is(err, ErrIncomplete) 成立
func (e *StepError) Is(target error) bool {
	return target == ErrIncomplete
}

// ValidateStep 校验草稿在指定步骤的必填项
func ValidateStep(d Draft, step Step) error {
	var missing []string
	switch step {
	case StepBasic:
		if strings.TrimSpace(d.Basic.Name) == "" {
			missing = append(missing, "basic.name")
		}
	case StepCategory:
		if d.CategoryID == 0 {
			missing = append(missing, "category_id")
		}
	case StepVariants:
		if len(d.Attributes) > 0 && len(d.Variations) == 0 {
			missing = append(missing, "variations")
		}
		if len(d.Attributes) > 0 && len(d.Variations) > 0 && !variant.Conforms(d.Attributes, d.Variations) {
			missing = append(missing, "variations.stale")
		}
		for i, v := range d.Variations {
			if err := v.Validate(); err != nil {
				missing = append(missing, fmt.Sprintf("variations[%d]", i))
			}
		}
	case StepPricing:
		if !d.Pricing.Price.IsPositive() {
			missing = append(missing, "pricing.price")
		}
		if d.Pricing.Cost.IsNegative() {
			missing = append(missing, "pricing.cost")
		}
		if strings.TrimSpace(d.Pricing.Currency) == "" {
			missing = append(missing, "pricing.currency")
		}
	case StepMedia, StepReview:
	default:
		return ErrStepInvalid
	}
	if len(missing) > 0 {
		return &StepError{Step: step, Fields: missing}
	}
	return nil
}

// ValidateAll 依次校验全部步骤，返回第一个失败的步骤错误
func ValidateAll(d Draft) error {
	for _, step := range Steps {
		if err := ValidateStep(d, step); err != nil {
			return err
		}
	}
	return nil
}

// Advance 校验当前步骤后前进到下一步；已在最后一步时保持不变
func Advance(d Draft) (Draft, error) {
	if !d.Step.Valid() {
		return d, ErrStepInvalid
	}
	if err := ValidateStep(d, d.Step); err != nil {
		return d, err
	}
	out := d.Clone()
	for i, step := range Steps {
		if step == d.Step && i+1 < len(Steps) {
			out.Step = Steps[i+1]
			break
		}
	}
	return out, nil
}

// Back 回退到上一步，不做校验
func Back(d Draft) Draft {
	out := d.Clone()
	for i, step := range Steps {
		if step == d.Step && i > 0 {
			out.Step = Steps[i-1]
			break
		}
	}
	return out
}
