package variant

import (
	"errors"
	"fmt"
)

// ErrValidation 变体展开校验失败的哨兵错误，可用 errors.Is 判断
var ErrValidation = errors.New("variant validation failed")

// Reason 校验失败原因
type Reason string

const (
	// ReasonEmptyOptions 某个属性没有任何可选值
	ReasonEmptyOptions Reason = "empty_options"
	// ReasonDuplicateName 属性名忽略大小写后重复
	ReasonDuplicateName Reason = "duplicate_name"
	// ReasonInvalidMetadata 变体的库存/重量/尺寸等元数据非法
	ReasonInvalidMetadata Reason = "invalid_metadata"
	// ReasonTooManyVariations 组合数超过展开上限
	ReasonTooManyVariations Reason = "too_many_variations"
)

// ValidationError 变体展开的校验错误
type ValidationError struct {
	Reason    Reason
	Attribute int    // 出错的属性下标，-1 表示不针对具体属性
	Name      string // 出错的属性名或字段名
	Limit     int    // 组合数超限时的上限
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("variant validation failed: %s", e.Reason)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func emptyOptionsError(index int, name string) *ValidationError {
	return &ValidationError{
		Reason:    ReasonEmptyOptions,
		Attribute: index,
		Name:      name,
		Message:   "each variant type needs at least one option",
	}
}

func duplicateNameError(index int, name string) *ValidationError {
	return &ValidationError{
		Reason:    ReasonDuplicateName,
		Attribute: index,
		Name:      name,
		Message:   fmt.Sprintf("variant type %q is declared more than once (names are case-insensitive)", name),
	}
}

func invalidMetadataError(field, message string) *ValidationError {
	return &ValidationError{
		Reason:    ReasonInvalidMetadata,
		Attribute: -1,
		Name:      field,
		Message:   message,
	}
}

func tooManyVariationsError(limit int) *ValidationError {
	return &ValidationError{
		Reason:    ReasonTooManyVariations,
		Attribute: -1,
		Limit:     limit,
		Message:   fmt.Sprintf("variant types expand to more than %d variations", limit),
	}
}
