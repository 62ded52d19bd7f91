package variant

import "fmt"

// Valid 判断重量单位是否受支持
func (u WeightUnit) Valid() bool {
	switch u {
	case WeightGram, WeightKilogram, WeightPound, WeightOunce:
		return true
	}
	return false
}

// Valid 判断尺寸单位是否受支持
func (u DimensionUnit) Valid() bool {
	switch u {
	case DimensionMillimeter, DimensionCentimeter, DimensionInch:
		return true
	}
	return false
}

// Validate 校验重量
func (w Weight) Validate() error {
	if w.Value < 0 {
		return invalidMetadataError("weight.value", "weight must not be negative")
	}
	if !w.Unit.Valid() {
		return invalidMetadataError("weight.unit", fmt.Sprintf("unsupported weight unit %q", w.Unit))
	}
	return nil
}

// Validate 校验尺寸
func (d Dimensions) Validate() error {
	if d.Length < 0 || d.Width < 0 || d.Height < 0 {
		return invalidMetadataError("dimensions", "dimensions must not be negative")
	}
	if !d.Unit.Valid() {
		return invalidMetadataError("dimensions.unit", fmt.Sprintf("unsupported dimension unit %q", d.Unit))
	}
	return nil
}

// Validate 校验变体的运营元数据（用户编辑后调用）
func (v Variation) Validate() error {
	if v.InitialStock < 0 {
		return invalidMetadataError("initial_stock", "initial stock must not be negative")
	}
	if v.LowStockThreshold < 0 {
		return invalidMetadataError("low_stock_threshold", "low stock threshold must not be negative")
	}
	if v.MinReorderQty < 0 {
		return invalidMetadataError("min_reorder_qty", "minimum reorder quantity must not be negative")
	}
	if err := v.Weight.Validate(); err != nil {
		return err
	}
	return v.Dimensions.Validate()
}
