package wizard

import (
	"errors"
	"testing"

	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func TestMergePreservesUntouchedNestedFields(t *testing.T) {
	base := Default()
	base.Basic = Basic{Name: "Tee", SKUPrefix: "TEE", Brand: "Acme", Description: "cotton"}
	base.Pricing.Price = decimal.NewFromInt(99)

	out := Merge(base, Patch{Basic: &BasicPatch{Brand: strPtr("Globex")}})

	assert.Equal(t, "Tee", out.Basic.Name)
	assert.Equal(t, "TEE", out.Basic.SKUPrefix)
	assert.Equal(t, "Globex", out.Basic.Brand)
	assert.Equal(t, "cotton", out.Basic.Description)
	assert.True(t, out.Pricing.Price.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, "CNY", out.Pricing.Currency)
	assert.Equal(t, "Acme", base.Basic.Brand, "input must not be mutated")
}

func TestMergeReplacesSlicesWithoutAliasing(t *testing.T) {
	base := Default()
	base.Tags = []string{"a"}
	tags := []string{"b", "c"}
	attrs := []variant.Attribute{{Name: "Size", Options: []string{"S"}}}

	out := Merge(base, Patch{Tags: &tags, Attributes: &attrs})
	tags[0] = "z"
	attrs[0].Options[0] = "XL"

	assert.Equal(t, []string{"b", "c"}, out.Tags)
	assert.Equal(t, "S", out.Attributes[0].Options[0])
	assert.Equal(t, []string{"a"}, base.Tags)
}

func TestMergeEmptyPatchIsIdentity(t *testing.T) {
	base := Default()
	base.Basic.Name = "Mug"
	assert.True(t, Patch{}.Empty())
	assert.Equal(t, base, Merge(base, Patch{}))
}

func TestRegenerateIsDestructive(t *testing.T) {
	d := Default()
	d.Attributes = []variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}}
	d, err := Regenerate(d)
	require.NoError(t, err)
	require.Len(t, d.Variations, 2)

	d.Variations[0].InitialStock = 40
	d, err = Regenerate(d)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Variations[0].InitialStock)
}

func TestRegenerateFailureKeepsDraft(t *testing.T) {
	d := Default()
	d.Attributes = []variant.Attribute{{Name: "Color", Options: []string{"Red"}}}
	d, err := Regenerate(d)
	require.NoError(t, err)

	d.Attributes = append(d.Attributes, variant.Attribute{Name: "Storage"})
	out, err := Regenerate(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, variant.ErrValidation))
	assert.Equal(t, d.Variations, out.Variations)
}

func TestValidateStep(t *testing.T) {
	d := Default()
	var stepErr *StepError
	require.True(t, errors.As(ValidateStep(d, StepBasic), &stepErr))
	assert.Equal(t, []string{"basic.name"}, stepErr.Fields)
	assert.ErrorIs(t, ValidateStep(d, StepCategory), ErrIncomplete)
	assert.ErrorIs(t, ValidateStep(d, "nope"), ErrStepInvalid)

	d.Attributes = []variant.Attribute{{Name: "Size", Options: []string{"S", "M"}}}
	assert.Error(t, ValidateStep(d, StepVariants))
	d, _ = Regenerate(d)
	assert.NoError(t, ValidateStep(d, StepVariants))

	d.Attributes[0].Options = append(d.Attributes[0].Options, "L")
	assert.Error(t, ValidateStep(d, StepVariants), "stale variations must be regenerated")
}

func TestValidateStepRejectsVariationsFromOtherAttributes(t *testing.T) {
	d := Default()
	d.Basic.Name = "Tee"
	d.CategoryID = 1
	d.Pricing.Price = decimal.NewFromInt(20)
	d.Attributes = []variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}}
	d, err := Regenerate(d)
	require.NoError(t, err)
	require.NoError(t, ValidateAll(d))

	d.Attributes = []variant.Attribute{{Name: "Size", Options: []string{"S", "M"}}}
	var stepErr *StepError
	require.True(t, errors.As(ValidateAll(d), &stepErr))
	assert.Equal(t, StepVariants, stepErr.Step)
	assert.Equal(t, []string{"variations.stale"}, stepErr.Fields)

	d.Attributes = []variant.Attribute{{Name: "color", Options: []string{"Blue", "Red"}}}
	assert.NoError(t, ValidateAll(d), "option order and name case do not make variations stale")
}

func TestAdvanceAndBack(t *testing.T) {
	d := Default()
	_, err := Advance(d)
	require.Error(t, err)

	d.Basic.Name = "Mug"
	d, err = Advance(d)
	require.NoError(t, err)
	assert.Equal(t, StepCategory, d.Step)

	d = Back(d)
	assert.Equal(t, StepBasic, d.Step)

	d.Step = StepReview
	d, err = Advance(d)
	require.NoError(t, err)
	assert.Equal(t, StepReview, d.Step)
}

func TestValidateAll(t *testing.T) {
	d := Default()
	d.Basic.Name = "Mug"
	d.CategoryID = 3
	d.Pricing.Price = decimal.NewFromFloat(12.5)
	require.NoError(t, ValidateAll(d))

	d.Pricing.Currency = ""
	var stepErr *StepError
	require.True(t, errors.As(ValidateAll(d), &stepErr))
	assert.Equal(t, StepPricing, stepErr.Step)
}
