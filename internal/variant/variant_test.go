package variant

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optionsOf(vs []Variation) []map[string]string {
	out := make([]map[string]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Options)
	}
	return out
}

func TestExpandSingleAttribute(t *testing.T) {
	got, err := Expand([]Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []map[string]string{{"color": "Red"}, {"color": "Blue"}}, optionsOf(got))
	for _, v := range got {
		assert.Equal(t, 0, v.InitialStock)
		assert.Equal(t, 10, v.LowStockThreshold)
		assert.Equal(t, 5, v.MinReorderQty)
		assert.True(t, v.IsActive)
		assert.Equal(t, Weight{Value: 0, Unit: WeightGram}, v.Weight)
		assert.Equal(t, Dimensions{Unit: DimensionMillimeter}, v.Dimensions)
	}
}

func TestExpandNestedOrder(t *testing.T) {
	got, err := Expand([]Attribute{
		{Name: "Color", Options: []string{"Red", "Blue"}},
		{Name: "Size", Options: []string{"S", "M", "L"}},
	})
	require.NoError(t, err)

	want := []map[string]string{
		{"color": "Red", "size": "S"},
		{"color": "Red", "size": "M"},
		{"color": "Red", "size": "L"},
		{"color": "Blue", "size": "S"},
		{"color": "Blue", "size": "M"},
		{"color": "Blue", "size": "L"},
	}
	assert.Equal(t, want, optionsOf(got))
}

func TestExpandZeroAttributes(t *testing.T) {
	got, err := Expand(nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got, err = Expand([]Attribute{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpandEmptyOptionsFails(t *testing.T) {
	cases := [][]Attribute{
		{{Name: "Color", Options: []string{}}},
		{{Name: "Color", Options: []string{"Red"}}, {Name: "Storage", Options: nil}},
	}
	for _, attrs := range cases {
		got, err := Expand(attrs)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, ErrValidation))

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ReasonEmptyOptions, verr.Reason)
		assert.Equal(t, len(attrs)-1, verr.Attribute)
		assert.Equal(t, "each variant type needs at least one option", verr.Error())
	}
}

func TestExpandRejectsCaseInsensitiveDuplicateNames(t *testing.T) {
	got, err := Expand([]Attribute{
		{Name: "Color", Options: []string{"Red"}},
		{Name: "color", Options: []string{"Blue"}},
	})
	assert.Nil(t, got)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonDuplicateName, verr.Reason)
	assert.Equal(t, 1, verr.Attribute)
}

func TestExpandEmptyNameIsAccepted(t *testing.T) {
	got, err := Expand([]Attribute{{Name: "", Options: []string{"x"}}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"": "x"}, got[0].Options)
}

func TestExpandProperties(t *testing.T) {
	attrs := []Attribute{
		{Name: "Color", Options: []string{"Red", "Blue", "Green"}},
		{Name: "Size", Options: []string{"S", "M"}},
		{Name: "Material", Options: []string{"Cotton", "Wool", "Linen", "Silk"}},
	}

	first, err := Expand(attrs)
	require.NoError(t, err)
	second, err := Expand(attrs)
	require.NoError(t, err)

	assert.Len(t, first, Count(attrs))
	assert.Equal(t, 24, Count(attrs))
	assert.Equal(t, first, second)

	seen := make(map[string]struct{}, len(first))
	for _, v := range first {
		_, dup := seen[v.Key()]
		assert.False(t, dup, "duplicate combination %s", v.Key())
		seen[v.Key()] = struct{}{}
		assert.Len(t, v.Options, len(attrs))
	}
}

func TestExpandDoesNotAliasInput(t *testing.T) {
	attrs := []Attribute{{Name: "Size", Options: []string{"S", "M"}}}
	got, err := Expand(attrs)
	require.NoError(t, err)

	attrs[0].Options[0] = "XL"
	assert.Equal(t, "S", got[0].Options["size"])

	got[1].Options["size"] = "L"
	again, err := Expand([]Attribute{{Name: "Size", Options: []string{"S", "M"}}})
	require.NoError(t, err)
	assert.Equal(t, "M", again[1].Options["size"])
}

func TestExpandWithDefaults(t *testing.T) {
	got, err := ExpandWithDefaults([]Attribute{{Name: "Size", Options: []string{"S"}}}, Defaults{
		InitialStock:      3,
		LowStockThreshold: 2,
		MinReorderQty:     12,
		WeightUnit:        WeightKilogram,
		DimensionUnit:     DimensionCentimeter,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].InitialStock)
	assert.Equal(t, 2, got[0].LowStockThreshold)
	assert.Equal(t, 12, got[0].MinReorderQty)
	assert.Equal(t, WeightKilogram, got[0].Weight.Unit)
	assert.Equal(t, DimensionCentimeter, got[0].Dimensions.Unit)
}

func TestVariationKey(t *testing.T) {
	v := NewVariation(map[string]string{"size": "M", "color": "Red"})
	assert.Equal(t, "color=Red;size=M", v.Key())
	assert.Equal(t, "", NewVariation(nil).Key())
}

func TestVariationValidate(t *testing.T) {
	v := NewVariation(map[string]string{"color": "Red"})
	require.NoError(t, v.Validate())

	bad := v.Clone()
	bad.InitialStock = -1
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = v.Clone()
	bad.Weight.Unit = "ton"
	var verr *ValidationError
	require.True(t, errors.As(bad.Validate(), &verr))
	assert.Equal(t, ReasonInvalidMetadata, verr.Reason)
	assert.Equal(t, "weight.unit", verr.Name)

	bad = v.Clone()
	bad.Dimensions.Unit = "ft"
	assert.Error(t, bad.Validate())
}

func binaryAttributes(n int) []Attribute {
	attrs := make([]Attribute, n)
	for i := range attrs {
		attrs[i] = Attribute{Name: fmt.Sprintf("axis%d", i), Options: []string{"a", "b"}}
	}
	return attrs
}

func TestCountSaturatesInsteadOfOverflowing(t *testing.T) {
	assert.Equal(t, 1<<20, Count(binaryAttributes(20)))
	assert.Equal(t, math.MaxInt, Count(binaryAttributes(63)))
	assert.Equal(t, math.MaxInt, Count(binaryAttributes(64)))

	n, ok := CountWithin(binaryAttributes(10), 1024)
	assert.True(t, ok)
	assert.Equal(t, 1024, n)
	_, ok = CountWithin(binaryAttributes(11), 1024)
	assert.False(t, ok)
}

func TestExpandRejectsOversizedProductBeforeAllocating(t *testing.T) {
	attrs := make([]Attribute, 8)
	for i := range attrs {
		options := make([]string, 20)
		for j := range options {
			options[j] = fmt.Sprintf("v%d", j)
		}
		attrs[i] = Attribute{Name: fmt.Sprintf("axis%d", i), Options: options}
	}
	_, err := Expand(attrs)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonTooManyVariations, verr.Reason)
	assert.Equal(t, DefaultMaxVariations, verr.Limit)
	assert.ErrorIs(t, err, ErrValidation)

	d := DefaultDefaults()
	d.MaxVariations = 6
	got, err := ExpandWithDefaults([]Attribute{
		{Name: "Color", Options: []string{"Red", "Blue"}},
		{Name: "Size", Options: []string{"S", "M", "L"}},
	}, d)
	require.NoError(t, err)
	assert.Len(t, got, 6)

	d.MaxVariations = 5
	_, err = ExpandWithDefaults([]Attribute{
		{Name: "Color", Options: []string{"Red", "Blue"}},
		{Name: "Size", Options: []string{"S", "M", "L"}},
	}, d)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConforms(t *testing.T) {
	attrs := []Attribute{
		{Name: "Color", Options: []string{"Red", "Blue"}},
		{Name: "Size", Options: []string{"S", "M"}},
	}
	expanded, err := Expand(attrs)
	require.NoError(t, err)
	assert.True(t, Conforms(attrs, expanded))

	reversed := []Variation{expanded[3], expanded[2], expanded[1], expanded[0]}
	reversed[0].InitialStock = 40
	assert.True(t, Conforms(attrs, reversed))

	assert.False(t, Conforms(attrs, expanded[:3]))
	assert.False(t, Conforms(attrs, []Variation{expanded[0], expanded[0], expanded[1], expanded[2]}))

	other := []Attribute{
		{Name: "Color", Options: []string{"Red", "Green"}},
		{Name: "Size", Options: []string{"S", "M"}},
	}
	assert.False(t, Conforms(other, expanded))
	assert.False(t, Conforms([]Attribute{{Name: "Fit", Options: []string{"a", "b", "c", "d"}}}, expanded))

	assert.True(t, Conforms(nil, nil))
	assert.True(t, Conforms(nil, []Variation{NewVariation(nil)}))
	assert.False(t, Conforms(nil, expanded[:1]))
	assert.False(t, Conforms(attrs, nil))
}
