package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{NewMoneyFromDecimal(decimal.RequireFromString("19.999"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"20.00"}`, string(out))

	for raw, want := range map[string]string{
		`"12.345"`: "12.35",
		`7.1`:      "7.10",
		`""`:       "0.00",
		`null`:     "0.00",
	} {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(raw), &m), raw)
		assert.Equal(t, want, m.String(), raw)
	}

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestMoneyMulQtyAndScan(t *testing.T) {
	unit := NewMoneyFromDecimal(decimal.RequireFromString("3.33"))
	assert.Equal(t, "9.99", unit.MulQty(3).String())

	var m Money
	require.NoError(t, m.Scan("4.005"))
	assert.Equal(t, "4.01", m.String())
	v, err := NewMoneyFromInt(5).Value()
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}
