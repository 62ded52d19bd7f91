package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Money 金额，入库、出参一律两位小数；JSON 输出为字符串避免浮点误差
type Money struct {
	decimal.Decimal
}

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(moneyScale)}
}

func NewMoneyFromInt(n int64) Money {
	return Money{Decimal: decimal.NewFromInt(n)}
}

// MulQty 单价乘数量
func (m Money) MulQty(qty int) Money {
	return NewMoneyFromDecimal(m.Mul(decimal.NewFromInt(int64(qty))))
}

func (m Money) String() string {
	return m.Round(moneyScale).StringFixed(moneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON 接受 "12.5"、12.5 两种写法，空串与 null 视为 0
func (m *Money) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "", "null", `""`:
		m.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Round(moneyScale).Value()
}

func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}
