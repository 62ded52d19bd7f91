package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/internal/constants"

	"github.com/shopspring/decimal"
)

const analyticsCustomMaxDays = 90

// AnalyticsQueryInput 分析查询输入
type AnalyticsQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	Limit        int
	ForceRefresh bool
}

type analyticsWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
	location *time.Location
}

// previous 返回紧邻的上一个等长窗口
func (w analyticsWindow) previous() analyticsWindow {
	span := w.endAt.Sub(w.startAt)
	prev := w
	prev.endAt = w.startAt
	prev.startAt = w.startAt.Add(-span)
	return prev
}

func (w analyticsWindow) cacheParts() []string {
	return []string{
		w.rangeKey,
		w.startAt.Format("2006-01-02T15:04:05"),
		w.endAt.Format("2006-01-02T15:04:05"),
		w.timezone,
	}
}

func resolveAnalyticsWindow(input AnalyticsQueryInput, defaultTimezone string, maxCustomDays int, now time.Time) (analyticsWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = constants.AnalyticsRange7Days
	}
	if maxCustomDays <= 0 {
		maxCustomDays = analyticsCustomMaxDays
	}

	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = strings.TrimSpace(defaultTimezone)
	}
	location := time.Local
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			return analyticsWindow{}, fmt.Errorf("%w: %s", ErrAnalyticsTimezoneInvalid, timezone)
		}
		location = parsed
	} else {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := analyticsWindow{rangeKey: rangeKey, timezone: timezone, location: location}

	switch rangeKey {
	case constants.AnalyticsRangeToday:
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case constants.AnalyticsRange7Days:
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case constants.AnalyticsRange30Days:
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case constants.AnalyticsRangeCustom:
		if input.From == nil || input.To == nil {
			return analyticsWindow{}, ErrAnalyticsRangeInvalid
		}
		from := input.From.In(location)
		to := input.To.In(location)
		startAt := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, location)
		endAt := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, location).AddDate(0, 0, 1)
		if !endAt.After(startAt) {
			return analyticsWindow{}, ErrAnalyticsRangeInvalid
		}
		if endAt.After(startAt.AddDate(0, 0, maxCustomDays)) {
			return analyticsWindow{}, ErrAnalyticsRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt
	default:
		return analyticsWindow{}, ErrAnalyticsRangeInvalid
	}
	return window, nil
}

func formatMoneyDecimal(value decimal.Decimal) string {
	return value.Round(2).StringFixed(2)
}

func formatPercentDecimal(value decimal.Decimal) string {
	return value.Round(2).StringFixed(2)
}

var hundred = decimal.NewFromInt(100)

// percentOf 计算 part / whole * 100，whole 为 0 时返回 0
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// changePercent 环比变化百分比；上期为 0 时，本期大于 0 记为 100，否则为 0
func changePercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred)
}
