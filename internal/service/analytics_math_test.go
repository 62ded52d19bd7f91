package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stockdesk/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAnalyticsWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	window, err := resolveAnalyticsWindow(AnalyticsQueryInput{Range: "7d", Timezone: "Asia/Shanghai"}, "", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", window.startAt.Format("2006-01-02"))
	assert.Equal(t, "2026-03-11", window.endAt.Format("2006-01-02"))
	assert.Equal(t, "Asia/Shanghai", window.timezone)

	prev := window.previous()
	assert.Equal(t, window.startAt, prev.endAt)
	assert.Equal(t, "2026-02-25", prev.startAt.Format("2006-01-02"))

	window, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "today"}, "UTC", 0, now)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, window.endAt.Sub(window.startAt))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	window, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "custom", From: &from, To: &to}, "UTC", 0, now)
	require.NoError(t, err)
	assert.Equal(t, 31*24*time.Hour, window.endAt.Sub(window.startAt))

	tooLong := from.AddDate(0, 0, 120)
	_, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "custom", From: &from, To: &tooLong}, "UTC", 0, now)
	assert.True(t, errors.Is(err, ErrAnalyticsRangeInvalid))

	_, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "custom", From: &to, To: &from}, "UTC", 0, now)
	assert.True(t, errors.Is(err, ErrAnalyticsRangeInvalid))

	_, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "quarter"}, "UTC", 0, now)
	assert.True(t, errors.Is(err, ErrAnalyticsRangeInvalid))

	_, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "7d", Timezone: "Mars/Olympus"}, "", 0, now)
	assert.True(t, errors.Is(err, ErrAnalyticsTimezoneInvalid))
}

func TestResolveAnalyticsWindowCountsCalendarDaysAcrossDST(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	from := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 29, 12, 0, 0, 0, time.UTC)

	window, err := resolveAnalyticsWindow(AnalyticsQueryInput{Range: "custom", From: &from, To: &to, Timezone: "America/New_York"}, "", 90, now)
	require.NoError(t, err)
	assert.Equal(t, 90*24*time.Hour+time.Hour, window.endAt.Sub(window.startAt))

	dayAfter := to.AddDate(0, 0, 1)
	_, err = resolveAnalyticsWindow(AnalyticsQueryInput{Range: "custom", From: &from, To: &dayAfter, Timezone: "America/New_York"}, "", 90, now)
	assert.True(t, errors.Is(err, ErrAnalyticsRangeInvalid))
}

func TestChangePercent(t *testing.T) {
	assert.Equal(t, "50.00", formatPercentDecimal(changePercent(decimal.NewFromInt(150), decimal.NewFromInt(100))))
	assert.Equal(t, "-25.00", formatPercentDecimal(changePercent(decimal.NewFromInt(75), decimal.NewFromInt(100))))
	assert.Equal(t, "100.00", formatPercentDecimal(changePercent(decimal.NewFromInt(5), decimal.Zero)))
	assert.Equal(t, "0.00", formatPercentDecimal(changePercent(decimal.Zero, decimal.Zero)))
}

func TestSuggestedReorderQty(t *testing.T) {
	assert.Equal(t, 20, SuggestedReorderQty(0, 10, 5))
	assert.Equal(t, 12, SuggestedReorderQty(8, 10, 5))
	assert.Equal(t, 5, SuggestedReorderQty(10, 7, 5))
	assert.Equal(t, 30, SuggestedReorderQty(3, 4, 30))
}

func TestAgingBuckets(t *testing.T) {
	assert.Equal(t, []string{"0-30", "31-60", "61-90", "90+"}, agingBucketLabels(normalizeAgingEdges(nil)))
	assert.Equal(t, []int{7, 14}, normalizeAgingEdges([]int{14, 7, 0, 14}))

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	sold := func(days int) *time.Time {
		at := now.AddDate(0, 0, -days)
		return &at
	}
	rows := []repository.AnalyticsInventoryRow{
		{SKUID: 1, Stock: 2, UnitCost: decimal.NewFromInt(10), LastSoldAt: sold(5)},
		{SKUID: 2, Stock: 3, UnitCost: decimal.NewFromInt(4), LastSoldAt: sold(30)},
		{SKUID: 3, Stock: 1, UnitCost: decimal.NewFromInt(7), LastSoldAt: sold(31)},
		{SKUID: 4, Stock: 5, UnitCost: decimal.NewFromInt(1), CreatedAt: now.AddDate(0, 0, -200)},
		{SKUID: 5, Stock: 0, UnitCost: decimal.NewFromInt(99), LastSoldAt: sold(400)},
	}
	buckets, items := bucketAging(rows, nil, now)
	require.Len(t, buckets, 4)
	assert.Equal(t, 2, buckets[0].SKUCount)
	assert.Equal(t, "32.00", buckets[0].StockValue)
	assert.Equal(t, 1, buckets[1].SKUCount)
	assert.Equal(t, 0, buckets[2].SKUCount)
	assert.Equal(t, "0.00", buckets[2].StockValue)
	assert.Equal(t, int64(5), buckets[3].Units)

	require.Len(t, items, 4)
	assert.Equal(t, uint(4), items[0].SKUID)
	assert.True(t, items[0].NeverSold)
	assert.Equal(t, "90+", items[0].Bucket)
}

func TestClassifyABC(t *testing.T) {
	rows := []repository.AnalyticsProductRevenueRow{
		{ProductID: 3, Revenue: decimal.NewFromInt(50)},
		{ProductID: 1, Revenue: decimal.NewFromInt(700)},
		{ProductID: 2, Revenue: decimal.NewFromInt(200)},
		{ProductID: 4, Revenue: decimal.NewFromInt(50)},
		{ProductID: 5, Revenue: decimal.Zero},
	}
	items := classifyABC(rows, 80, 95)
	require.Len(t, items, 5)

	classes := map[uint]string{}
	for _, item := range items {
		classes[item.ProductID] = item.Class
	}
	assert.Equal(t, "A", classes[1])
	assert.Equal(t, "A", classes[2])
	assert.Equal(t, "B", classes[3])
	assert.Equal(t, "C", classes[4])
	assert.Equal(t, "C", classes[5])
	assert.Equal(t, "70.00", items[0].SharePercent)
	assert.Equal(t, "100.00", items[3].CumulativePercent)
}

func TestClassifyABCZeroRevenue(t *testing.T) {
	items := classifyABC([]repository.AnalyticsProductRevenueRow{
		{ProductID: 1, Revenue: decimal.Zero},
		{ProductID: 2, Revenue: decimal.Zero},
	}, 80, 95)
	for _, item := range items {
		assert.Equal(t, "C", item.Class)
		assert.Equal(t, "0.00", item.SharePercent)
	}
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", cellName(0, 1))
	assert.Equal(t, "H12", cellName(7, 12))
	assert.Equal(t, "AA3", cellName(26, 3))
}
