package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	queryDateLayout = "2006-01-02"
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePageQuery page 从 1 开始，page_size 缺省 20、上限 100
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return max(page, 1), min(pageSize, maxPageSize)
}

// parseTimeNullable 接受 RFC3339 或 yyyy-mm-dd，空串返回 nil
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseDateRangeEnd 日期格式的结束时间包含当天
func parseDateRangeEnd(raw string) (*time.Time, error) {
	parsed, err := parseTimeNullable(raw)
	if err != nil || parsed == nil {
		return parsed, err
	}
	if len(strings.TrimSpace(raw)) == len(queryDateLayout) {
		end := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &end, nil
	}
	return parsed, nil
}

func parsePathUint(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(key))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func parseQueryUint(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed == 0 {
		return 0, errors.New("invalid query value")
	}
	return uint(parsed), nil
}

func parseQueryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseQueryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
