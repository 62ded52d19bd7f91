package queue

import (
	"encoding/json"
	"fmt"

	"github.com/stockdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLowStockCheck 低库存复核任务
	TaskLowStockCheck = constants.TaskLowStockCheck
	// TaskAnalyticsWarm 分析报表预热任务
	TaskAnalyticsWarm = constants.TaskAnalyticsWarm
	// TaskDraftPurge 过期草稿清理任务
	TaskDraftPurge = constants.TaskDraftPurge
)

// LowStockCheckPayload 低库存复核载荷，SKUIDs 为空表示全量巡检
type LowStockCheckPayload struct {
	SKUIDs []uint `json:"sku_ids"`
	Source string `json:"source"`
}

// AnalyticsWarmPayload 分析预热载荷
type AnalyticsWarmPayload struct {
	Ranges   []string `json:"ranges"`
	Timezone string   `json:"timezone"`
}

// DraftPurgePayload 草稿清理载荷
type DraftPurgePayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// NewLowStockCheckTask 创建低库存复核任务
func NewLowStockCheckTask(payload LowStockCheckPayload) (*asynq.Task, error) {
	return newJSONTask(TaskLowStockCheck, payload)
}

// NewAnalyticsWarmTask 创建分析预热任务
func NewAnalyticsWarmTask(payload AnalyticsWarmPayload) (*asynq.Task, error) {
	return newJSONTask(TaskAnalyticsWarm, payload)
}

// NewDraftPurgeTask 创建草稿清理任务
func NewDraftPurgeTask(payload DraftPurgePayload) (*asynq.Task, error) {
	if payload.OlderThanDays <= 0 {
		payload.OlderThanDays = constants.DefaultDraftRetentionDays
	}
	return newJSONTask(TaskDraftPurge, payload)
}

// DecodePayload 解析任务载荷
func DecodePayload(task *asynq.Task, dest interface{}) error {
	if task == nil {
		return fmt.Errorf("task is nil")
	}
	if len(task.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	return nil
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
