package service

import (
	"encoding/json"
	"fmt"

	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
)

// SettingService 可在后台修改的运行时设置，每个键对应一个 JSON 文档
type SettingService struct {
	repo repository.SettingRepository
}

func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// loadSetting 以 fallback 为底，用已保存的字段覆盖；内容无法解析时记日志并回退
func loadSetting[T any](repo repository.SettingRepository, key string, fallback T) (T, error) {
	row, err := repo.GetByKey(key)
	if err != nil || row == nil || len(row.ValueJSON) == 0 {
		return fallback, err
	}
	raw, err := json.Marshal(row.ValueJSON)
	if err != nil {
		return fallback, err
	}
	out := fallback
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warnw("setting_decode_failed", "key", key, "error", err)
		return fallback, nil
	}
	return out, nil
}

func saveSetting[T any](repo repository.SettingRepository, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSettingInvalid, err)
	}
	var doc models.JSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSettingInvalid, err)
	}
	_, err = repo.Upsert(key, doc)
	return err
}
