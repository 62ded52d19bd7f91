package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// findOne 取第一条记录，不存在时返回 nil, nil
func findOne[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	err := query.First(&row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ErrInvalidArgument 调用方传入了零值 ID 或非法数量
var ErrInvalidArgument = errors.New("repository: invalid argument")

func invalidArgument(what string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, what)
}

// rowsAffected 条件更新未命中时返回 0，由调用方判定业务冲突
func rowsAffected(result *gorm.DB) (int64, error) {
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func countRows[T any](query *gorm.DB) (count int64, err error) {
	err = query.Model(new(T)).Count(&count).Error
	return count, err
}

// countSlug 统计占用 slug 的行，excludeID 用于更新时排除自身
func countSlug[T any](db *gorm.DB, slug string, excludeID *uint) (int64, error) {
	query := db.Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return countRows[T](query)
}
