package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// DB 全局连接，InitDB 之后可用
var DB *gorm.DB

var sqlLogLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// InitDB 连接 sqlite（纯 Go 驱动）或 postgres，SQL 日志并入 zap
func InitDB(cfg config.DatabaseConfig, sqlLevel string) error {
	dialector, err := openDialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	level, ok := sqlLogLevels[strings.ToLower(strings.TrimSpace(sqlLevel))]
	if !ok {
		level = gormlogger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.StdLogger(), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pool := cfg.Pool
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	DB = db
	return nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(sqliteDSN(dsn)), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// sqliteDSN 未显式配置 pragma 时设置忙等待，避免并发写直接报 SQLITE_BUSY
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)"
}

// MigrateModels 参与自动迁移的模型
func MigrateModels() []interface{} {
	return []interface{}{
		&Admin{},
		&AccessAuditLog{},
		&Setting{},
		&Category{},
		&Product{},
		&ProductSKU{},
		&ProductDraft{},
		&StockMovement{},
		&Sale{},
		&ReturnRequest{},
	}
}

func AutoMigrate() error {
	return DB.AutoMigrate(MigrateModels()...)
}
