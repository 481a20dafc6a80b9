// Package database 负责初始化关系型数据库与 Redis 连接。
package database

import (
	"fmt"
	"studylife-go/internal/config"
	"studylife-go/internal/model"
	"studylife-go/pkg/log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 根据配置的驱动打开数据库连接并配置连接池。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.MySQL.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// 让唯一索引冲突返回 gorm.ErrDuplicatedKey，技能去重依赖这一点
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite 只允许单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infof("%s database connected successfully", dialector.Name())
	return db, nil
}

// AutoMigrate 创建或更新所有业务表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Skill{},
		&model.Milestone{},
		&model.LearningResource{},
		&model.Finance{},
		&model.SavingsGoal{},
		&model.Journal{},
		&model.Lifestyle{},
		&model.Habit{},
		&model.Notification{},
		&model.AIPlan{},
	)
}
