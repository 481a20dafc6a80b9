package repository

import (
	"context"
	"studylife-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// PlanRepository 读取 AI 生成的每日计划。
type PlanRepository interface {
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.AIPlan, error)
	ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.AIPlan, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.AIPlan, error) {
	var list []model.AIPlan
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *planRepository) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.AIPlan, error) {
	var list []model.AIPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date asc, id asc").
		Find(&list).Error
	return list, err
}
