package repository

import (
	"context"
	"studylife-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// LifestyleRepository 定义生活记录的持久化操作。
type LifestyleRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Lifestyle, error)
	FindByDate(ctx context.Context, userID uint, day time.Time) (*model.Lifestyle, error)
	Create(ctx context.Context, l *model.Lifestyle) error
	Save(ctx context.Context, l *model.Lifestyle) error
	Delete(ctx context.Context, l *model.Lifestyle) error
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.Lifestyle, error)
}

type lifestyleRepository struct {
	db *gorm.DB
}

func NewLifestyleRepository(db *gorm.DB) LifestyleRepository {
	return &lifestyleRepository{db: db}
}

func (r *lifestyleRepository) FindByID(ctx context.Context, id uint) (*model.Lifestyle, error) {
	var l model.Lifestyle
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lifestyleRepository) FindByDate(ctx context.Context, userID uint, day time.Time) (*model.Lifestyle, error) {
	start, end := dayRange(day)
	var l model.Lifestyle
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("id asc").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lifestyleRepository) Create(ctx context.Context, l *model.Lifestyle) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *lifestyleRepository) Save(ctx context.Context, l *model.Lifestyle) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *lifestyleRepository) Delete(ctx context.Context, l *model.Lifestyle) error {
	return r.db.WithContext(ctx).Delete(l).Error
}

func (r *lifestyleRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.Lifestyle, error) {
	var list []model.Lifestyle
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}
