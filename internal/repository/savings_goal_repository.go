package repository

import (
	"context"
	"studylife-go/internal/model"

	"gorm.io/gorm"
)

// SavingsGoalRepository 定义储蓄目标的持久化操作。
type SavingsGoalRepository interface {
	FindByID(ctx context.Context, id uint) (*model.SavingsGoal, error)
	FindByTitleLike(ctx context.Context, userID uint, fragment string) (*model.SavingsGoal, error)
	Create(ctx context.Context, g *model.SavingsGoal) error
	Save(ctx context.Context, g *model.SavingsGoal) error
	ListActive(ctx context.Context, userID uint) ([]model.SavingsGoal, error)
}

type savingsGoalRepository struct {
	db *gorm.DB
}

func NewSavingsGoalRepository(db *gorm.DB) SavingsGoalRepository {
	return &savingsGoalRepository{db: db}
}

func (r *savingsGoalRepository) FindByID(ctx context.Context, id uint) (*model.SavingsGoal, error) {
	var g model.SavingsGoal
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *savingsGoalRepository) FindByTitleLike(ctx context.Context, userID uint, fragment string) (*model.SavingsGoal, error) {
	var g model.SavingsGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(likeClause("title"), likePattern(fragment)).
		Order("id asc").
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *savingsGoalRepository) Create(ctx context.Context, g *model.SavingsGoal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *savingsGoalRepository) Save(ctx context.Context, g *model.SavingsGoal) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *savingsGoalRepository) ListActive(ctx context.Context, userID uint) ([]model.SavingsGoal, error) {
	var goals []model.SavingsGoal
	err := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, "active").Order("id asc").Find(&goals).Error
	return goals, err
}
