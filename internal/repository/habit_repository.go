package repository

import (
	"context"
	"studylife-go/internal/model"

	"gorm.io/gorm"
)

// HabitRepository 定义习惯的持久化操作。
type HabitRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Habit, error)
	FindByName(ctx context.Context, userID uint, name string) (*model.Habit, error)
	FindByNameLike(ctx context.Context, userID uint, fragment string) (*model.Habit, error)
	Create(ctx context.Context, h *model.Habit) error
	Save(ctx context.Context, h *model.Habit) error
	Delete(ctx context.Context, h *model.Habit) error
	ListByUser(ctx context.Context, userID uint) ([]model.Habit, error)
}

type habitRepository struct {
	db *gorm.DB
}

func NewHabitRepository(db *gorm.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) FindByID(ctx context.Context, id uint) (*model.Habit, error) {
	var h model.Habit
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *habitRepository) FindByName(ctx context.Context, userID uint, name string) (*model.Habit, error) {
	var h model.Habit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Order("id asc").
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *habitRepository) FindByNameLike(ctx context.Context, userID uint, fragment string) (*model.Habit, error) {
	var h model.Habit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(likeClause("name"), likePattern(fragment)).
		Order("id asc").
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *habitRepository) Create(ctx context.Context, h *model.Habit) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *habitRepository) Save(ctx context.Context, h *model.Habit) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *habitRepository) Delete(ctx context.Context, h *model.Habit) error {
	return r.db.WithContext(ctx).Delete(h).Error
}

func (r *habitRepository) ListByUser(ctx context.Context, userID uint) ([]model.Habit, error) {
	var list []model.Habit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error
	return list, err
}
