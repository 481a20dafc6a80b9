package repository

import (
	"context"
	"studylife-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// JournalRepository 定义日记的持久化操作。
type JournalRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Journal, error)
	Create(ctx context.Context, j *model.Journal) error
	Save(ctx context.Context, j *model.Journal) error
	Delete(ctx context.Context, j *model.Journal) error
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.Journal, error)
	ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Journal, error)
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) FindByID(ctx context.Context, id uint) (*model.Journal, error) {
	var j model.Journal
	if err := r.db.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *journalRepository) Create(ctx context.Context, j *model.Journal) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *journalRepository) Save(ctx context.Context, j *model.Journal) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *journalRepository) Delete(ctx context.Context, j *model.Journal) error {
	return r.db.WithContext(ctx).Delete(j).Error
}

func (r *journalRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.Journal, error) {
	var list []model.Journal
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *journalRepository) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Journal, error) {
	var list []model.Journal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date asc, id asc").
		Find(&list).Error
	return list, err
}
