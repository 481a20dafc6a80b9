package repository

import (
	"context"
	"studylife-go/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository 定义通知的持久化操作。
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]model.Notification, error)
	// MarkRead 返回是否命中了属于该用户的通知。
	MarkRead(ctx context.Context, userID, id uint) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) (bool, error) {
	// MySQL 的 RowsAffected 不统计值未变化的行，已读的通知需要单独判断是否存在
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ? AND user_id = ?", id, userID)
	if err := db.Count(&count).Error; err != nil || count == 0 {
		return false, err
	}
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
	return err == nil, err
}
