package service

import (
	"context"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"

	"gorm.io/gorm"
)

const notificationListLimit = 50

// NotificationService 提供通知列表与已读标记。
type NotificationService interface {
	List(ctx context.Context, userID uint) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(db *gorm.DB) NotificationService {
	return &notificationService{repo: repository.NewNotificationRepository(db)}
}

func (s *notificationService) List(ctx context.Context, userID uint) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, notificationListLimit)
}

// MarkRead 对不属于该用户的通知返回 NotFoundError。
func (s *notificationService) MarkRead(ctx context.Context, userID, id uint) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Notification")
	}
	return nil
}
