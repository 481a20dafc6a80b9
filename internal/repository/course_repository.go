package repository

import (
	"context"
	"studylife-go/internal/model"

	"gorm.io/gorm"
)

// CourseRepository 定义课程数据的持久化操作。
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Limit(limit).Find(&courses).Error
	return courses, err
}
