package repository

import (
	"context"
	"studylife-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// FinanceRepository 定义收支记录的持久化操作。
type FinanceRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Finance, error)
	// FindLatestByDescription 在用户的记录中按描述子串匹配，返回日期最新的一条。
	// financeType 为空时不限制类型。
	FindLatestByDescription(ctx context.Context, userID uint, financeType, fragment string) (*model.Finance, error)
	Create(ctx context.Context, f *model.Finance) error
	Save(ctx context.Context, f *model.Finance) error
	Delete(ctx context.Context, f *model.Finance) error
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.Finance, error)
	ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Finance, error)
	Totals(ctx context.Context, userID uint) (income, expense float64, err error)
	// GoalTotals 汇总关联到某储蓄目标的收入与支出。
	GoalTotals(ctx context.Context, goalID uint) (income, expense float64, err error)
}

type financeRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) FindByID(ctx context.Context, id uint) (*model.Finance, error) {
	var f model.Finance
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *financeRepository) FindLatestByDescription(ctx context.Context, userID uint, financeType, fragment string) (*model.Finance, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(likeClause("description"), likePattern(fragment))
	if financeType != "" {
		q = q.Where("type = ?", financeType)
	}
	var f model.Finance
	if err := q.Order("date desc, id desc").First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *financeRepository) Create(ctx context.Context, f *model.Finance) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *financeRepository) Save(ctx context.Context, f *model.Finance) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *financeRepository) Delete(ctx context.Context, f *model.Finance) error {
	return r.db.WithContext(ctx).Delete(f).Error
}

func (r *financeRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.Finance, error) {
	var list []model.Finance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *financeRepository) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Finance, error) {
	var list []model.Finance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date asc, id asc").
		Find(&list).Error
	return list, err
}

type typeSum struct {
	Type  string
	Total float64
}

func splitSums(rows []typeSum) (income, expense float64) {
	for _, row := range rows {
		switch row.Type {
		case model.FinanceTypeIncome:
			income = row.Total
		case model.FinanceTypeExpense:
			expense = row.Total
		}
	}
	return income, expense
}

func (r *financeRepository) Totals(ctx context.Context, userID uint) (float64, float64, error) {
	var rows []typeSum
	err := r.db.WithContext(ctx).Model(&model.Finance{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	income, expense := splitSums(rows)
	return income, expense, nil
}

func (r *financeRepository) GoalTotals(ctx context.Context, goalID uint) (float64, float64, error) {
	var rows []typeSum
	err := r.db.WithContext(ctx).Model(&model.Finance{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("goal_id = ?", goalID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	income, expense := splitSums(rows)
	return income, expense, nil
}
