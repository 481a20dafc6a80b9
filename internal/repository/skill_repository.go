package repository

import (
	"context"
	"studylife-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRepository 定义技能及其里程碑、学习资源的持久化操作。
type SkillRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Skill, error)
	// FindByName 按名称精确匹配（忽略大小写），用于创建时去重。
	FindByName(ctx context.Context, userID uint, name string) (*model.Skill, error)
	// FindByNameLike 按名称子串匹配（忽略大小写），返回第一条。
	FindByNameLike(ctx context.Context, userID uint, fragment string) (*model.Skill, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Skill, error)
	Create(ctx context.Context, skill *model.Skill) error
	Save(ctx context.Context, skill *model.Skill) error

	ReplaceMilestones(ctx context.Context, skillID uint, milestones []model.Milestone) error
	ReplaceResources(ctx context.Context, skillID uint, resources []model.LearningResource) error
	CountMilestones(ctx context.Context, skillID uint) (int64, error)
	CountResources(ctx context.Context, skillID uint) (int64, error)
	FindMilestoneByName(ctx context.Context, skillID uint, name string) (*model.Milestone, error)
	FindResourceByTitle(ctx context.Context, skillID uint, title string) (*model.LearningResource, error)
	SaveMilestone(ctx context.Context, m *model.Milestone) error
	SaveResource(ctx context.Context, res *model.LearningResource) error
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) FindByID(ctx context.Context, id uint) (*model.Skill, error) {
	var skill model.Skill
	if err := r.db.WithContext(ctx).First(&skill, id).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) FindByName(ctx context.Context, userID uint, name string) (*model.Skill, error) {
	var skill model.Skill
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, model.SkillNameKey(name)).
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) FindByNameLike(ctx context.Context, userID uint, fragment string) (*model.Skill, error) {
	var skill model.Skill
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(likeClause("name"), likePattern(fragment)).
		Order("id asc").
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) ListByUser(ctx context.Context, userID uint) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&skills).Error
	return skills, err
}

// Create 只写入技能本身，里程碑与资源由 Replace* 单独批量写入。
func (r *skillRepository) Create(ctx context.Context, skill *model.Skill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(skill).Error
}

func (r *skillRepository) Save(ctx context.Context, skill *model.Skill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(skill).Error
}

// ReplaceMilestones 删除技能下全部里程碑后按给定列表重建。
func (r *skillRepository) ReplaceMilestones(ctx context.Context, skillID uint, milestones []model.Milestone) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("skill_id = ?", skillID).Delete(&model.Milestone{}).Error; err != nil {
		return err
	}
	if len(milestones) == 0 {
		return nil
	}
	for i := range milestones {
		milestones[i].ID = 0
		milestones[i].SkillID = skillID
	}
	return db.CreateInBatches(milestones, 100).Error
}

// ReplaceResources 删除技能下全部学习资源后按给定列表重建。
func (r *skillRepository) ReplaceResources(ctx context.Context, skillID uint, resources []model.LearningResource) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("skill_id = ?", skillID).Delete(&model.LearningResource{}).Error; err != nil {
		return err
	}
	if len(resources) == 0 {
		return nil
	}
	for i := range resources {
		resources[i].ID = 0
		resources[i].SkillID = skillID
	}
	return db.CreateInBatches(resources, 100).Error
}

func (r *skillRepository) CountMilestones(ctx context.Context, skillID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Milestone{}).Where("skill_id = ?", skillID).Count(&n).Error
	return n, err
}

func (r *skillRepository) CountResources(ctx context.Context, skillID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LearningResource{}).Where("skill_id = ?", skillID).Count(&n).Error
	return n, err
}

func (r *skillRepository) FindMilestoneByName(ctx context.Context, skillID uint, name string) (*model.Milestone, error) {
	var m model.Milestone
	err := r.db.WithContext(ctx).
		Where("skill_id = ? AND LOWER(name) = LOWER(?)", skillID, name).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *skillRepository) FindResourceByTitle(ctx context.Context, skillID uint, title string) (*model.LearningResource, error) {
	var res model.LearningResource
	err := r.db.WithContext(ctx).
		Where("skill_id = ? AND LOWER(title) = LOWER(?)", skillID, title).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *skillRepository) SaveMilestone(ctx context.Context, m *model.Milestone) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *skillRepository) SaveResource(ctx context.Context, res *model.LearningResource) error {
	return r.db.WithContext(ctx).Save(res).Error
}
