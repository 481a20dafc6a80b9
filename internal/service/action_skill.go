package service

import (
	"context"
	"errors"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultSkillCategory = "General"
	defaultSkillLevel    = "beginner"
	defaultResourceType  = "article"
)

// addSkill 创建技能；同名（忽略大小写）技能已存在时改为更新，结果类型为 update_skill。
func (s *actionService) addSkill(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p skillPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	name := p.lookupName()
	if name == "" {
		return nil, invalidAction("name is required")
	}

	existing, err := tx.Skills.FindByName(ctx, userID, name)
	if err == nil {
		if err := updateSkillFromPayload(ctx, tx, existing, p); err != nil {
			return nil, err
		}
		return &actionOutcome{resultType: model.ActionUpdateSkill, data: skillData(existing)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	skill := &model.Skill{
		UserID:      userID,
		Name:        name,
		Category:    defaultSkillCategory,
		Level:       defaultSkillLevel,
		AIGenerated: true,
	}
	applySkillFields(skill, p)
	milestones := buildMilestones(p.Milestones)
	resources := buildResources(p.Resources)
	skill.ResourceCount = len(resources)

	if err := tx.Skills.Create(ctx, skill); err != nil {
		return nil, err
	}
	if err := tx.Skills.ReplaceMilestones(ctx, skill.ID, milestones); err != nil {
		return nil, err
	}
	if err := tx.Skills.ReplaceResources(ctx, skill.ID, resources); err != nil {
		return nil, err
	}
	out := skillData(skill)
	out["milestones"] = len(milestones)
	out["resources"] = len(resources)
	return &actionOutcome{data: out}, nil
}

func (s *actionService) updateSkill(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p skillPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	skill, err := resolveSkill(ctx, tx, userID, p.SkillID, p.lookupName())
	if err != nil {
		return nil, err
	}
	if err := updateSkillFromPayload(ctx, tx, skill, p); err != nil {
		return nil, err
	}
	return &actionOutcome{data: skillData(skill)}, nil
}

// updateSkillFromPayload 只覆盖 payload 中提供的字段；
// 里程碑或资源列表非空时整体替换。列表中没有任何有名称的项时该动作失败，已有数据不动。
func updateSkillFromPayload(ctx context.Context, tx *repository.Store, skill *model.Skill, p skillPayload) error {
	milestones := buildMilestones(p.Milestones)
	if len(p.Milestones) > 0 && len(milestones) == 0 {
		return invalidAction("milestones contain no named items")
	}
	resources := buildResources(p.Resources)
	if len(p.Resources) > 0 && len(resources) == 0 {
		return invalidAction("resources contain no titled items")
	}

	applySkillFields(skill, p)
	if p.NewName != "" {
		skill.Name = strings.TrimSpace(p.NewName)
	}
	if len(resources) > 0 {
		skill.ResourceCount = len(resources)
	}
	if err := tx.Skills.Save(ctx, skill); err != nil {
		return err
	}
	if len(milestones) > 0 {
		if err := tx.Skills.ReplaceMilestones(ctx, skill.ID, milestones); err != nil {
			return err
		}
	}
	if len(resources) > 0 {
		if err := tx.Skills.ReplaceResources(ctx, skill.ID, resources); err != nil {
			return err
		}
	}
	return nil
}

func applySkillFields(skill *model.Skill, p skillPayload) {
	if p.Category != nil {
		skill.Category = *p.Category
	}
	if p.Level != nil {
		skill.Level = strings.ToLower(*p.Level)
	}
	if p.Description != nil {
		skill.Description = *p.Description
	}
	if p.GoalStatement != nil {
		skill.GoalStatement = *p.GoalStatement
	}
	if p.DurationMonths != nil {
		skill.DurationMonths = p.DurationMonths
	}
	if p.EstimatedHours != nil {
		skill.EstimatedHours = p.EstimatedHours
	}
	if p.StartDate != nil {
		skill.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		skill.EndDate = p.EndDate
	}
	if p.Progress != nil {
		skill.Progress = clamp(*p.Progress, 0, 100)
	}
	if p.TimeSpent != nil {
		skill.TimeSpent = *p.TimeSpent
	}
}

// buildMilestones 按给定 order，缺省时按列表位置排序；名称为空的项被忽略。
func buildMilestones(inputs []milestoneInput) []model.Milestone {
	out := make([]model.Milestone, 0, len(inputs))
	for i, in := range inputs {
		name := in.label()
		if name == "" {
			continue
		}
		order := i
		if in.Order != nil {
			order = *in.Order
		}
		out = append(out, model.Milestone{Name: name, Completed: in.Completed, Order: order})
	}
	return out
}

func buildResources(inputs []resourceInput) []model.LearningResource {
	out := make([]model.LearningResource, 0, len(inputs))
	for _, in := range inputs {
		title := in.label()
		if title == "" {
			continue
		}
		typ := strings.ToLower(strings.TrimSpace(in.Type))
		if typ == "" {
			typ = defaultResourceType
		}
		out = append(out, model.LearningResource{
			Title:       title,
			Type:        typ,
			URL:         in.URL,
			Content:     in.Content,
			Description: in.Description,
		})
	}
	return out
}

// addMilestone 向技能追加里程碑；技能内已有同名里程碑时更新它。
func (s *actionService) addMilestone(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p milestonePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	name := p.label()
	if name == "" {
		return nil, invalidAction("milestone name is required")
	}
	skill, err := resolveSkill(ctx, tx, userID, p.SkillID, p.SkillName)
	if err != nil {
		return nil, err
	}

	m, err := tx.Skills.FindMilestoneByName(ctx, skill.ID, name)
	updated := err == nil
	switch {
	case updated:
	case errors.Is(err, gorm.ErrRecordNotFound):
		count, err := tx.Skills.CountMilestones(ctx, skill.ID)
		if err != nil {
			return nil, err
		}
		m = &model.Milestone{SkillID: skill.ID, Name: name, Order: int(count)}
	default:
		return nil, err
	}
	if p.Completed != nil {
		m.Completed = *p.Completed
	}
	if p.Order != nil {
		m.Order = *p.Order
	}
	if err := tx.Skills.SaveMilestone(ctx, m); err != nil {
		return nil, err
	}
	return &actionOutcome{data: map[string]interface{}{
		"skillId":     skill.ID,
		"milestoneId": m.ID,
		"name":        m.Name,
		"updated":     updated,
	}}, nil
}

// addResource 向技能追加学习资源；同名资源已存在时更新它，并刷新 resourceCount。
func (s *actionService) addResource(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p resourcePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	title := p.label()
	if title == "" {
		return nil, invalidAction("resource title is required")
	}
	skill, err := resolveSkill(ctx, tx, userID, p.SkillID, p.SkillName)
	if err != nil {
		return nil, err
	}

	res, err := tx.Skills.FindResourceByTitle(ctx, skill.ID, title)
	updated := err == nil
	switch {
	case updated:
	case errors.Is(err, gorm.ErrRecordNotFound):
		res = &model.LearningResource{SkillID: skill.ID, Title: title, Type: defaultResourceType}
	default:
		return nil, err
	}
	if t := strings.ToLower(strings.TrimSpace(p.Type)); t != "" {
		res.Type = t
	}
	if p.URL != "" {
		res.URL = p.URL
	}
	if p.Content != "" {
		res.Content = p.Content
	}
	if p.Description != "" {
		res.Description = p.Description
	}
	if err := tx.Skills.SaveResource(ctx, res); err != nil {
		return nil, err
	}

	count, err := tx.Skills.CountResources(ctx, skill.ID)
	if err != nil {
		return nil, err
	}
	skill.ResourceCount = int(count)
	if err := tx.Skills.Save(ctx, skill); err != nil {
		return nil, err
	}
	return &actionOutcome{data: map[string]interface{}{
		"skillId":    skill.ID,
		"resourceId": res.ID,
		"title":      res.Title,
		"updated":    updated,
	}}, nil
}

func skillData(skill *model.Skill) map[string]interface{} {
	return map[string]interface{}{
		"skillId": skill.ID,
		"name":    skill.Name,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
