package service

import (
	"context"
	"studylife-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSkill(t *testing.T, db *gorm.DB, userID uint, name string, milestones ...string) *model.Skill {
	t.Helper()
	skill := &model.Skill{UserID: userID, Name: name, Category: "General", Level: "beginner"}
	require.NoError(t, db.Create(skill).Error)
	for i, m := range milestones {
		require.NoError(t, db.Create(&model.Milestone{SkillID: skill.ID, Name: m, Order: i}).Error)
	}
	return skill
}

func TestDispatch_UpdateSkillBySubstring(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "ivan")
	svc := newTestDispatcher(db)
	skill := seedSkill(t, db, u.ID, "Machine Learning")

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionUpdateSkill, map[string]interface{}{"skill_name": "LEARNING", "progress": "40"}),
	})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, skill.ID, results[0].Data["skillId"])

	var got model.Skill
	require.NoError(t, db.First(&got, skill.ID).Error)
	assert.Equal(t, 40.0, got.Progress)
	assert.Equal(t, "Machine Learning", got.Name)
}

func TestDispatch_UpdateSkillRejectsUnnamedMilestones(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "judy")
	svc := newTestDispatcher(db)
	skill := seedSkill(t, db, u.ID, "Python", "a", "b", "c")

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionUpdateSkill, map[string]interface{}{
			"name":       "python",
			"level":      "advanced",
			"milestones": []interface{}{map[string]interface{}{"completed": true}},
		}),
		act(model.ActionAddSkill, map[string]interface{}{
			"name":      "PYTHON",
			"resources": []interface{}{map[string]interface{}{"url": "https://example.com"}},
		}),
	})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, ErrInvalidAction.Error())
	}

	var count int64
	require.NoError(t, db.Model(&model.Milestone{}).Where("skill_id = ?", skill.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	// 失败的动作整体回滚，字段也不会被部分更新
	var got model.Skill
	require.NoError(t, db.First(&got, skill.ID).Error)
	assert.Equal(t, "beginner", got.Level)
}

func TestDispatch_AddMilestoneUpdatesSameName(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "kate")
	svc := newTestDispatcher(db)
	skill := seedSkill(t, db, u.ID, "Go", "Basics")

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionAddMilestone, map[string]interface{}{"skill_name": "go", "name": "BASICS", "completed": "true"}),
		act(model.ActionAddMilestone, map[string]interface{}{"skill_name": "go", "name": "Concurrency"}),
	})
	require.Len(t, results, 2)
	require.True(t, results[0].Success, results[0].Error)
	require.True(t, results[1].Success, results[1].Error)
	assert.Equal(t, true, results[0].Data["updated"])
	assert.Equal(t, false, results[1].Data["updated"])

	var milestones []model.Milestone
	require.NoError(t, db.Where("skill_id = ?", skill.ID).Order("sort_order asc").Find(&milestones).Error)
	require.Len(t, milestones, 2)
	assert.Equal(t, "Basics", milestones[0].Name)
	assert.True(t, milestones[0].Completed)
	assert.Equal(t, "Concurrency", milestones[1].Name)
	assert.Equal(t, 1, milestones[1].Order)
}

func TestDispatch_AddResourceRefreshesCount(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "liam")
	svc := newTestDispatcher(db)
	skill := seedSkill(t, db, u.ID, "Rust")

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionAddResource, map[string]interface{}{"skill_name": "rust", "title": "The Book"}),
		act(model.ActionAddResource, map[string]interface{}{"skill_name": "rust", "title": "the book", "url": "https://doc.rust-lang.org/book/"}),
		act(model.ActionAddResource, map[string]interface{}{"skill_name": "rust", "title": "Rustlings", "type": "Exercise"}),
	})
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
	}
	assert.Equal(t, false, results[0].Data["updated"])
	assert.Equal(t, true, results[1].Data["updated"])
	assert.Equal(t, results[0].Data["resourceId"], results[1].Data["resourceId"])

	var got model.Skill
	require.NoError(t, db.First(&got, skill.ID).Error)
	assert.Equal(t, 2, got.ResourceCount)

	var book model.LearningResource
	require.NoError(t, db.Where("skill_id = ? AND title = ?", skill.ID, "The Book").First(&book).Error)
	assert.Equal(t, "https://doc.rust-lang.org/book/", book.URL)
	assert.Equal(t, defaultResourceType, book.Type)
}

// 模拟并发请求：查找时技能还不存在，插入前另一个请求已提交同名技能。
func TestDispatch_AddSkillRetriesOnDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "mia")
	svc := newTestDispatcher(db)
	existing := seedSkill(t, db, u.ID, "Python", "Basics")

	staleLookups := 0
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:stale_skill_lookup", func(tx *gorm.DB) {
		if tx.Statement.Table == "skills" && staleLookups == 0 {
			staleLookups++
			tx.AddError(gorm.ErrRecordNotFound)
		}
	}))

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionAddSkill, map[string]interface{}{"name": "python", "level": "intermediate"}),
	})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, model.ActionUpdateSkill, results[0].Type)
	assert.Equal(t, existing.ID, results[0].Data["skillId"])
	assert.Equal(t, 1, staleLookups)

	var skills []model.Skill
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&skills).Error)
	require.Len(t, skills, 1)
	assert.Equal(t, "intermediate", skills[0].Level)

	var count int64
	require.NoError(t, db.Model(&model.Milestone{}).Where("skill_id = ?", existing.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
