package service

import (
	"context"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_FailureDoesNotAbortBatch(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "alice")
	svc := newTestDispatcher(db)

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionAddExpense, map[string]interface{}{"amount": "50", "category": "Food"}),
		act(model.ActionUpdateHabit, map[string]interface{}{"habit_id": "does-not-exist"}),
		act(model.ActionAddIncome, map[string]interface{}{"amount": "100", "category": "Salary"}),
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, model.ActionAddExpense, results[0].Type)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)
	assert.Equal(t, model.ActionAddIncome, results[2].Type)

	var incomes []model.Finance
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, model.FinanceTypeIncome).Find(&incomes).Error)
	require.Len(t, incomes, 1)
	assert.Equal(t, 100.0, incomes[0].Amount)
	assert.Equal(t, "Salary", incomes[0].Category)
}

func TestDispatch_SkillDedupIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "bob")
	svc := newTestDispatcher(db)
	ctx := context.Background()

	first := svc.Dispatch(ctx, u.ID, []model.ModelAction{
		act(model.ActionAddSkill, map[string]interface{}{"name": "Python", "milestones": []interface{}{"Basics", "OOP"}}),
	})
	require.Len(t, first, 1)
	require.True(t, first[0].Success, first[0].Error)
	assert.Equal(t, model.ActionAddSkill, first[0].Type)

	second := svc.Dispatch(ctx, u.ID, []model.ModelAction{
		act(model.ActionAddSkill, map[string]interface{}{"name": "python", "level": "intermediate"}),
	})
	require.Len(t, second, 1)
	require.True(t, second[0].Success, second[0].Error)
	assert.Equal(t, model.ActionUpdateSkill, second[0].Type)

	var skills []model.Skill
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&skills).Error)
	require.Len(t, skills, 1)
	assert.Equal(t, "intermediate", skills[0].Level)

	// 未提供里程碑列表时保留原有里程碑
	var milestones int64
	require.NoError(t, db.Model(&model.Milestone{}).Where("skill_id = ?", skills[0].ID).Count(&milestones).Error)
	assert.Equal(t, int64(2), milestones)
}

func TestDispatch_FinanceUpdateTargetsMostRecentMatch(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "carol")
	svc := newTestDispatcher(db)

	older := &model.Finance{UserID: u.ID, Type: model.FinanceTypeExpense, Amount: 3, Category: "Food",
		Description: "Morning coffee", Date: testNow.AddDate(0, 0, -3)}
	newer := &model.Finance{UserID: u.ID, Type: model.FinanceTypeExpense, Amount: 4, Category: "Food",
		Description: "coffee with friends", Date: testNow.AddDate(0, 0, -1)}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionUpdateExpense, map[string]interface{}{"description": "coffee", "amount": 6.5}),
	})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, newer.ID, results[0].Data["financeId"])

	var got model.Finance
	require.NoError(t, db.First(&got, newer.ID).Error)
	assert.Equal(t, 6.5, got.Amount)
	assert.Equal(t, "coffee with friends", got.Description)
	var gotOlder model.Finance
	require.NoError(t, db.First(&gotOlder, older.ID).Error)
	assert.Equal(t, 3.0, gotOlder.Amount)
}

func TestDispatch_OwnershipIsolation(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	other := createUser(t, db, "intruder")
	svc := newTestDispatcher(db)

	f := &model.Finance{UserID: owner.ID, Type: model.FinanceTypeExpense, Amount: 20, Category: "Books",
		Description: "textbook", Date: testNow}
	h := &model.Habit{UserID: owner.ID, Name: "Read"}
	require.NoError(t, db.Create(f).Error)
	require.NoError(t, db.Create(h).Error)

	results := svc.Dispatch(context.Background(), other.ID, []model.ModelAction{
		act(model.ActionUpdateExpense, map[string]interface{}{"finance_id": f.ID, "amount": 1}),
		act(model.ActionDeleteFinance, map[string]interface{}{"description": "textbook"}),
		act(model.ActionToggleHabit, map[string]interface{}{"habit_id": h.ID}),
	})

	require.Len(t, results, 3)
	assert.Equal(t, "Expense not found", results[0].Error)
	assert.Equal(t, "Finance not found", results[1].Error)
	assert.Equal(t, "Habit not found", results[2].Error)
	for _, r := range results {
		assert.False(t, r.Success)
	}

	var got model.Finance
	require.NoError(t, db.First(&got, f.ID).Error)
	assert.Equal(t, 20.0, got.Amount)
	var habit model.Habit
	require.NoError(t, db.First(&habit, h.ID).Error)
	assert.Empty(t, habit.CompletionHistory)
}

func TestDispatch_UnknownTypeSkipped(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "dave")
	svc := newTestDispatcher(db)

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act("launch_rocket", map[string]interface{}{"when": "now"}),
		act(model.ActionAddHabit, map[string]interface{}{"name": "Stretch"}),
	})
	require.Len(t, results, 1)
	assert.Equal(t, model.ActionAddHabit, results[0].Type)
	assert.True(t, results[0].Success)
}

func TestDispatch_PanicIsIsolatedAndRolledBack(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "erin")
	svc := newTestDispatcher(db)
	svc.specs["explode"] = actionSpec{
		timeout: time.Second,
		fn: func(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
			if err := tx.Habits.Create(ctx, &model.Habit{UserID: userID, Name: "ghost"}); err != nil {
				return nil, err
			}
			panic("boom")
		},
	}

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act("explode", nil),
		act(model.ActionAddHabit, map[string]interface{}{"name": "Meditate"}),
	})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "boom")
	assert.True(t, results[1].Success)

	var names []string
	require.NoError(t, db.Model(&model.Habit{}).Where("user_id = ?", u.ID).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Meditate"}, names)
}

func TestDispatch_HabitLifecycle(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "frank")
	svc := newTestDispatcher(db)
	ctx := context.Background()

	results := svc.Dispatch(ctx, u.ID, []model.ModelAction{
		act(model.ActionAddHabit, map[string]interface{}{"name": "Run"}),
		act(model.ActionAddHabit, map[string]interface{}{"name": "run", "target": "3 km"}),
		act(model.ActionToggleHabit, map[string]interface{}{"habit_name": "Run"}),
		act(model.ActionToggleHabit, map[string]interface{}{"habit_name": "Run", "completed": true}),
	})
	require.Len(t, results, 4)
	assert.Equal(t, model.ActionAddHabit, results[0].Type)
	assert.Equal(t, model.ActionUpdateHabit, results[1].Type)
	assert.Equal(t, true, results[2].Data["completed"])
	assert.Equal(t, 1, results[2].Data["streak"])
	// 已经是完成状态，显式 completed=true 不再翻转
	assert.Equal(t, false, results[3].Data["changed"])
	assert.Equal(t, true, results[3].Data["completed"])

	var habits []model.Habit
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&habits).Error)
	require.Len(t, habits, 1)
	assert.Equal(t, "3 km", habits[0].Target)
	assert.True(t, habits[0].Completed)
}

func TestDispatch_SavingsGoalProgressIsDerived(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "gina")
	svc := newTestDispatcher(db)

	results := svc.Dispatch(context.Background(), u.ID, []model.ModelAction{
		act(model.ActionAddSavingsGoal, map[string]interface{}{"title": "Laptop", "target_amount": "$1,200"}),
		act(model.ActionAddIncome, map[string]interface{}{"amount": 300, "category": "Savings", "goal_title": "laptop"}),
		act(model.ActionAddExpense, map[string]interface{}{"amount": 50, "category": "Savings", "goal_title": "Laptop"}),
	})
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
	}

	var goal model.SavingsGoal
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&goal).Error)
	assert.Equal(t, 1200.0, goal.TargetAmount)
	assert.Equal(t, 250.0, goal.CurrentAmount)
}

func TestDispatch_JournalAndLifestyle(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "hana")
	svc := newTestDispatcher(db)
	ctx := context.Background()

	results := svc.Dispatch(ctx, u.ID, []model.ModelAction{
		act(model.ActionAddJournal, map[string]interface{}{"content": "Passed the exam", "mood": "happy", "tags": "school, exams"}),
		act(model.ActionAddLifestyle, map[string]interface{}{"date": "today", "sleep_hours": "7.5"}),
		act(model.ActionAddLifestyle, map[string]interface{}{"date": "today", "exercise_minutes": 30}),
	})
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
	}
	assert.Equal(t, model.ActionUpdateLifestyle, results[2].Type)

	var journal model.Journal
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&journal).Error)
	assert.Equal(t, "happy", journal.Mood)
	assert.ElementsMatch(t, []string{"school", "exams"}, []string(journal.Tags))

	var days []model.Lifestyle
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&days).Error)
	require.Len(t, days, 1)
}
