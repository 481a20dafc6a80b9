package model

// 外部 AI 服务可能返回的动作类型。
const (
	ActionUpdateUser        = "update_user"
	ActionAddCourse         = "add_course"
	ActionAddSkill          = "add_skill"
	ActionUpdateSkill       = "update_skill"
	ActionAddMilestone      = "add_milestone"
	ActionAddResource       = "add_resource"
	ActionAddExpense        = "add_expense"
	ActionAddIncome         = "add_income"
	ActionUpdateExpense     = "update_expense"
	ActionUpdateIncome      = "update_income"
	ActionDeleteFinance     = "delete_finance"
	ActionAddSavingsGoal    = "add_savings_goal"
	ActionUpdateSavingsGoal = "update_savings_goal"
	ActionAddJournal        = "add_journal"
	ActionUpdateJournal     = "update_journal"
	ActionDeleteJournal     = "delete_journal"
	ActionAddLifestyle      = "add_lifestyle"
	ActionUpdateLifestyle   = "update_lifestyle"
	ActionDeleteLifestyle   = "delete_lifestyle"
	ActionAddHabit          = "add_habit"
	ActionUpdateHabit       = "update_habit"
	ActionDeleteHabit       = "delete_habit"
	ActionToggleHabit       = "toggle_habit"
)

// ModelAction 是 AI 服务返回的一条待执行动作。Data 的结构随 Type 变化。
type ModelAction struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// ActionResult 是单条动作的执行结果，仅用于返回给客户端。
type ActionResult struct {
	Type    string                 `json:"type"`
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
