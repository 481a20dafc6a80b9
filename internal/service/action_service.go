package service

import (
	"context"
	"errors"
	"fmt"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/log"
	"studylife-go/pkg/metrics"
	"time"

	"gorm.io/gorm"
)

// ActionService 是动作分发器：按模型返回的顺序逐条执行动作。
// 每条动作使用独立事务，单条失败（包括 panic）只记录在它自己的结果里，不影响后续动作。
type ActionService interface {
	Dispatch(ctx context.Context, userID uint, actions []model.ModelAction) []model.ActionResult
}

// JournalIndexer 在日记事务提交后同步全文索引，失败只记日志。
type JournalIndexer interface {
	IndexJournal(ctx context.Context, j *model.Journal) error
	DeleteJournal(ctx context.Context, id uint) error
}

// DispatchOptions 配置分发器。
type DispatchOptions struct {
	TxTimeout      time.Duration
	SkillTxTimeout time.Duration
	Indexer        JournalIndexer
	Now            func() time.Time
}

type actionFunc func(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error)

type actionSpec struct {
	fn      actionFunc
	timeout time.Duration
	// 唯一索引冲突时重跑一次，第二次会命中已存在的记录走更新分支
	retryOnConflict bool
}

// actionOutcome 是单个动作处理成功后的产出。
type actionOutcome struct {
	resultType  string
	data        map[string]interface{}
	afterCommit []func(ctx context.Context)
}

type actionService struct {
	db      *gorm.DB
	specs   map[string]actionSpec
	indexer JournalIndexer
	now     func() time.Time
}

// NewActionService 创建分发器并注册全部动作类型。
func NewActionService(db *gorm.DB, opts DispatchOptions) ActionService {
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 10 * time.Second
	}
	if opts.SkillTxTimeout <= 0 {
		opts.SkillTxTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &actionService{db: db, indexer: opts.Indexer, now: opts.Now}

	skill := func(fn actionFunc) actionSpec { return actionSpec{fn: fn, timeout: opts.SkillTxTimeout} }
	plain := func(fn actionFunc) actionSpec { return actionSpec{fn: fn, timeout: opts.TxTimeout} }

	s.specs = map[string]actionSpec{
		model.ActionUpdateUser:        plain(s.updateUser),
		model.ActionAddCourse:         plain(s.addCourse),
		model.ActionAddSkill:          {fn: s.addSkill, timeout: opts.SkillTxTimeout, retryOnConflict: true},
		model.ActionUpdateSkill:       skill(s.updateSkill),
		model.ActionAddMilestone:      skill(s.addMilestone),
		model.ActionAddResource:       skill(s.addResource),
		model.ActionAddExpense:        plain(s.addFinance(model.FinanceTypeExpense)),
		model.ActionAddIncome:         plain(s.addFinance(model.FinanceTypeIncome)),
		model.ActionUpdateExpense:     plain(s.updateFinance(model.FinanceTypeExpense)),
		model.ActionUpdateIncome:      plain(s.updateFinance(model.FinanceTypeIncome)),
		model.ActionDeleteFinance:     plain(s.deleteFinance),
		model.ActionAddSavingsGoal:    plain(s.addSavingsGoal),
		model.ActionUpdateSavingsGoal: plain(s.updateSavingsGoal),
		model.ActionAddJournal:        plain(s.addJournal),
		model.ActionUpdateJournal:     plain(s.updateJournal),
		model.ActionDeleteJournal:     plain(s.deleteJournal),
		model.ActionAddLifestyle:      plain(s.addLifestyle),
		model.ActionUpdateLifestyle:   plain(s.updateLifestyle),
		model.ActionDeleteLifestyle:   plain(s.deleteLifestyle),
		model.ActionAddHabit:          plain(s.addHabit),
		model.ActionUpdateHabit:       plain(s.updateHabit),
		model.ActionDeleteHabit:       plain(s.deleteHabit),
		model.ActionToggleHabit:       plain(s.toggleHabit),
	}
	return s
}

// Dispatch 严格按顺序处理动作，后面的动作可能依赖前面动作创建的数据。
// 未知类型直接跳过，不产生结果。
func (s *actionService) Dispatch(ctx context.Context, userID uint, actions []model.ModelAction) []model.ActionResult {
	results := make([]model.ActionResult, 0, len(actions))
	for _, action := range actions {
		spec, ok := s.specs[action.Type]
		if !ok {
			log.Warnw("跳过未知的动作类型", "type", action.Type, "userId", userID)
			metrics.RecordAction("unknown", metrics.OutcomeSkipped)
			continue
		}
		results = append(results, s.apply(ctx, userID, action, spec))
	}
	return results
}

func (s *actionService) apply(ctx context.Context, userID uint, action model.ModelAction, spec actionSpec) (result model.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("动作处理发生 panic", "type", action.Type, "userId", userID, "panic", r)
			metrics.RecordAction(action.Type, metrics.OutcomeFailure)
			result = model.ActionResult{Type: action.Type, Success: false, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	out, err := s.run(ctx, userID, action, spec)
	if err != nil && spec.retryOnConflict && errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Infow("创建时发生唯一索引冲突，改为更新", "type", action.Type, "userId", userID)
		out, err = s.run(ctx, userID, action, spec)
	}
	if err != nil {
		log.Warnw("动作执行失败", "type", action.Type, "userId", userID, "error", err)
		metrics.RecordAction(action.Type, metrics.OutcomeFailure)
		return model.ActionResult{Type: action.Type, Success: false, Error: err.Error()}
	}

	for _, fn := range out.afterCommit {
		fn(ctx)
	}
	metrics.RecordAction(action.Type, metrics.OutcomeSuccess)
	resultType := out.resultType
	if resultType == "" {
		resultType = action.Type
	}
	return model.ActionResult{Type: resultType, Success: true, Data: out.data}
}

func (s *actionService) run(ctx context.Context, userID uint, action model.ModelAction, spec actionSpec) (*actionOutcome, error) {
	var out *actionOutcome
	err := repository.Transaction(ctx, s.db, spec.timeout, func(ctx context.Context, tx *repository.Store) error {
		o, err := spec.fn(ctx, tx, userID, action.Data)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = &actionOutcome{}
	}
	return out, nil
}
