package service

import (
	"context"
	"errors"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func (s *actionService) addJournal(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p journalPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	if p.Content == nil {
		return nil, invalidAction("content is required")
	}
	j := &model.Journal{
		UserID: userID,
		Tags:   datatypes.JSONSlice[string]{},
		Date:   s.now(),
	}
	applyJournalFields(j, p)
	if strings.TrimSpace(j.Title) == "" {
		j.Title = "Journal " + model.DateKey(j.Date)
	}
	if err := tx.Journals.Create(ctx, j); err != nil {
		return nil, err
	}
	return &actionOutcome{
		data:        map[string]interface{}{"journalId": j.ID, "title": j.Title},
		afterCommit: []func(context.Context){s.indexJournal(j)},
	}, nil
}

func (s *actionService) updateJournal(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p journalPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	j, err := resolveJournal(ctx, tx, userID, p.JournalID)
	if err != nil {
		return nil, err
	}
	applyJournalFields(j, p)
	if err := tx.Journals.Save(ctx, j); err != nil {
		return nil, err
	}
	return &actionOutcome{
		data:        map[string]interface{}{"journalId": j.ID, "title": j.Title},
		afterCommit: []func(context.Context){s.indexJournal(j)},
	}, nil
}

func (s *actionService) deleteJournal(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p journalPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	j, err := resolveJournal(ctx, tx, userID, p.JournalID)
	if err != nil {
		return nil, err
	}
	if err := tx.Journals.Delete(ctx, j); err != nil {
		return nil, err
	}
	id := j.ID
	return &actionOutcome{
		data: map[string]interface{}{"journalId": id},
		afterCommit: []func(context.Context){func(ctx context.Context) {
			if s.indexer == nil {
				return
			}
			if err := s.indexer.DeleteJournal(ctx, id); err != nil {
				log.Warnw("删除日记索引失败", "journalId", id, "error", err)
			}
		}},
	}, nil
}

func (s *actionService) indexJournal(j *model.Journal) func(context.Context) {
	return func(ctx context.Context) {
		if s.indexer == nil {
			return
		}
		if err := s.indexer.IndexJournal(ctx, j); err != nil {
			log.Warnw("写入日记索引失败", "journalId", j.ID, "error", err)
		}
	}
}

func applyJournalFields(j *model.Journal, p journalPayload) {
	if p.Title != nil {
		j.Title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		j.Content = *p.Content
	}
	if p.Mood != nil {
		j.Mood = strings.ToLower(strings.TrimSpace(*p.Mood))
	}
	if p.Tags != nil {
		j.Tags = datatypes.JSONSlice[string](p.Tags)
	}
	if p.Date != nil {
		j.Date = *p.Date
	}
}

// addLifestyle 每个用户每天只保留一条记录；当天已有记录时改为更新，结果类型为 update_lifestyle。
func (s *actionService) addLifestyle(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p lifestylePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	day := model.StartOfDay(s.now())
	if p.Date != nil {
		day = model.StartOfDay(*p.Date)
	}

	existing, err := tx.Lifestyles.FindByDate(ctx, userID, day)
	if err == nil {
		applyLifestyleFields(existing, p)
		if err := tx.Lifestyles.Save(ctx, existing); err != nil {
			return nil, err
		}
		return &actionOutcome{resultType: model.ActionUpdateLifestyle, data: lifestyleData(existing)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	l := &model.Lifestyle{UserID: userID, Date: day}
	applyLifestyleFields(l, p)
	if err := tx.Lifestyles.Create(ctx, l); err != nil {
		return nil, err
	}
	return &actionOutcome{data: lifestyleData(l)}, nil
}

func (s *actionService) updateLifestyle(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p lifestylePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	l, err := resolveLifestyle(ctx, tx, userID, p.LifestyleID, p.Date)
	if err != nil {
		return nil, err
	}
	applyLifestyleFields(l, p)
	// 按 id 定位时 date 表示把记录移到新日期
	if p.LifestyleID != nil && p.Date != nil {
		l.Date = model.StartOfDay(*p.Date)
	}
	if err := tx.Lifestyles.Save(ctx, l); err != nil {
		return nil, err
	}
	return &actionOutcome{data: lifestyleData(l)}, nil
}

func (s *actionService) deleteLifestyle(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p lifestylePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	l, err := resolveLifestyle(ctx, tx, userID, p.LifestyleID, p.Date)
	if err != nil {
		return nil, err
	}
	if err := tx.Lifestyles.Delete(ctx, l); err != nil {
		return nil, err
	}
	return &actionOutcome{data: lifestyleData(l)}, nil
}

func applyLifestyleFields(l *model.Lifestyle, p lifestylePayload) {
	if p.SleepHours != nil {
		l.SleepHours = p.SleepHours
	}
	if p.ExerciseMinutes != nil {
		l.ExerciseMinutes = p.ExerciseMinutes
	}
	if p.WaterIntake != nil {
		l.WaterIntake = p.WaterIntake
	}
	if p.MealQuality != nil {
		l.MealQuality = strings.ToLower(*p.MealQuality)
	}
	if p.StressLevel != nil {
		l.StressLevel = p.StressLevel
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
}

func lifestyleData(l *model.Lifestyle) map[string]interface{} {
	return map[string]interface{}{
		"lifestyleId": l.ID,
		"date":        model.DateKey(l.Date),
	}
}
