package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction_Coercion(t *testing.T) {
	var p financePayload
	err := decodeAction(map[string]interface{}{
		"Amount":        "$1,250.50",
		"paymentMethod": "card",
		"recurring":     "true",
		"finance-id":    "12",
		"date":          "2024-03-01",
		"category":      "",
		"frequency":     nil,
	}, &p)
	require.NoError(t, err)

	require.NotNil(t, p.Amount)
	assert.Equal(t, 1250.5, *p.Amount)
	require.NotNil(t, p.PaymentMethod)
	assert.Equal(t, "card", *p.PaymentMethod)
	require.NotNil(t, p.Recurring)
	assert.True(t, *p.Recurring)
	require.NotNil(t, p.FinanceID)
	assert.Equal(t, uint(12), *p.FinanceID)
	require.NotNil(t, p.Date)
	assert.Equal(t, "2024-03-01", p.Date.Format("2006-01-02"))
	// 空字符串与 null 视为未提供
	assert.Nil(t, p.Category)
	assert.Nil(t, p.Frequency)
}

func TestDecodeAction_RelativeDates(t *testing.T) {
	orig := nowFunc
	nowFunc = fixedNow
	t.Cleanup(func() { nowFunc = orig })

	var p journalPayload
	require.NoError(t, decodeAction(map[string]interface{}{"date": "Yesterday"}, &p))
	require.NotNil(t, p.Date)
	assert.Equal(t, "2024-05-09", p.Date.Format("2006-01-02"))

	var p2 journalPayload
	require.NoError(t, decodeAction(map[string]interface{}{"date": "2024-05-01T10:00:00+08:00"}, &p2))
	require.NotNil(t, p2.Date)
	assert.True(t, p2.Date.Equal(time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)))
}

func TestDecodeAction_ListsAndTags(t *testing.T) {
	var sp skillPayload
	require.NoError(t, decodeAction(map[string]interface{}{
		"skillName": "Go",
		"milestones": []interface{}{
			"Tour of Go",
			map[string]interface{}{"title": "Concurrency", "completed": "1", "order": "3"},
		},
		"resources": []interface{}{"Effective Go"},
	}, &sp))
	assert.Equal(t, "Go", sp.lookupName())
	require.Len(t, sp.Milestones, 2)
	assert.Equal(t, "Tour of Go", sp.Milestones[0].label())
	assert.Equal(t, "Concurrency", sp.Milestones[1].label())
	assert.True(t, sp.Milestones[1].Completed)
	require.NotNil(t, sp.Milestones[1].Order)
	assert.Equal(t, 3, *sp.Milestones[1].Order)
	require.Len(t, sp.Resources, 1)
	assert.Equal(t, "Effective Go", sp.Resources[0].label())

	var jp journalPayload
	require.NoError(t, decodeAction(map[string]interface{}{"tags": "a, b,,c "}, &jp))
	assert.Equal(t, []string{"a", "b", "c"}, jp.Tags)

	var jp2 journalPayload
	require.NoError(t, decodeAction(map[string]interface{}{"tags": []interface{}{"x", "y"}}, &jp2))
	assert.Equal(t, []string{"x", "y"}, jp2.Tags)
}

func TestDecodeAction_InvalidValue(t *testing.T) {
	var p habitPayload
	err := decodeAction(map[string]interface{}{"habit_id": "does-not-exist"}, &p)
	assert.ErrorIs(t, err, ErrInvalidAction)

	var fp financePayload
	err = decodeAction(map[string]interface{}{"date": "someday"}, &fp)
	assert.ErrorIs(t, err, ErrInvalidAction)
}
