package service

import (
	"context"
	"strings"
	"studylife-go/pkg/es"
)

const journalSearchSize = 20

// JournalSearcher 是日记全文检索的后端，由 pkg/es 实现。
type JournalSearcher interface {
	SearchJournals(ctx context.Context, userID uint, query string, size int) ([]es.JournalHit, error)
}

// JournalSearchService 在用户自己的日记中检索。
type JournalSearchService interface {
	Search(ctx context.Context, userID uint, query string) ([]es.JournalHit, error)
}

type journalSearchService struct {
	searcher JournalSearcher
}

// NewJournalSearchService 创建检索服务；searcher 为 nil 表示未启用 Elasticsearch。
func NewJournalSearchService(searcher JournalSearcher) JournalSearchService {
	return &journalSearchService{searcher: searcher}
}

func (s *journalSearchService) Search(ctx context.Context, userID uint, query string) ([]es.JournalHit, error) {
	if s.searcher == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []es.JournalHit{}, nil
	}
	return s.searcher.SearchJournals(ctx, userID, query, journalSearchSize)
}
