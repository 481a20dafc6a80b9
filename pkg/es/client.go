// Package es 提供了与 Elasticsearch 交互的客户端功能，用于日记全文检索。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"studylife-go/internal/config"
	"studylife-go/internal/model"
	"studylife-go/pkg/log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// JournalDocument 是写入索引的日记文档。
type JournalDocument struct {
	JournalID uint      `json:"journal_id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Tags      []string  `json:"tags"`
	Date      time.Time `json:"date"`
}

// JournalHit 是一条检索结果。
type JournalHit struct {
	JournalDocument
	Score     float64  `json:"score"`
	Highlight []string `json:"highlight,omitempty"`
}

// JournalIndex 封装了日记索引的读写。
type JournalIndex struct {
	client    *elasticsearch.Client
	indexName string
}

// NewJournalIndex 初始化 Elasticsearch 客户端并确保索引存在。
func NewJournalIndex(esCfg config.ElasticsearchConfig) (*JournalIndex, error) {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	idx := &JournalIndex{client: client, indexName: esCfg.IndexName}
	if err := idx.createIndexIfNotExists(); err != nil {
		return nil, err
	}
	return idx, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (i *JournalIndex) createIndexIfNotExists() error {
	res, err := i.client.Indices.Exists([]string{i.indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", i.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := `{
		"mappings": {
			"properties": {
				"journal_id": { "type": "long" },
				"user_id": { "type": "long" },
				"title": { "type": "text" },
				"content": { "type": "text" },
				"mood": { "type": "keyword" },
				"tags": { "type": "keyword" },
				"date": { "type": "date" }
			}
		}
	}`
	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", i.indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", i.indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}
	log.Infof("索引 '%s' 创建成功", i.indexName)
	return nil
}

// IndexJournal 写入或覆盖一篇日记。
func (i *JournalIndex) IndexJournal(ctx context.Context, j *model.Journal) error {
	doc := JournalDocument{
		JournalID: j.ID,
		UserID:    j.UserID,
		Title:     j.Title,
		Content:   j.Content,
		Mood:      j.Mood,
		Tags:      []string(j.Tags),
		Date:      j.Date,
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: strconv.FormatUint(uint64(j.ID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index journal: %s", res.String())
	}
	return nil
}

// DeleteJournal 删除日记文档，文档不存在不视为错误。
func (i *JournalIndex) DeleteJournal(ctx context.Context, id uint) error {
	req := esapi.DeleteRequest{
		Index:      i.indexName,
		DocumentID: strconv.FormatUint(uint64(id), 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete journal: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score     float64             `json:"_score"`
			Source    JournalDocument     `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchJournals 在用户自己的日记中做全文检索。
func (i *JournalIndex) SearchJournals(ctx context.Context, userID uint, query string, size int) ([]JournalHit, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "content", "tags"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{"content": map[string]interface{}{}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("journal search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	hits := make([]JournalHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, JournalHit{
			JournalDocument: h.Source,
			Score:           h.Score,
			Highlight:       h.Highlight["content"],
		})
	}
	return hits, nil
}
