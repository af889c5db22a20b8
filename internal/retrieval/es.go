package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"docqa-go/internal/model"
	"docqa-go/pkg/embedding"
	"docqa-go/pkg/log"
)

// esStore 基于 Elasticsearch dense_vector 的语义检索实现。
// ES 对 cosine 相似度返回 (1+cos)/2 的归一分数，这里换算回余弦值
// 再与相似度阈值比较。
type esStore struct {
	client    *elasticsearch.Client
	embedder  embedding.Embedder
	index     string
	threshold float64
}

// NewESStore 创建 Elasticsearch 向量检索存储。
func NewESStore(client *elasticsearch.Client, embedder embedding.Embedder, index string, threshold float64) Store {
	return &esStore{client: client, embedder: embedder, index: index, threshold: threshold}
}

func (s *esStore) Name() string { return "elasticsearch" }

func (s *esStore) Add(ctx context.Context, doc *model.Document, chunks []string) error {
	// 同一文件重复入库时先清掉旧分块
	if err := s.DeleteByFileID(ctx, doc.FileID); err != nil {
		return err
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding 数量不匹配: 期望 %d, 实际 %d", len(chunks), len(vectors))
	}

	now := time.Now()
	for i, chunk := range chunks {
		chunkDoc := model.ChunkDocument{
			ChunkID:    fmt.Sprintf("%s_%d", doc.FileID, i),
			FileID:     doc.FileID,
			Filename:   doc.Filename,
			ChunkIndex: i,
			Content:    chunk,
			Vector:     vectors[i],
			UploadedAt: now,
		}
		if err := s.indexChunk(ctx, chunkDoc); err != nil {
			return err
		}
	}
	log.Infof("[ESStore] 已索引 %d 个分块, file_id: %s", len(chunks), doc.FileID)
	return nil
}

// indexChunk 写入单个分块, Refresh 设为 true 保证写入后立即可检索。
func (s *esStore) indexChunk(ctx context.Context, doc model.ChunkDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ChunkID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to index chunk: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("[ESStore] 索引分块出错: %s", res.String())
		return fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}
	return nil
}

func (s *esStore) Search(ctx context.Context, query string, topK int) ([]model.ScoredChunk, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("empty query embedding")
	}

	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vectors[0],
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"size": topK,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[ESStore] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ChunkDocument `json:"_source"`
				Score  float64             `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	var results []model.ScoredChunk
	for _, hit := range esResponse.Hits.Hits {
		cos := 2*hit.Score - 1
		if cos < s.threshold {
			continue
		}
		results = append(results, model.ScoredChunk{
			FileID:     hit.Source.FileID,
			Filename:   hit.Source.Filename,
			ChunkIndex: hit.Source.ChunkIndex,
			Text:       hit.Source.Content,
			Score:      cos,
		})
	}
	log.Infof("[ESStore] 向量检索命中 %d 条, 阈值过滤后剩余 %d 条", len(esResponse.Hits.Hits), len(results))
	return results, nil
}

func (s *esStore) ChunksByFileID(ctx context.Context, fileID string) ([]string, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"file_id": fileID},
		},
		"sort": []map[string]interface{}{
			{"chunk_index": map[string]interface{}{"order": "asc"}},
		},
		"size": 10000,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ChunkDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	chunks := make([]string, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		chunks = append(chunks, hit.Source.Content)
	}
	return chunks, nil
}

func (s *esStore) DeleteByFileID(ctx context.Context, fileID string) error {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"file_id": fileID},
		},
	}
	return s.deleteByQuery(ctx, body)
}

func (s *esStore) Clear(ctx context.Context) error {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}
	return s.deleteByQuery(ctx, body)
}

func (s *esStore) deleteByQuery(ctx context.Context, body map[string]interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.client.DeleteByQuery(
		[]string{s.index},
		&buf,
		s.client.DeleteByQuery.WithContext(ctx),
		s.client.DeleteByQuery.WithRefresh(true),
		s.client.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete by query failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[ESStore] 删除分块出错, status: %s, body: %s", res.Status(), string(bodyBytes))
		return fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}
	return nil
}

func (s *esStore) Count(ctx context.Context) (int64, error) {
	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.index),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch count failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var countResponse struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode es response: %w", err)
	}
	return countResponse.Count, nil
}
