package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"

	"docqa-go/internal/model"
)

// keywordStore 在内存中保存分块并用词汇重合度打分，是没有配置
// 向量后端时的默认检索实现。
type keywordStore struct {
	mu                sync.RWMutex
	docs              map[string]*keywordEntry
	order             []string
	includeZeroScores bool
}

type keywordEntry struct {
	filename string
	chunks   []string
}

// NewKeywordStore 创建内存关键词检索存储。includeZeroScores 开启时
// 零分分块也会参与排序返回。
func NewKeywordStore(includeZeroScores bool) Store {
	return &keywordStore{
		docs:              make(map[string]*keywordEntry),
		includeZeroScores: includeZeroScores,
	}
}

func (s *keywordStore) Name() string { return "keyword" }

func (s *keywordStore) Add(_ context.Context, doc *model.Document, chunks []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.FileID]; !ok {
		s.order = append(s.order, doc.FileID)
	}
	s.docs[doc.FileID] = &keywordEntry{
		filename: doc.Filename,
		chunks:   append([]string(nil), chunks...),
	}
	return nil
}

func (s *keywordStore) Search(_ context.Context, query string, topK int) ([]model.ScoredChunk, error) {
	queryTokens := tokenSet(query)

	s.mu.RLock()
	var results []model.ScoredChunk
	// 按入库顺序遍历, 保证同分分块的排序稳定
	for _, fileID := range s.order {
		entry := s.docs[fileID]
		for i, chunk := range entry.chunks {
			score := overlapScore(queryTokens, chunk)
			if score <= 0 && !s.includeZeroScores {
				continue
			}
			results = append(results, model.ScoredChunk{
				FileID:     fileID,
				Filename:   entry.filename,
				ChunkIndex: i,
				Text:       chunk,
				Score:      score,
			})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *keywordStore) ChunksByFileID(_ context.Context, fileID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.docs[fileID]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), entry.chunks...), nil
}

func (s *keywordStore) DeleteByFileID(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[fileID]; !ok {
		return nil
	}
	delete(s.docs, fileID)
	for i, id := range s.order {
		if id == fileID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *keywordStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*keywordEntry)
	s.order = nil
	return nil
}

func (s *keywordStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, entry := range s.docs {
		total += int64(len(entry.chunks))
	}
	return total, nil
}

// tokenSet 把文本按空白切分成小写词集合。
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = struct{}{}
	}
	return set
}

// overlapScore 按查询词在分块中出现的比例打分: |交集| / |查询词集|。
func overlapScore(queryTokens map[string]struct{}, chunk string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	chunkTokens := tokenSet(chunk)
	matched := 0
	for tok := range queryTokens {
		if _, ok := chunkTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
