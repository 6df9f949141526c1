package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/camos-io/camos-assist/internal/pkg/assist/textutil"
)

// MemoryStore 实现基于内存的向量存储。
// 用于开发环境和测试，不依赖外部 Milvus 服务。
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]*Chunk
}

// NewMemoryStore 创建内存存储实例。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]*Chunk),
	}
}

// CreateCollection 创建集合，集合已存在时不报错。
func (s *MemoryStore) CreateCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[config.Name]; !exists {
		s.collections[config.Name] = nil
	}
	return nil
}

// Insert 批量插入文档块。已存在相同 ID 的块会被替换，
// 保证重复索引同一文件不产生重复块。
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", collection)
	}

	index := make(map[string]int, len(existing))
	for i, c := range existing {
		index[c.ID] = i
	}

	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		cp := *chunk
		if i, dup := index[cp.ID]; dup {
			existing[i] = &cp
		} else {
			existing = append(existing, &cp)
			index[cp.ID] = len(existing) - 1
		}
		ids = append(ids, cp.ID)
	}

	s.collections[collection] = existing
	return ids, nil
}

// Search 执行向量相似度搜索，按余弦相似度降序返回前 topK 个结果。
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", collection)
	}

	results := make([]*SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		score := textutil.NormalizeCosineSimilarity(textutil.CosineSimilarity(embedding, chunk.Embedding))
		results = append(results, &SearchResult{
			ID:           chunk.ID,
			DocumentID:   chunk.DocumentID,
			DocumentName: chunk.DocumentName,
			Section:      chunk.Section,
			Type:         chunk.Type,
			Page:         chunk.Page,
			Content:      chunk.Content,
			Score:        float32(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// DeleteByDocument 删除指定文档的全部块。
func (s *MemoryStore) DeleteByDocument(_ context.Context, collection string, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection not found: %s", collection)
	}

	kept := chunks[:0]
	for _, chunk := range chunks {
		if chunk.DocumentID != documentID {
			kept = append(kept, chunk)
		}
	}
	s.collections[collection] = kept
	return nil
}

// GetStats 获取集合中的块数量。
func (s *MemoryStore) GetStats(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection not found: %s", collection)
	}
	return int64(len(chunks)), nil
}

// Close 关闭存储，释放全部数据。
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[string][]*Chunk)
	return nil
}

// 确保 MemoryStore 实现了 VectorStore 接口。
var _ VectorStore = (*MemoryStore)(nil)
