package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/camos-io/camos-assist/pkg/component/milvus"
)

// MilvusStore 实现基于 Milvus 的向量存储。
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore 创建 Milvus 存储实例。
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection 创建 Milvus 集合。
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "document_name", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "section", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "type", DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: "page", DataType: entity.FieldTypeInt64},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert 批量写入文档块。块 ID 为内容哈希主键，
// 重复索引未变更的内容覆盖原行而不是新增。
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"document_id":   make([]any, len(chunks)),
		"document_name": make([]any, len(chunks)),
		"section":       make([]any, len(chunks)),
		"type":          make([]any, len(chunks)),
		"page":          make([]any, len(chunks)),
		"content":       make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		metadata["document_id"][i] = chunk.DocumentID
		metadata["document_name"][i] = chunk.DocumentName
		metadata["section"][i] = chunk.Section
		metadata["type"][i] = chunk.Type
		metadata["page"][i] = int64(chunk.Page)
		metadata["content"][i] = chunk.Content
	}

	data := &milvus.UpsertData{
		IDs:        ids,
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	written, err := s.client.Upsert(ctx, collection, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert into milvus: %w", err)
	}

	return written, nil
}

// Search 执行向量相似度搜索。
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	outputFields := []string{"document_id", "document_name", "section", "type", "page", "content"}
	results, err := s.client.Search(ctx, collection, embedding, topK, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, len(results))
	for i, r := range results {
		sr := &SearchResult{Score: r.Score}
		if v, ok := r.Metadata["document_id"].(string); ok {
			sr.DocumentID = v
		}
		if v, ok := r.Metadata["document_name"].(string); ok {
			sr.DocumentName = v
		}
		if v, ok := r.Metadata["section"].(string); ok {
			sr.Section = v
		}
		if v, ok := r.Metadata["type"].(string); ok {
			sr.Type = v
		}
		if v, ok := r.Metadata["page"].(int64); ok {
			sr.Page = int(v)
		}
		if v, ok := r.Metadata["content"].(string); ok {
			sr.Content = v
		}
		sr.ID = r.ID
		searchResults[i] = sr
	}

	return searchResults, nil
}

// DeleteByDocument 删除指定文档的全部块。
func (s *MilvusStore) DeleteByDocument(ctx context.Context, collection string, documentID string) error {
	expr := fmt.Sprintf("document_id == %q", documentID)
	if err := s.client.DeleteByExpr(ctx, collection, expr); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// GetStats 获取集合统计信息。
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close 关闭 Milvus 连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// 确保 MilvusStore 实现了 VectorStore 接口。
var _ VectorStore = (*MilvusStore)(nil)
