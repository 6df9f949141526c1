// Package store 定义知识库向量存储抽象及其实现。
package store

import (
	"context"
)

// 文档块类型。
const (
	// ChunkTypeText 普通文本块。
	ChunkTypeText = "text"
	// ChunkTypeImageOCR 图片 OCR 识别产生的文本块。
	ChunkTypeImageOCR = "image_ocr"
	// ChunkTypeTableData 表格抽取产生的 Markdown 块。
	ChunkTypeTableData = "table_data"
)

// Chunk 表示文档块。
type Chunk struct {
	// ID 文档块 ID，由内容哈希生成。
	ID string
	// DocumentID 所属文档 ID。
	DocumentID string
	// DocumentName 文档名称。
	DocumentName string
	// Section 所属章节。
	Section string
	// Type 块类型：text、image_ocr 或 table_data。
	Type string
	// Page 来源页码，非 PDF 内容为 0。
	Page int
	// Content 文档内容。
	Content string
	// Embedding 嵌入向量。
	Embedding []float32
}

// SearchResult 表示检索结果。
type SearchResult struct {
	// ID 文档块 ID。
	ID string
	// DocumentID 所属文档 ID。
	DocumentID string
	// DocumentName 文档名称。
	DocumentName string
	// Section 所属章节。
	Section string
	// Type 块类型。
	Type string
	// Page 来源页码。
	Page int
	// Content 文档内容。
	Content string
	// Score 相似度分数。
	Score float32
}

// CollectionConfig 集合配置。
type CollectionConfig struct {
	// Name 集合名称。
	Name string
	// Description 集合描述。
	Description string
	// Dimension 向量维度。
	Dimension int
}

// VectorStore 定义向量存储接口。
type VectorStore interface {
	// CreateCollection 创建集合，集合已存在时不报错。
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert 批量插入文档块。
	Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error)

	// Search 向量相似度搜索，返回按相似度降序排列的前 topK 个结果。
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// DeleteByDocument 删除指定文档的全部块。
	DeleteByDocument(ctx context.Context, collection string, documentID string) error

	// GetStats 获取集合中的块数量。
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}
