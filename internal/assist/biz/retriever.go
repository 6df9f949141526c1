package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/internal/pkg/assist/enhancer"
	"github.com/camos-io/camos-assist/pkg/llm"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// TopK 返回的结果数量。
	TopK int
	// Collection 集合名称。
	Collection string
	// Enhancer 增强器配置。
	Enhancer enhancer.Config
}

// RetrievalResult 表示检索结果。
type RetrievalResult struct {
	// Query 增强后的查询。
	Query string
	// Results 检索结果列表。
	Results []*store.SearchResult
}

// Retriever 负责文档检索。
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	enhancer      *enhancer.Enhancer
	config        *RetrieverConfig
}

// NewRetriever 创建检索器实例。templates 为 nil 时增强器使用内置模板。
func NewRetriever(
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	chatProvider llm.ChatProvider,
	templates enhancer.TemplateSource,
	config *RetrieverConfig,
) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		enhancer:      enhancer.New(chatProvider, embedProvider, templates, config.Enhancer),
		config:        config,
	}
}

// Retrieve 执行检索。topK 非正数时使用配置默认值。
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) (*RetrievalResult, error) {
	logger.Infof("Processing query: %s", question)

	if topK <= 0 {
		topK = r.config.TopK
	}

	// 1. 增强查询（查询重写 + HyDE）
	enhancedQuery, embeddings, err := r.enhancer.EnhanceQuery(ctx, question)
	if err != nil {
		logger.Warnw("查询增强失败，使用原始查询", "error", err.Error())
		questionEmbed, embedErr := r.embedProvider.EmbedSingle(ctx, question)
		if embedErr != nil {
			return nil, fmt.Errorf("failed to embed question: %w", embedErr)
		}
		embeddings = [][]float32{questionEmbed}
		enhancedQuery = question
	}

	// 2. 执行检索（每个嵌入向量独立检索）
	resultSets := make([][]enhancer.SearchResult, 0, len(embeddings))
	for _, embedding := range embeddings {
		results, err := r.store.Search(ctx, r.config.Collection, embedding, topK)
		if err != nil {
			logger.Warnw("检索失败", "error", err.Error())
			continue
		}

		set := make([]enhancer.SearchResult, 0, len(results))
		for _, res := range results {
			set = append(set, enhancer.SearchResult{
				ID:      res.ID,
				Content: res.Content,
				Score:   res.Score,
				Metadata: map[string]any{
					"document_id":   res.DocumentID,
					"document_name": res.DocumentName,
					"section":       res.Section,
					"type":          res.Type,
					"page":          res.Page,
				},
			})
		}
		resultSets = append(resultSets, set)
	}

	if len(resultSets) == 0 && len(embeddings) > 0 {
		return nil, fmt.Errorf("all searches failed for query: %s", question)
	}

	// 合并多次检索结果（启用 HyDE 时有多个结果集）
	allResults := enhancer.MergeEmbeddingResults(resultSets)

	if len(allResults) == 0 {
		return &RetrievalResult{
			Query:   enhancedQuery,
			Results: []*store.SearchResult{},
		}, nil
	}

	// 3. 重排序检索结果
	rerankedResults, err := r.enhancer.RerankResults(ctx, enhancedQuery, allResults)
	if err != nil {
		logger.Warnw("重排序失败，使用原始结果", "error", err.Error())
		rerankedResults = allResults
	}

	// 4. 文档重组（高置信度放首尾）
	repackedResults := r.enhancer.RepackDocuments(rerankedResults)

	// 转换为 store.SearchResult
	storeResults := make([]*store.SearchResult, len(repackedResults))
	for i, res := range repackedResults {
		sr := &store.SearchResult{
			ID:      res.ID,
			Content: res.Content,
			Score:   res.Score,
		}
		if v, ok := res.Metadata["document_id"].(string); ok {
			sr.DocumentID = v
		}
		if v, ok := res.Metadata["document_name"].(string); ok {
			sr.DocumentName = v
		}
		if v, ok := res.Metadata["section"].(string); ok {
			sr.Section = v
		}
		if v, ok := res.Metadata["type"].(string); ok {
			sr.Type = v
		}
		if v, ok := res.Metadata["page"].(int); ok {
			sr.Page = v
		}
		storeResults[i] = sr
	}

	return &RetrievalResult{
		Query:   enhancedQuery,
		Results: storeResults,
	}, nil
}
