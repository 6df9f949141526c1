// Package enhancer 提供检索增强功能。
//
// 实现了以下增强技术：
//   - Query Rewriting（查询重写）: 优化原始查询以提高检索精度
//   - HyDE（假设文档嵌入）: 生成假设文档来增强检索
//   - Reranking（重排序）: 对检索结果进行精细排序
//   - Document Repacking（文档重组）: 优化上下文顺序以提高 LLM 推理效果
package enhancer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/pkg/assist/textutil"
	"github.com/camos-io/camos-assist/pkg/llm"
	"github.com/camos-io/camos-assist/pkg/llm/prompt"
)

// Config 增强器配置。
type Config struct {
	// EnableQueryRewrite 是否启用查询重写。
	EnableQueryRewrite bool

	// EnableHyDE 是否启用 HyDE（假设文档嵌入）。
	EnableHyDE bool

	// EnableRerank 是否启用重排序。
	EnableRerank bool

	// EnableRepacking 是否启用文档重组。
	EnableRepacking bool

	// RerankTopK 重排序后保留的文档数量。
	RerankTopK int
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		EnableQueryRewrite: true,
		EnableHyDE:         false, // HyDE 增加延迟，默认关闭
		EnableRerank:       true,
		EnableRepacking:    true,
		RerankTopK:         5,
	}
}

// SearchResult 表示检索结果。
type SearchResult struct {
	// ID 文档块 ID。
	ID string
	// Content 文档内容。
	Content string
	// Score 相似度分数。
	Score float32
	// Metadata 元数据。
	Metadata map[string]any
}

// TemplateSource 提供增强流程使用的提示词模板。
// *prompt.Manager 满足该接口。
type TemplateSource interface {
	QueryRewrite() string
	HyDE() string
	Rerank() string
}

// Enhancer 提供检索增强功能。
type Enhancer struct {
	chatProvider  llm.ChatProvider
	embedProvider llm.EmbeddingProvider
	templates     TemplateSource
	config        Config
}

// New 创建新的增强器。templates 为 nil 时使用内置模板。
func New(chatProvider llm.ChatProvider, embedProvider llm.EmbeddingProvider, templates TemplateSource, config Config) *Enhancer {
	if templates == nil {
		templates = defaultTemplates{}
	}
	return &Enhancer{
		chatProvider:  chatProvider,
		embedProvider: embedProvider,
		templates:     templates,
		config:        config,
	}
}

type defaultTemplates struct{}

func (defaultTemplates) QueryRewrite() string { return prompt.DefaultTemplates().QueryRewrite }
func (defaultTemplates) HyDE() string         { return prompt.DefaultTemplates().HyDE }
func (defaultTemplates) Rerank() string       { return prompt.DefaultTemplates().Rerank }

// EnhanceQuery 增强查询，返回优化后的查询和用于检索的嵌入向量列表。
func (e *Enhancer) EnhanceQuery(ctx context.Context, query string) (string, [][]float32, error) {
	enhancedQuery := query
	var embeddings [][]float32

	// 1. 查询重写
	if e.config.EnableQueryRewrite {
		rewritten, err := e.rewriteQuery(ctx, query)
		if err != nil {
			logger.Warnw("查询重写失败，使用原始查询", "error", err.Error())
		} else {
			enhancedQuery = rewritten
			logger.Debugw("查询已重写", "original", query, "rewritten", rewritten)
		}
	}

	// 2. 生成查询嵌入
	queryEmbed, err := e.embedProvider.EmbedSingle(ctx, enhancedQuery)
	if err != nil {
		return enhancedQuery, nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	embeddings = append(embeddings, queryEmbed)

	// 3. HyDE：生成假设文档并获取其嵌入
	if e.config.EnableHyDE {
		hydeEmbed, err := e.generateHyDEEmbedding(ctx, query)
		if err != nil {
			logger.Warnw("HyDE 生成失败", "error", err.Error())
		} else {
			embeddings = append(embeddings, hydeEmbed)
			logger.Debug("HyDE 嵌入已生成")
		}
	}

	return enhancedQuery, embeddings, nil
}

// RerankResults 对检索结果进行重排序。
// 最终分数 = 0.3*向量分数 + 0.7*LLM 相关性评分。
func (e *Enhancer) RerankResults(ctx context.Context, query string, results []SearchResult) ([]SearchResult, error) {
	if !e.config.EnableRerank || len(results) == 0 {
		return results, nil
	}

	rerankedResults := make([]SearchResult, len(results))
	copy(rerankedResults, results)

	for i := range rerankedResults {
		score, err := e.scoreRelevance(ctx, query, rerankedResults[i].Content)
		if err != nil {
			logger.Warnw("相关性评分失败", "error", err.Error())
			continue
		}
		rerankedResults[i].Score = float32(0.3)*rerankedResults[i].Score + float32(0.7)*float32(score)
	}

	sort.Slice(rerankedResults, func(i, j int) bool {
		return rerankedResults[i].Score > rerankedResults[j].Score
	})

	if e.config.RerankTopK > 0 && len(rerankedResults) > e.config.RerankTopK {
		rerankedResults = rerankedResults[:e.config.RerankTopK]
	}

	logger.Debugw("重排序完成", "original_count", len(results), "final_count", len(rerankedResults))
	return rerankedResults, nil
}

// RepackDocuments 重组文档顺序，将高置信度文档放在首尾。
// 基于 "Lost in the Middle" 研究：LLM 更关注首尾内容。
func (e *Enhancer) RepackDocuments(results []SearchResult) []SearchResult {
	if !e.config.EnableRepacking || len(results) <= 2 {
		return results
	}

	sorted := make([]SearchResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	// 重组：高分在首尾，低分在中间
	repacked := make([]SearchResult, len(sorted))
	left, right := 0, len(sorted)-1

	for i, doc := range sorted {
		if i%2 == 0 {
			repacked[left] = doc
			left++
		} else {
			repacked[right] = doc
			right--
		}
	}

	logger.Debug("文档已重组，高置信度内容放置在首尾")
	return repacked
}

// rewriteQuery 使用 LLM 重写查询以提高检索效果。
func (e *Enhancer) rewriteQuery(ctx context.Context, query string) (string, error) {
	p := prompt.Render(e.templates.QueryRewrite(), map[string]string{"question": query})

	response, err := e.chatProvider.Generate(ctx, p, "")
	if err != nil {
		return query, err
	}

	rewritten := strings.TrimSpace(response.Content)
	if rewritten == "" {
		return query, nil
	}

	return rewritten, nil
}

// generateHyDEEmbedding 生成假设文档嵌入。
// HyDE 通过 LLM 生成假设答案，再用假设答案的嵌入来检索相关文档。
func (e *Enhancer) generateHyDEEmbedding(ctx context.Context, query string) ([]float32, error) {
	p := prompt.Render(e.templates.HyDE(), map[string]string{"question": query})

	response, err := e.chatProvider.Generate(ctx, p, "")
	if err != nil {
		return nil, fmt.Errorf("生成假设文档失败: %w", err)
	}

	hypotheticalDoc := strings.TrimSpace(response.Content)
	if hypotheticalDoc == "" {
		return nil, fmt.Errorf("生成的假设文档为空")
	}

	embedding, err := e.embedProvider.EmbedSingle(ctx, hypotheticalDoc)
	if err != nil {
		return nil, fmt.Errorf("生成假设文档嵌入失败: %w", err)
	}

	return embedding, nil
}

// scoreRelevance 使用 LLM 评估文档与查询的相关性。
func (e *Enhancer) scoreRelevance(ctx context.Context, query, document string) (float64, error) {
	truncatedDoc := textutil.TruncateString(document, 2000)

	p := prompt.Render(e.templates.Rerank(), map[string]string{
		"question": query,
		"document": truncatedDoc,
	})

	response, err := e.chatProvider.Generate(ctx, p, "")
	if err != nil {
		return 0.5, err
	}

	return parseScore(response.Content), nil
}

// parseScore 从 LLM 响应中解析分数。
func parseScore(response string) float64 {
	response = strings.TrimSpace(response)

	var score float64
	if _, err := fmt.Sscanf(response, "%f", &score); err == nil {
		if score >= 0 && score <= 1 {
			return score
		}
	}

	for _, part := range strings.Fields(response) {
		if _, err := fmt.Sscanf(part, "%f", &score); err == nil {
			if score >= 0 && score <= 1 {
				return score
			}
		}
	}

	// 解析失败时返回中等分数
	return 0.5
}

// MergeEmbeddingResults 使用 RRF (Reciprocal Rank Fusion) 合并多个
// 嵌入检索的结果，用于合并原始查询和 HyDE 查询的检索结果。
func MergeEmbeddingResults(resultSets [][]SearchResult) []SearchResult {
	if len(resultSets) == 0 {
		return nil
	}
	if len(resultSets) == 1 {
		return resultSets[0]
	}

	scoreMap := make(map[string]float64)
	resultMap := make(map[string]SearchResult)
	k := 60.0 // RRF 参数

	for _, results := range resultSets {
		for rank, result := range results {
			id := result.ID
			if id == "" {
				id = textutil.HashString(result.Content)
			}

			// RRF 分数：1 / (k + rank)
			scoreMap[id] += 1.0 / (k + float64(rank+1))
			if _, exists := resultMap[id]; !exists {
				resultMap[id] = result
			}
		}
	}

	merged := make([]SearchResult, 0, len(resultMap))
	for id, result := range resultMap {
		result.Score = float32(scoreMap[id])
		merged = append(merged, result)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged
}
