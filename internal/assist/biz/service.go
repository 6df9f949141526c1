package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/metrics"
	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/internal/model"
	"github.com/camos-io/camos-assist/pkg/llm"
)

// Service 定义问答服务接口。
type Service interface {
	// IndexDirectory 索引目录中的所有文档。
	IndexDirectory(ctx context.Context, dir string) (*model.IndexResult, error)
	// IndexFile 索引单个文件，返回写入的块数量。
	IndexFile(ctx context.Context, path string) (int, error)
	// IndexUpload 保存上传内容并索引。
	IndexUpload(ctx context.Context, name string, data []byte) (int, error)
	// RemoveDocument 删除指定文档的全部块。
	RemoveDocument(ctx context.Context, documentID string) error
	// Query 执行知识库问答。
	Query(ctx context.Context, question string, topK int) (*model.QueryResult, error)
	// DebugCode 执行代码调试问答（无检索）。
	DebugCode(ctx context.Context, code, errMsg string) (*model.DebugResult, error)
	// GetStats 获取知识库统计信息。
	GetStats(ctx context.Context) (map[string]any, error)
}

// AssistService 组合 Indexer、Retriever、Generator 和 Debugger
// 提供完整的问答服务。
type AssistService struct {
	indexer       *Indexer
	retriever     *Retriever
	generator     *Generator
	debugger      *Debugger
	cache         *QueryCache
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	chatProvider  llm.ChatProvider
	collection    string
	allowDegraded bool
	metrics       *metrics.AssistMetrics
}

// ServiceConfig 问答服务配置。
type ServiceConfig struct {
	// Collection 集合名称。
	Collection string
	// AllowDegraded 检索失败时是否降级为直接生成。
	AllowDegraded bool
}

// NewAssistService 创建问答服务实例。
func NewAssistService(
	indexer *Indexer,
	retriever *Retriever,
	generator *Generator,
	debugger *Debugger,
	cache *QueryCache,
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	chatProvider llm.ChatProvider,
	config *ServiceConfig,
) *AssistService {
	return &AssistService{
		indexer:       indexer,
		retriever:     retriever,
		generator:     generator,
		debugger:      debugger,
		cache:         cache,
		store:         vectorStore,
		embedProvider: embedProvider,
		chatProvider:  chatProvider,
		collection:    config.Collection,
		allowDegraded: config.AllowDegraded,
		metrics:       metrics.Get(),
	}
}

// IndexDirectory 索引目录中的所有文档。
func (s *AssistService) IndexDirectory(ctx context.Context, dir string) (*model.IndexResult, error) {
	return s.indexer.IndexDirectory(ctx, dir)
}

// IndexFile 索引单个文件。
func (s *AssistService) IndexFile(ctx context.Context, path string) (int, error) {
	if err := s.indexer.EnsureCollection(ctx); err != nil {
		return 0, err
	}
	return s.indexer.IndexFile(ctx, path)
}

// IndexUpload 保存上传内容并索引。
func (s *AssistService) IndexUpload(ctx context.Context, name string, data []byte) (int, error) {
	return s.indexer.IndexUpload(ctx, name, data)
}

// RemoveDocument 删除指定文档的全部块。
func (s *AssistService) RemoveDocument(ctx context.Context, documentID string) error {
	return s.indexer.RemoveDocument(ctx, documentID)
}

// Query 执行知识库问答。
func (s *AssistService) Query(ctx context.Context, question string, topK int) (*model.QueryResult, error) {
	start := time.Now()

	var queryErr error
	defer func() {
		// 失败查询在此统一记录，成功路径各自记录
		if queryErr != nil {
			s.metrics.RecordQuery(false, queryErr)
		}
	}()

	// 1. 尝试从缓存获取
	if s.cache != nil {
		cachedResult, err := s.cache.Get(ctx, question)
		if err == nil && cachedResult != nil {
			s.metrics.RecordQuery(true, nil)
			cachedResult.Cached = true
			cachedResult.ElapsedMs = time.Since(start).Milliseconds()
			return cachedResult, nil
		}
		// 缓存未命中或出错，继续正常流程
	}

	// 2. 检索相关文档
	retrievalStart := time.Now()
	retrievalResult, err := s.retriever.Retrieve(ctx, question, topK)
	retrievalDuration := time.Since(retrievalStart)

	chunkCount := 0
	if retrievalResult != nil {
		chunkCount = len(retrievalResult.Results)
	}
	s.metrics.RecordRetrieval(retrievalDuration, chunkCount, err)

	if err != nil {
		if !s.allowDegraded {
			queryErr = err
			return nil, err
		}
		// 降级：不带上下文直接生成
		logger.Warnw("检索失败，降级为直接生成", "error", err.Error())
		return s.degradedQuery(ctx, question, start)
	}

	// 3. 生成答案
	llmStart := time.Now()
	resp, err := s.generator.GenerateAnswer(ctx, question, retrievalResult.Results)
	llmDuration := time.Since(llmStart)

	promptTokens := 0
	completionTokens := 0
	if resp != nil && resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	s.metrics.RecordLLMCall(llmDuration, promptTokens, completionTokens, err)

	if err != nil {
		queryErr = err
		return nil, err
	}

	// 4. 构建响应
	sources := make([]model.ChunkSource, len(retrievalResult.Results))
	for i, result := range retrievalResult.Results {
		sources[i] = model.ChunkSource{
			DocumentID:   result.DocumentID,
			DocumentName: result.DocumentName,
			Section:      result.Section,
			Type:         result.Type,
			Page:         result.Page,
			Content:      result.Content,
			Score:        result.Score,
		}
	}

	queryResult := &model.QueryResult{
		Answer:    resp.Content,
		Sources:   sources,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if resp.TokenUsage != nil {
		queryResult.TokenUsage = &model.TokenUsage{
			PromptTokens:     resp.TokenUsage.PromptTokens,
			CompletionTokens: resp.TokenUsage.CompletionTokens,
			TotalTokens:      resp.TokenUsage.TotalTokens,
		}
	}

	// 5. 写入缓存（失败不影响返回，错误已在 cache.Set 中记录）
	if s.cache != nil {
		_ = s.cache.Set(ctx, question, queryResult)
	}

	s.metrics.RecordQuery(false, nil)
	return queryResult, nil
}

// degradedQuery 检索不可用时的降级问答，答案不写缓存。
func (s *AssistService) degradedQuery(ctx context.Context, question string, start time.Time) (*model.QueryResult, error) {
	llmStart := time.Now()
	resp, err := s.generator.GenerateDirect(ctx, question)
	llmDuration := time.Since(llmStart)

	promptTokens := 0
	completionTokens := 0
	if resp != nil && resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	s.metrics.RecordLLMCall(llmDuration, promptTokens, completionTokens, err)

	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, err
	}

	result := &model.QueryResult{
		Answer:    resp.Content,
		Sources:   []model.ChunkSource{},
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if resp.TokenUsage != nil {
		result.TokenUsage = &model.TokenUsage{
			PromptTokens:     resp.TokenUsage.PromptTokens,
			CompletionTokens: resp.TokenUsage.CompletionTokens,
			TotalTokens:      resp.TokenUsage.TotalTokens,
		}
	}

	s.metrics.RecordQuery(false, nil)
	return result, nil
}

// DebugCode 执行代码调试问答。
func (s *AssistService) DebugCode(ctx context.Context, code, errMsg string) (*model.DebugResult, error) {
	llmStart := time.Now()
	result, err := s.debugger.DebugCode(ctx, code, errMsg)
	llmDuration := time.Since(llmStart)

	promptTokens := 0
	completionTokens := 0
	if result != nil && result.TokenUsage != nil {
		promptTokens = result.TokenUsage.PromptTokens
		completionTokens = result.TokenUsage.CompletionTokens
	}
	s.metrics.RecordLLMCall(llmDuration, promptTokens, completionTokens, err)

	return result, err
}

// GetStats 获取知识库统计信息。
func (s *AssistService) GetStats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.GetStats(ctx, s.collection)
	if err != nil {
		return nil, err
	}

	stats := map[string]any{
		"collection":     s.collection,
		"chunk_count":    count,
		"embed_provider": s.embedProvider.Name(),
		"chat_provider":  s.chatProvider.Name(),
	}

	// 添加缓存统计信息
	if s.cache != nil {
		cacheStats, err := s.cache.GetStats(ctx)
		if err == nil {
			stats["cache"] = cacheStats
		}
	}

	// 添加业务指标统计
	stats["metrics"] = s.metrics.Stats()

	return stats, nil
}

// 确保 AssistService 实现了 Service 接口。
var _ Service = (*AssistService)(nil)
