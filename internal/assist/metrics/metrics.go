// Package metrics 提供问答服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// AssistMetrics 问答服务业务指标。
type AssistMetrics struct {
	// 查询指标
	queriesTotal       uint64 // 总查询次数
	queriesCacheHits   uint64 // 缓存命中次数
	queriesCacheMisses uint64 // 缓存未命中次数
	queriesErrors      uint64 // 查询错误次数

	// 检索指标
	retrievalTotal    uint64  // 总检索次数
	retrievalChunks   uint64  // 检索返回块总数
	retrievalDuration float64 // 检索总耗时（秒）
	retrievalErrors   uint64  // 检索错误次数

	// LLM 调用指标
	llmCallsTotal       uint64  // LLM 总调用次数
	llmCallsDuration    float64 // LLM 调用总耗时（秒）
	llmCallsErrors      uint64  // LLM 调用错误次数
	llmTokensPrompt     uint64  // Prompt tokens 总数
	llmTokensCompletion uint64  // Completion tokens 总数

	// 索引指标
	documentsIndexed uint64 // 已索引文档数
	chunksIndexed    uint64 // 已索引分块数
	ocrPages         uint64 // OCR 识别页数
	tablesExtracted  uint64 // 抽取表格数
	indexErrors      uint64 // 索引错误次数

	// FAQ 指标
	faqQuestionsSubmitted uint64 // 提交的待解答问题数
	faqQuestionsAnswered  uint64 // 已解答并入库的问题数

	startTime  time.Time
	durationMu sync.Mutex
}

// globalMetrics 全局指标实例。
var (
	globalMetrics *AssistMetrics
	metricsOnce   sync.Once
)

// Get 获取全局指标实例。
func Get() *AssistMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &AssistMetrics{
			startTime: time.Now(),
		}
	})
	return globalMetrics
}

// RecordQuery 记录查询。
func (m *AssistMetrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}
}

// RecordRetrieval 记录检索操作。
func (m *AssistMetrics) RecordRetrieval(duration time.Duration, chunks int, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}

	if chunks > 0 {
		atomic.AddUint64(&m.retrievalChunks, uint64(chunks))
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall 记录 LLM 调用。
func (m *AssistMetrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()

	if promptTokens > 0 {
		atomic.AddUint64(&m.llmTokensPrompt, uint64(promptTokens))
	}
	if completionTokens > 0 {
		atomic.AddUint64(&m.llmTokensCompletion, uint64(completionTokens))
	}
}

// RecordIndexing 记录索引操作。
func (m *AssistMetrics) RecordIndexing(documents, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIndexed, uint64(documents))
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// RecordOCRPage 记录一次页面 OCR 识别。
func (m *AssistMetrics) RecordOCRPage() {
	atomic.AddUint64(&m.ocrPages, 1)
}

// RecordTableExtracted 记录抽取的表格数量。
func (m *AssistMetrics) RecordTableExtracted(count int) {
	if count > 0 {
		atomic.AddUint64(&m.tablesExtracted, uint64(count))
	}
}

// RecordFAQSubmitted 记录提交的待解答问题。
func (m *AssistMetrics) RecordFAQSubmitted() {
	atomic.AddUint64(&m.faqQuestionsSubmitted, 1)
}

// RecordFAQAnswered 记录已解答并入库的问题。
func (m *AssistMetrics) RecordFAQAnswered() {
	atomic.AddUint64(&m.faqQuestionsAnswered, 1)
}

// Export 导出 Prometheus 格式指标。
func (m *AssistMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	writeCounter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	// 查询指标
	writeCounter("queries_total", "Total number of assist queries.", atomic.LoadUint64(&m.queriesTotal))
	writeCounter("queries_cache_hits_total", "Number of cache hits.", atomic.LoadUint64(&m.queriesCacheHits))
	writeCounter("queries_cache_misses_total", "Number of cache misses.", atomic.LoadUint64(&m.queriesCacheMisses))
	writeCounter("queries_errors_total", "Number of query errors.", atomic.LoadUint64(&m.queriesErrors))

	// 缓存命中率
	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	total := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total)
	}
	sb.WriteString(fmt.Sprintf("# HELP %s_cache_hit_rate Cache hit rate (0-1).\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_cache_hit_rate gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_cache_hit_rate %.4f\n\n", prefix, cacheHitRate))

	// 检索指标
	writeCounter("retrieval_total", "Total number of retrievals.", atomic.LoadUint64(&m.retrievalTotal))
	writeCounter("retrieval_chunks_total", "Total chunks returned by retrieval.", atomic.LoadUint64(&m.retrievalChunks))
	writeCounter("retrieval_errors_total", "Number of retrieval errors.", atomic.LoadUint64(&m.retrievalErrors))

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	sb.WriteString(fmt.Sprintf("# HELP %s_retrieval_duration_seconds_total Total retrieval duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_retrieval_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_retrieval_duration_seconds_total %.6f\n\n", prefix, retrievalDuration))

	// LLM 调用指标
	writeCounter("llm_calls_total", "Total number of LLM calls.", atomic.LoadUint64(&m.llmCallsTotal))
	writeCounter("llm_calls_errors_total", "Number of LLM call errors.", atomic.LoadUint64(&m.llmCallsErrors))
	writeCounter("llm_tokens_prompt_total", "Total prompt tokens.", atomic.LoadUint64(&m.llmTokensPrompt))
	writeCounter("llm_tokens_completion_total", "Total completion tokens.", atomic.LoadUint64(&m.llmTokensCompletion))

	sb.WriteString(fmt.Sprintf("# HELP %s_llm_calls_duration_seconds_total Total LLM call duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_llm_calls_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_llm_calls_duration_seconds_total %.6f\n\n", prefix, llmDuration))

	// 索引指标
	writeCounter("documents_indexed_total", "Total documents indexed.", atomic.LoadUint64(&m.documentsIndexed))
	writeCounter("chunks_indexed_total", "Total chunks indexed.", atomic.LoadUint64(&m.chunksIndexed))
	writeCounter("ocr_pages_total", "Total pages processed by OCR.", atomic.LoadUint64(&m.ocrPages))
	writeCounter("tables_extracted_total", "Total tables extracted from documents.", atomic.LoadUint64(&m.tablesExtracted))
	writeCounter("index_errors_total", "Number of indexing errors.", atomic.LoadUint64(&m.indexErrors))

	// FAQ 指标
	writeCounter("faq_questions_submitted_total", "Total pending questions submitted.", atomic.LoadUint64(&m.faqQuestionsSubmitted))
	writeCounter("faq_questions_answered_total", "Total pending questions answered.", atomic.LoadUint64(&m.faqQuestionsAnswered))

	// 运行时间
	uptime := time.Since(m.startTime).Seconds()
	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Service uptime in seconds.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.2f\n\n", prefix, uptime))

	return sb.String()
}

// Stats 返回当前统计信息（用于 API）。
func (m *AssistMetrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	queriesTotal := atomic.LoadUint64(&m.queriesTotal)
	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	retrievalTotal := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrievalDuration := 0.0
	if retrievalTotal > 0 {
		avgRetrievalDuration = retrievalDuration / float64(retrievalTotal)
	}

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLMDuration := 0.0
	if llmTotal > 0 {
		avgLLMDuration = llmDuration / float64(llmTotal)
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":          queriesTotal,
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
			"errors":         atomic.LoadUint64(&m.queriesErrors),
		},
		"retrieval": map[string]interface{}{
			"total":               retrievalTotal,
			"chunks":              atomic.LoadUint64(&m.retrievalChunks),
			"total_duration_secs": retrievalDuration,
			"avg_duration_secs":   avgRetrievalDuration,
			"errors":              atomic.LoadUint64(&m.retrievalErrors),
		},
		"llm": map[string]interface{}{
			"calls_total":         llmTotal,
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLMDuration,
			"errors":              atomic.LoadUint64(&m.llmCallsErrors),
			"tokens_prompt":       atomic.LoadUint64(&m.llmTokensPrompt),
			"tokens_completion":   atomic.LoadUint64(&m.llmTokensCompletion),
		},
		"indexing": map[string]interface{}{
			"documents_indexed": atomic.LoadUint64(&m.documentsIndexed),
			"chunks_indexed":    atomic.LoadUint64(&m.chunksIndexed),
			"ocr_pages":         atomic.LoadUint64(&m.ocrPages),
			"tables_extracted":  atomic.LoadUint64(&m.tablesExtracted),
			"errors":            atomic.LoadUint64(&m.indexErrors),
		},
		"faq": map[string]interface{}{
			"questions_submitted": atomic.LoadUint64(&m.faqQuestionsSubmitted),
			"questions_answered":  atomic.LoadUint64(&m.faqQuestionsAnswered),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset 重置所有指标（仅用于测试）。
func (m *AssistMetrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesCacheMisses, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalChunks, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.llmTokensPrompt, 0)
	atomic.StoreUint64(&m.llmTokensCompletion, 0)
	atomic.StoreUint64(&m.documentsIndexed, 0)
	atomic.StoreUint64(&m.chunksIndexed, 0)
	atomic.StoreUint64(&m.ocrPages, 0)
	atomic.StoreUint64(&m.tablesExtracted, 0)
	atomic.StoreUint64(&m.indexErrors, 0)
	atomic.StoreUint64(&m.faqQuestionsSubmitted, 0)
	atomic.StoreUint64(&m.faqQuestionsAnswered, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.llmCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
