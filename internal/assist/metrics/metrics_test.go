package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *AssistMetrics {
	m := Get()
	m.Reset()
	return m
}

func TestGetSingleton(t *testing.T) {
	m1 := Get()
	m2 := Get()

	// 应该返回同一个实例
	assert.Same(t, m1, m2)
}

func TestRecordQuery(t *testing.T) {
	m := newTestMetrics()

	// 缓存命中
	m.RecordQuery(true, nil)
	assert.Equal(t, uint64(1), m.queriesTotal)
	assert.Equal(t, uint64(1), m.queriesCacheHits)
	assert.Equal(t, uint64(0), m.queriesCacheMisses)

	// 缓存未命中
	m.RecordQuery(false, nil)
	assert.Equal(t, uint64(2), m.queriesTotal)
	assert.Equal(t, uint64(1), m.queriesCacheMisses)

	// 失败查询
	m.RecordQuery(false, assert.AnError)
	assert.Equal(t, uint64(3), m.queriesTotal)
	assert.Equal(t, uint64(1), m.queriesErrors)
}

func TestRecordRetrieval(t *testing.T) {
	m := newTestMetrics()

	m.RecordRetrieval(100*time.Millisecond, 5, nil)
	assert.Equal(t, uint64(1), m.retrievalTotal)
	assert.Equal(t, uint64(5), m.retrievalChunks)
	assert.InDelta(t, 0.1, m.retrievalDuration, 0.01)

	// 失败检索只记录错误
	m.RecordRetrieval(50*time.Millisecond, 0, assert.AnError)
	assert.Equal(t, uint64(2), m.retrievalTotal)
	assert.Equal(t, uint64(1), m.retrievalErrors)
	assert.InDelta(t, 0.1, m.retrievalDuration, 0.01)
}

func TestRecordLLMCall(t *testing.T) {
	m := newTestMetrics()

	m.RecordLLMCall(500*time.Millisecond, 100, 50, nil)
	assert.Equal(t, uint64(1), m.llmCallsTotal)
	assert.InDelta(t, 0.5, m.llmCallsDuration, 0.01)
	assert.Equal(t, uint64(100), m.llmTokensPrompt)
	assert.Equal(t, uint64(50), m.llmTokensCompletion)

	m.RecordLLMCall(time.Second, 10, 10, assert.AnError)
	assert.Equal(t, uint64(2), m.llmCallsTotal)
	assert.Equal(t, uint64(1), m.llmCallsErrors)
	// 失败调用不计入 token
	assert.Equal(t, uint64(100), m.llmTokensPrompt)
}

func TestRecordIndexing(t *testing.T) {
	m := newTestMetrics()

	m.RecordIndexing(2, 30, nil)
	assert.Equal(t, uint64(2), m.documentsIndexed)
	assert.Equal(t, uint64(30), m.chunksIndexed)

	m.RecordIndexing(1, 5, assert.AnError)
	assert.Equal(t, uint64(2), m.documentsIndexed)
	assert.Equal(t, uint64(1), m.indexErrors)

	m.RecordOCRPage()
	m.RecordOCRPage()
	assert.Equal(t, uint64(2), m.ocrPages)

	m.RecordTableExtracted(3)
	assert.Equal(t, uint64(3), m.tablesExtracted)
}

func TestRecordFAQ(t *testing.T) {
	m := newTestMetrics()

	m.RecordFAQSubmitted()
	m.RecordFAQSubmitted()
	m.RecordFAQAnswered()

	assert.Equal(t, uint64(2), m.faqQuestionsSubmitted)
	assert.Equal(t, uint64(1), m.faqQuestionsAnswered)
}

func TestExport(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(true, nil)
	m.RecordQuery(false, nil)
	m.RecordIndexing(1, 10, nil)

	out := m.Export("camos", "assist")

	assert.Contains(t, out, "# HELP camos_assist_queries_total")
	assert.Contains(t, out, "# TYPE camos_assist_queries_total counter")
	assert.Contains(t, out, "camos_assist_queries_total 2")
	assert.Contains(t, out, "camos_assist_cache_hit_rate 0.5000")
	assert.Contains(t, out, "camos_assist_chunks_indexed_total 10")
	assert.Contains(t, out, "camos_assist_uptime_seconds")
}

func TestExportWithoutSubsystem(t *testing.T) {
	m := newTestMetrics()

	out := m.Export("camos", "")
	assert.Contains(t, out, "camos_queries_total 0")
	assert.False(t, strings.Contains(out, "camos__"))
}

func TestStats(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(true, nil)
	m.RecordRetrieval(200*time.Millisecond, 4, nil)
	m.RecordLLMCall(time.Second, 100, 20, nil)

	stats := m.Stats()

	queries, ok := stats["queries"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, uint64(1), queries["total"])
	assert.Equal(t, 1.0, queries["cache_hit_rate"])

	retrieval, ok := stats["retrieval"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, uint64(4), retrieval["chunks"])
	assert.InDelta(t, 0.2, retrieval["avg_duration_secs"].(float64), 0.01)

	llmStats, ok := stats["llm"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, uint64(100), llmStats["tokens_prompt"])
}

func TestReset(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(true, nil)
	m.RecordIndexing(1, 5, nil)
	m.Reset()

	assert.Equal(t, uint64(0), m.queriesTotal)
	assert.Equal(t, uint64(0), m.chunksIndexed)
}

func TestConcurrentRecording(t *testing.T) {
	m := newTestMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordQuery(j%2 == 0, nil)
				m.RecordRetrieval(time.Millisecond, 1, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1000), m.queriesTotal)
	assert.Equal(t, uint64(1000), m.retrievalTotal)
	assert.Equal(t, uint64(1000), m.retrievalChunks)
}
