package biz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/internal/pkg/assist/enhancer"
	"github.com/camos-io/camos-assist/pkg/llm"
)

func newTestService(t *testing.T, embed *fakeEmbedder, chat *fakeChat, allowDegraded bool) (*AssistService, *store.MemoryStore) {
	t.Helper()

	ms := store.NewMemoryStore()
	indexer := NewIndexer(ms, embed, nil, nil, nil, &IndexerConfig{
		ChunkSize:    120,
		ChunkOverlap: 20,
		Collection:   "docs",
		EmbeddingDim: 8,
		DataDir:      t.TempDir(),
		OCRMinChars:  40,
	})

	// 增强全部关闭，测试中 LLM 调用只来自答案生成
	retriever := NewRetriever(ms, embed, chat, nil, &RetrieverConfig{
		TopK:       5,
		Collection: "docs",
		Enhancer:   enhancer.Config{},
	})
	generator := NewGenerator(chat, nil)
	debugger := NewDebugger(chat, nil)

	svc := NewAssistService(indexer, retriever, generator, debugger, nil, ms, embed, chat, &ServiceConfig{
		Collection:    "docs",
		AllowDegraded: allowDegraded,
	})
	return svc, ms
}

func TestQueryAnswersFromKnowledgeBase(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{
		response: "Calibration needs a checkerboard target.",
		usage:    &llm.TokenUsage{PromptTokens: 120, CompletionTokens: 18, TotalTokens: 138},
	}
	svc, _ := newTestService(t, embed, chat, false)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(mdContent), 0o644))
	_, err := svc.IndexDirectory(ctx, dir)
	require.NoError(t, err)

	result, err := svc.Query(ctx, "How do I calibrate the camera?", 0)
	require.NoError(t, err)

	assert.Equal(t, "Calibration needs a checkerboard target.", result.Answer)
	assert.NotEmpty(t, result.Sources)
	assert.False(t, result.Cached)
	require.NotNil(t, result.TokenUsage)
	assert.Equal(t, 138, result.TokenUsage.TotalTokens)
	assert.GreaterOrEqual(t, result.ElapsedMs, int64(0))

	for _, src := range result.Sources {
		assert.Equal(t, "guide.md", src.DocumentName)
		assert.NotEmpty(t, src.Content)
	}
}

func TestQueryEmptyKnowledgeBaseSkipsLLM(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{response: "should not be used"}
	svc, ms := newTestService(t, embed, chat, false)
	ctx := context.Background()

	require.NoError(t, ms.CreateCollection(ctx, &store.CollectionConfig{Name: "docs", Dimension: 8}))

	result, err := svc.Query(ctx, "anything", 0)
	require.NoError(t, err)

	assert.Equal(t, noKnowledgeAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Nil(t, result.TokenUsage)
	// 空检索结果不触发 LLM 调用
	assert.Zero(t, chat.calls.Load())
}

func TestQueryRetrievalErrorSurfaces(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{response: "x"}
	svc, _ := newTestService(t, embed, chat, false)

	// 集合不存在导致检索失败
	_, err := svc.Query(context.Background(), "question", 0)
	assert.Error(t, err)
}

func TestQueryRetrievalErrorDegrades(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{response: "degraded answer"}
	svc, _ := newTestService(t, embed, chat, true)

	result, err := svc.Query(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Equal(t, "degraded answer", result.Answer)
	assert.Empty(t, result.Sources)
}

func TestQueryContextCancelledBeforeGeneration(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{response: "unused"}
	svc, _ := newTestService(t, embed, chat, false)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(mdContent), 0o644))
	_, err := svc.IndexDirectory(ctx, dir)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = svc.Query(cancelled, "How do I calibrate?", 0)
	assert.Error(t, err)
}

func TestDebugCode(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{
		response: "The slice index is out of range; check the loop bound.",
		usage:    &llm.TokenUsage{PromptTokens: 60, CompletionTokens: 15, TotalTokens: 75},
	}
	svc, _ := newTestService(t, embed, chat, false)

	result, err := svc.DebugCode(context.Background(), "for i := 0; i <= len(s); i++ {}", "index out of range")
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "out of range")
	require.NotNil(t, result.TokenUsage)
	assert.Equal(t, 75, result.TokenUsage.TotalTokens)
	// 调试不走检索，仅一次 LLM 调用
	assert.Equal(t, int64(1), chat.calls.Load())
}

func TestGetStats(t *testing.T) {
	embed := newFakeEmbedder(8)
	chat := &fakeChat{response: "x"}
	svc, _ := newTestService(t, embed, chat, false)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(mdContent), 0o644))
	_, err := svc.IndexDirectory(ctx, dir)
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "docs", stats["collection"])
	assert.Equal(t, int64(2), stats["chunk_count"])
	assert.Equal(t, "fake-embed", stats["embed_provider"])
	assert.Equal(t, "fake-chat", stats["chat_provider"])
	assert.Contains(t, stats, "metrics")
}
