package enhancer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camos-io/camos-assist/pkg/llm"
)

type mockChatProvider struct {
	response string
	err      error
	prompts  []string
}

func (m *mockChatProvider) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return m.response, m.err
}

func (m *mockChatProvider) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Content: m.response}, nil
}

func (m *mockChatProvider) Name() string { return "mock-chat" }

type mockEmbeddingProvider struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbeddingProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbeddingProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

func (m *mockEmbeddingProvider) Name() string { return "mock-embed" }

func TestEnhanceQueryRewrite(t *testing.T) {
	chat := &mockChatProvider{response: "重写后的查询"}
	embed := &mockEmbeddingProvider{embedding: []float32{0.1, 0.2}}

	e := New(chat, embed, nil, Config{EnableQueryRewrite: true})

	enhanced, embeddings, err := e.EnhanceQuery(context.Background(), "原始查询")
	require.NoError(t, err)
	assert.Equal(t, "重写后的查询", enhanced)
	assert.Len(t, embeddings, 1)
	// 重写提示词中应包含原始问题
	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "原始查询")
}

func TestEnhanceQueryRewriteFailureFallsBack(t *testing.T) {
	chat := &mockChatProvider{err: fmt.Errorf("llm unavailable")}
	embed := &mockEmbeddingProvider{embedding: []float32{0.1}}

	e := New(chat, embed, nil, Config{EnableQueryRewrite: true})

	enhanced, embeddings, err := e.EnhanceQuery(context.Background(), "原始查询")
	require.NoError(t, err)
	assert.Equal(t, "原始查询", enhanced)
	assert.Len(t, embeddings, 1)
}

func TestEnhanceQueryHyDE(t *testing.T) {
	chat := &mockChatProvider{response: "hypothetical document"}
	embed := &mockEmbeddingProvider{embedding: []float32{0.5}}

	e := New(chat, embed, nil, Config{EnableHyDE: true})

	_, embeddings, err := e.EnhanceQuery(context.Background(), "question")
	require.NoError(t, err)
	// 查询嵌入 + HyDE 嵌入
	assert.Len(t, embeddings, 2)
	assert.Equal(t, 2, embed.calls)
}

func TestEnhanceQueryEmbedError(t *testing.T) {
	chat := &mockChatProvider{response: "x"}
	embed := &mockEmbeddingProvider{err: fmt.Errorf("embed failed")}

	e := New(chat, embed, nil, Config{})

	_, _, err := e.EnhanceQuery(context.Background(), "question")
	assert.Error(t, err)
}

func TestRerankResults(t *testing.T) {
	chat := &mockChatProvider{response: "0.9"}
	embed := &mockEmbeddingProvider{embedding: []float32{0.1}}

	e := New(chat, embed, nil, Config{EnableRerank: true, RerankTopK: 2})

	results := []SearchResult{
		{ID: "a", Content: "doc a", Score: 0.2},
		{ID: "b", Content: "doc b", Score: 0.8},
		{ID: "c", Content: "doc c", Score: 0.5},
	}

	reranked, err := e.RerankResults(context.Background(), "query", results)
	require.NoError(t, err)
	assert.Len(t, reranked, 2)
	// 0.3*0.8 + 0.7*0.9 = 0.87 为最高分
	assert.Equal(t, "b", reranked[0].ID)
	assert.InDelta(t, 0.87, float64(reranked[0].Score), 0.0001)
	// 原始切片不被修改
	assert.InDelta(t, 0.2, float64(results[0].Score), 0.0001)
}

func TestRerankDisabled(t *testing.T) {
	e := New(&mockChatProvider{}, &mockEmbeddingProvider{}, nil, Config{EnableRerank: false})

	results := []SearchResult{{ID: "a", Score: 0.1}}
	reranked, err := e.RerankResults(context.Background(), "q", results)
	require.NoError(t, err)
	assert.Equal(t, results, reranked)
}

func TestRerankScoreError(t *testing.T) {
	chat := &mockChatProvider{err: fmt.Errorf("llm down")}
	e := New(chat, &mockEmbeddingProvider{}, nil, Config{EnableRerank: true, RerankTopK: 5})

	results := []SearchResult{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.3},
	}

	// 评分失败时保留原始分数
	reranked, err := e.RerankResults(context.Background(), "q", results)
	require.NoError(t, err)
	assert.Equal(t, "a", reranked[0].ID)
	assert.InDelta(t, 0.9, float64(reranked[0].Score), 0.0001)
}

func TestRepackDocuments(t *testing.T) {
	e := New(nil, nil, nil, Config{EnableRepacking: true})

	results := []SearchResult{
		{ID: "1", Score: 0.9},
		{ID: "2", Score: 0.7},
		{ID: "3", Score: 0.5},
		{ID: "4", Score: 0.3},
	}

	repacked := e.RepackDocuments(results)
	require.Len(t, repacked, 4)
	// 高分在首尾
	assert.Equal(t, "1", repacked[0].ID)
	assert.Equal(t, "2", repacked[3].ID)
	// 低分在中间
	assert.Equal(t, "3", repacked[1].ID)
	assert.Equal(t, "4", repacked[2].ID)
}

func TestRepackDocumentsSmallInput(t *testing.T) {
	e := New(nil, nil, nil, Config{EnableRepacking: true})

	results := []SearchResult{{ID: "1"}, {ID: "2"}}
	assert.Equal(t, results, e.RepackDocuments(results))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected float64
	}{
		{"纯数字", "0.8", 0.8},
		{"带空白", "  0.35\n", 0.35},
		{"句子中的数字", "relevance score: 0.7", 0.7},
		{"超出范围", "5.0", 0.5},
		{"无法解析", "not a number", 0.5},
		{"空响应", "", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, parseScore(tt.response), 0.0001)
		})
	}
}

func TestMergeEmbeddingResults(t *testing.T) {
	set1 := []SearchResult{
		{ID: "a", Content: "doc a", Score: 0.9},
		{ID: "b", Content: "doc b", Score: 0.8},
	}
	set2 := []SearchResult{
		{ID: "b", Content: "doc b", Score: 0.95},
		{ID: "c", Content: "doc c", Score: 0.6},
	}

	merged := MergeEmbeddingResults([][]SearchResult{set1, set2})
	require.Len(t, merged, 3)
	// b 在两个结果集中均出现，RRF 分数最高
	assert.Equal(t, "b", merged[0].ID)
}

func TestMergeEmbeddingResultsSingleSet(t *testing.T) {
	set := []SearchResult{{ID: "a", Score: 0.9}}
	merged := MergeEmbeddingResults([][]SearchResult{set})
	assert.Equal(t, set, merged)
}

func TestMergeEmbeddingResultsEmpty(t *testing.T) {
	assert.Nil(t, MergeEmbeddingResults(nil))
}
