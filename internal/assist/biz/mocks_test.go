package biz

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/camos-io/camos-assist/pkg/llm"
)

// fakeEmbedder 根据文本内容生成确定性向量，保证相同文本得到相同嵌入。
type fakeEmbedder struct {
	dim   int
	err   error
	calls atomic.Int64
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{dim: dim}
}

func (f *fakeEmbedder) embed(text string) []float32 {
	v := make([]float32, f.dim)
	for i, r := range text {
		v[i%f.dim] += float32(r % 31)
	}
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.embed(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.embed(text), nil
}

func (f *fakeEmbedder) Name() string { return "fake-embed" }

// fakeChat 返回固定回答并统计调用次数。
type fakeChat struct {
	response string
	usage    *llm.TokenUsage
	err      error
	calls    atomic.Int64
}

func (f *fakeChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) Generate(_ context.Context, _, _ string) (*llm.GenerateResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.response, TokenUsage: f.usage}, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

var errFake = fmt.Errorf("fake provider failure")
