package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/pkg/llm"
	"github.com/camos-io/camos-assist/pkg/llm/prompt"
)

// noKnowledgeAnswer 知识库无相关内容时的固定回答，不消耗 LLM 调用。
const noKnowledgeAnswer = "I couldn't find any relevant information in the knowledge base."

// AnswerTemplateSource 提供回答生成所需的提示词模板。
// *prompt.Manager 满足该接口。
type AnswerTemplateSource interface {
	Answer() string
}

// Generator 负责答案生成。
type Generator struct {
	chatProvider llm.ChatProvider
	templates    AnswerTemplateSource
}

// NewGenerator 创建生成器实例。templates 为 nil 时使用内置模板。
func NewGenerator(chatProvider llm.ChatProvider, templates AnswerTemplateSource) *Generator {
	if templates == nil {
		templates = defaultAnswerTemplate{}
	}
	return &Generator{
		chatProvider: chatProvider,
		templates:    templates,
	}
}

type defaultAnswerTemplate struct{}

func (defaultAnswerTemplate) Answer() string { return prompt.DefaultTemplates().Answer }

// GenerateAnswer 根据检索结果生成答案。
// 检索结果为空时直接返回固定回答，不调用 LLM。
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []*store.SearchResult) (*llm.GenerateResponse, error) {
	if len(results) == 0 {
		return &llm.GenerateResponse{
			Content:    noKnowledgeAnswer,
			TokenUsage: nil,
		}, nil
	}

	// 检查 context 是否已取消
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	// 构建带编号的上下文
	var contextBuilder strings.Builder
	for i, result := range results {
		contextBuilder.WriteString(fmt.Sprintf("[%d] From %s - %s:\n%s\n\n",
			i+1, result.DocumentName, result.Section, result.Content))
	}

	p := prompt.Render(g.templates.Answer(), map[string]string{
		"context":  contextBuilder.String(),
		"question": question,
	})

	logger.Info("Calling LLM to generate answer...")
	resp, err := g.chatProvider.Generate(ctx, p, "")
	if err != nil {
		logger.Errorf("LLM generation failed: %v", err)
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	if resp.TokenUsage != nil {
		logger.Infof("LLM answer generated (length: %d, tokens: %d)",
			len(resp.Content), resp.TokenUsage.TotalTokens)
	} else {
		logger.Infof("LLM answer generated (length: %d)", len(resp.Content))
	}

	return resp, nil
}

// GenerateDirect 不带检索上下文直接生成答案，用于检索降级场景。
func (g *Generator) GenerateDirect(ctx context.Context, question string) (*llm.GenerateResponse, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	resp, err := g.chatProvider.Generate(ctx, question, "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return resp, nil
}
