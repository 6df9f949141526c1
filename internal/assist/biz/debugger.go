package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/model"
	"github.com/camos-io/camos-assist/pkg/llm"
	"github.com/camos-io/camos-assist/pkg/llm/prompt"
)

// DebugTemplateSource 提供代码调试所需的提示词模板。
// *prompt.Manager 满足该接口。
type DebugTemplateSource interface {
	Debug() string
}

// Debugger 负责代码调试问答。
// 调试不走检索流程，代码片段和错误信息直接填入模板。
type Debugger struct {
	chatProvider llm.ChatProvider
	templates    DebugTemplateSource
}

// NewDebugger 创建调试器实例。templates 为 nil 时使用内置模板。
func NewDebugger(chatProvider llm.ChatProvider, templates DebugTemplateSource) *Debugger {
	if templates == nil {
		templates = defaultDebugTemplate{}
	}
	return &Debugger{
		chatProvider: chatProvider,
		templates:    templates,
	}
}

type defaultDebugTemplate struct{}

func (defaultDebugTemplate) Debug() string { return prompt.DefaultTemplates().Debug }

// DebugCode 分析代码片段和错误信息并给出修复建议。
func (d *Debugger) DebugCode(ctx context.Context, code, errMsg string) (*model.DebugResult, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	p := prompt.Render(d.templates.Debug(), map[string]string{
		"code_snippet":  code,
		"error_message": errMsg,
	})

	start := time.Now()
	resp, err := d.chatProvider.Generate(ctx, p, "")
	if err != nil {
		logger.Errorf("LLM debug generation failed: %v", err)
		return nil, fmt.Errorf("failed to generate debug answer: %w", err)
	}

	result := &model.DebugResult{
		Answer:    resp.Content,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if resp.TokenUsage != nil {
		result.TokenUsage = &model.TokenUsage{
			PromptTokens:     resp.TokenUsage.PromptTokens,
			CompletionTokens: resp.TokenUsage.CompletionTokens,
			TotalTokens:      resp.TokenUsage.TotalTokens,
		}
	}

	return result, nil
}
