// Package handler 提供问答服务的 HTTP 处理器。
package handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camos-io/camos-assist/internal/assist/biz"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/response"
	"github.com/camos-io/camos-assist/pkg/utils/validator"
)

// queryTimeout 单次问答的最长处理时间。
const queryTimeout = 60 * time.Second

// maxUploadBytes 上传文档大小上限。
const maxUploadBytes = 32 << 20

// AssistHandler 处理知识库问答与索引请求。
type AssistHandler struct {
	service biz.Service
}

// NewAssistHandler 创建问答处理器。
func NewAssistHandler(service biz.Service) *AssistHandler {
	return &AssistHandler{service: service}
}

// lang 从 Accept-Language 头解析错误消息语言。
func lang(c *gin.Context) string {
	if strings.HasPrefix(c.GetHeader("Accept-Language"), "zh") {
		return validator.LangZH
	}
	return validator.LangEN
}

// bindAndValidate 绑定 JSON 请求体并执行结构校验。
// 失败时已写出响应，调用方直接 return。
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.FailWithBindOrValidation(c, err)
		return false
	}
	if verr := validator.StructWithLang(req, lang(c)); verr != nil {
		response.FailWithValidation(c, verr)
		return false
	}
	return true
}

// QueryRequest 问答请求。
type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

// Query 执行知识库问答。
func (h *AssistHandler) Query(c *gin.Context) {
	var req QueryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// 60 秒超时控制
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	result, err := h.service.Query(ctx, req.Question, req.TopK)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.Fail(c, utilerrors.ErrAssistQueryTimeout.WithMessage(
				"Query timeout: the request took too long to process. Please try again or simplify your question."))
			return
		}
		response.FailWithError(c, err)
		return
	}

	response.OK(c, result)
}

// DebugRequest 代码调试请求。
type DebugRequest struct {
	Code         string `json:"code" validate:"required"`
	ErrorMessage string `json:"error_message"`
}

// Debug 执行代码调试问答，不走知识库检索。
func (h *AssistHandler) Debug(c *gin.Context) {
	var req DebugRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	result, err := h.service.DebugCode(ctx, req.Code, req.ErrorMessage)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.Fail(c, utilerrors.ErrAssistQueryTimeout)
			return
		}
		response.FailWithError(c, err)
		return
	}

	response.OK(c, result)
}

// IndexDirectoryRequest 目录索引请求。
type IndexDirectoryRequest struct {
	Directory string `json:"directory" validate:"required"`
}

// IndexDirectory 索引服务器本地目录中的文档。
func (h *AssistHandler) IndexDirectory(c *gin.Context) {
	var req IndexDirectoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.IndexDirectory(c.Request.Context(), req.Directory)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, result)
}

// IndexUpload 接收 multipart 上传的文档并索引。
func (h *AssistHandler) IndexUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, utilerrors.ErrAssistInvalidFile.WithMessage("missing multipart field \"file\""))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Fail(c, utilerrors.ErrAssistInvalidFile.WithMessagef(
			"file too large: %d bytes (limit %d)", fileHeader.Size, maxUploadBytes))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, utilerrors.ErrAssistInvalidFile.WithCause(err))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		response.Fail(c, utilerrors.ErrAssistInvalidFile.WithCause(err))
		return
	}
	if len(data) > maxUploadBytes {
		response.Fail(c, utilerrors.ErrAssistInvalidFile.WithMessage("file too large"))
		return
	}

	chunks, err := h.service.IndexUpload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, gin.H{
		"document": fileHeader.Filename,
		"chunks":   chunks,
	})
}

// RemoveDocument 删除指定文档的全部索引块。
func (h *AssistHandler) RemoveDocument(c *gin.Context) {
	documentID := c.Param("id")

	if err := h.service.RemoveDocument(c.Request.Context(), documentID); err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, gin.H{"document_id": documentID})
}

// Stats 返回知识库统计信息。
func (h *AssistHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, stats)
}
