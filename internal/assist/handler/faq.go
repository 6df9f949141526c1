package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/camos-io/camos-assist/internal/assist/faq"
	"github.com/camos-io/camos-assist/pkg/security/auth"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/response"
)

// FAQHandler 处理 FAQ 与待解答问题请求。
type FAQHandler struct {
	service *faq.Service
}

// NewFAQHandler 创建 FAQ 处理器。
func NewFAQHandler(service *faq.Service) *FAQHandler {
	return &FAQHandler{service: service}
}

// callerIdentity 从认证上下文取调用者用户名与经验档位。
// 认证中间件保证进入处理器时 claims 已注入。
func callerIdentity(c *gin.Context) (name, experience string, ok bool) {
	claims := auth.ClaimsFromContext(c.Request.Context())
	if claims == nil {
		return "", "", false
	}
	name = claims.Username()
	if name == "" {
		name = claims.Subject
	}
	return name, claims.Experience(), true
}

// List 返回全部已解答 FAQ 条目。
func (h *FAQHandler) List(c *gin.Context) {
	entries, err := h.service.ListFAQ()
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, entries)
}

// Search 在 FAQ 的问题和答案中做子串匹配。
func (h *FAQHandler) Search(c *gin.Context) {
	entries, err := h.service.SearchFAQ(c.Query("q"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, entries)
}

// SubmitQuestionRequest 提交问题请求。
type SubmitQuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

// SubmitQuestion 提交待解答问题。
func (h *FAQHandler) SubmitQuestion(c *gin.Context) {
	var req SubmitQuestionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	name, _, ok := callerIdentity(c)
	if !ok {
		response.Fail(c, utilerrors.ErrUnauthorized)
		return
	}

	q, err := h.service.SubmitQuestion(req.Question, name)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, q)
}

// ListPending 返回全部待解答问题（最新在前）。
func (h *FAQHandler) ListPending(c *gin.Context) {
	questions, err := h.service.ListPending()
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, questions)
}

// AnswerQuestionRequest 解答问题请求。
type AnswerQuestionRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// AnswerQuestion 解答待回答问题并移入 FAQ。
// 经验档位取自令牌而非请求体，由服务层强制校验。
func (h *FAQHandler) AnswerQuestion(c *gin.Context) {
	var req AnswerQuestionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	name, experience, ok := callerIdentity(c)
	if !ok {
		response.Fail(c, utilerrors.ErrUnauthorized)
		return
	}

	entry, err := h.service.AnswerQuestion(c.Param("id"), req.Answer, name, experience)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, entry)
}
