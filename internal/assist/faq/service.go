package faq

import (
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/metrics"
	"github.com/camos-io/camos-assist/internal/model"
	"github.com/camos-io/camos-assist/pkg/id"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/validator"
)

// timestampLayout FAQ 时间戳格式。
const timestampLayout = "2006-01-02 15:04:05"

// Service 提供 FAQ 业务操作。
type Service struct {
	store   *Store
	metrics *metrics.AssistMetrics

	// now 可注入，测试用
	now func() time.Time
}

// NewService 创建 FAQ 服务实例。
func NewService(store *Store) *Service {
	return &Service{
		store:   store,
		metrics: metrics.Get(),
		now:     time.Now,
	}
}

// SubmitQuestion 提交待解答问题，新问题排在列表头部。
func (s *Service) SubmitQuestion(question, askedBy string) (*model.PendingQuestion, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, utilerrors.ErrAssistEmptyQuestion
	}

	q := model.PendingQuestion{
		ID:        id.New(),
		Question:  question,
		Timestamp: s.now().Format(timestampLayout),
		AskedBy:   askedBy,
	}

	if err := s.store.PrependPending(q); err != nil {
		logger.Errorw("保存待解答问题失败", "error", err.Error())
		return nil, utilerrors.ErrFAQSaveFailed.WithCause(err)
	}

	s.metrics.RecordFAQSubmitted()
	logger.Infow("新问题已提交", "id", q.ID, "asked_by", askedBy)
	return &q, nil
}

// ListPending 返回全部待解答问题（最新在前）。
func (s *Service) ListPending() ([]model.PendingQuestion, error) {
	questions, err := s.store.LoadPending()
	if err != nil {
		return nil, utilerrors.ErrFAQLoadFailed.WithCause(err)
	}
	return questions, nil
}

// ListFAQ 返回全部已解答条目（最新在前）。
func (s *Service) ListFAQ() ([]model.FAQEntry, error) {
	entries, err := s.store.LoadFAQ()
	if err != nil {
		return nil, utilerrors.ErrFAQLoadFailed.WithCause(err)
	}
	return entries, nil
}

// AnswerQuestion 解答待回答问题并移入 FAQ，原问题 ID 保留。
// 回答权限要求 3 年以上工作经验，经验档位取自认证令牌，
// 由服务端强制校验。
func (s *Service) AnswerQuestion(pendingID, answer, answeredBy, experience string) (*model.FAQEntry, error) {
	if !validator.IsExperienced(experience) {
		return nil, utilerrors.ErrExperienceRequired
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, utilerrors.ErrAssistInvalidRequest.WithMessage("answer cannot be empty")
	}

	entry, err := s.store.MovePendingToFAQ(pendingID, answer, s.now().Format(timestampLayout), answeredBy)
	if err != nil {
		logger.Errorw("保存 FAQ 条目失败", "error", err.Error(), "id", pendingID)
		return nil, utilerrors.ErrFAQSaveFailed.WithCause(err)
	}
	if entry == nil {
		return nil, utilerrors.ErrPendingNotFound
	}

	s.metrics.RecordFAQAnswered()
	logger.Infow("问题已解答并入库", "id", entry.ID, "created_by", answeredBy)
	return entry, nil
}

// SearchFAQ 在问题和答案中做大小写不敏感的子串匹配。
func (s *Service) SearchFAQ(query string) ([]model.FAQEntry, error) {
	entries, err := s.store.LoadFAQ()
	if err != nil {
		return nil, utilerrors.ErrFAQLoadFailed.WithCause(err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries, nil
	}

	matched := make([]model.FAQEntry, 0)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Question), query) ||
			strings.Contains(strings.ToLower(e.Answer), query) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}
