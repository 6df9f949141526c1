package user

import (
	"context"
	"errors"
	"strings"

	"github.com/kart-io/logger"
	"golang.org/x/crypto/bcrypt"

	"github.com/camos-io/camos-assist/internal/model"
	"github.com/camos-io/camos-assist/pkg/security/auth"
	utilerrors "github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/validator"
)

// TokenSigner 签发并吊销访问令牌。*jwt.JWT 满足该接口。
type TokenSigner interface {
	Sign(ctx context.Context, subject string, opts ...auth.SignOption) (auth.Token, error)
	Revoke(ctx context.Context, tokenString string) error
}

// Service 提供登录业务。登录免密：用户名加邮箱即可登录，
// 可选的共享访问码用 bcrypt 哈希校验。
type Service struct {
	store          *Store
	signer         TokenSigner
	accessCodeHash string
}

// NewService 创建用户服务实例。accessCodeHash 为空时不校验访问码。
func NewService(store *Store, signer TokenSigner, accessCodeHash string) *Service {
	return &Service{
		store:          store,
		signer:         signer,
		accessCodeHash: accessCodeHash,
	}
}

// Login 登录或注册用户并签发携带经验档位的令牌。
func (s *Service) Login(ctx context.Context, name, email, experience, accessCode string) (*model.User, auth.Token, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, utilerrors.ErrAssistInvalidRequest.WithMessage("name cannot be empty")
	}

	valid := false
	for _, level := range validator.ExperienceLevels() {
		if experience == level {
			valid = true
			break
		}
	}
	if !valid {
		return nil, nil, utilerrors.ErrAssistInvalidRequest.WithMessage("invalid experience level")
	}

	// 共享访问码校验（可选）
	if s.accessCodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.accessCodeHash), []byte(accessCode)); err != nil {
			logger.Warnw("访问码校验失败", "name", name)
			return nil, nil, utilerrors.ErrAccessCode
		}
	}

	u, err := s.store.Upsert(ctx, name, email, experience)
	if err != nil {
		logger.Errorw("保存用户失败", "name", name, "error", err.Error())
		return nil, nil, utilerrors.ErrRegisterFailed.WithCause(err)
	}

	token, err := s.signer.Sign(ctx, name, auth.WithExtra(map[string]interface{}{
		auth.ClaimUsername:   u.Name,
		auth.ClaimExperience: u.Experience,
	}))
	if err != nil {
		logger.Errorw("签发令牌失败", "name", name, "error", err.Error())
		return nil, nil, utilerrors.ErrLoginFailed.WithCause(err)
	}

	logger.Infow("用户登录成功", "name", name, "experience", u.Experience)
	return u, token, nil
}

// Logout 吊销访问令牌。未配置吊销存储时登出为无状态，直接成功。
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return utilerrors.ErrAssistInvalidRequest.WithMessage("missing token")
	}

	if err := s.signer.Revoke(ctx, tokenString); err != nil {
		if errors.Is(err, utilerrors.ErrNotImplemented) {
			return nil
		}
		logger.Errorw("吊销令牌失败", "error", err.Error())
		return err
	}

	logger.Infow("用户已登出")
	return nil
}
