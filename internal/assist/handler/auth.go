package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/camos-io/camos-assist/internal/assist/user"
	"github.com/camos-io/camos-assist/pkg/utils/response"
)

// AuthHandler 处理登录请求。
type AuthHandler struct {
	users *user.Service
}

// NewAuthHandler 创建认证处理器。
func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// LoginRequest 免密登录请求。登录即注册，经验档位随登录更新。
type LoginRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=64"`
	Email      string `json:"email" validate:"omitempty,email"`
	Experience string `json:"experience" validate:"required,experience"`
	AccessCode string `json:"access_code"`
}

// LoginResponse 登录响应。
type LoginResponse struct {
	Name        string `json:"name"`
	Experience  string `json:"experience"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Login 登录或注册用户并签发令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	u, token, err := h.users.Login(c.Request.Context(), req.Name, req.Email, req.Experience, req.AccessCode)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, LoginResponse{
		Name:        u.Name,
		Experience:  u.Experience,
		AccessToken: token.GetAccessToken(),
		TokenType:   token.GetTokenType(),
		ExpiresAt:   token.GetExpiresAt(),
	})
}

// Logout 吊销当前访问令牌。
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

	if err := h.users.Logout(c.Request.Context(), raw); err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, nil)
}
