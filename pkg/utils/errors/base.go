package errors

import "net/http"

// ============================================================================
// Success
// ============================================================================

// OK represents a successful operation.
var OK = Register(&Errno{
	Code:      0,
	HTTP:      http.StatusOK,
	MessageEN: "Success",
	MessageZH: "成功",
})

// ============================================================================
// Request Errors (Category: 01)
// ============================================================================

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Bad request",
		MessageZH: "请求错误",
	})

	// ErrInvalidParam indicates an invalid parameter.
	ErrInvalidParam = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Invalid parameter",
		MessageZH: "参数无效",
	})

	// ErrMissingParam indicates a missing required parameter.
	ErrMissingParam = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 2),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Missing required parameter",
		MessageZH: "缺少必需参数",
	})

	// ErrValidationFailed indicates validation failure.
	ErrValidationFailed = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 3),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Validation failed",
		MessageZH: "验证失败",
	})

	// ErrRequestTooLarge indicates the request body is too large.
	ErrRequestTooLarge = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 4),
		HTTP:      http.StatusRequestEntityTooLarge,
		MessageEN: "Request entity too large",
		MessageZH: "请求体过大",
	})
)

// ============================================================================
// Authentication Errors (Category: 02)
// ============================================================================

var (
	// ErrUnauthorized indicates the request is not authenticated.
	ErrUnauthorized = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 0),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Unauthorized",
		MessageZH: "未认证",
	})

	// ErrInvalidToken indicates the token is invalid.
	ErrInvalidToken = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 1),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Invalid token",
		MessageZH: "令牌无效",
	})

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 2),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Token expired",
		MessageZH: "令牌已过期",
	})

	// ErrInvalidCredentials indicates wrong username or password.
	ErrInvalidCredentials = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 3),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Invalid credentials",
		MessageZH: "凭证无效",
	})

	// ErrTokenRevoked indicates the token has been revoked.
	ErrTokenRevoked = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 4),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Token revoked",
		MessageZH: "令牌已吊销",
	})

	// ErrSessionExpired indicates the session is beyond its refresh window.
	ErrSessionExpired = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuth, 5),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Session expired, please login again",
		MessageZH: "会话已过期，请重新登录",
	})
)

// ============================================================================
// Authorization Errors (Category: 03)
// ============================================================================

var (
	// ErrForbidden indicates access to the resource is forbidden.
	ErrForbidden = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryPermission, 0),
		HTTP:      http.StatusForbidden,
		MessageEN: "Forbidden",
		MessageZH: "禁止访问",
	})

	// ErrNoPermission indicates the user lacks the required permission.
	ErrNoPermission = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryPermission, 1),
		HTTP:      http.StatusForbidden,
		MessageEN: "No permission",
		MessageZH: "无权限",
	})
)

// ============================================================================
// Resource Errors (Category: 04)
// ============================================================================

var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryResource, 0),
		HTTP:      http.StatusNotFound,
		MessageEN: "Resource not found",
		MessageZH: "资源不存在",
	})

	// ErrRouteNotFound indicates the requested route does not exist.
	ErrRouteNotFound = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryResource, 1),
		HTTP:      http.StatusNotFound,
		MessageEN: "Route not found",
		MessageZH: "路由不存在",
	})

	// ErrRecordNotFound indicates the database record was not found.
	ErrRecordNotFound = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryResource, 2),
		HTTP:      http.StatusNotFound,
		MessageEN: "Record not found",
		MessageZH: "记录不存在",
	})
)

// ============================================================================
// Conflict Errors (Category: 05)
// ============================================================================

var (
	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP:      http.StatusConflict,
		MessageEN: "Resource already exists",
		MessageZH: "资源已存在",
	})
)

// ============================================================================
// Rate Limiting Errors (Category: 06)
// ============================================================================

var (
	// ErrTooManyRequests indicates too many requests.
	ErrTooManyRequests = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRateLimit, 0),
		HTTP:      http.StatusTooManyRequests,
		MessageEN: "Too many requests",
		MessageZH: "请求过于频繁",
	})
)

// ============================================================================
// Internal Errors (Category: 07)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Internal server error",
		MessageZH: "服务器内部错误",
	})

	// ErrUnknown indicates an unknown error.
	ErrUnknown = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 1),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Unknown error",
		MessageZH: "未知错误",
	})

	// ErrPanic indicates a recovered panic.
	ErrPanic = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 2),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Internal server error (panic)",
		MessageZH: "服务器内部错误（异常）",
	})

	// ErrNotImplemented indicates the operation is not implemented.
	ErrNotImplemented = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 3),
		HTTP:      http.StatusNotImplemented,
		MessageEN: "Not implemented",
		MessageZH: "未实现",
	})
)

// ============================================================================
// Infrastructure Errors (Category: 08-11)
// ============================================================================

var (
	// ErrDatabase indicates a database error.
	ErrDatabase = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryDatabase, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Database error",
		MessageZH: "数据库错误",
	})

	// ErrCache indicates a cache error.
	ErrCache = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryCache, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Cache error",
		MessageZH: "缓存错误",
	})

	// ErrServiceUnavailable indicates an upstream service is unavailable.
	ErrServiceUnavailable = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryNetwork, 0),
		HTTP:      http.StatusServiceUnavailable,
		MessageEN: "Service unavailable",
		MessageZH: "服务不可用",
	})

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryTimeout, 0),
		HTTP:      http.StatusGatewayTimeout,
		MessageEN: "Operation timeout",
		MessageZH: "操作超时",
	})
)
