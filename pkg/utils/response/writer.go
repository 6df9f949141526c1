package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/validator"
)

// prepare stamps the response with timestamp and request ID from the gin context.
func prepare(c *gin.Context, r *Response) *Response {
	r.Timestamp = time.Now().UnixMilli()
	if id := c.GetString("request_id"); id != "" {
		r.RequestID = id
	}
	return r
}

// OK sends a successful response with data.
func OK(c *gin.Context, data interface{}) {
	resp := prepare(c, Success(data))
	c.JSON(http.StatusOK, resp)
}

// OKWithMessage sends a successful response with custom message.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	resp := prepare(c, SuccessWithMessage(message, data))
	c.JSON(http.StatusOK, resp)
}

// Fail sends an error response using Errno.
func Fail(c *gin.Context, e *errors.Errno) {
	resp := prepare(c, Err(e))
	c.JSON(e.HTTPStatus(), resp)
}

// FailWithError converts a standard error and sends it.
// If the error is an Errno, it uses it directly.
// Otherwise, it wraps it as ErrInternal.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}

// FailWithCode sends an error response with code and message.
func FailWithCode(c *gin.Context, code int, message string) {
	resp := prepare(c, ErrorWithCode(code, message))
	c.JSON(resp.HTTPStatus(), resp)
}

// FailWithValidation sends a validation error response.
// It includes detailed validation error information in the response data.
func FailWithValidation(c *gin.Context, verr *validator.ValidationErrors) {
	resp := prepare(c, &Response{
		Code:    errors.ErrValidationFailed.Code,
		Message: verr.First(),
		Data:    verr.ToMap(),
	})
	c.JSON(http.StatusBadRequest, resp)
}

// FailWithBindOrValidation handles binding or validation errors appropriately.
// If err is a ValidationErrors, sends detailed validation error response.
// Otherwise, sends a generic invalid parameter error.
func FailWithBindOrValidation(c *gin.Context, err error) {
	if verr, ok := err.(*validator.ValidationErrors); ok {
		FailWithValidation(c, verr)
		return
	}
	Fail(c, errors.ErrInvalidParam.WithMessage("invalid request body: "+err.Error()))
}

// PageOK sends a paginated response.
func PageOK(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	resp := prepare(c, Page(list, total, page, pageSize))
	c.JSON(http.StatusOK, resp)
}
