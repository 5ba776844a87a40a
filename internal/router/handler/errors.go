package handler

import (
	"errors"
	"net/http"

	"audioai/internal/schema"
	errcode "audioai/pkg/err-code"
)

// ErrorBody 把错误转换成状态码和响应体，未知错误按 500 透传格式返回
func ErrorBody(err error) (int, any) {
	var ce *errcode.Error
	if errors.As(err, &ce) {
		return ce.Status(), schema.ErrorResponse{Message: ce.Msg(), Detail: ce.Detail()}
	}
	var he *errcode.HTTPError
	if errors.As(err, &he) {
		return he.Status, schema.HTTPErrorResponse{Error: true, Message: he.Message, Status: he.Status}
	}
	return http.StatusInternalServerError, schema.HTTPErrorResponse{
		Error:   true,
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}
