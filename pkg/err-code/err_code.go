package err_code

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidAudioFormat 客户端上传或引用的音频格式不被接受
	ErrInvalidAudioFormat = NewError(10400, http.StatusBadRequest, "input file format error")
	// ErrAudioModel 模型推理失败，原始错误只记录日志不返回给客户端
	ErrAudioModel = NewError(10500, http.StatusInternalServerError, "audio model error")
)

// Error 带错误码和HTTP状态码的业务错误
type Error struct {
	code   int
	status int
	msg    string
	detail string
}

var codes = map[int]string{}

func NewError(code, status int, msg string) *Error {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already registered", code))
	}
	codes[code] = msg
	return &Error{code: code, status: status, msg: msg}
}

func (e *Error) Code() int {
	return e.code
}

func (e *Error) Status() int {
	return e.status
}

func (e *Error) Msg() string {
	return e.msg
}

func (e *Error) Detail() string {
	return e.detail
}

// WithDetail 返回携带detail的副本，注册的错误本身保持不变
func (e *Error) WithDetail(detail string) *Error {
	ne := *e
	ne.detail = detail
	return &ne
}

func (e *Error) Error() string {
	if e.detail == "" {
		return e.msg
	}
	return e.msg + ": " + e.detail
}

// Is 按错误码比较，使 errors.Is(ErrAudioModel.WithDetail("x"), ErrAudioModel) 成立
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// InvalidAudioFormat 音频格式错误，detail 为出错的扩展名或content-type
func InvalidAudioFormat(format string) *Error {
	return ErrInvalidAudioFormat.WithDetail(format)
}

// InternalInference 推理错误，detail 是固定文案
func InternalInference(detail string) *Error {
	return ErrAudioModel.WithDetail(detail)
}

// HTTPError 框架层错误，原样透传状态码
type HTTPError struct {
	Status  int
	Message string
}

func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}
