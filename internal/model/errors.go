package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 区分业务错误类别，由 API 层映射为 HTTP 状态码。
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

// HTTPStatus 返回类别对应的 HTTP 状态码。
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// 各类别的哨兵错误，用于 errors.Is 判断。
var (
	ErrInvalid      = &Error{Kind: KindInvalid, Msg: "invalid request", class: true}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Msg: "unauthorized", class: true}
	ErrForbidden    = &Error{Kind: KindForbidden, Msg: "forbidden", class: true}
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "not found", class: true}
	ErrConflict     = &Error{Kind: KindConflict, Msg: "conflict", class: true}
	ErrUpstream     = &Error{Kind: KindUpstream, Msg: "upstream failure", class: true}
)

// Error 携带面向客户端的消息与错误类别。
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error

	class bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按类别匹配：任意 Error 都与同类别的哨兵相等，具体错误之间只按身份比较。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.class {
		return false
	}
	return t.Kind == e.Kind
}

// Invalid 返回校验类错误。
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized 返回认证类错误。
func Unauthorized(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden 返回状态门禁类错误。
func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// NotFound 返回资源不存在错误。
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict 返回唯一性冲突错误。
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Upstream 包装外部依赖（文件存储、身份服务）的失败。
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// KindOf 返回错误链上第一个 Error 的类别，未知错误视为内部错误。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf 返回可展示给客户端的消息，未分类错误不暴露细节。
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}

// StatusOf 返回错误对应的 HTTP 状态码。
func StatusOf(err error) int {
	return KindOf(err).HTTPStatus()
}
