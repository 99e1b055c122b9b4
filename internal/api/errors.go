package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindAuthExpired means the server answered 401.
	KindAuthExpired Kind = iota + 1
	// KindServerError means the server answered 5xx.
	KindServerError
	// KindRequestRejected covers every other non-2xx answer.
	KindRequestRejected
	// KindNetworkUnreachable means the request went out but no response came
	// back (connection failure, timeout, truncated body).
	KindNetworkUnreachable
	// KindRequestMalformed means the request could not be built or sent.
	KindRequestMalformed
)

func (k Kind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth_expired"
	case KindServerError:
		return "server_error"
	case KindRequestRejected:
		return "request_rejected"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindRequestMalformed:
		return "request_malformed"
	default:
		return "unknown"
	}
}

// User-facing messages, one per classification.
const (
	MessageAuthExpired      = "登录已过期，请重新登录"
	MessageServerError      = "服务器错误，请稍后再试"
	MessageRequestFailed    = "请求失败"
	MessageNetworkError     = "网络错误，请检查连接"
	MessageRequestMalformed = "请求配置错误"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrAuthExpired        = &Error{Kind: KindAuthExpired}
	ErrServerError        = &Error{Kind: KindServerError}
	ErrRequestRejected    = &Error{Kind: KindRequestRejected}
	ErrNetworkUnreachable = &Error{Kind: KindNetworkUnreachable}
	ErrRequestMalformed   = &Error{Kind: KindRequestMalformed}
)

// Error is returned for every failed call. Message is the text pushed to the
// notifier; Err is the underlying failure, reachable through errors.As.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int    // zero unless the server responded
	Message    string // user-facing
	Body       []byte // raw response body when the server responded
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := strings.TrimSpace(e.Method + " " + e.Path)
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("api %s returned status %d: %s", target, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api %s: %s: %v", target, e.Kind, e.Err)
	default:
		return fmt.Sprintf("api %s: %s", target, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// Timeout reports whether the call failed because the client timeout or a
// context deadline elapsed before a response arrived.
func (e *Error) Timeout() bool {
	if e == nil || e.Kind != KindNetworkUnreachable {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// MessageOf returns the user-facing message for err, falling back to the
// generic failure text for errors that did not come from this package.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MessageRequestFailed
}

// exchange captures how far a call got before failing.
type exchange struct {
	method string
	path   string
	status int // non-zero when the server answered
	body   []byte
	sent   bool // request left the client
	err    error
}

// classify maps a failed exchange onto exactly one Kind and message. It has no
// side effects; the client decides what to do with the result.
func classify(x exchange) *Error {
	e := &Error{Method: x.method, Path: x.path, Err: x.err}
	switch {
	case x.status != 0:
		e.StatusCode = x.status
		e.Body = x.body
		switch {
		case x.status == http.StatusUnauthorized:
			e.Kind = KindAuthExpired
			e.Message = MessageAuthExpired
		case x.status >= http.StatusInternalServerError:
			e.Kind = KindServerError
			e.Message = MessageServerError
		default:
			e.Kind = KindRequestRejected
			e.Message = serverMessage(x.body)
		}
	case x.sent:
		e.Kind = KindNetworkUnreachable
		e.Message = MessageNetworkError
	default:
		e.Kind = KindRequestMalformed
		e.Message = MessageRequestMalformed
	}
	return e
}

// serverMessage prefers a top-level "message" string, then FastAPI's string
// "detail", then the generic text.
func serverMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return MessageRequestFailed
	}
	for _, field := range []string{"message", "detail"} {
		v := gjson.GetBytes(body, field)
		if v.Type == gjson.String {
			if msg := strings.TrimSpace(v.String()); msg != "" {
				return msg
			}
		}
	}
	return MessageRequestFailed
}
