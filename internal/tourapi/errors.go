package tourapi

import "fmt"

// Category classifies an upstream failure coarsely enough for callers
// to decide between retry, degrade, and surface-to-user.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategoryUpstream Category = "upstream"
	CategoryParse    Category = "parse"
	CategoryUnknown  Category = "unknown"
)

// userMessages maps each category to the message shown to end users.
var userMessages = map[Category]string{
	CategoryNetwork:  "네트워크 연결을 확인해 주세요.",
	CategoryUpstream: "관광 정보 서비스가 일시적으로 불안정합니다. 잠시 후 다시 시도해 주세요.",
	CategoryParse:    "관광 정보 응답을 처리하지 못했습니다.",
	CategoryUnknown:  "알 수 없는 오류가 발생했습니다.",
}

// Error is the single error type surfaced by the client. It carries the
// failure category, the HTTP status and upstream result code when known,
// and the original cause for logging.
type Error struct {
	Category   Category
	StatusCode int    // HTTP status, 0 when not applicable
	ResultCode string // upstream result code, "" when not applicable
	Op         string // upstream operation name
	cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tourapi %s: %s failure", e.Op, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.ResultCode != "" {
		msg += fmt.Sprintf(" (result code %s)", e.ResultCode)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// UserMessage returns a localized message suitable for API responses.
func (e *Error) UserMessage() string {
	if m, ok := userMessages[e.Category]; ok {
		return m
	}
	return userMessages[CategoryUnknown]
}

// Retryable reports whether the failure class is worth another attempt:
// network errors and server-side HTTP statuses. Client errors, upstream
// result-code errors, and parse failures fail fast.
func (e *Error) Retryable() bool {
	switch e.Category {
	case CategoryNetwork:
		return true
	case CategoryUpstream:
		return e.StatusCode >= 500
	default:
		return false
	}
}

func networkErr(op string, cause error) *Error {
	return &Error{Category: CategoryNetwork, Op: op, cause: cause}
}

func upstreamErr(op string, status int, resultCode string, cause error) *Error {
	return &Error{Category: CategoryUpstream, Op: op, StatusCode: status, ResultCode: resultCode, cause: cause}
}

func parseErr(op string, cause error) *Error {
	return &Error{Category: CategoryParse, Op: op, cause: cause}
}
