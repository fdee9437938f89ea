package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED ErrCode = "VALIDATION_FAILED"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	LOCKED            ErrCode = "LOCKED"
	EMPTY_EXPORT      ErrCode = "EMPTY_EXPORT"
	UNAVAILABLE       ErrCode = "UNAVAILABLE"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrLocked      = errors.New("resource is locked")
	ErrUnavailable = errors.New("session loop is not running")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
