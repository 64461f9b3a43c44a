package response

// Error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_SERVER_ERROR"
	ErrCodeServiceNotReady = "SERVICE_NOT_READY"
)

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination details
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// SuccessWithMessage wraps data and a human readable message
func SuccessWithMessage(message string, data interface{}) *Response {
	return &Response{Success: true, Message: message, Data: data}
}

// Paginated wraps a page of items with pagination metadata
func Paginated(data interface{}, page, limit int, total int64) *Response {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return &Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, Limit: limit, Total: total, Pages: pages},
	}
}

// Error builds a failed response
func Error(code, message string) *Response {
	return &Response{
		Success: false,
		Message: message,
		Error:   &ErrorInfo{Code: code, Message: message},
	}
}

func BadRequest(message string) *Response   { return Error(ErrCodeBadRequest, message) }
func Unauthorized(message string) *Response { return Error(ErrCodeUnauthorized, message) }
func Forbidden(message string) *Response    { return Error(ErrCodeForbidden, message) }
func NotFound(message string) *Response     { return Error(ErrCodeNotFound, message) }
func Conflict(message string) *Response     { return Error(ErrCodeConflict, message) }
func InternalError(message string) *Response {
	return Error(ErrCodeInternal, message)
}
