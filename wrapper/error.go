package wrapper

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResult is rendered as the JSON body of a failed call with Status as
// the HTTP status code.
type ErrorResult struct {
	Status  int         `json:"status"`
	Message interface{} `json:"message"`
}

func NewErrorResult(status int, message interface{}) *ErrorResult {
	return &ErrorResult{Status: status, Message: message}
}

func (e ErrorResult) Error() string {
	msgRes, err := json.Marshal(e.Message)
	if err != nil {
		return fmt.Sprintf("internal error processing error message: %v", err)
	}
	return fmt.Sprintf("Status: %d, Message: %s", e.Status, string(msgRes))
}

func (e ErrorResult) statusCode() int {
	if e.Status < http.StatusBadRequest || e.Status > 599 {
		return http.StatusInternalServerError
	}
	return e.Status
}
