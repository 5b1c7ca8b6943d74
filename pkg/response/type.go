package response

// Resp is the standard JSON response body.
type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

const (
	// MessageSuccess is the message attached to successful responses.
	MessageSuccess = "Success"
)
