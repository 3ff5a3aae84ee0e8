package dto

// Envelope is the shape of every response body.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable part of a failure.
type ErrorBody struct {
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage wraps data with a human readable message.
func OKMessage(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Failure builds an error envelope.
func Failure(code, message string, details map[string]any) Envelope {
	return Envelope{Success: false, Message: message, Error: &ErrorBody{Code: code, Details: details}}
}
