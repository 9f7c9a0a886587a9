package dto

// Status values of the response envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Status  string         `json:"status"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Errors  map[string]any `json:"errors,omitempty"`
}

// Success builds a success envelope.
func Success(data any, message string) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Message: message}
}

// Failure builds an error envelope.
func Failure(code, message string, details map[string]any) Envelope {
	return Envelope{Status: StatusError, Code: code, Message: message, Errors: details}
}
