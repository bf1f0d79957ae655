package handlers

// APIError is returned by handlers to produce a {"error": "..."} body with a given status.
type APIError struct {
	status  int
	Message string `json:"error"`
}

// NewAPIError creates an error that huma writes with status.
func NewAPIError(status int, message string) *APIError {
	return &APIError{status: status, Message: message}
}

func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}
