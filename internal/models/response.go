package models

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse acknowledges a delete
type SuccessResponse struct {
	Success bool `json:"success"`
}
