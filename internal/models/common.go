package models

// ErrorResponse is a standardized error response for API
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StatusResponse carries a plain confirmation message
type StatusResponse struct {
	Message string `json:"message"`
}
