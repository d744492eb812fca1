package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps listings so pagination metadata can travel with them.
type ListResponse struct {
	Items interface{} `json:"items"`
	// NextStartAfter is the ID to pass as startAfter for the next page, empty on the last page.
	NextStartAfter string `json:"nextStartAfter,omitempty"`
}
