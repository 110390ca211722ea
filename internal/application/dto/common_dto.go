package dto

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse carries only a human-readable message
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationQuery binds page and limit query parameters
type PaginationQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Pagination describes one page of a list
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
