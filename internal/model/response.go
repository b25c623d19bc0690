package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type PasteResult struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type PasteFailure struct {
	From   string `json:"from"`
	Reason string `json:"reason"`
}

type PasteResponse struct {
	Operation string         `json:"operation"`
	Done      []PasteResult  `json:"done"`
	Failed    []PasteFailure `json:"failed"`
}

type RenameResponse struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	Name    string `json:"name"`
}

type DeleteFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type DeleteResponse struct {
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Items []FileEntry `json:"items"`
}
