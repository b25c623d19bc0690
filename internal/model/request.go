package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type DirectoryCreateRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type RenameRequest struct {
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

type DeleteRequest struct {
	Paths []string `json:"paths"`
}

// PasteRequest carries a clipboard-style copy or move of one or more
// sources into a destination directory.
type PasteRequest struct {
	Operation   string   `json:"operation"`
	Sources     []string `json:"sources"`
	Destination string   `json:"destination"`
}

type RefreshCacheRequest struct {
	Strategy string `json:"strategy"`
	Path     string `json:"path"`
	Strict   bool   `json:"strict"`
}
