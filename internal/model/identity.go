package model

// Identity is the (user, ip, userAgent) triple attached to a request.
// It is threaded explicitly through core operations for scoping and
// attribution; there is no process-wide current identity.
type Identity struct {
	User      string `json:"user"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

const (
	AnonymousUser     = "anonymous"
	AuthenticatedUser = "authenticated_user"
	UnknownValue      = "unknown"
)

func Anonymous() Identity {
	return Identity{User: AnonymousUser, IP: UnknownValue, UserAgent: UnknownValue}
}
