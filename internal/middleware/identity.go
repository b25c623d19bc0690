package middleware

import (
	"net"
	"net/http"
	"strings"

	"go-file-manager/internal/model"
)

// IdentityFromRequest derives the attribution identity for a request.
// Validated claims win; a bare Authorization header downgrades to the
// generic authenticated marker; everything else is anonymous.
func IdentityFromRequest(r *http.Request) model.Identity {
	user := model.AnonymousUser
	if claims, ok := ClaimsFromContext(r.Context()); ok && claims.Username != "" {
		user = claims.Username
	} else if r.Header.Get("Authorization") != "" {
		user = model.AuthenticatedUser
	}

	return model.Identity{
		User:      user,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return model.UnknownValue
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return model.UnknownValue
}
