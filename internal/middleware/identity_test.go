package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-file-manager/internal/model"
)

func TestIdentityAnonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/files", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	r.Header.Set("User-Agent", "curl/8")

	identity := IdentityFromRequest(r)
	assert.Equal(t, model.AnonymousUser, identity.User)
	assert.Equal(t, "192.0.2.10", identity.IP)
	assert.Equal(t, "curl/8", identity.UserAgent)
}

func TestIdentityWithClaims(t *testing.T) {
	r := httptest.NewRequest("GET", "/files", nil)
	claims := model.AuthClaims{UserID: "u1", Username: "alice", Role: "admin"}
	r = r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims))

	identity := IdentityFromRequest(r)
	assert.Equal(t, "alice", identity.User)
}

func TestIdentityBearerWithoutClaims(t *testing.T) {
	r := httptest.NewRequest("GET", "/files", nil)
	r.Header.Set("Authorization", "Bearer something")

	identity := IdentityFromRequest(r)
	assert.Equal(t, model.AuthenticatedUser, identity.User)
}

func TestIdentityIPPrecedence(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Real-IP", "203.0.113.7")
	r.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.7")

	assert.Equal(t, "198.51.100.4", IdentityFromRequest(r).IP)

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "203.0.113.7", IdentityFromRequest(r).IP)

	r.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.1", IdentityFromRequest(r).IP)
}

func TestIdentityUnknownFallbacks(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""
	r.Header.Del("User-Agent")

	identity := IdentityFromRequest(r)
	assert.Equal(t, model.UnknownValue, identity.IP)
	assert.Equal(t, model.UnknownValue, identity.UserAgent)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, bearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcg==")
	assert.Empty(t, bearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", bearerToken(r))
}
