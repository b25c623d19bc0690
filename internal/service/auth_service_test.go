package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/internal/model"
	"go-file-manager/pkg/fault"
)

func newTokenOnlyAuth(accessTTL time.Duration) *AuthService {
	return NewAuthService(nil, nil, testLogger(), "test-secret-at-least-32-bytes-long!!", accessTTL, time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTokenOnlyAuth(time.Minute)
	user := model.User{ID: "u1", Username: "alice", Role: RoleAdmin}

	token, err := svc.signToken(user, tokenTypeAccess, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	svc := newTokenOnlyAuth(time.Minute)
	user := model.User{ID: "u1", Username: "alice", Role: RoleViewer}

	token, err := svc.signToken(user, tokenTypeRefresh, time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Equal(t, fault.KindUnauthorized, fault.KindOf(err))
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTokenOnlyAuth(time.Minute)
	user := model.User{ID: "u1", Username: "alice", Role: RoleViewer}

	token, err := svc.signToken(user, tokenTypeAccess, time.Now().UTC().Add(-2*time.Hour), time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Equal(t, fault.KindUnauthorized, fault.KindOf(err))
}

func TestForeignSignatureRejected(t *testing.T) {
	issuer := newTokenOnlyAuth(time.Minute)
	verifier := NewAuthService(nil, nil, testLogger(), "a-completely-different-secret-value", time.Minute, time.Hour)
	user := model.User{ID: "u1", Username: "mallory", Role: RoleAdmin}

	token, err := issuer.signToken(user, tokenTypeAccess, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Equal(t, fault.KindUnauthorized, fault.KindOf(err))
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newTokenOnlyAuth(time.Minute)

	_, err := svc.ValidateAccessToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, fault.KindUnauthorized, fault.KindOf(err))
}
