package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/repository"
	"go-file-manager/pkg/fault"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"

	minPasswordLength = 8
	maxUsernameLength = 64
)

type authTokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users      *repository.UserRepository
	tokens     *repository.TokenRepository
	log        *logger.Logger
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, log *logger.Logger, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		log:        log,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// EnsureDefaultAdmin creates the bootstrap admin account when the user
// table is empty, so a fresh deployment is reachable.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     defaultAdminUsername,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.log.Security(model.Anonymous(), "default_admin_created",
		"default admin account created; change the password immediately",
		map[string]any{"username": defaultAdminUsername})
	return nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, identity model.Identity) (model.TokenPair, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return model.TokenPair{}, fault.New(fault.KindBadRequest, "username and password are required", "")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			s.log.Auth(identity, "login", false, map[string]any{"username": username, "reason": "unknown user"})
			return model.TokenPair{}, fault.New(fault.KindUnauthorized, "invalid credentials", "")
		}
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Auth(identity, "login", false, map[string]any{"username": username, "reason": "bad password"})
		return model.TokenPair{}, fault.New(fault.KindUnauthorized, "invalid credentials", "")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.log.Auth(identity, "login", true, map[string]any{"username": user.Username, "role": user.Role})
	return pair, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, identity model.Identity) (model.AuthUser, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > maxUsernameLength {
		return model.AuthUser{}, fault.New(fault.KindBadRequest, "invalid username", "")
	}
	if len(req.Password) < minPasswordLength {
		return model.AuthUser{}, fault.New(fault.KindBadRequest,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), "")
	}

	role := req.Role
	switch role {
	case "":
		role = RoleViewer
	case RoleAdmin, RoleEditor, RoleViewer:
	default:
		return model.AuthUser{}, fault.New(fault.KindBadRequest, "invalid role", role)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.AuthUser{}, err
	}
	if exists {
		return model.AuthUser{}, fault.New(fault.KindAlreadyExists, "username is already taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthUser{}, err
	}

	s.log.Auth(identity, "register", true, map[string]any{"username": username, "role": role})
	return model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string, identity model.Identity) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, fault.New(fault.KindBadRequest, "refresh_token is required", "")
	}

	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	if claims.Type != tokenTypeRefresh {
		return model.TokenPair{}, fault.New(fault.KindUnauthorized, "token is not a refresh token", "")
	}

	userID, err := s.tokens.Validate(ctx, refreshToken)
	if err != nil {
		s.log.Auth(identity, "refresh", false, map[string]any{"reason": "token not recognized"})
		return model.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return model.TokenPair{}, fault.New(fault.KindUnauthorized, "user no longer exists", "")
		}
		return model.TokenPair{}, err
	}

	// Rotate: the presented refresh token is single-use.
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return model.TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.log.Auth(identity, "refresh", true, map[string]any{"username": user.Username})
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string, identity model.Identity) error {
	if refreshToken != "" {
		if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
			return err
		}
	}
	s.log.Auth(identity, "logout", true, nil)
	return nil
}

// ValidateAccessToken checks signature, expiry and token type. It is the
// hook the auth middleware calls on every protected request.
func (s *AuthService) ValidateAccessToken(tokenString string) (model.AuthClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return model.AuthClaims{}, err
	}
	if claims.Type != tokenTypeAccess {
		return model.AuthClaims{}, fault.New(fault.KindUnauthorized, "token is not an access token", "")
	}
	return model.AuthClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		Type:     claims.Type,
		TokenID:  claims.ID,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.signToken(user, tokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.tokens.Store(ctx, refresh, user.ID, now.Add(s.refreshTTL)); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role},
	}, nil
}

func (s *AuthService) signToken(user model.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := authTokenClaims{
		Username: user.Username,
		Role:     user.Role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) parseToken(tokenString string) (*authTokenClaims, error) {
	claims := &authTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fault.New(fault.KindUnauthorized, "token is invalid or expired", "")
	}
	return claims, nil
}
