// Package service contains application services for authentication and site analysis.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/sales-intel/internal/crypto"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/limiter"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/and161185/sales-intel/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinPasswordLen is the shortest password accepted on registration.
const MinPasswordLen = 6

// AuthService defines authentication and account operations.
type AuthService interface {
	// Login applies rate limiting by (username, ip) and issues an access token.
	Login(ctx context.Context, username, password, ip string) (model.Tokens, error)
	// Register creates an account with a bcrypt-hashed password.
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	// ListUsers returns every account without credentials.
	ListUsers(ctx context.Context) ([]model.User, error)
	// ParseToken verifies a bearer token and returns its claims.
	ParseToken(raw string) (Claims, error)
}

// Claims is the access token payload: the subject is the username.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, log: log, now: time.Now}
}

// Register validates the request and stores a new account.
func (s *AuthServiceImpl) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return model.User{}, invalid("Informe usuário e senha")
	}
	if len(req.Password) < MinPasswordLen {
		return model.User{}, invalid(fmt.Sprintf("A senha deve ter ao menos %d caracteres", MinPasswordLen))
	}
	role, err := model.ParseRole(string(req.Role))
	if err != nil {
		return model.User{}, invalid("Perfil inválido")
	}
	hash, err := pkgcrypto.HashPassword(req.Password)
	if errors.Is(err, pkgcrypto.ErrPasswordTooLong) {
		return model.User{}, invalid("Senha muito longa")
	}
	if err != nil {
		return model.User{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	a := &model.Account{ID: uid, Username: username, PwdHash: hash, Role: role}
	if err := s.users.Create(ctx, a); err != nil {
		return model.User{}, err
	}
	s.log.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return a.Public(), nil
}

// ListUsers returns the public projection of every account.
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	accts, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Public())
	}
	return out, nil
}

// Login authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) (model.Tokens, error) {
	key := limiter.NewKey(username, ip)

	allowed, _, err := s.lim.Allow(ctx, key)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	a, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		pkgcrypto.BurnCompare(password)
	case err != nil:
		return model.Tokens{}, err
	}
	if a == nil || !pkgcrypto.VerifyPassword(a.PwdHash, password) {
		blocked, _, ferr := s.lim.Failure(ctx, key)
		if ferr != nil {
			s.log.Warn("limiter failure not recorded", zap.Error(ferr))
		}
		if blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		return model.Tokens{}, errs.ErrUnauthorized
	}

	if err := s.lim.Success(ctx, key); err != nil {
		s.log.Warn("limiter reset failed", zap.Error(err))
	}
	return s.issueAccessToken(a.Username, a.Role)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(username string, role model.Role) (model.Tokens, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, TokenType: "bearer", Role: role, ExpiresAt: exp}, nil
}

// ParseToken verifies signature and expiry. Any failure is errs.ErrUnauthorized.
func (s *AuthServiceImpl) ParseToken(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: empty subject", errs.ErrUnauthorized)
	}
	if claims.Role, err = model.ParseRole(string(claims.Role)); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	return claims, nil
}

// Bootstrap creates the first admin when the user table is empty. It reports
// whether an account was created.
func (s *AuthServiceImpl) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Register(ctx, model.RegisterRequest{Username: username, Password: password, Role: model.RoleAdmin}); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
