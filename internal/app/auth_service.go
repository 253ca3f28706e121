package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quiz-portal/internal/domain"
)

// DefaultSessionTTL matches a "remember me" login that survives browser restarts.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Credentials is the register/login form.
type Credentials struct {
	Username string `form:"username" json:"username" validate:"required,max=64"`
	Password string `form:"password" json:"password" validate:"required,max=72"`
}

// AuthService owns accounts and login sessions. Sessions live in the store;
// the signed token only names one, so deleting it revokes the login.
type AuthService struct {
	users    UserRepository
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	validate *validator.Validate
}

func NewAuthService(users UserRepository, sessions SessionStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		validate: validator.New(),
	}
}

// NewAuthServiceWithClock is test-only for deterministic expiry.
func NewAuthServiceWithClock(users UserRepository, sessions SessionStore, secret string, ttl time.Duration, now func() time.Time) *AuthService {
	s := NewAuthService(users, sessions, secret, ttl)
	s.now = now
	return s
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (domain.User, error) {
	return s.createUser(ctx, creds, false)
}

// SeedAdmin makes sure an admin account with the given username exists.
// An existing account of that name is left untouched.
func (s *AuthService) SeedAdmin(ctx context.Context, creds Credentials) (domain.User, bool, error) {
	existing, err := s.users.UserByUsername(ctx, creds.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, false, err
	}
	user, err := s.createUser(ctx, creds, true)
	if errors.Is(err, domain.ErrUsernameTaken) {
		existing, err = s.users.UserByUsername(ctx, creds.Username)
		return existing, false, err
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, creds Credentials, admin bool) (domain.User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login checks the password and opens a session. The returned token is what
// the browser keeps in its cookie.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (string, domain.User, error) {
	user, err := s.users.UserByUsername(ctx, creds.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", domain.User{}, fmt.Errorf("save session: %w", err)
	}

	token, err := s.sign(session, now)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a token to its user. The user is reloaded on every
// call so admin changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.User{}, err
	}
	if strconv.FormatInt(session.UserID, 10) != claims.Subject {
		return domain.User{}, domain.ErrUnauthenticated
	}
	user, err := s.users.UserByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, err
}

// Logout drops the session named by the token. Unknown, expired or garbled
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.parse(token, false)
	if err != nil || claims.ID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

func (s *AuthService) sign(session domain.Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parse(token string, validateClaims bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
