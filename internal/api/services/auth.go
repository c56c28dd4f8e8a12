package services

import (
	"context"
	stderrors "errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/models"
	"github.com/rohits-web03/insurguide/internal/repositories"
)

var (
	ErrInvalidInput       = stderrors.New("invalid input")
	ErrInvalidCredentials = stderrors.New("incorrect username or password")
	ErrInvalidToken       = stderrors.New("could not validate credentials")
	ErrTokenExpired       = stderrors.New("token has expired")
	ErrInactiveUser       = stderrors.New("inactive user")

	ErrDuplicateUser = repositories.ErrDuplicateUser
	ErrUserNotFound  = repositories.ErrUserNotFound
)

// InputError carries a short reason safe to show to the caller.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
	minUsernameLen = 3
	maxUsernameLen = 50
)

const TokenTypeBearer = "bearer"

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	cost   int
	now    func() time.Time
	// dummyHash is compared against when the user does not exist so both
	// login failure paths take roughly the same time.
	dummyHash []byte
}

type AuthOption func(*AuthService)

// WithClock overrides the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users repositories.UserRepository, cfg config.AuthConfig, opts ...AuthOption) (*AuthService, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("signing secret is empty")
	}
	if cfg.TokenTTL() <= 0 {
		return nil, errors.New("token TTL must be positive")
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("insurguide-dummy-password"), cost)
	if err != nil {
		return nil, errors.Wrap(err, "prepare password hashing")
	}

	s := &AuthService{
		users:     users,
		secret:    []byte(cfg.SecretKey),
		method:    method,
		ttl:       cfg.TokenTTL(),
		cost:      cost,
		now:       time.Now,
		dummyHash: dummy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *AuthService) TTL() time.Duration { return s.ttl }

func validateRegistration(username, email, password string) error {
	switch {
	case username == "" || email == "" || password == "":
		return &InputError{Reason: "username, email and password are required"}
	case utf8.RuneCountInString(username) < minUsernameLen || utf8.RuneCountInString(username) > maxUsernameLen:
		return &InputError{Reason: "username must be between 3 and 50 characters"}
	case strings.TrimSpace(username) != username:
		return &InputError{Reason: "username must not start or end with whitespace"}
	case len(password) < minPasswordLen:
		return &InputError{Reason: "password must be at least 8 characters"}
	case len(password) > maxPasswordLen:
		return &InputError{Reason: "password must be at most 72 bytes"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &InputError{Reason: "email address is not valid"}
	}
	return nil
}

// Register creates an active user. The password is hashed before it reaches
// the store, and the returned user carries no hash.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user.Username)
}

func (s *AuthService) issue(subject string) (*Token, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &Token{
		AccessToken: signed,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate verifies a bearer token and resolves its subject. A token
// whose signature verifies is rejected with ErrTokenExpired once now >= exp.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil || !token.Valid:
		return nil, ErrInvalidToken
	case claims.Subject == "":
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}
