package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"quiz-app-service/internal/domain"
)

// UserRepository stores accounts. Create fails with domain.ErrUserExists on a taken email.
type UserRepository interface {
	UserLookup
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// RegisterInput is the payload of a sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
}

// AuthSession is returned after a successful register or login.
type AuthSession struct {
	Token string
	User  domain.User
}

// AuthService registers users and issues bearer tokens.
type AuthService struct {
	users      UserRepository
	tokens     *TokenIssuer
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserRepository, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthSession, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" || in.Role == "" {
		return AuthSession{}, domain.Validationf("all fields are required")
	}
	if !in.Role.Valid() {
		return AuthSession{}, domain.Validationf("unknown role %q", in.Role)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthSession{}, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuthSession{}, domain.Persistence("lookup user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return AuthSession{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return AuthSession{}, domain.Persistence("create user", err)
	}
	return s.session(user)
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthSession{}, domain.Validationf("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return AuthSession{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthSession{}, domain.Persistence("lookup user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthSession{}, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, caller domain.Caller) (domain.User, error) {
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return domain.User{}, domain.Persistence("get user", err)
	}
	return user, nil
}

// Authenticate turns a bearer token into the caller identity it was issued for.
func (s *AuthService) Authenticate(token string) (domain.Caller, error) {
	return s.tokens.Parse(token)
}

func (s *AuthService) session(user domain.User) (AuthSession, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthSession{}, err
	}
	return AuthSession{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return NewTokenIssuerWithClock(secret, ttl, time.Now)
}

// NewTokenIssuerWithClock uses now for issue and expiry checks.
func NewTokenIssuerWithClock(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token carrying the user's ID, email and role.
func (t *TokenIssuer) Issue(user domain.User) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry.
func (t *TokenIssuer) Parse(token string) (domain.Caller, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return domain.Caller{}, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return domain.Caller{}, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	return domain.Caller{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
