package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name         string
	Surname      string
	Phone        string
	Email        string
	Username     string
	DocumentType domain.DocumentType
	Password     string
}

// AuthService handles registration, login and session tokens.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string, remember bool) (token string, expiry time.Duration, user *domain.User, err error)
	GetJWTSecret() string
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	jwtRemember   time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration, jwtRemember time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	if jwtRemember <= 0 {
		jwtRemember = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		jwtRemember:   jwtRemember,
	}
}

// Register validates a registration request and creates the user. Uniqueness
// of email, phone and username is pre-checked so the conflict response can
// name the first violated field; the unique indexes remain the backstop for
// races between the check and the insert.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.DocumentType = domain.DocumentType(strings.ToLower(strings.TrimSpace(string(input.DocumentType))))

	if input.Name == "" || input.Surname == "" || input.Phone == "" ||
		input.Email == "" || input.Username == "" || input.Password == "" {
		return nil, ValidationError("all fields are required")
	}
	if !domain.ValidDocumentType(input.DocumentType) {
		return nil, ValidationError("invalid document type")
	}
	username, ok := domain.NormalizeUsername(input.DocumentType, input.Username)
	if !ok {
		if input.DocumentType == domain.DocumentDNI {
			return nil, ValidationError("DNI must contain only digits")
		}
		return nil, ValidationError("passport must contain only letters and digits")
	}
	if len(input.Password) < 6 {
		return nil, ValidationError("password must be at least 6 characters")
	}

	for _, check := range []struct {
		field  string
		lookup func() (*domain.User, error)
	}{
		{"email", func() (*domain.User, error) { return s.userRepo.GetByEmail(ctx, input.Email) }},
		{"phone", func() (*domain.User, error) { return s.userRepo.GetByPhone(ctx, input.Phone) }},
		{"username", func() (*domain.User, error) { return s.userRepo.GetByUsername(ctx, username) }},
	} {
		_, err := check.lookup()
		if err == nil {
			return nil, &repository.FieldError{Field: check.field}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         input.Name,
		Surname:      input.Surname,
		Phone:        input.Phone,
		Email:        input.Email,
		Username:     username,
		DocumentType: input.DocumentType,
		Role:         domain.RoleUser,
		PasswordHash: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates the user and mints a JWT. With remember the token (and
// cookie) lives seven days instead of one.
func (s *authService) Login(ctx context.Context, email, password string, remember bool) (string, time.Duration, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", 0, nil, ValidationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", 0, nil, ErrAuthenticationFailed
		}
		return "", 0, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", 0, nil, ErrAuthenticationFailed
	}

	expiry := s.jwtExpiration
	if remember {
		expiry = s.jwtRemember
	}
	token, err := s.generateJWT(user, expiry)
	if err != nil {
		return "", 0, nil, ErrTokenGeneration
	}

	// Best effort: a failed last_login write never blocks the login.
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		log.Printf("WARN: could not update last_login for user %d: %v", user.ID, err)
	}

	user.PasswordHash = ""
	return token, expiry, user, nil
}

// SessionClaims is the JWT payload carried by session tokens.
type SessionClaims struct {
	UserID uint        `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "trainer-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
