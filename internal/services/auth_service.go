package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/audit"
	"storefront/internal/identity"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password2"`
}

// AuditPrincipal attributes anonymous registration calls to the email.
func (r RegisterRequest) AuditPrincipal() string { return r.Email }

// Redacted hides passwords from audit logs.
func (r RegisterRequest) Redacted() any {
	return map[string]string{"username": r.Username, "email": r.Email, "password": "***"}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuditPrincipal is the identity being authenticated.
func (r LoginRequest) AuditPrincipal() string { return r.Username }

// Redacted hides the password from audit logs.
func (r LoginRequest) Redacted() any {
	return map[string]string{"username": r.Username, "password": "***"}
}

var (
	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired and forged tokens as well as
	// tokens whose account was deleted or renamed after issue.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	auditor    *audit.Interceptor
	validate   *validator.Validate
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. auditor may be nil.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, auditor *audit.Interceptor) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		auditor:    auditor,
		validate:   apperr.NewValidator(),
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// RegisterUser validates the form, hashes the password and saves a USER account.
func (s *AuthService) RegisterUser(req RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.PasswordConfirm) == "" {
		return nil, apperr.BadRequest("password confirmation must not be empty")
	}
	if req.Password != req.PasswordConfirm {
		return nil, apperr.BadRequest("passwords do not match")
	}
	if err := apperr.FromValidator(s.validate.Struct(req)); err != nil {
		return nil, err
	}

	// Friendly messages only; the unique indexes are what actually guard this.
	if existing, err := s.userRepo.GetByUsername(req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username '%s' already taken: %w", req.Username, apperr.ErrConflict)
	}
	if existing, err := s.userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", req.Email, apperr.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.L().Info("user registered", zap.String("username", user.Username))
	return user, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(req LoginRequest) (string, error) {
	s.auditor.Authentication(s, "LoginUser", req)

	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		logger.L().Debug("token validation error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Authenticate validates a token and reloads the account it was issued for by
// its immutable user_id. The identity returned carries the stored username and
// role, never the ones embedded in the token. A token whose account is gone or
// has been renamed since issue is rejected.
func (s *AuthService) Authenticate(tokenString string) (identity.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return identity.Identity{}, err
	}

	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	if userID == "" || username == "" {
		return identity.Identity{}, fmt.Errorf("%w: token does not name a user", ErrInvalidToken)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return identity.Identity{}, fmt.Errorf("%w: account %s no longer exists", ErrInvalidToken, userID)
		}
		return identity.Identity{}, err
	}
	if user.Username != username {
		logger.L().Info("rejecting token issued before rename",
			zap.String("userId", user.ID),
			zap.String("tokenUsername", username),
			zap.String("username", user.Username),
		)
		return identity.Identity{}, fmt.Errorf("%w: account %s was renamed", ErrInvalidToken, userID)
	}

	return identity.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}, nil
}
