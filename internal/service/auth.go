package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/repository"
	"github.com/templui/bookshelf/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenLifetime is how long an access token stays valid after issuance
	TokenLifetime = 7 * 24 * time.Hour

	// PasswordCost is the bcrypt work factor
	PasswordCost = 10
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgEmailExists        = "Email already exists"
	msgInvalidCredentials = "Invalid email or password"
)

type AuthService struct {
	userRepository repository.UserRepository
	jwtSecret      []byte
	now            func() time.Time
}

func NewAuthService(userRepository repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtSecret:      []byte(jwtSecret),
		now:            time.Now,
	}
}

// Register creates a user and returns a signed access token for it
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return "", nil, apperror.Validation(msgAllFieldsRequired)
	}

	err := validation.ValidateName(name)
	if err != nil {
		return "", nil, apperror.Validation(err.Error())
	}

	err = validation.ValidateEmail(email)
	if err != nil {
		return "", nil, apperror.Validation(err.Error())
	}

	// Duplicate email is reported before password strength
	_, err = s.userRepository.ByEmail(ctx, email)
	if err == nil {
		return "", nil, apperror.Validation(msgEmailExists)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, apperror.Persistence("Error while getting user", err)
	}

	err = validation.ValidatePassword(password)
	if err != nil {
		return "", nil, apperror.Validation(err.Error())
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return "", nil, apperror.New(apperror.KindInternal, "Error while hashing password", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", nil, apperror.Validation(msgEmailExists)
		}
		return "", nil, apperror.Persistence("Error while creating user", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return token, user, nil
}

// Login checks the credentials and returns a fresh access token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return "", nil, apperror.Validation(msgAllFieldsRequired)
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, apperror.Auth(msgInvalidCredentials, err)
		}
		return "", nil, apperror.Persistence("Error while getting user", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, apperror.Auth(msgInvalidCredentials, err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IssueToken signs an HS256 token whose subject is the user id
func (s *AuthService) IssueToken(subjectID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.New(apperror.KindInternal, "Error while generating token", err)
	}

	return tokenString, nil
}

// VerifyToken returns the subject of a valid token. The error wraps
// ErrTokenExpired or ErrTokenInvalid.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Auth("token expired", fmt.Errorf("%w: %v", ErrTokenExpired, err))
		}
		return "", apperror.Auth("token invalid", fmt.Errorf("%w: %v", ErrTokenInvalid, err))
	}

	if claims.Subject == "" {
		return "", apperror.Auth("token invalid", fmt.Errorf("%w: missing subject", ErrTokenInvalid))
	}

	return claims.Subject, nil
}
