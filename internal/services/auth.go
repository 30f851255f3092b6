package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

var ErrEmailTaken = errors.New("email already registered")
var ErrBadCredentials = errors.New("invalid email or password")

// AuthService handles registration, password login and session tokens
type AuthService struct {
	store     storage.Store
	approvals *ApprovalService
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(store storage.Store, approvals *ApprovalService) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return &AuthService{
		store:     store,
		approvals: approvals,
		jwtSecret: []byte(secret),
		tokenTTL:  24 * time.Hour,
		now:       time.Now,
	}
}

// Register creates an inactive account. adminRole is empty for clients;
// for admins and site managers it also ensures the approval profile.
func (a *AuthService) Register(reg *models.UserRegistration, adminRole string) (*models.User, error) {
	if _, err := a.store.GetUserByEmail(reg.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.store.CreateUser(&models.User{
		Email:        reg.Email,
		PasswordHash: string(hash),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Active:       false,
		IsStaff:      adminRole != "",
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// Backstop for a concurrent registration racing the pre-check
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	if adminRole != "" {
		if _, err := a.approvals.EnsureProfile(user.ID, adminRole); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Login checks the password and, for approval-gated accounts, the approval
// state and lockout window. On success it returns the user and a signed
// session token.
func (a *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := a.store.GetUserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrBadCredentials
	}
	if err != nil {
		return nil, "", err
	}

	profile, perr := a.store.GetAdminProfileByUser(user.ID)
	hasProfile := perr == nil

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if hasProfile {
			_ = a.approvals.RecordFailedLogin(profile)
		}
		return nil, "", ErrBadCredentials
	}

	if !user.Active {
		return nil, "", ErrUnauthorized
	}
	if hasProfile {
		if !user.IsSuperuser && !CanLogin(user, profile, a.now()) {
			return nil, "", ErrUnauthorized
		}
		_ = a.approvals.ResetFailedLogins(profile)
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a session JWT for the user
func (a *AuthService) IssueToken(user *models.User) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		Issuer:    "buildhub",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a session JWT and returns the user ID it names
func (a *AuthService) ParseToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrUnauthorized
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrUnauthorized
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return uint(id), nil
}
