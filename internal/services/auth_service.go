package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/locm1/nippo/internal/config"
	"github.com/locm1/nippo/internal/dto"
	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService issues JWT access/refresh token pairs. Sign-in doubles as
// profile upkeep: display fields are refreshed and the default template is
// provisioned in the background.
type AuthService struct {
	store     storage.Store
	cfg       *config.Config
	templates *TemplateService
}

func NewAuthService(store storage.Store, cfg *config.Config, templates *TemplateService) *AuthService {
	return &AuthService{store: store, cfg: cfg, templates: templates}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: email required and password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Password:     string(hash),
		Name:         strings.TrimSpace(req.Name),
		AuthProvider: "email",
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr("create user", err)
	}

	go s.templates.EnsureDefaultTemplate(context.WithoutCancel(ctx), user.ID)

	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, storeErr("load user", err)
		}
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// First sign-in of an account created elsewhere may still be missing its
	// default template; re-check is idempotent.
	go s.templates.EnsureDefaultTemplate(context.WithoutCancel(ctx), user.ID)

	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	stored, err := s.store.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, storeErr("load refresh token", err)
		}
		return nil, ErrInvalidToken
	}
	if err := s.store.RevokeRefreshToken(ctx, stored.ID); err != nil {
		return nil, storeErr("revoke refresh token", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.store.RevokeRefreshTokenByHash(ctx, hashToken(req.RefreshToken))
}

// UpdateProfile refreshes the display fields. Email and ownership never
// change here.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name string, avatarURL *string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, storeErr("load user", err)
		}
		return nil, ErrUserNotFound
	}
	user.Name = strings.TrimSpace(name)
	user.AvatarURL = avatarURL
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeErr("update profile", err)
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  DisplayName(user),
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.store.CreateRefreshToken(ctx, &record); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
