package service

import (
	"context"
	"crypto/hmac"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bobsgarage/api/internal/config"
	"bobsgarage/api/internal/ids"
	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/repository"
	"bobsgarage/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// UserStore and SessionStore are the repository slices the auth flow needs.
// *repository.UserRepository and *repository.SessionRepository satisfy them.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.RefreshSession) error
	GetByID(ctx context.Context, id string) (models.RefreshSession, error)
	DeleteByID(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	DeleteOldestSessions(ctx context.Context, userID int64, keepLatest int) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return AuthResult{}, errors.New("username, email and password required")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return AuthResult{}, err
	}

	return s.createSession(ctx, user, input.IPAddress, input.UserAgent)
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.createSession(ctx, user, input.IPAddress, input.UserAgent)
}

func (s *AuthService) createSession(ctx context.Context, user models.User, ipAddress, userAgent string) (AuthResult, error) {
	sessionID := ids.New()

	refreshToken, refreshHash, err := security.GenerateRefreshToken(
		s.cfg.Security.JWTRefreshSecret,
		user.ID,
		sessionID,
		s.cfg.Security.JWTRefreshTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		user.Email,
		user.IsAdmin,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.RefreshSession{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID int64) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.Security.MaxSessions)
}

// Refresh exchanges a refresh token for a new credential pair. The token
// rotates on every use: the presented session row is deleted before the
// replacement is written, so a replayed old token no longer resolves.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return AuthResult{}, ErrInvalidRefresh
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return AuthResult{}, ErrInvalidRefresh
	}

	if session.UserID != claims.UserID {
		return AuthResult{}, ErrInvalidRefresh
	}
	if !hmac.Equal(session.RefreshTokenHash, security.HashRefreshToken(refreshToken)) {
		return AuthResult{}, ErrInvalidRefresh
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return AuthResult{}, ErrInvalidRefresh
	}

	if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
		return AuthResult{}, ErrInvalidRefresh
	}

	return s.createSession(ctx, user, session.IPAddress, session.UserAgent)
}

// Logout invalidates the session behind the refresh token. It is
// deliberately idempotent: an unparseable token or an already-deleted
// session is not an error, so repeated logouts always succeed.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return nil
	}

	if err := s.sessions.DeleteByID(ctx, claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return nil
}
