package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Secret []byte
	TTL    time.Duration
	Events events.Publisher
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    uint
	Username  string
}

// dummyHash keeps the unknown-user path as slow as a real password check.
var dummyHash = sync.OnceValue(func() string {
	h, _ := hash.HashPassword("storefront-dummy-password")
	return h
})

func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", ErrValidation)
	}
	if len(username) > 80 {
		return nil, fmt.Errorf("username longer than 80 characters: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{Username: username, PasswordHash: pwHash}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("user %q already exists: %w", username, ErrConflict)
		}
		l.Error("create_user_error", "reason", "db_error", "error", err)
		return nil, err
	}

	l.Info("create_user_success", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		hash.CheckPassword(dummyHash(), password)
		l.Warn("login_failed", "reason", "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong_password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.TTL)
	sess := models.Session{
		ID:        session.NewID(),
		UserID:    user.ID,
		ExpiresAt: exp.Unix(),
	}
	token, err := session.Sign(s.Secret, sess.ID, user.ID, exp)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	if err := s.Repo.CreateSession(ctx, &sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		UserID:    user.ID,
		Username:  user.Username,
	}, nil
}

// Authenticate resolves a session cookie value to the logged-in user.
// Every rejection wraps ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (session.Current, error) {
	if token == "" {
		return session.Current{}, ErrUnauthorized
	}
	claims, err := session.Parse(token, s.Secret)
	if err != nil {
		return session.Current{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	userID, _ := claims.UserID()

	stored, err := s.Repo.FindSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Current{}, fmt.Errorf("session not found: %w", ErrUnauthorized)
		}
		return session.Current{}, err
	}
	if stored.Revoked || stored.ExpiresAt < time.Now().Unix() || stored.UserID != userID {
		return session.Current{}, fmt.Errorf("session expired or revoked: %w", ErrUnauthorized)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Current{}, fmt.Errorf("user not found: %w", ErrUnauthorized)
		}
		return session.Current{}, err
	}

	return session.Current{SessionID: stored.ID, UserID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) LogOut(ctx context.Context, cur session.Current) error {
	if err := s.Repo.RevokeSession(ctx, cur.SessionID); err != nil {
		return err
	}

	publish(ctx, s.Events, events.TopicUser, cur.UserID, map[string]any{
		"type":     "user_logged_out",
		"userID":   cur.UserID,
		"username": cur.Username,
	})
	return nil
}

func (s *AuthService) PurgeSessions(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpiredSessions(ctx, time.Now().Unix())
}
