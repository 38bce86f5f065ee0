package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/hash"
	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/models"
	"github.com/Skotchmaster/shopfront/internal/tokens"
)

type AdminRepo interface {
	AdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpsertAdmin(ctx context.Context, a *models.Admin) (bool, error)
}

type AuthService struct {
	Repo      AdminRepo
	Events    events.Publisher
	JWTSecret []byte
	TokenTTL  time.Duration
	// LegacyPlaintext accepts admin rows whose password column was never hashed.
	LegacyPlaintext bool
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *models.Admin
}

// AdminLogin matches the admin row by exact email; only surrounding spaces are
// dropped.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	l := logging.FromContext(ctx).With("svc", "auth.admin_login", "email", email)

	if email == "" || password == "" {
		field := "email"
		if email != "" {
			field = "password"
		}
		return nil, invalid(field, "Email and password are required")
	}

	admin, err := s.Repo.AdminByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if !s.passwordMatches(l, admin.Password, password) {
		return nil, ErrInvalidCredentials
	}

	role := admin.Role
	if role == "" {
		role = models.RoleAdmin
	}
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, exp, err := tokens.Sign(admin.ID, admin.Email, role, ttl, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	admin.Role = role

	l.Info("admin_logged_in", "admin_id", admin.ID)
	if s.Events != nil {
		sctx, cancel := sideEffectContext(ctx)
		defer cancel()
		ev := events.New("admin_logged_in", map[string]any{"admin_id": admin.ID, "email": admin.Email})
		if err := s.Events.PublishEvent(sctx, events.TopicUsers, strconv.FormatUint(uint64(admin.ID), 10), ev); err != nil {
			l.Warn("user_event_error", "type", "admin_logged_in", "error", err)
		}
	}

	return &LoginResult{Token: token, ExpiresAt: exp, Admin: admin}, nil
}

func (s *AuthService) passwordMatches(l *slog.Logger, stored, password string) bool {
	if hash.IsBcrypt(stored) {
		return hash.CheckPassword(stored, password)
	}
	if !s.LegacyPlaintext {
		l.Warn("admin_login_rejected", "reason", "stored password is not a bcrypt hash")
		return false
	}
	l.Warn("admin_legacy_password", "reason", "plaintext admin password in use, reprovision with cmd/admin")
	return hash.EqualPlain(stored, password)
}

// ProvisionAdmin stores a bcrypt hash for the admin with this email,
// creating the row if needed. The email is kept as given, matching how
// AdminLogin looks it up.
func (s *AuthService) ProvisionAdmin(ctx context.Context, name, email, password string) (*models.Admin, bool, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, false, invalid(missingField(name, email, password), "Name, email and password are required")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	admin := &models.Admin{Name: name, Email: email, Password: pwHash, Role: models.RoleAdmin}
	created, err := s.Repo.UpsertAdmin(ctx, admin)
	if err != nil {
		return nil, false, fmt.Errorf("save admin: %w", err)
	}
	return admin, created, nil
}
