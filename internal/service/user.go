package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/hash"
	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/models"
)

type UserRepo interface {
	UserEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UserService struct {
	Repo   UserRepo
	Events events.Publisher
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, invalid(missingField(name, email, in.Password), "Name, email and password are required")
	}

	exists, err := s.Repo.UserEmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: pwHash,
		Role:     models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	if s.Events != nil {
		sctx, cancel := sideEffectContext(ctx)
		defer cancel()
		ev := events.New("user_registered", map[string]any{"user_id": user.ID, "email": user.Email})
		if err := s.Events.PublishEvent(sctx, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), ev); err != nil {
			l.Warn("user_event_error", "type", "user_registered", "error", err)
		}
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func missingField(name, email, password string) string {
	switch {
	case name == "":
		return "name"
	case email == "":
		return "email"
	case password == "":
		return "password"
	}
	return ""
}
