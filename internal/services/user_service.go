// Package services – UserService
//
// This file implements UserService, which owns user registration and lookup.
// Usernames are trimmed and Unicode NFC-normalized before use so that visually
// identical names typed on different keyboards resolve to the same user.
//
// Create-or-fetch is a lookup followed by an insert and is not atomic:
// concurrent requests for the same new username may both insert.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
	"github.com/tbourn/go-exercise-tracker/internal/observability"
)

// UserRepo defines the repository contract required by UserService.
type UserRepo interface {
	// CreateUser inserts a new user row.
	CreateUser(ctx context.Context, db *gorm.DB, username string) (*domain.User, error)

	// FindUserByUsername returns the oldest user with exactly this username.
	FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error)

	// ListUsers returns every user ordered by creation time.
	ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error)

	// UsersStats returns the user count and the newest CreatedAt.
	UsersStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)
}

// UserService provides user-level operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo

	// MaxUsernameRunes caps accepted usernames; 0 disables the check.
	MaxUsernameRunes int
}

// NewUserService constructs a UserService whose username cap matches the
// users.username column width.
func NewUserService(db *gorm.DB, r UserRepo) *UserService {
	return &UserService{
		DB:               db,
		Repo:             r,
		MaxUsernameRunes: 255,
	}
}

// List returns every user ordered by creation time ascending.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "List")
	defer span.End()

	return s.Repo.ListUsers(ctx, s.DB)
}

// Stats returns the inputs for the users list ETag.
func (s *UserService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.UsersStats(ctx, s.DB)
}

// FindOrCreate returns the existing user named username or creates one.
// created reports whether a new row was inserted.
func (s *UserService) FindOrCreate(ctx context.Context, username string) (u *domain.User, created bool, err error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "FindOrCreate")
	defer span.End()

	username = NormalizeUsername(username)
	if username == "" || (s.MaxUsernameRunes > 0 && utf8.RuneCountInString(username) > s.MaxUsernameRunes) {
		observability.RecordValidationFailure(observability.ReasonInvalidUsername)
		return nil, false, ErrInvalidUsername
	}
	span.SetAttributes(attribute.String("user.name", username))

	u, err = s.Repo.FindUserByUsername(ctx, s.DB, username)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	u, err = s.Repo.CreateUser(ctx, s.DB, username)
	if err != nil {
		return nil, false, err
	}
	observability.RecordUserCreated()
	span.SetAttributes(attribute.Bool("user.created", true))
	return u, true, nil
}

// NormalizeUsername trims surrounding whitespace and applies Unicode NFC.
func NormalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
