// Package services – ExerciseService
//
// This file implements ExerciseService, which records exercise entries and
// serves a user's filtered log. It resolves the owning user first, validates
// the duration, resolves the calendar date (falling back to today in the
// configured zone) and persists the entry together with its idempotency
// record when the client supplied a key.
//
// Observability: public methods are OpenTelemetry-instrumented and feed the
// business counters in package observability.
package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
	"github.com/tbourn/go-exercise-tracker/internal/observability"
	"github.com/tbourn/go-exercise-tracker/internal/repo"
	"github.com/tbourn/go-exercise-tracker/internal/utils"
)

var durationRE = regexp.MustCompile(`^\d+$`)

// ExerciseService coordinates exercise persistence and log queries.
type ExerciseService struct {
	DB *gorm.DB

	// Location decides which calendar day "today" is when a request omits
	// the date. Nil means UTC.
	Location *time.Location

	// IdempotencyTTL is how long a recorded Idempotency-Key replays.
	IdempotencyTTL time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// AddExerciseInput carries the raw add-exercise form values.
type AddExerciseInput struct {
	UserID         string
	Description    string
	Duration       string
	Date           string
	IdempotencyKey string
}

// AddExerciseResult is the persisted (or replayed) entry and its owner.
type AddExerciseResult struct {
	User     *domain.User
	Exercise *domain.Exercise
	Replayed bool
}

// LogParams carries the raw log query values. Invalid values impose no
// restriction.
type LogParams struct {
	From  string
	To    string
	Limit string
}

// ExerciseLog is a user together with the filtered entries of their log.
type ExerciseLog struct {
	User      *domain.User
	Exercises []domain.Exercise
}

// Count is the number of entries returned.
func (l *ExerciseLog) Count() int { return len(l.Exercises) }

// Add records an exercise for in.UserID.
//
// The user is resolved first and ErrUserNotFound short-circuits everything
// else. A key seen before for this user replays the original entry. Otherwise
// the duration is validated (ErrInvalidDuration, nothing written) and the
// entry is stored.
func (s *ExerciseService) Add(ctx context.Context, in AddExerciseInput) (*AddExerciseResult, error) {
	tr := otel.Tracer("services/ExerciseService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.Bool("idempotent", in.IdempotencyKey != ""),
		),
	)
	defer span.End()

	user, err := s.user(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if res, err := s.replay(ctx, user, in.IdempotencyKey); err == nil {
			return res, nil
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	duration, err := ParseDuration(in.Duration)
	if err != nil {
		observability.RecordValidationFailure(observability.ReasonInvalidDuration)
		return nil, err
	}
	date := s.resolveDate(in.Date)

	var ex *domain.Exercise
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := repo.CreateExercise(ctx, tx, user.Username, in.Description, duration, date)
		if err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			// Expired rows still hold the unique (user_id, key) slot.
			if _, err := repo.DeleteExpiredIdempotency(ctx, tx, user.ID, in.IdempotencyKey, s.now()); err != nil {
				return err
			}
			if _, err := repo.CreateIdempotency(ctx, tx, user.ID, in.IdempotencyKey, e.ID, 201, s.IdempotencyTTL); err != nil {
				return err
			}
		}
		ex = e
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won the insert.
		return s.replay(ctx, user, in.IdempotencyKey)
	}
	if err != nil {
		return nil, err
	}

	observability.RecordExerciseCreated()
	return &AddExerciseResult{User: user, Exercise: ex}, nil
}

// Log returns the entries logged by userID filtered by p, ordered by date
// ascending.
func (s *ExerciseService) Log(ctx context.Context, userID string, p LogParams) (*ExerciseLog, error) {
	tr := otel.Tracer("services/ExerciseService")
	ctx, span := tr.Start(ctx, "Log",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := ParseLogFilter(p)
	span.SetAttributes(
		attribute.Bool("filter.from", f.From != nil),
		attribute.Bool("filter.to", f.To != nil),
		attribute.Int("filter.limit", f.Limit),
	)

	items, err := repo.ListExercises(ctx, s.DB, user.Username, f)
	if err != nil {
		return nil, err
	}
	return &ExerciseLog{User: user, Exercises: items}, nil
}

// ParseDuration accepts a string of ASCII digits that fits an int.
func ParseDuration(s string) (int, error) {
	if !durationRE.MatchString(s) {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return n, nil
}

// ParseLogFilter converts raw query values into a repo.LogFilter. Dates that
// do not parse and limits that are not positive integers are dropped.
func ParseLogFilter(p LogParams) repo.LogFilter {
	var f repo.LogFilter
	if d, ok := utils.ParseDate(p.From); ok {
		f.From = &d
	}
	if d, ok := utils.ParseDate(p.To); ok {
		f.To = &d
	}
	if n := utils.AtoiDefault(p.Limit, 0); n > 0 {
		f.Limit = n
	}
	return f
}

func (s *ExerciseService) user(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			observability.RecordValidationFailure(observability.ReasonUnknownUser)
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// replay returns the entry recorded under (user, key), or repo.ErrNotFound.
func (s *ExerciseService) replay(ctx context.Context, user *domain.User, key string) (*AddExerciseResult, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, user.ID, key, s.now())
	if err != nil {
		return nil, err
	}
	ex, err := repo.GetExercise(ctx, s.DB, rec.ExerciseID)
	if err != nil {
		return nil, err
	}
	return &AddExerciseResult{User: user, Exercise: ex, Replayed: true}, nil
}

func (s *ExerciseService) resolveDate(raw string) time.Time {
	if d, ok := utils.ParseDate(raw); ok {
		return d
	}
	return utils.Today(s.now(), s.Location)
}

func (s *ExerciseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
