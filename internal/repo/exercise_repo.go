// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Exercise
// model, including the filtered log query.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
)

// LogFilter narrows a log query. Nil bounds and a non-positive Limit impose
// no restriction.
type LogFilter struct {
	From  *time.Time // inclusive lower bound on Date
	To    *time.Time // inclusive upper bound on Date
	Limit int        // cap applied after filtering
}

// CreateExercise inserts a new exercise row for username.
func CreateExercise(ctx context.Context, db *gorm.DB, username, description string, duration int, date time.Time) (*domain.Exercise, error) {
	e := &domain.Exercise{
		ID:          uuid.NewString(),
		Username:    username,
		Description: description,
		Duration:    duration,
		Date:        date.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// GetExercise fetches an exercise by ID.
func GetExercise(ctx context.Context, db *gorm.DB, id string) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExercises returns the exercises logged under username that match f,
// ordered by (date ASC, created_at ASC, id ASC).
func ListExercises(ctx context.Context, db *gorm.DB, username string, f LogFilter) ([]domain.Exercise, error) {
	out := []domain.Exercise{}
	q := db.WithContext(ctx).Where("username = ?", username)
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.UTC())
	}
	q = q.Order("date ASC, created_at ASC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&out).Error
	return out, err
}
