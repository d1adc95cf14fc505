package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
	"github.com/tbourn/go-exercise-tracker/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func newExerciseService(t *testing.T) (*ExerciseService, *domain.User) {
	t.Helper()
	db := newServiceDB(t)
	u, err := repo.CreateUser(context.Background(), db, "ann")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &ExerciseService{
		DB:             db,
		Location:       time.UTC,
		IdempotencyTTL: time.Hour,
		Now:            fixedClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}, u
}

func countExercises(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Exercise{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestParseDuration(t *testing.T) {
	good := map[string]int{"0": 0, "30": 30, "007": 7}
	for in, want := range good {
		got, err := ParseDuration(in)
		if err != nil || got != want {
			t.Fatalf("ParseDuration(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	bad := []string{"", "abc", "-5", "1.5", " 30", "30 ", "+3", "1e3", "٣", "99999999999999999999999"}
	for _, in := range bad {
		if _, err := ParseDuration(in); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("ParseDuration(%q) err = %v; want ErrInvalidDuration", in, err)
		}
	}
}

func TestParseLogFilter(t *testing.T) {
	f := ParseLogFilter(LogParams{From: "2024-01-01", To: "2024-01-31", Limit: "5"})
	if f.From == nil || f.To == nil || f.Limit != 5 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if !f.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", f.From)
	}

	for _, p := range []LogParams{
		{},
		{From: "garbage", To: "2024-99-99", Limit: "abc"},
		{Limit: "0"},
		{Limit: "-3"},
	} {
		f := ParseLogFilter(p)
		if f.From != nil || f.To != nil || f.Limit != 0 {
			t.Fatalf("ParseLogFilter(%+v) = %+v; want zero filter", p, f)
		}
	}
}

func TestAdd_DefaultsDateToToday(t *testing.T) {
	s, u := newExerciseService(t)

	res, err := s.Add(context.Background(), AddExerciseInput{UserID: u.ID, Description: "run", Duration: "30"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res.Replayed || res.User.ID != u.ID || res.Exercise.Username != "ann" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Exercise.Duration != 30 || res.Exercise.Description != "run" {
		t.Fatalf("unexpected exercise: %+v", res.Exercise)
	}
	if got := res.Exercise.DateString(); got != "Mon Jan 01 2024" {
		t.Fatalf("date = %q; want today", got)
	}
}

func TestAdd_TodayUsesConfiguredLocation(t *testing.T) {
	s, u := newExerciseService(t)
	// 02:00 UTC on Jan 2 is still Jan 1 in UTC-5.
	s.Now = fixedClock(time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC))
	s.Location = time.FixedZone("UTC-5", -5*3600)

	res, err := s.Add(context.Background(), AddExerciseInput{UserID: u.ID, Description: "swim", Duration: "10", Date: "not a date"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := res.Exercise.DateString(); got != "Mon Jan 01 2024" {
		t.Fatalf("date = %q; want Mon Jan 01 2024", got)
	}
}

func TestAdd_ExplicitDate(t *testing.T) {
	s, u := newExerciseService(t)

	res, err := s.Add(context.Background(), AddExerciseInput{UserID: u.ID, Description: "bike", Duration: "45", Date: "2023-07-04"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := res.Exercise.DateString(); got != "Tue Jul 04 2023" {
		t.Fatalf("date = %q", got)
	}
}

func TestAdd_UnknownUser_WritesNothing(t *testing.T) {
	s, _ := newExerciseService(t)

	_, err := s.Add(context.Background(), AddExerciseInput{UserID: "missing", Description: "run", Duration: "abc"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound before duration validation, got %v", err)
	}
	if n := countExercises(t, s.DB); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestAdd_InvalidDuration_WritesNothing(t *testing.T) {
	s, u := newExerciseService(t)

	for _, d := range []string{"abc", "-5", "", "2.5"} {
		if _, err := s.Add(context.Background(), AddExerciseInput{UserID: u.ID, Description: "run", Duration: d}); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("duration %q: expected ErrInvalidDuration, got %v", d, err)
		}
	}
	if n := countExercises(t, s.DB); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestAdd_IdempotencyKeyReplays(t *testing.T) {
	s, u := newExerciseService(t)
	in := AddExerciseInput{UserID: u.ID, Description: "run", Duration: "30", IdempotencyKey: "abc-123"}

	first, err := s.Add(context.Background(), in)
	if err != nil || first.Replayed {
		t.Fatalf("first Add: %+v, %v", first, err)
	}

	in.Duration = "99" // ignored on replay
	second, err := s.Add(context.Background(), in)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if !second.Replayed || second.Exercise.ID != first.Exercise.ID || second.Exercise.Duration != 30 {
		t.Fatalf("expected replay of first exercise, got %+v", second.Exercise)
	}
	if n := countExercises(t, s.DB); n != 1 {
		t.Fatalf("expected one row, got %d", n)
	}

	// A different key creates a new entry.
	in.IdempotencyKey = "other"
	third, err := s.Add(context.Background(), in)
	if err != nil || third.Replayed || third.Exercise.Duration != 99 {
		t.Fatalf("third Add: %+v, %v", third, err)
	}
}

func TestAdd_IdempotencyKeyExpires(t *testing.T) {
	s, u := newExerciseService(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Now = fixedClock(start)
	in := AddExerciseInput{UserID: u.ID, Description: "run", Duration: "30", IdempotencyKey: "k"}

	if _, err := s.Add(context.Background(), in); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	// The stored record expires relative to wall-clock creation time; push
	// the service clock far past any TTL.
	s.Now = fixedClock(time.Now().Add(48 * time.Hour))
	res, err := s.Add(context.Background(), in)
	if err != nil {
		t.Fatalf("Add after expiry: %v", err)
	}
	if res.Replayed {
		t.Fatalf("expired key must not replay")
	}
	if n := countExercises(t, s.DB); n != 2 {
		t.Fatalf("expected two rows, got %d", n)
	}
}

func TestAdd_ReusedKeyOnlyFreesItsOwnSlot(t *testing.T) {
	s, u := newExerciseService(t)
	past := time.Now().UTC().Add(-2 * time.Hour)
	for _, rec := range []domain.Idempotency{
		{ID: "mine", UserID: u.ID, Key: "k", CreatedAt: past, ExpiresAt: past.Add(time.Minute)},
		{ID: "other-key", UserID: u.ID, Key: "k2", CreatedAt: past, ExpiresAt: past.Add(time.Minute)},
		{ID: "other-user", UserID: "someone", Key: "k", CreatedAt: past, ExpiresAt: past.Add(time.Minute)},
	} {
		rec := rec
		if err := s.DB.Create(&rec).Error; err != nil {
			t.Fatalf("seed %s: %v", rec.ID, err)
		}
	}

	s.Now = fixedClock(time.Now())
	in := AddExerciseInput{UserID: u.ID, Description: "run", Duration: "30", IdempotencyKey: "k"}
	res, err := s.Add(context.Background(), in)
	if err != nil || res.Replayed {
		t.Fatalf("Add: %+v, %v", res, err)
	}

	var ids []string
	s.DB.Model(&domain.Idempotency{}).Where("id IN ?", []string{"mine", "other-key", "other-user"}).Order("id").Pluck("id", &ids)
	if len(ids) != 2 || ids[0] != "other-key" || ids[1] != "other-user" {
		t.Fatalf("expected only the reused slot purged, left %v", ids)
	}
}

func TestLog_FiltersAndLimit(t *testing.T) {
	s, u := newExerciseService(t)
	for _, d := range []string{"2024-02-01", "2024-01-01", "2024-01-15"} {
		if _, err := s.Add(context.Background(), AddExerciseInput{UserID: u.ID, Description: d, Duration: "1", Date: d}); err != nil {
			t.Fatalf("seed %s: %v", d, err)
		}
	}

	all, err := s.Log(context.Background(), u.ID, LogParams{})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if all.Count() != 3 || all.Exercises[0].Description != "2024-01-01" || all.Exercises[2].Description != "2024-02-01" {
		t.Fatalf("unexpected log: %+v", all.Exercises)
	}
	if all.User.ID != u.ID || all.User.Username != "ann" {
		t.Fatalf("unexpected user: %+v", all.User)
	}

	ranged, err := s.Log(context.Background(), u.ID, LogParams{From: "2024-01-10", To: "2024-01-31"})
	if err != nil || ranged.Count() != 1 || ranged.Exercises[0].Description != "2024-01-15" {
		t.Fatalf("ranged log = %+v, %v", ranged, err)
	}

	limited, err := s.Log(context.Background(), u.ID, LogParams{Limit: "2"})
	if err != nil || limited.Count() != 2 {
		t.Fatalf("limited log = %+v, %v", limited, err)
	}

	ignored, err := s.Log(context.Background(), u.ID, LogParams{From: "nope", Limit: "x"})
	if err != nil || ignored.Count() != 3 {
		t.Fatalf("invalid params should be ignored: %+v, %v", ignored, err)
	}
}

func TestLog_UnknownUser(t *testing.T) {
	s, _ := newExerciseService(t)
	if _, err := s.Log(context.Background(), "missing", LogParams{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
