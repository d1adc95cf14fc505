// Package domain defines the persistence models for users and their exercise
// entries. These types are mapped with GORM and form the core data layer of
// the exercise tracker.
package domain

import (
	"time"
)

// DateLayout renders calendar dates the way clients expect them
// (for example "Mon Jan 01 2024").
const DateLayout = "Mon Jan 02 2006"

// User is an account identified by a username. Usernames are unique by
// convention only: the lookup-or-create flow checks before inserting, but the
// schema does not enforce uniqueness.
//
// Fields:
//   - ID: UUID primary key assigned at creation (char(36)).
//   - Username: lookup key; indexed, not unique.
//   - CreatedAt: creation timestamp; drives listing order.
type User struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(255);not null;index:idx_users_username"`
	CreatedAt time.Time `json:"-"        gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Exercise is a single logged activity. It carries a copy of the owner's
// username taken at creation time rather than a foreign key, so it is not
// touched by anything that later happens to the user row.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Username: denormalized owner username; first column of idx_exercise_log.
//   - Description: free text.
//   - Duration: non-negative, unit-less count.
//   - Date: calendar day stored as midnight UTC; second column of idx_exercise_log.
//   - CreatedAt: insertion timestamp; tie-breaker for log ordering.
type Exercise struct {
	ID          string    `json:"-"           gorm:"type:char(36);primaryKey"`
	Username    string    `json:"-"           gorm:"type:varchar(255);not null;index:idx_exercise_log,priority:1"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Duration    int       `json:"duration"    gorm:"not null;check:duration >= 0"`
	Date        time.Time `json:"-"           gorm:"not null;index:idx_exercise_log,priority:2"`
	CreatedAt   time.Time `json:"-"`
}

// TableName returns the database table name for Exercise.
func (Exercise) TableName() string { return "exercises" }

// DateString renders the exercise date as a human-readable calendar string.
func (e Exercise) DateString() string { return FormatDate(e.Date) }

// FormatDate renders t's calendar day using DateLayout. The day is read in UTC
// because dates are persisted as midnight UTC.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// CalendarDay truncates t to the calendar day it falls on in its own location
// and returns that day as midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
