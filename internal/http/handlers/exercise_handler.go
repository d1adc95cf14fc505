// Exercise HTTP handlers.
//
// This file exposes the exercise endpoints:
//   - POST /users/{id}/exercises  (add, idempotency support)
//   - GET  /users/{id}/logs       (filtered log)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, key), the handler returns that recorded exercise
// with 200 and sets `Idempotency-Replayed: true`.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
	"github.com/tbourn/go-exercise-tracker/internal/http/middleware"
	"github.com/tbourn/go-exercise-tracker/internal/services"
)

//
// DTOs
//

// looseString binds a form value as-is and a JSON value from either a string
// or a bare literal, so {"duration": 30} and {"duration": "30"} both arrive
// as "30". JSON null binds as "".
type looseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = looseString(b)
	return nil
}

// AddExerciseRequest is the add-exercise payload (form or JSON).
type AddExerciseRequest struct {
	Description string      `form:"description" json:"description" example:"run"`
	Duration    looseString `form:"duration" json:"duration" swaggertype:"string" example:"30"`
	Date        looseString `form:"date" json:"date" swaggertype:"string" example:"2024-01-01"`
}

// ExerciseResponse is the owning user merged with the created exercise.
type ExerciseResponse struct {
	ID          string `json:"id" example:"5fb5853f-734a-4e1d-9c1c-3e1f4f6ad4a0"`
	Username    string `json:"username" example:"fcc_test"`
	Description string `json:"description" example:"run"`
	Duration    int    `json:"duration" example:"30"`
	Date        string `json:"date" example:"Mon Jan 01 2024"`
}

// LogEntry is a single exercise in a log response.
type LogEntry struct {
	Description string `json:"description" example:"run"`
	Duration    int    `json:"duration" example:"30"`
	Date        string `json:"date" example:"Mon Jan 01 2024"`
}

// LogResponse is the owning user plus the filtered log.
type LogResponse struct {
	ID       string     `json:"id" example:"5fb5853f-734a-4e1d-9c1c-3e1f4f6ad4a0"`
	Username string     `json:"username" example:"fcc_test"`
	Count    int        `json:"count" example:"1"`
	Log      []LogEntry `json:"log"`
}

func toExerciseResponse(u *domain.User, e *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          u.ID,
		Username:    u.Username,
		Description: e.Description,
		Duration:    e.Duration,
		Date:        e.DateString(),
	}
}

//
// Handlers
//

// AddExercise godoc
// @ID          addExercise
// @Summary     Add an exercise
// @Description Records an exercise for the user. A missing or unparseable date means today.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Exercises
// @Accept      x-www-form-urlencoded
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header    string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path      string  true  "User ID"
// @Param       description      formData  string  false "What was done"       example(run)
// @Param       duration         formData  string  true  "Non-negative integer" example(30)
// @Param       date             formData  string  false "Calendar date; absent or unparseable means today. Accepts 2006-01-02, 2006/1/2, 1/2/2006, RFC 3339, RFC 1123, Mon Jan 02 2006, January 2, 2006, Jan 2 2006 and 2 Jan 2006" example(2024-01-01)
//
// @Success     201  {object}  handlers.ExerciseResponse "Created"
// @Success     200  {object}  handlers.ExerciseResponse "Idempotent replay"
// @Header      200  {string}  Idempotency-Replayed "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid duration"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown user"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/exercises [post]
func (h *Handlers) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	res, err := h.exSvc.Add(c.Request.Context(), services.AddExerciseInput{
		UserID:         c.Param("id"),
		Description:    req.Description,
		Duration:       string(req.Duration),
		Date:           string(req.Date),
		IdempotencyKey: key,
	})
	if err != nil {
		failService(c, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		status = http.StatusOK
	}
	ok(c, status, toExerciseResponse(res.User, res.Exercise))
}

// GetLog godoc
// @ID          getExerciseLog
// @Summary     Get a user's exercise log
// @Description Returns the user's exercises ordered by date. Invalid from/to/limit values are ignored.
// @Tags        Exercises
// @Produce     json
//
// @Param       id     path   string  true  "User ID"
// @Param       from   query  string  false "Inclusive lower date bound"  example(2024-01-01)
// @Param       to     query  string  false "Inclusive upper date bound"  example(2024-12-31)
// @Param       limit  query  int     false "Maximum entries returned"    minimum(1)
//
// @Success     200  {object}  handlers.LogResponse
// @Failure     404  {object}  handlers.ErrorResponse "Unknown user"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/logs [get]
func (h *Handlers) GetLog(c *gin.Context) {
	lg, err := h.exSvc.Log(c.Request.Context(), c.Param("id"), services.LogParams{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: c.Query("limit"),
	})
	if err != nil {
		failService(c, err)
		return
	}

	entries := make([]LogEntry, 0, len(lg.Exercises))
	for _, e := range lg.Exercises {
		entries = append(entries, LogEntry{
			Description: e.Description,
			Duration:    e.Duration,
			Date:        e.DateString(),
		})
	}
	ok(c, http.StatusOK, LogResponse{
		ID:       lg.User.ID,
		Username: lg.User.Username,
		Count:    len(entries),
		Log:      entries,
	})
}

// failService maps exercise service errors to responses.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeUnknownUser, MsgUnknownUser)
	case errors.Is(err, services.ErrInvalidDuration):
		fail(c, http.StatusBadRequest, ErrCodeInvalidDuration, MsgInvalidDuration)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error", err)
	}
}
