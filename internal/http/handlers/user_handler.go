// User HTTP handlers.
//
// This file exposes the user endpoints:
//   - GET  /users  (list, ETag support)
//   - POST /users  (create-or-fetch by username)
//
// Handlers are transport-thin: they bind input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
	"github.com/tbourn/go-exercise-tracker/internal/services"
)

//
// Service contracts (context-aware)
//

// UserService defines user operations consumed by HTTP handlers.
type UserService interface {
	// List returns every user ordered by creation time.
	List(ctx context.Context) ([]domain.User, error)
	// FindOrCreate returns the user with username, creating it if absent.
	FindOrCreate(ctx context.Context, username string) (*domain.User, bool, error)
	// Stats returns the user count and newest CreatedAt for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// ExerciseService defines exercise logging operations.
type ExerciseService interface {
	// Add records an exercise for a user.
	Add(ctx context.Context, in services.AddExerciseInput) (*services.AddExerciseResult, error)
	// Log returns a user's filtered exercise log.
	Log(ctx context.Context, userID string, p services.LogParams) (*services.ExerciseLog, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for users and exercises.
type Handlers struct {
	userSvc UserService
	exSvc   ExerciseService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(userSvc UserService, exSvc ExerciseService) *Handlers {
	return &Handlers{userSvc: userSvc, exSvc: exSvc}
}

//
// DTOs
//

// CreateUserRequest is the create-or-fetch payload (form or JSON).
type CreateUserRequest struct {
	Username string `form:"username" json:"username" example:"fcc_test"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID       string `json:"id" example:"5fb5853f-734a-4e1d-9c1c-3e1f4f6ad4a0"`
	Username string `json:"username" example:"fcc_test"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

//
// Handlers
//

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Description Returns every user. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Users
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"users:3:1704067200\")
//
// @Success     200  {array}  handlers.UserResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxTS, err := h.userSvc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"users:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	users, err := h.userSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error", err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	ok(c, http.StatusOK, out)
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create or fetch a user
// @Description Returns the existing user with this username, or creates one. Usernames are trimmed and NFC-normalized.
// @Tags        Users
// @Accept      x-www-form-urlencoded
// @Accept      json
// @Produce     json
//
// @Param       username  formData  string  true  "Username"  example(fcc_test)
//
// @Success     200  {object}  handlers.UserResponse  "Existing user"
// @Success     201  {object}  handlers.UserResponse  "Created"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid username"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}

	u, created, err := h.userSvc.FindOrCreate(c.Request.Context(), req.Username)
	switch {
	case errors.Is(err, services.ErrInvalidUsername):
		fail(c, http.StatusBadRequest, ErrCodeInvalidUsername, MsgInvalidUsername)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, toUserResponse(u))
}
