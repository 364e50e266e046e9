package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest is the request body for POST /users/register
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PostCode  string `json:"post_code"`
	Country   string `json:"country"`
	Position  string `json:"position"`
}

// Validate implements Validator.
func (s RegisterRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(s.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(s.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	return errs
}

// LoginRequest is the request body for POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /users/login
type LoginResponse struct {
	JWT  string       `json:"jwt"`
	User *domain.User `json:"user"`
}

// TokenRefreshRequest is the request body for POST /users/token-refresh
type TokenRefreshRequest struct {
	JWT string `json:"jwt"`
}

// Validate implements Validator.
func (t TokenRefreshRequest) Validate() []string {
	if strings.TrimSpace(t.JWT) == "" {
		return []string{"jwt is required"}
	}
	return nil
}

// TokenResponse is the response body for POST /users/token-refresh
type TokenResponse struct {
	JWT string `json:"jwt"`
}

// UpdateUserRequest is the request body for PUT /users/{userID}. All fields are optional.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	PostCode  *string `json:"post_code"`
	Country   *string `json:"country"`
	Position  *string `json:"position"`
}

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string {
	var errs []string
	if u.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*u.Email))
		if email == "" {
			errs = append(errs, "email cannot be empty")
		} else if !emailRegexp.MatchString(email) {
			errs = append(errs, "invalid email format")
		}
	}
	if u.Password != nil && len(*u.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) == "" {
		errs = append(errs, "first_name cannot be empty")
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) == "" {
		errs = append(errs, "last_name cannot be empty")
	}
	return errs
}

// UserListResponse is the response body for GET /users
type UserListResponse struct {
	UserCount  int                    `json:"userCount"`
	Users      []*domain.Member       `json:"users"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// RegisterSuccessResponse is the success response envelope for POST /users/register (201).
type RegisterSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoginSuccessResponse is the success response envelope for POST /users/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TokenSuccessResponse is the success response envelope for POST /users/token-refresh (200).
type TokenSuccessResponse struct {
	Data  TokenResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserListSuccessResponse is the success response envelope for GET /users (200).
type UserListSuccessResponse struct {
	Data  UserListResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MemberSuccessResponse is the success response envelope for GET /users/{userID} (200).
type MemberSuccessResponse struct {
	Data  *domain.Member    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateUserSuccessResponse is the success response envelope for PUT /users/{userID} (200).
type UpdateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles user profile and auth endpoints.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and sends a welcome email. Emails are unique, case-insensitively.
// @Tags users
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account data"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/register [post]
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user := domain.NewUser(req.Email, req.FirstName, req.LastName, req.PostCode, req.Country, req.Position, time.Time{}, time.Time{})
	if err := c.Service.Register(r.Context(), user, req.Password); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a session token. Send it back in the JWT header or as a Bearer token.
// @Tags users
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} controllers.LoginSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/login [post]
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{JWT: token, User: user})
}

// RefreshToken godoc
// @Summary Refresh a session token
// @Description Returns a new token with a fresh expiry for a still-valid token.
// @Tags users
// @Accept json
// @Produce json
// @Param body body TokenRefreshRequest true "Current token"
// @Success 200 {object} controllers.TokenSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/token-refresh [post]
func (c *UserController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRefreshRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.Service.RefreshToken(r.Context(), strings.TrimSpace(req.JWT))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TokenResponse{JWT: token})
}

// List godoc
// @Summary List visible users
// @Description The caller and every user sharing a space with them, paginated.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.UserListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	users, total, err := c.Service.ListVisible(r.Context(), userID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if users == nil {
		users = []*domain.Member{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UserListResponse{
		UserCount:  total,
		Users:      users,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get a visible user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.MemberSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	member, err := c.Service.GetVisible(r.Context(), id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, member)
}

// Update godoc
// @Summary Update a user profile
// @Description Partial update of the caller's own profile. Changing the password revokes other sessions.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Param body body UpdateUserRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateUserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [put]
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := c.Service.Update(r.Context(), id, userID, domain.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		PostCode:  req.PostCode,
		Country:   req.Country,
		Position:  req.Position,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Description Deletes the caller's own account, their memberships, and the bookings they organize.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}
