package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
)

// CreateSpaceRequest is the request body for POST /spaces. The caller becomes the admin.
type CreateSpaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateSpaceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must be non-negative")
	}
	return errs
}

// UpdateSpaceRequest is the request body for PUT /spaces/{spaceID}. All fields are optional.
type UpdateSpaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

// Validate implements Validator.
func (u UpdateSpaceRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must be non-negative")
	}
	return errs
}

// JoinSpaceRequest is the request body for POST /spaces/join.
type JoinSpaceRequest struct {
	InviteCode string `json:"invite_code"`
}

// Validate implements Validator.
func (j JoinSpaceRequest) Validate() []string {
	if strings.TrimSpace(j.InviteCode) == "" {
		return []string{"invite_code is required"}
	}
	return nil
}

// SpaceSuccessResponse is the success envelope for single-space responses.
type SpaceSuccessResponse struct {
	Data  *domain.Space     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListSpacesSuccessResponse is the success envelope for GET /spaces (200).
type ListSpacesSuccessResponse struct {
	Data  []*domain.Space   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SpaceController handles space and membership endpoints.
type SpaceController struct {
	Logger  *slog.Logger
	Service domain.SpaceService
}

// NewSpaceController creates a SpaceController with the given logger and service.
func NewSpaceController(logger *slog.Logger, svc domain.SpaceService) *SpaceController {
	return &SpaceController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List spaces
// @Description Spaces the caller administers or belongs to.
// @Tags spaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListSpacesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces [get]
func (c *SpaceController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaces, err := c.Service.List(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if spaces == nil {
		spaces = []*domain.Space{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, spaces)
}

// Get godoc
// @Summary Get a space
// @Tags spaces
// @Produce json
// @Security BearerAuth
// @Param spaceID path string true "Space ID (UUID)"
// @Success 200 {object} controllers.SpaceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/{spaceID} [get]
func (c *SpaceController) Get(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := helpers.PathID(w, r, "spaceID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	space, err := c.Service.Get(r.Context(), spaceID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, space)
}

// Create godoc
// @Summary Create a space
// @Description Creates a space administered by the caller, with a fresh invite code.
// @Tags spaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSpaceRequest true "Space data"
// @Success 201 {object} controllers.SpaceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces [post]
func (c *SpaceController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSpaceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	space := domain.NewSpace(userID, req.Name, req.Description, req.Capacity, time.Time{}, time.Time{})
	if err := c.Service.Create(r.Context(), userID, space); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, space)
}

// Update godoc
// @Summary Update a space
// @Description Partial update. Admin only.
// @Tags spaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param spaceID path string true "Space ID (UUID)"
// @Param body body UpdateSpaceRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.SpaceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/{spaceID} [put]
func (c *SpaceController) Update(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := helpers.PathID(w, r, "spaceID")
	if !ok {
		return
	}
	var req UpdateSpaceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	space, err := c.Service.Update(r.Context(), spaceID, userID, domain.SpacePatch{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, space)
}

// Delete godoc
// @Summary Delete a space
// @Description Deletes a space with its rooms and bookings. Admin only.
// @Tags spaces
// @Produce json
// @Security BearerAuth
// @Param spaceID path string true "Space ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/{spaceID} [delete]
func (c *SpaceController) Delete(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := helpers.PathID(w, r, "spaceID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), spaceID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}

// Join godoc
// @Summary Join a space
// @Description Redeems an invite code. Redeeming a code for a space the caller already belongs to is a conflict.
// @Tags spaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinSpaceRequest true "Invite code"
// @Success 200 {object} controllers.SpaceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/join [post]
func (c *SpaceController) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinSpaceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	space, err := c.Service.Join(r.Context(), strings.TrimSpace(req.InviteCode), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, space)
}

// Leave godoc
// @Summary Leave a space
// @Description Removes the caller from the space. The admin cannot leave.
// @Tags spaces
// @Produce json
// @Security BearerAuth
// @Param spaceID path string true "Space ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/{spaceID}/leave [post]
func (c *SpaceController) Leave(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := helpers.PathID(w, r, "spaceID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.Leave(r.Context(), spaceID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "left"})
}

// RegenerateInviteCode godoc
// @Summary Regenerate a space's invite code
// @Description Replaces the invite code; the old one stops working. Admin only.
// @Tags spaces
// @Produce json
// @Security BearerAuth
// @Param spaceID path string true "Space ID (UUID)"
// @Success 200 {object} controllers.SpaceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /spaces/{spaceID}/invite-code [post]
func (c *SpaceController) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := helpers.PathID(w, r, "spaceID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	space, err := c.Service.RegenerateInviteCode(r.Context(), spaceID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, space)
}
