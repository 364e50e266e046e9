package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
)

// CreateRoomRequest is the request body for POST /rooms.
type CreateRoomRequest struct {
	SpaceID     string `json:"space_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateRoomRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.SpaceID) == "" {
		errs = append(errs, "space_id is required")
	} else if !helpers.ValidUUID(c.SpaceID) {
		errs = append(errs, "space_id must be a UUID")
	}
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must be non-negative")
	}
	return errs
}

// UpdateRoomRequest is the request body for PUT /rooms/{roomID}. All fields are optional.
type UpdateRoomRequest struct {
	SpaceID     *string `json:"space_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

// Validate implements Validator.
func (u UpdateRoomRequest) Validate() []string {
	var errs []string
	if u.SpaceID != nil && !helpers.ValidUUID(*u.SpaceID) {
		errs = append(errs, "space_id must be a UUID")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must be non-negative")
	}
	return errs
}

// RoomSuccessResponse is the success envelope for single-room responses.
type RoomSuccessResponse struct {
	Data  *domain.Room      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListRoomsSuccessResponse is the success envelope for GET /rooms (200).
type ListRoomsSuccessResponse struct {
	Data  []*domain.Room    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RoomController handles room endpoints.
type RoomController struct {
	Logger  *slog.Logger
	Service domain.RoomService
}

// NewRoomController creates a RoomController with the given logger and service.
func NewRoomController(logger *slog.Logger, svc domain.RoomService) *RoomController {
	return &RoomController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List rooms
// @Description Rooms of every space the caller administers or belongs to.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListRoomsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms [get]
func (c *RoomController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	rooms, err := c.Service.List(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// Get godoc
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} controllers.RoomSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms/{roomID} [get]
func (c *RoomController) Get(w http.ResponseWriter, r *http.Request) {
	roomID, ok := helpers.PathID(w, r, "roomID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	room, err := c.Service.Get(r.Context(), roomID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}

// Create godoc
// @Summary Create a room
// @Description Adds a room to a space. Only the space admin may do this.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRoomRequest true "Room data"
// @Success 201 {object} controllers.RoomSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms [post]
func (c *RoomController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	room := domain.NewRoom(req.SpaceID, req.Name, req.Description, req.Capacity, time.Time{}, time.Time{})
	if err := c.Service.Create(r.Context(), userID, room); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// Update godoc
// @Summary Update a room
// @Description Partial update by the space admin. Moving a room requires admin rights on the target space too.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID (UUID)"
// @Param body body UpdateRoomRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.RoomSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms/{roomID} [put]
func (c *RoomController) Update(w http.ResponseWriter, r *http.Request) {
	roomID, ok := helpers.PathID(w, r, "roomID")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	room, err := c.Service.Update(r.Context(), roomID, userID, domain.RoomPatch{
		SpaceID:     req.SpaceID,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}

// Delete godoc
// @Summary Delete a room
// @Description Deletes a room and its bookings. Only the space admin may do this.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rooms/{roomID} [delete]
func (c *RoomController) Delete(w http.ResponseWriter, r *http.Request) {
	roomID, ok := helpers.PathID(w, r, "roomID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), roomID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}
