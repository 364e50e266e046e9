package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
	"roombook/internal/scheduling"
)

// Availability query defaults.
const (
	defaultAvailabilityWindow = 24 * time.Hour
	defaultIntervalMinutes    = 30
)

// CreateBookingRequest is the request body for POST /bookings.
type CreateBookingRequest struct {
	RoomID         string    `json:"room_id"`
	PrimaryUserID  string    `json:"primary_user_id"`
	InvitedUserIDs []string  `json:"invited_user_ids"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// Validate implements Validator.
func (c CreateBookingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.RoomID) == "" {
		errs = append(errs, "room_id is required")
	} else if !helpers.ValidUUID(c.RoomID) {
		errs = append(errs, "room_id must be a UUID")
	}
	if c.PrimaryUserID != "" && !helpers.ValidUUID(c.PrimaryUserID) {
		errs = append(errs, "primary_user_id must be a UUID")
	}
	for _, id := range c.InvitedUserIDs {
		if !helpers.ValidUUID(id) {
			errs = append(errs, "invited_user_ids must be UUIDs")
			break
		}
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime.IsZero() {
		errs = append(errs, "end_time is required")
	}
	return errs
}

// UpdateBookingRequest is the request body for PUT /bookings/{bookingID}. Omitted fields are unchanged.
type UpdateBookingRequest struct {
	RoomID         *string    `json:"room_id"`
	PrimaryUserID  *string    `json:"primary_user_id"`
	InvitedUserIDs *[]string  `json:"invited_user_ids"`
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
}

// Validate implements Validator.
func (u UpdateBookingRequest) Validate() []string {
	var errs []string
	if u.RoomID != nil && !helpers.ValidUUID(*u.RoomID) {
		errs = append(errs, "room_id must be a UUID")
	}
	if u.PrimaryUserID != nil && !helpers.ValidUUID(*u.PrimaryUserID) {
		errs = append(errs, "primary_user_id must be a UUID")
	}
	if u.InvitedUserIDs != nil {
		for _, id := range *u.InvitedUserIDs {
			if !helpers.ValidUUID(id) {
				errs = append(errs, "invited_user_ids must be UUIDs")
				break
			}
		}
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

func (u UpdateBookingRequest) patch() domain.BookingPatch {
	return domain.BookingPatch{
		RoomID:         u.RoomID,
		PrimaryUserID:  u.PrimaryUserID,
		InvitedUserIDs: u.InvitedUserIDs,
		Title:          u.Title,
		Description:    u.Description,
		StartTime:      u.StartTime,
		EndTime:        u.EndTime,
	}
}

// BookingListResponse is the response body for GET /bookings.
type BookingListResponse struct {
	BookingCount int               `json:"bookingCount"`
	Bookings     []*domain.Booking `json:"bookings"`
}

// BookingsPerRoomResponse is the response body for GET /bookings/room.
type BookingsPerRoomResponse struct {
	BookingsPerRoom []domain.RoomBookings `json:"bookingsPerRoom"`
}

// BookingSuccessResponse is the success envelope for single-booking responses.
type BookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BookingListSuccessResponse is the success envelope for GET /bookings (200).
type BookingListSuccessResponse struct {
	Data  BookingListResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// BookingsPerRoomSuccessResponse is the success envelope for GET /bookings/room (200).
type BookingsPerRoomSuccessResponse struct {
	Data  BookingsPerRoomResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// AvailabilitySuccessResponse is the success envelope for GET /bookings/available-time-slots (200).
type AvailabilitySuccessResponse struct {
	Data  *domain.AvailabilityReport `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// BookingController handles booking endpoints.
type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
	Now     func() time.Time
}

// NewBookingController creates a BookingController with the given logger and service.
func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
		Now:     time.Now,
	}
}

// List godoc
// @Summary List bookings
// @Description Bookings in rooms of the caller's spaces, optionally filtered by organizer/invitee role and time range.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param primary_user query bool false "true: only bookings the caller organizes; false: only those they do not"
// @Param invited_user query bool false "true: only bookings the caller is invited to; false: only those they are not"
// @Param start_time query string false "RFC 3339; keeps bookings ending at or after this instant"
// @Param end_time query string false "RFC 3339; keeps bookings starting at or before this instant"
// @Success 200 {object} controllers.BookingListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [get]
func (c *BookingController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var filter domain.BookingFilter
	var err error
	if filter.PrimaryUser, err = helpers.QueryBool(r, "primary_user"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if filter.InvitedUser, err = helpers.QueryBool(r, "invited_user"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if filter.From, err = helpers.QueryTime(r, "start_time"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if filter.To, err = helpers.QueryTime(r, "end_time"); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	bookings, err := c.Service.List(r.Context(), userID, filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookingListResponse{BookingCount: len(bookings), Bookings: bookings})
}

// Get godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [get]
func (c *BookingController) Get(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := helpers.PathID(w, r, "bookingID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	booking, err := c.Service.Get(r.Context(), bookingID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// ListPerRoom godoc
// @Summary List booked ranges per room
// @Description Booked ranges grouped by room for the caller's rooms. Only rooms with bookings in range appear.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "RFC 3339, default now"
// @Param end_time query string false "RFC 3339, unbounded when omitted"
// @Success 200 {object} controllers.BookingsPerRoomSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/room [get]
func (c *BookingController) ListPerRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, err := helpers.QueryTime(r, "start_time")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	to, err := helpers.QueryTime(r, "end_time")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	start := c.Now()
	if from != nil {
		start = *from
	}
	perRoom, err := c.Service.ListPerRoom(r.Context(), userID, start, to)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if perRoom == nil {
		perRoom = []domain.RoomBookings{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookingsPerRoomResponse{BookingsPerRoom: perRoom})
}

// Availability godoc
// @Summary Free time slots and occupancy
// @Description Free slots of every room in the caller's spaces, the most used room, and current occupancy.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "RFC 3339, default now"
// @Param end_time query string false "RFC 3339, default start_time + 24h"
// @Param interval query int false "Slot length in minutes, default 30"
// @Success 200 {object} controllers.AvailabilitySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/available-time-slots [get]
func (c *BookingController) Availability(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, err := helpers.QueryTime(r, "start_time")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	to, err := helpers.QueryTime(r, "end_time")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	interval, err := helpers.QueryInt(r, "interval", defaultIntervalMinutes)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if interval > scheduling.MaxIntervalMinutes {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest,
			fmt.Sprintf("interval must be at most %d minutes", scheduling.MaxIntervalMinutes))
		return
	}
	now := c.Now()
	q := domain.AvailabilityQuery{From: now, IntervalMinutes: interval, At: now}
	if from != nil {
		q.From = *from
	}
	q.To = q.From.Add(defaultAvailabilityWindow)
	if to != nil {
		q.To = *to
	}
	report, err := c.Service.Availability(r.Context(), userID, q)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// Create godoc
// @Summary Create a booking
// @Description Books a room in one of the caller's spaces. The caller is the organizer unless primary_user_id is set. Invitees are emailed.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookingRequest true "Booking data"
// @Success 201 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation, unknown room, or overlap)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [post]
func (c *BookingController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	now := c.Now()
	booking := domain.NewBooking(req.RoomID, req.PrimaryUserID, req.InvitedUserIDs, strings.TrimSpace(req.Title),
		req.Description, req.StartTime, req.EndTime, now, now)
	if err := c.Service.Create(r.Context(), userID, booking); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// Update godoc
// @Summary Update a booking
// @Description Partial update by the organizer or an invitee. Changing room or times re-checks for overlaps.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Param body body UpdateBookingRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation, unknown room, or overlap)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [put]
func (c *BookingController) Update(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := helpers.PathID(w, r, "bookingID")
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	booking, err := c.Service.Update(r.Context(), bookingID, userID, req.patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// Delete godoc
// @Summary Delete a booking
// @Description Deletes a booking the caller organizes or is invited to. Returns the deleted booking.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) Delete(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := helpers.PathID(w, r, "bookingID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	booking, err := c.Service.Delete(r.Context(), bookingID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}
