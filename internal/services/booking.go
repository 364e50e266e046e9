package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"roombook/internal/access"
	"roombook/internal/domain"
	"roombook/internal/metrics"
	"roombook/internal/scheduling"
)

// BookingDeps groups the collaborators of the booking service. Publisher, EmailService and
// Metrics are optional.
type BookingDeps struct {
	Bookings     domain.BookingRepository
	Rooms        domain.RoomRepository
	Users        domain.UserRepository
	Gate         *access.Gate
	Publisher    domain.BookingEventPublisher
	EmailService domain.EmailService
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

type bookingService struct {
	bookingRepo    domain.BookingRepository
	roomRepo       domain.RoomRepository
	userRepo       domain.UserRepository
	gate           *access.Gate
	publisher      domain.BookingEventPublisher
	emailService   domain.EmailService
	metrics        *metrics.Metrics
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService returns a BookingService. Writes to one room are serialized through
// BookingRepository.InRoomTx, so the overlap check and the write commit together.
func NewBookingService(deps BookingDeps, timeout time.Duration) domain.BookingService {
	return &bookingService{
		bookingRepo:    deps.Bookings,
		roomRepo:       deps.Rooms,
		userRepo:       deps.Users,
		gate:           deps.Gate,
		publisher:      deps.Publisher,
		emailService:   deps.EmailService,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		contextTimeout: timeout,
	}
}

// visibleBookings returns the bookings in rooms reachable from the caller's spaces, and those
// rooms' IDs.
func (s *bookingService) visibleBookings(ctx context.Context, userID string) ([]*domain.Booking, []string, error) {
	roomIDs, err := s.gate.VisibleRoomIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(roomIDs) == 0 {
		return []*domain.Booking{}, roomIDs, nil
	}
	bookings, err := s.bookingRepo.ListByRoomIDs(ctx, roomIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, roomIDs, nil
}

// inRange reports whether b touches the closed range [from, to]. Nil bounds are open.
func inRange(b *domain.Booking, from, to *time.Time) bool {
	if from != nil && b.EndTime.Before(*from) {
		return false
	}
	if to != nil && b.StartTime.After(*to) {
		return false
	}
	return true
}

func (s *bookingService) List(ctx context.Context, userID string, filter domain.BookingFilter) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, _, err := s.visibleBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter.PrimaryUser != nil && (b.PrimaryUserID == userID) != *filter.PrimaryUser {
			continue
		}
		if filter.InvitedUser != nil && b.IsInvited(userID) != *filter.InvitedUser {
			continue
		}
		if !inRange(b, filter.From, filter.To) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *bookingService) Get(ctx context.Context, id, userID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.gate.RoomBelongsToUser(ctx, b.RoomID, userID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *bookingService) getBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListPerRoom groups the visible bookings touching [from, to] by room. Rooms without such
// bookings are omitted. A nil to leaves the range open-ended.
func (s *bookingService) ListPerRoom(ctx context.Context, userID string, from time.Time, to *time.Time) ([]domain.RoomBookings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, roomIDs, err := s.visibleBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]domain.Interval)
	for _, b := range bookings {
		if inRange(b, &from, to) {
			grouped[b.RoomID] = append(grouped[b.RoomID], b.Interval())
		}
	}
	out := make([]domain.RoomBookings, 0, len(grouped))
	for _, roomID := range roomIDs {
		if intervals, ok := grouped[roomID]; ok {
			out = append(out, domain.RoomBookings{RoomID: roomID, Bookings: intervals})
		}
	}
	return out, nil
}

// Availability builds the free-slot grid for every visible room and the occupancy summary
// at q.At. Rooms with no bookings are listed with every slot free.
func (s *bookingService) Availability(ctx context.Context, userID string, q domain.AvailabilityQuery) (*domain.AvailabilityReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slots, err := scheduling.GenerateSlots(q.From, q.To, q.IntervalMinutes)
	if err != nil {
		return nil, err
	}
	bookings, roomIDs, err := s.visibleBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := q.At
	if at.IsZero() {
		at = time.Now()
	}

	report := &domain.AvailabilityReport{
		AvailableTimeSlots:   scheduling.RoomAvailability(roomIDs, slots, scheduling.BookedIntervals(bookings, nil)),
		NumberOfRoomsInUse:   scheduling.RoomsInUse(bookings, at),
		NumberOfUsersInRooms: scheduling.UsersInRooms(bookings, at),
	}
	if roomID, ok := scheduling.MostUsedRoom(bookings); ok {
		report.MostUsedRoom = &roomID
	}
	s.metrics.ObserveAvailability(len(slots))
	return report, nil
}

func validateBooking(b *domain.Booking) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.RoomID == "" {
		return domain.Invalid("room_id is required")
	}
	if b.Title == "" {
		return domain.Invalid("title is required")
	}
	if _, err := domain.NewInterval(b.StartTime, b.EndTime); err != nil {
		return err
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *bookingService) requireRoom(ctx context.Context, roomID, userID string) error {
	ok, err := s.gate.RoomBelongsToUser(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.UnknownRoom(roomID)
	}
	return nil
}

// Create stores b after checking the caller can reach its room and that it overlaps no other
// booking in that room. The primary user defaults to the caller.
func (s *bookingService) Create(ctx context.Context, userID string, b *domain.Booking) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	defer func() { s.metrics.ObserveWrite(metrics.OpCreate, err) }()

	if b.PrimaryUserID == "" {
		b.PrimaryUserID = userID
	}
	b.InvitedUserIDs = dedupe(b.InvitedUserIDs)
	if err := validateBooking(b); err != nil {
		return err
	}
	if err := s.requireRoom(ctx, b.RoomID, userID); err != nil {
		return err
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	err = s.bookingRepo.InRoomTx(ctx, b.RoomID, func(tx domain.BookingTx) error {
		existing, err := tx.ListByRoomID(ctx, b.RoomID)
		if err != nil {
			return fmt.Errorf("list room bookings: %w", err)
		}
		if err := scheduling.CheckAvailable(b.RoomID, b.Interval(), existing, ""); err != nil {
			return err
		}
		return tx.Create(ctx, b)
	})
	if err != nil {
		return s.writeError("create booking", err)
	}

	s.publish(ctx, domain.BookingCreated, b)
	s.notifyInvitees(ctx, b, b.InvitedUserIDs)
	return nil
}

// writeError keeps typed booking errors and wraps the rest.
func (s *bookingService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrOverlap), errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownRoom), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *bookingService) Update(ctx context.Context, id, userID string, patch domain.BookingPatch) (updated *domain.Booking, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	defer func() { s.metrics.ObserveWrite(metrics.OpUpdate, err) }()

	current, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessBooking(current, userID) {
		return nil, fmt.Errorf("%w: you do not have permission to update this booking", domain.ErrForbidden)
	}
	if patch.RoomID != nil {
		if err := s.requireRoom(ctx, *patch.RoomID, userID); err != nil {
			return nil, err
		}
	}

	merged := *current
	if patch.RoomID != nil {
		merged.RoomID = *patch.RoomID
	}
	if patch.PrimaryUserID != nil {
		merged.PrimaryUserID = *patch.PrimaryUserID
	}
	if patch.InvitedUserIDs != nil {
		merged.InvitedUserIDs = dedupe(*patch.InvitedUserIDs)
	}
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.StartTime != nil {
		merged.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		merged.EndTime = *patch.EndTime
	}
	if err := validateBooking(&merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	moved := merged.RoomID != current.RoomID ||
		!merged.StartTime.Equal(current.StartTime) ||
		!merged.EndTime.Equal(current.EndTime)

	err = s.bookingRepo.InRoomTx(ctx, merged.RoomID, func(tx domain.BookingTx) error {
		locked, err := tx.GetForUpdate(ctx, current.ID)
		if err != nil {
			return err
		}
		if !locked.UpdatedAt.Equal(current.UpdatedAt) {
			return fmt.Errorf("%w: booking %s was modified concurrently, reload and retry", domain.ErrConflict, current.ID)
		}
		if moved {
			existing, err := tx.ListByRoomID(ctx, merged.RoomID)
			if err != nil {
				return fmt.Errorf("list room bookings: %w", err)
			}
			if err := scheduling.CheckAvailable(merged.RoomID, merged.Interval(), existing, current.ID); err != nil {
				return err
			}
		}
		return tx.Update(ctx, &merged)
	})
	if err != nil {
		return nil, s.writeError("update booking", err)
	}

	var added []string
	for _, uid := range merged.InvitedUserIDs {
		if !current.IsInvited(uid) {
			added = append(added, uid)
		}
	}
	s.publish(ctx, domain.BookingUpdated, &merged)
	s.notifyInvitees(ctx, &merged, added)
	return &merged, nil
}

// Delete removes a booking the caller organizes or is invited to.
func (s *bookingService) Delete(ctx context.Context, id, userID string) (deleted *domain.Booking, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	defer func() { s.metrics.ObserveWrite(metrics.OpDelete, err) }()

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessBooking(b, userID) {
		return nil, fmt.Errorf("%w: you do not have permission", domain.ErrForbidden)
	}
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	s.publish(ctx, domain.BookingDeleted, b)
	return b, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.NewBookingEvent(eventType, b, time.Now())); err != nil {
		s.logger.WarnContext(ctx, "publish booking event failed", "type", eventType, "booking_id", b.ID, "err", err)
	}
}

// notifyInvitees emails each of userIDs about b. Failures are logged, not returned.
func (s *bookingService) notifyInvitees(ctx context.Context, b *domain.Booking, userIDs []string) {
	if s.emailService == nil || len(userIDs) == 0 {
		return
	}
	users, err := s.userRepo.ListByIDs(ctx, append([]string{b.PrimaryUserID}, userIDs...))
	if err != nil {
		s.logger.WarnContext(ctx, "load invitees failed", "booking_id", b.ID, "err", err)
		return
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	var organizer, roomName string
	if u, ok := byID[b.PrimaryUserID]; ok {
		organizer = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if room, err := s.roomRepo.GetByID(ctx, b.RoomID); err == nil {
		roomName = room.Name
	}
	for _, uid := range userIDs {
		u, ok := byID[uid]
		if !ok {
			continue
		}
		data := &domain.BookingInvitationEmailData{
			Email:         u.Email,
			FirstName:     u.FirstName,
			OrganizerName: organizer,
			RoomName:      roomName,
			Title:         b.Title,
			Description:   b.Description,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
		}
		if err := s.emailService.SendBookingInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation email failed", "booking_id", b.ID, "user_id", uid, "err", err)
		}
	}
}
