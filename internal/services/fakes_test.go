package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"roombook/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(id, email string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &domain.User{ID: id, Email: email, FirstName: id}
	f.byID[id] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeSpaceRepo is an in-memory SpaceRepository for tests.
type fakeSpaceRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Space
	order    []string
	nextID   int
	codeErrs []error // returned by Create/SetInviteCode in order, before succeeding
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{byID: make(map[string]*domain.Space), nextID: 1}
}

func (f *fakeSpaceRepo) add(s *domain.Space) *domain.Space {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.UserIDs == nil {
		s.UserIDs = []string{}
	}
	f.byID[s.ID] = s
	f.order = append(f.order, s.ID)
	return s
}

func (f *fakeSpaceRepo) popCodeErr() error {
	if len(f.codeErrs) == 0 {
		return nil
	}
	err := f.codeErrs[0]
	f.codeErrs = f.codeErrs[1:]
	return err
}

func (f *fakeSpaceRepo) Create(ctx context.Context, s *domain.Space) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popCodeErr(); err != nil {
		return err
	}
	s.ID = fmt.Sprintf("space-%d", f.nextID)
	f.nextID++
	f.byID[s.ID] = s
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeSpaceRepo) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		cp := *s
		cp.UserIDs = append([]string{}, s.UserIDs...)
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSpaceRepo) GetByInviteCode(ctx context.Context, code string) (*domain.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.InviteCode == code {
			cp := *s
			cp.UserIDs = append([]string{}, s.UserIDs...)
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSpaceRepo) ListByMember(ctx context.Context, userID string) ([]*domain.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Space
	for _, id := range f.order {
		s, ok := f.byID[id]
		if !ok {
			continue
		}
		member := s.AdminID == userID
		for _, uid := range s.UserIDs {
			if uid == userID {
				member = true
			}
		}
		if member {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSpaceRepo) Update(ctx context.Context, s *domain.Space) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSpaceRepo) SetInviteCode(ctx context.Context, spaceID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popCodeErr(); err != nil {
		return err
	}
	s, ok := f.byID[spaceID]
	if !ok {
		return domain.ErrNotFound
	}
	s.InviteCode = code
	return nil
}

func (f *fakeSpaceRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSpaceRepo) AddMember(ctx context.Context, spaceID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[spaceID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, id := range s.UserIDs {
		if id == userID {
			return domain.ErrAlreadyMember
		}
	}
	s.UserIDs = append(s.UserIDs, userID)
	return nil
}

func (f *fakeSpaceRepo) RemoveMember(ctx context.Context, spaceID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[spaceID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := s.UserIDs[:0]
	for _, id := range s.UserIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	s.UserIDs = kept
	return nil
}

// fakeRoomRepo is an in-memory RoomRepository for tests.
type fakeRoomRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Room
	order  []string
	nextID int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{byID: make(map[string]*domain.Room), nextID: 1}
}

func (f *fakeRoomRepo) add(id, spaceID string) *domain.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &domain.Room{ID: id, SpaceID: spaceID, Name: "Room " + id, Capacity: 4}
	f.byID[id] = r
	f.order = append(f.order, id)
	return r
}

func (f *fakeRoomRepo) Create(ctx context.Context, r *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = fmt.Sprintf("room-%d", f.nextID)
	f.nextID++
	f.byID[r.ID] = r
	f.order = append(f.order, r.ID)
	return nil
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoomRepo) ListBySpaceIDs(ctx context.Context, spaceIDs []string) ([]*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[string]bool, len(spaceIDs))
	for _, id := range spaceIDs {
		want[id] = true
	}
	var out []*domain.Room
	for _, id := range f.order {
		if r, ok := f.byID[id]; ok && want[r.SpaceID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) Update(ctx context.Context, r *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRoomRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeBookingRepo is an in-memory BookingRepository. InRoomTx holds a per-room lock and
// applies buffered writes only when fn succeeds.
type fakeBookingRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Booking
	nextID  int
	rooms   *fakeRoomRepo
	roomMus map[string]*sync.Mutex
	listErr error
	// createErr is returned by tx.Create.
	createErr error
	// beforeTx runs once the room lock is held, standing in for a writer that committed first.
	beforeTx func()
}

func newFakeBookingRepo(rooms *fakeRoomRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:    make(map[string]*domain.Booking),
		nextID:  1,
		rooms:   rooms,
		roomMus: make(map[string]*sync.Mutex),
	}
}

func (f *fakeBookingRepo) add(b *domain.Booking) *domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[b.ID] = b
	return b
}

func (f *fakeBookingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeBookingRepo) sorted(filter func(*domain.Booking) bool) []*domain.Booking {
	var out []*domain.Booking
	for _, b := range f.byID {
		if filter(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) ListByRoomIDs(ctx context.Context, roomIDs []string) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		want[id] = true
	}
	return f.sorted(func(b *domain.Booking) bool { return want[b.RoomID] }), nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBookingRepo) roomLock(roomID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.roomMus[roomID]
	if !ok {
		m = &sync.Mutex{}
		f.roomMus[roomID] = m
	}
	return m
}

func (f *fakeBookingRepo) InRoomTx(ctx context.Context, roomID string, fn func(tx domain.BookingTx) error) error {
	if _, err := f.rooms.GetByID(ctx, roomID); err != nil {
		return domain.UnknownRoom(roomID)
	}
	lock := f.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()
	if f.beforeTx != nil {
		f.beforeTx()
	}

	tx := &fakeBookingTx{repo: f}
	if err := fn(tx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range tx.pending {
		cp := *b
		f.byID[b.ID] = &cp
	}
	return nil
}

type fakeBookingTx struct {
	repo    *fakeBookingRepo
	pending []*domain.Booking
}

func (t *fakeBookingTx) GetForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return t.repo.GetByID(ctx, id)
}

func (t *fakeBookingTx) ListByRoomID(ctx context.Context, roomID string) ([]*domain.Booking, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	return t.repo.sorted(func(b *domain.Booking) bool { return b.RoomID == roomID }), nil
}

func (t *fakeBookingTx) Create(ctx context.Context, b *domain.Booking) error {
	if t.repo.createErr != nil {
		return t.repo.createErr
	}
	t.repo.mu.Lock()
	b.ID = fmt.Sprintf("booking-%d", t.repo.nextID)
	t.repo.nextID++
	t.repo.mu.Unlock()
	t.pending = append(t.pending, b)
	return nil
}

func (t *fakeBookingTx) Update(ctx context.Context, b *domain.Booking) error {
	t.repo.mu.Lock()
	_, ok := t.repo.byID[b.ID]
	t.repo.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	t.pending = append(t.pending, b)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer encodes claims into the token string and counts issued tokens.
type fakeTokenIssuer struct {
	mu     sync.Mutex
	issued int
}

func (f *fakeTokenIssuer) Issue(c domain.SessionClaims, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return fmt.Sprintf("%s|%s|%s|%d", c.UserID, c.Email, c.PasswordFingerprint, f.issued), nil
}

func (f *fakeTokenIssuer) Parse(token string) (domain.SessionClaims, error) {
	var parts [4]string
	n := 0
	start := 0
	for i := 0; i < len(token) && n < 3; i++ {
		if token[i] == '|' {
			parts[n] = token[start:i]
			n++
			start = i + 1
		}
	}
	if n != 3 {
		return domain.SessionClaims{}, errors.New("malformed token")
	}
	parts[3] = token[start:]
	return domain.SessionClaims{UserID: parts[0], Email: parts[1], PasswordFingerprint: parts[2]}, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu          sync.Mutex
	welcomes    []*domain.WelcomeMessageEmailData
	invitations []*domain.BookingInvitationEmailData
	err         error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, d *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, d)
	return f.err
}

func (f *fakeEmailService) SendBookingInvitation(ctx context.Context, d *domain.BookingInvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations = append(f.invitations, d)
	return f.err
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, e domain.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}
