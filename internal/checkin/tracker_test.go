package checkin

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/reservation"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// fakeStore implements the reservation store contracts the tracker touches.
type fakeStore struct {
	mu         sync.Mutex
	workspaces map[uint64]model.Workspace
	bookings   map[uint64]model.Booking
	checkins   map[uint64]model.CheckIn
	nextID     uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workspaces: make(map[uint64]model.Workspace),
		bookings:   make(map[uint64]model.Booking),
		checkins:   make(map[uint64]model.CheckIn),
	}
}

type fakeWorkspaces struct{ *fakeStore }

func (s fakeWorkspaces) Get(ctx context.Context, id uint64) (*model.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return &w, nil
}

func (s fakeWorkspaces) List(ctx context.Context, organizationID uint64, includeDisabled bool) ([]model.Workspace, error) {
	return nil, nil
}
func (s fakeWorkspaces) Insert(ctx context.Context, ws *model.Workspace) error { return nil }
func (s fakeWorkspaces) Update(ctx context.Context, ws *model.Workspace) error { return nil }

type fakeBookings struct{ *fakeStore }

func (s fakeBookings) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return &b, nil
}

func (s fakeBookings) Insert(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.bookings[b.ID] = *b
	return nil
}

func (s fakeBookings) UpdateIfUnchanged(ctx context.Context, b *model.Booking, expectedVersion uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
	return nil
}

func (s fakeBookings) ListForWorkspaceDate(ctx context.Context, workspaceID uint64, date string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.WorkspaceID == workspaceID && b.Date == date {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinute < out[j].StartMinute })
	return out, nil
}

func (s fakeBookings) CountForOrganizationDate(ctx context.Context, organizationID uint64, date string) (int, error) {
	return 0, nil
}
func (s fakeBookings) ListByOccupant(ctx context.Context, occupantID uint64) ([]model.Booking, error) {
	return nil, nil
}
func (s fakeBookings) SearchByEmail(ctx context.Context, email, date string) ([]model.Booking, error) {
	return nil, nil
}
func (s fakeBookings) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	return nil, nil
}

type fakeCheckIns struct{ *fakeStore }

func (s fakeCheckIns) Get(ctx context.Context, id uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.checkins[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return &ci, nil
}

func (s fakeCheckIns) Insert(ctx context.Context, ci *model.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ci.ID = s.nextID
	s.checkins[ci.ID] = *ci
	return nil
}

func (s fakeCheckIns) Update(ctx context.Context, ci *model.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkins[ci.ID] = *ci
	return nil
}

func (s fakeCheckIns) ActiveForBooking(ctx context.Context, bookingID uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.BookingID != nil && *ci.BookingID == bookingID && ci.Status == model.CheckInActive {
			out := ci
			return &out, nil
		}
	}
	return nil, reservation.ErrNotFound
}

func (s fakeCheckIns) ActiveForOccupantWorkspace(ctx context.Context, occupantID, workspaceID uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.OccupantID == occupantID && ci.WorkspaceID == workspaceID && ci.Status == model.CheckInActive {
			out := ci
			return &out, nil
		}
	}
	return nil, reservation.ErrNotFound
}

func (s fakeCheckIns) AnyForBooking(ctx context.Context, bookingID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.BookingID != nil && *ci.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (s fakeCheckIns) CountActiveForWorkspace(ctx context.Context, workspaceID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ci := range s.checkins {
		if ci.WorkspaceID == workspaceID && ci.Status == model.CheckInActive {
			n++
		}
	}
	return n, nil
}

type trackerFixture struct {
	store   *fakeStore
	tracker *Tracker
	now     time.Time
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	store := newFakeStore()
	store.workspaces[1] = model.Workspace{
		ID: 1, OrganizationID: 1, Name: "ws-1", Type: model.WorkspaceHotDesk,
		Capacity: 2, HourlyRateCents: 1000, Enabled: true,
	}
	f := &trackerFixture{store: store}
	f.now = parseTime(t, "2024-07-01T09:30:00Z")
	window, err := schedule.ParseInterval("06:00", "22:00")
	if err != nil {
		t.Fatal(err)
	}
	avail := reservation.NewAvailability(fakeWorkspaces{store}, fakeBookings{store}, window)
	f.tracker = NewTracker(
		fakeBookings{store}, fakeCheckIns{store}, fakeWorkspaces{store},
		avail, nil, func() time.Time { return f.now },
	)
	return f
}

func parseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

// addBooking inserts a confirmed booking for occupant 7 on workspace 1,
// 09:00-11:00 on 2024-07-01.
func (f *trackerFixture) addBooking(t *testing.T) *model.Booking {
	t.Helper()
	b := &model.Booking{
		Reference: "ref-a", WorkspaceID: 1, OrganizationID: 1, OccupantID: 7,
		OccupantEmail: "member@org-1.test", Date: "2024-07-01",
		StartMinute: 9 * 60, EndMinute: 11 * 60, Participants: 1,
		Status: model.BookingConfirmed,
	}
	if err := (fakeBookings{f.store}).Insert(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCheckInHappyPath(t *testing.T) {
	f := newTrackerFixture(t)
	b := f.addBooking(t)
	ci, err := f.tracker.CheckIn(context.Background(), b.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if ci.Status != model.CheckInActive || ci.BookingID == nil || *ci.BookingID != b.ID {
		t.Fatalf("check-in = %+v", ci)
	}
	if ci.WalkIn {
		t.Fatal("booking-backed check-in must not be flagged walk-in")
	}
}

func TestCheckInRequiresCoveringBooking(t *testing.T) {
	f := newTrackerFixture(t)
	// No booking at all.
	if _, err := f.tracker.CheckIn(context.Background(), 99, 7); !errors.Is(err, ErrNoActiveBooking) {
		t.Fatalf("missing booking: expected NoActiveBooking, got %v", err)
	}
	b := f.addBooking(t)
	// Wrong occupant.
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 42); !errors.Is(err, ErrNoActiveBooking) {
		t.Fatalf("foreign occupant: expected NoActiveBooking, got %v", err)
	}
	// Before the booking starts.
	f.now = parseTime(t, "2024-07-01T08:00:00Z")
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); !errors.Is(err, ErrNoActiveBooking) {
		t.Fatalf("before start: expected NoActiveBooking, got %v", err)
	}
	// At the (exclusive) end.
	f.now = parseTime(t, "2024-07-01T11:00:00Z")
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); !errors.Is(err, ErrNoActiveBooking) {
		t.Fatalf("at end: expected NoActiveBooking, got %v", err)
	}
	// Cancelled booking.
	f.now = parseTime(t, "2024-07-01T09:30:00Z")
	b.Status = model.BookingCancelled
	f.store.bookings[b.ID] = *b
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); !errors.Is(err, ErrNoActiveBooking) {
		t.Fatalf("cancelled booking: expected NoActiveBooking, got %v", err)
	}
}

func TestCheckInDuplicateRejected(t *testing.T) {
	f := newTrackerFixture(t)
	b := f.addBooking(t)
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("second check-in: expected AlreadyCheckedIn, got %v", err)
	}
}

func TestCheckOutLifecycle(t *testing.T) {
	f := newTrackerFixture(t)
	b := f.addBooking(t)
	ci, err := f.tracker.CheckIn(context.Background(), b.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	f.now = parseTime(t, "2024-07-01T10:45:00Z")
	closed, err := f.tracker.CheckOut(context.Background(), ci.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != model.CheckInCompleted || closed.CheckOutTime == nil || !closed.CheckOutTime.Equal(f.now) {
		t.Fatalf("closed = %+v", closed)
	}
	// Second check-out fails NotActive (not idempotent, per the contract).
	if _, err := f.tracker.CheckOut(context.Background(), ci.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("double check-out: expected NotActive, got %v", err)
	}
	// After check-out the occupant can check in again for the same booking.
	if _, err := f.tracker.CheckIn(context.Background(), b.ID, 7); err != nil {
		t.Fatalf("re-entry after check-out: %v", err)
	}
}

func TestCheckOutUnknown(t *testing.T) {
	f := newTrackerFixture(t)
	if _, err := f.tracker.CheckOut(context.Background(), 99); !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestWalkInEnforcesCapacityAndAvailability(t *testing.T) {
	f := newTrackerFixture(t)
	// First two walk-ins fill the workspace (capacity 2).
	if _, err := f.tracker.WalkIn(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	ci2, err := f.tracker.WalkIn(context.Background(), 1, 101)
	if err != nil {
		t.Fatal(err)
	}
	if !ci2.WalkIn || ci2.BookingID != nil {
		t.Fatalf("walk-in flags wrong: %+v", ci2)
	}
	if _, err := f.tracker.WalkIn(context.Background(), 1, 102); !errors.Is(err, reservation.ErrCapacityExceeded) {
		t.Fatalf("full workspace: expected CapacityExceeded, got %v", err)
	}
	// Free a spot, then block the current minute with a confirmed booking:
	// the walk-in loses to the reservation holder.
	if _, err := f.tracker.CheckOut(context.Background(), ci2.ID); err != nil {
		t.Fatal(err)
	}
	f.addBooking(t) // covers 09:00-11:00, now is 09:30
	if _, err := f.tracker.WalkIn(context.Background(), 1, 102); !errors.Is(err, reservation.ErrSlotConflict) {
		t.Fatalf("booked minute: expected SlotConflict, got %v", err)
	}
}

func TestWalkInDisabledWorkspace(t *testing.T) {
	f := newTrackerFixture(t)
	f.store.workspaces[2] = model.Workspace{ID: 2, OrganizationID: 1, Capacity: 1, Enabled: false}
	if _, err := f.tracker.WalkIn(context.Background(), 2, 100); !errors.Is(err, reservation.ErrResourceUnavailable) {
		t.Fatalf("expected ResourceUnavailable, got %v", err)
	}
	if _, err := f.tracker.WalkIn(context.Background(), 99, 100); !errors.Is(err, reservation.ErrResourceUnavailable) {
		t.Fatalf("unknown workspace: expected ResourceUnavailable, got %v", err)
	}
}

func TestWalkInDuplicateOccupant(t *testing.T) {
	f := newTrackerFixture(t)
	if _, err := f.tracker.WalkIn(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tracker.WalkIn(context.Background(), 1, 100); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected AlreadyCheckedIn, got %v", err)
	}
}
