package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/queue"
)

// memStore is an in-memory implementation of the store contracts, mirroring
// the semantics the MySQL repositories provide.  It is shared by the engine
// and check-in tests.
type memStore struct {
	mu         sync.Mutex
	orgs       map[uint64]model.Organization
	workspaces map[uint64]model.Workspace
	bookings   map[uint64]model.Booking
	checkins   map[uint64]model.CheckIn
	nextID     uint64
}

func newMemStore() *memStore {
	return &memStore{
		orgs:       make(map[uint64]model.Organization),
		workspaces: make(map[uint64]model.Workspace),
		bookings:   make(map[uint64]model.Booking),
		checkins:   make(map[uint64]model.CheckIn),
	}
}

func (s *memStore) putOrg(o model.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *memStore) putWorkspace(w model.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
}

func (s *memStore) Get(ctx context.Context, id uint64) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// workspaceStore adapts memStore to the WorkspaceStore interface (the Get
// signatures collide otherwise).
type workspaceStore struct{ *memStore }

func (s workspaceStore) Get(ctx context.Context, id uint64) (*model.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (s workspaceStore) List(ctx context.Context, organizationID uint64, includeDisabled bool) ([]model.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Workspace
	for _, w := range s.workspaces {
		if w.OrganizationID != organizationID {
			continue
		}
		if !w.Enabled && !includeDisabled {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s workspaceStore) Insert(ctx context.Context, ws *model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ws.ID = s.nextID
	s.workspaces[ws.ID] = *ws
	return nil
}

func (s workspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.workspaces[ws.ID]
	if !ok {
		return ErrNotFound
	}
	ws.OrganizationID = cur.OrganizationID // immutable
	s.workspaces[ws.ID] = *ws
	return nil
}

// bookingStore adapts memStore to the BookingStore interface.
type bookingStore struct{ *memStore }

func (s bookingStore) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s bookingStore) Insert(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now().UTC()
	s.bookings[b.ID] = *b
	return nil
}

func (s bookingStore) UpdateIfUnchanged(ctx context.Context, b *model.Booking, expectedVersion uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionMismatch
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = *b
	return nil
}

func (s bookingStore) ListForWorkspaceDate(ctx context.Context, workspaceID uint64, date string) ([]model.Booking, error) {
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

func (s bookingStore) CountForOrganizationDate(ctx context.Context, organizationID uint64, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.OrganizationID == organizationID && b.Date == date && b.Status != model.BookingCancelled {
			n++
		}
	}
	return n, nil
}

func (s bookingStore) ListByOccupant(ctx context.Context, occupantID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.OccupantID == occupantID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s bookingStore) SearchByEmail(ctx context.Context, email, date string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.OccupantEmail == email && (date == "" || b.Date == date) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s bookingStore) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Status == model.BookingConfirmed && !b.EndAt().After(cutoff) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// checkInStore adapts memStore to the CheckInStore interface.
type checkInStore struct{ *memStore }

func (s checkInStore) Get(ctx context.Context, id uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.checkins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ci, nil
}

func (s checkInStore) Insert(ctx context.Context, ci *model.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ci.ID = s.nextID
	ci.CreatedAt = time.Now().UTC()
	s.checkins[ci.ID] = *ci
	return nil
}

func (s checkInStore) Update(ctx context.Context, ci *model.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[ci.ID]; !ok {
		return ErrNotFound
	}
	s.checkins[ci.ID] = *ci
	return nil
}

func (s checkInStore) ActiveForBooking(ctx context.Context, bookingID uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.BookingID != nil && *ci.BookingID == bookingID && ci.Status == model.CheckInActive {
			out := ci
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s checkInStore) ActiveForOccupantWorkspace(ctx context.Context, occupantID, workspaceID uint64) (*model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.OccupantID == occupantID && ci.WorkspaceID == workspaceID && ci.Status == model.CheckInActive {
			out := ci
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s checkInStore) AnyForBooking(ctx context.Context, bookingID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ci := range s.checkins {
		if ci.BookingID != nil && *ci.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (s checkInStore) CountActiveForWorkspace(ctx context.Context, workspaceID uint64) (int, error) {
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

// eventRecorder captures published events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []queue.StateChangedEvent
}

func (r *eventRecorder) Publish(ctx context.Context, ev queue.StateChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) all() []queue.StateChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.StateChangedEvent, len(r.events))
	copy(out, r.events)
	return out
}
