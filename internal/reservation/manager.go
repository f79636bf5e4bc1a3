package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/deskhive/workspace-reservation/internal/lockmap"
	"github.com/deskhive/workspace-reservation/internal/model"
	"github.com/deskhive/workspace-reservation/internal/pricing"
	"github.com/deskhive/workspace-reservation/internal/queue"
	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// Actor identifies who triggered a transition.  OrgID is the organization
// the actor books under; non-admin actors may only touch workspaces of that
// organization.  The system actor is used by the sweeper for automatic
// completion.
type Actor struct {
	ID    uint64
	Email string
	OrgID uint64
	Admin bool
}

// SystemActor is used for transitions triggered by the engine itself.
var SystemActor = Actor{Email: "system"}

func (a Actor) label() string {
	if a.Email != "" {
		return a.Email
	}
	if a.ID != 0 {
		return fmt.Sprintf("user:%d", a.ID)
	}
	return "system"
}

// CreateRequest carries the inputs for Manager.Create.
type CreateRequest struct {
	WorkspaceID  uint64
	Occupant     Actor
	Date         string // YYYY-MM-DD
	Interval     schedule.Interval
	Participants uint32
	Notes        *string
}

// Manager is the reservation state machine.  It validates a booking request
// against the availability index and the organization cap, commits it, and
// drives the cancel/complete transitions.  The check-then-insert sequence in
// Create is serialized per (workspace, date) through the lock map so two
// concurrent overlapping requests can never both succeed, while unrelated
// workspaces stay fully concurrent.
type Manager struct {
	orgs        OrganizationStore
	workspaces  WorkspaceStore
	bookings    BookingStore
	checkins    CheckInStore
	avail       *Availability
	calc        *pricing.Calculator
	locks       *lockmap.Map
	lockTimeout time.Duration
	events      EventSink
	cache       SlotCache
	now         Clock
}

// NewManager wires the reservation engine.  events and cache may be nil in
// tests; now defaults to time.Now when nil.
func NewManager(
	orgs OrganizationStore,
	workspaces WorkspaceStore,
	bookings BookingStore,
	checkins CheckInStore,
	avail *Availability,
	calc *pricing.Calculator,
	lockTimeout time.Duration,
	events EventSink,
	cache SlotCache,
	now Clock,
) *Manager {
	if now == nil {
		now = time.Now
	}
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &Manager{
		orgs:        orgs,
		workspaces:  workspaces,
		bookings:    bookings,
		checkins:    checkins,
		avail:       avail,
		calc:        calc,
		locks:       lockmap.New(),
		lockTimeout: lockTimeout,
		events:      events,
		cache:       cache,
		now:         now,
	}
}

// Availability exposes the index so handlers can serve free-slot queries
// from the same view the engine validates against.
func (m *Manager) Availability() *Availability { return m.avail }

// Quote prices an interval on a workspace without committing anything.
func (m *Manager) Quote(ctx context.Context, workspaceID uint64, iv schedule.Interval) (int64, error) {
	ws, err := m.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	if !ws.Enabled {
		return 0, ErrResourceUnavailable
	}
	return m.calc.Quote(pricing.Rate{HourlyCents: ws.HourlyRateCents, BaseCents: ws.BasePriceCents}, iv)
}

func lockKey(workspaceID uint64, date string) string {
	return fmt.Sprintf("%d:%s", workspaceID, date)
}

func orgLockKey(organizationID uint64, date string) string {
	return fmt.Sprintf("org:%d:%s", organizationID, date)
}

// Create validates and commits a confirmed booking.  Validation order:
// interval, workspace existence and enabled flag, capacity, then under the
// per-(workspace, date) lock the overlap check and the organization's daily
// booking cap.  Every rejection is one of the typed errors in this package;
// lock-acquisition timeout surfaces lockmap.ErrBusy so callers know to retry
// the same interval rather than pick a new one.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrInvalidInterval, err)
	}
	if err := req.Interval.Validate(); err != nil {
		return nil, err
	}
	window := m.avail.Window()
	if req.Interval.Start < window.Start || req.Interval.End > window.End {
		return nil, fmt.Errorf("%w: %s is outside the operating window %s",
			schedule.ErrInvalidInterval, req.Interval, window)
	}

	ws, err := m.workspaces.Get(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !req.Occupant.Admin && req.Occupant.OrgID != ws.OrganizationID {
		return nil, ErrForbidden
	}
	if !ws.Enabled {
		return nil, ErrResourceUnavailable
	}
	if req.Participants == 0 || req.Participants > ws.Capacity {
		return nil, &CapacityError{WorkspaceID: ws.ID, Capacity: ws.Capacity, Requested: req.Participants}
	}
	org, err := m.orgs.Get(ctx, ws.OrganizationID)
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()
	release, err := m.locks.Acquire(lockCtx, lockKey(ws.ID, date))
	if err != nil {
		return nil, err
	}
	defer release()

	free, blocking, err := m.avail.IsFree(ctx, ws.ID, date, req.Interval)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, &ConflictError{
			WorkspaceID: ws.ID,
			Date:        date,
			Requested:   req.Interval,
			Blocking:    blocking.Interval(),
		}
	}
	if org.EnforcesBookingCap() {
		// The cap spans every workspace of the organization, so the count
		// must be serialized across them too.  Lock order is always
		// workspace first, organization second.
		quotaCtx, cancelQuota := context.WithTimeout(ctx, m.lockTimeout)
		defer cancelQuota()
		releaseQuota, err := m.locks.Acquire(quotaCtx, orgLockKey(org.ID, date))
		if err != nil {
			return nil, err
		}
		defer releaseQuota()
		count, err := m.bookings.CountForOrganizationDate(ctx, org.ID, date)
		if err != nil {
			return nil, err
		}
		if count >= int(*org.BookingCap) {
			return nil, &QuotaError{OrganizationID: org.ID, Date: date, Cap: *org.BookingCap}
		}
	}

	price, err := m.calc.Quote(pricing.Rate{HourlyCents: ws.HourlyRateCents, BaseCents: ws.BasePriceCents}, req.Interval)
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		Reference:      uuid.NewString(),
		WorkspaceID:    ws.ID,
		OrganizationID: ws.OrganizationID,
		OccupantID:     req.Occupant.ID,
		OccupantEmail:  req.Occupant.Email,
		Date:           date,
		StartMinute:    req.Interval.Start,
		EndMinute:      req.Interval.End,
		Participants:   req.Participants,
		Status:         model.BookingConfirmed,
		PriceCents:     price,
		Notes:          req.Notes,
	}
	if err := m.bookings.Insert(ctx, b); err != nil {
		return nil, err
	}
	m.invalidate(ctx, b)
	m.emit(ctx, b, "", model.BookingConfirmed, req.Occupant)
	return b, nil
}

// Cancel transitions a confirmed booking to cancelled and releases its
// interval immediately.  Cancelling an already-cancelled booking is a no-op
// success so retried network calls stay safe.  Non-admin actors may only
// cancel their own bookings and only before the start instant.
func (m *Manager) Cancel(ctx context.Context, bookingID uint64, actor Actor) error {
	b, err := m.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if !actor.Admin && b.OccupantID != actor.ID {
		return ErrForbidden
	}
	switch b.Status {
	case model.BookingCancelled:
		return nil // idempotent
	case model.BookingCompleted:
		return ErrTooLateToCancel
	}
	if !actor.Admin && !m.now().UTC().Before(b.StartAt()) {
		return ErrTooLateToCancel
	}
	prev := b.Status
	b.Status = model.BookingCancelled
	if err := m.bookings.UpdateIfUnchanged(ctx, b, b.Version); err != nil {
		return err
	}
	m.invalidate(ctx, b)
	m.emit(ctx, b, prev, model.BookingCancelled, actor)
	return nil
}

// Complete finalizes a confirmed booking once its end instant has passed.
// A booking that never saw a check-in is completed with the no-show
// annotation instead of silently vanishing, keeping audit trails whole.  An
// open check-in is closed at the booking's end instant.  Called by the
// sweeper; calling it on a non-confirmed or not-yet-due booking is a no-op.
func (m *Manager) Complete(ctx context.Context, bookingID uint64) error {
	b, err := m.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != model.BookingConfirmed {
		return nil
	}
	if m.now().UTC().Before(b.EndAt()) {
		return nil
	}
	hadCheckIn, err := m.checkins.AnyForBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	if ci, err := m.checkins.ActiveForBooking(ctx, b.ID); err == nil {
		end := b.EndAt()
		ci.CheckOutTime = &end
		ci.Status = model.CheckInCompleted
		if err := m.checkins.Update(ctx, ci); err != nil {
			return err
		}
		m.emitCheckIn(ctx, ci, model.CheckInActive, model.CheckInCompleted, SystemActor)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	prev := b.Status
	b.Status = model.BookingCompleted
	b.NoShow = !hadCheckIn
	if err := m.bookings.UpdateIfUnchanged(ctx, b, b.Version); err != nil {
		return err
	}
	m.invalidate(ctx, b)
	m.emit(ctx, b, prev, model.BookingCompleted, SystemActor)
	return nil
}

func (m *Manager) invalidate(ctx context.Context, b *model.Booking) {
	if m.cache != nil {
		m.cache.Invalidate(ctx, b.WorkspaceID, b.Date)
	}
}

func (m *Manager) emit(ctx context.Context, b *model.Booking, prev, next string, actor Actor) {
	if m.events == nil {
		return
	}
	ev := queue.StateChangedEvent{
		EventID:        uuid.NewString(),
		EntityType:     queue.EntityBooking,
		EntityID:       b.Reference,
		WorkspaceID:    b.WorkspaceID,
		OrganizationID: b.OrganizationID,
		Date:           b.Date,
		Interval:       b.Interval().String(),
		PreviousState:  prev,
		NewState:       next,
		NoShow:         b.NoShow,
		Actor:          actor.label(),
		Timestamp:      m.now().UTC().Format(time.RFC3339),
	}
	if err := m.events.Publish(ctx, ev); err != nil {
		log.Printf("reservation: publish %s event for booking %s failed: %v", next, b.Reference, err)
	}
}

func (m *Manager) emitCheckIn(ctx context.Context, ci *model.CheckIn, prev, next string, actor Actor) {
	if m.events == nil {
		return
	}
	ev := queue.StateChangedEvent{
		EventID:       uuid.NewString(),
		EntityType:    queue.EntityCheckIn,
		EntityID:      fmt.Sprintf("%d", ci.ID),
		WorkspaceID:   ci.WorkspaceID,
		PreviousState: prev,
		NewState:      next,
		Actor:         actor.label(),
		Timestamp:     m.now().UTC().Format(time.RFC3339),
	}
	if err := m.events.Publish(ctx, ev); err != nil {
		log.Printf("reservation: publish %s event for checkin %d failed: %v", next, ci.ID, err)
	}
}
