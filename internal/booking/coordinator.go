// Package booking implements the booking-request lifecycle: the
// availability resolver that proposes candidate rooms and the
// coordinator that drives the pending -> approved/rejected state
// machine.  Approval runs resolve, reserve and mark-approved inside a
// single database transaction; the conditional room UPDATE in the
// catalog is the serialization point, so two coordinators racing for
// the same rooms can both be live and exactly one wins.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/queue"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// Notifier delivers a booking outcome to the external payment and
// notification collaborator.  The coordinator calls it strictly after
// commit and never awaits or retries on its behalf; a failure is
// logged, not rolled back into the approval.
type Notifier interface {
	Notify(ctx context.Context, ev queue.BookingOutcomeEvent) error
}

// Approval describes a successfully approved booking request: the
// rooms it claimed and the identifiers the caller needs to report the
// outcome.
type Approval struct {
	RequestID uint64
	Reference string
	HotelID   uint64
	Email     string
	RoomIDs   []uint64
}

// Coordinator owns the booking-request state machine.  It is the only
// component that mutates room status on the approval path; check-in
// and check-out go through the room catalog directly.
type Coordinator struct {
	db       *sql.DB
	rooms    *repository.RoomRepo
	ledger   *repository.BookingRequestRepo
	notifier Notifier
}

// NewCoordinator constructs a Coordinator.  db, rooms and ledger must
// be non-nil; notifier may be nil, in which case outcomes are not
// emitted.
func NewCoordinator(db *sql.DB, rooms *repository.RoomRepo, ledger *repository.BookingRequestRepo, notifier Notifier) *Coordinator {
	if db == nil || rooms == nil || ledger == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{db: db, rooms: rooms, ledger: ledger, notifier: notifier}
}

// Resolve proposes the rooms an approval for hotelID/roomType/roomsNeeded
// would claim, without mutating anything.  Candidates are the first
// roomsNeeded AVAILABLE rooms of the type in ascending insertion order,
// so repeated resolution against an unchanged snapshot returns the same
// sequence.  The result is only a proposal; Approve re-validates at
// commit time.
func (c *Coordinator) Resolve(ctx context.Context, hotelID uint64, roomType string, roomsNeeded int) ([]uint64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()
	ids, err := c.rooms.ListAvailableIDsByTypeTx(ctx, tx, hotelID, roomType)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(ids) < roomsNeeded {
		return nil, &InsufficientInventoryError{RoomType: roomType, Needed: roomsNeeded, Available: len(ids)}
	}
	return ids[:roomsNeeded], nil
}

// Approve transitions a pending request to APPROVED and reserves the
// matching rooms.  On a lost reservation race (repository.ErrConflict)
// it retries resolution once against the post-mutation state; a second
// loss surfaces as InsufficientInventoryError without mutating the
// request.  Calling Approve on an already-settled request returns
// repository.ErrInvalidState and performs no side effect.
func (c *Coordinator) Approve(ctx context.Context, requestID uint64) (*Approval, error) {
	ap, err := c.approveOnce(ctx, requestID)
	if errors.Is(err, repository.ErrConflict) {
		ap, err = c.approveOnce(ctx, requestID)
		if errors.Is(err, repository.ErrConflict) {
			return nil, c.shortfall(ctx, requestID)
		}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	c.emit(queue.BookingOutcomeEvent{
		RequestID:  ap.RequestID,
		Reference:  ap.Reference,
		HotelID:    ap.HotelID,
		Email:      ap.Email,
		Outcome:    string(model.RequestApproved),
		RoomIDs:    ap.RoomIDs,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return ap, nil
}

// approveOnce performs one resolve+reserve+mark attempt in a single
// transaction.  The request row is locked first so the pending check
// holds until commit.
func (c *Coordinator) approveOnce(ctx context.Context, requestID uint64) (*Approval, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := c.ledger.GetForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending {
		return nil, repository.ErrInvalidState
	}

	ids, err := c.rooms.ListAvailableIDsByTypeTx(ctx, tx, req.HotelID, req.RoomType)
	if err != nil {
		return nil, err
	}
	needed := int(req.RoomsNeeded)
	if len(ids) < needed {
		return nil, &InsufficientInventoryError{RoomType: req.RoomType, Needed: needed, Available: len(ids)}
	}
	candidate := ids[:needed]

	if err := c.rooms.ReserveTx(ctx, tx, req.HotelID, candidate); err != nil {
		return nil, err
	}
	if err := c.ledger.MarkApprovedTx(ctx, tx, requestID, candidate); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &Approval{
		RequestID: req.ID,
		Reference: req.Reference,
		HotelID:   req.HotelID,
		Email:     req.Email,
		RoomIDs:   candidate,
	}, nil
}

// shortfall reports the capacity deficit after the bounded retry also
// lost its race.  Counts are read fresh so the error reflects
// post-mutation state.
func (c *Coordinator) shortfall(ctx context.Context, requestID uint64) error {
	req, err := c.ledger.GetByID(ctx, requestID)
	if err != nil {
		return storageErr(err)
	}
	available, err := c.rooms.CountAvailable(ctx, req.HotelID, req.RoomType)
	if err != nil {
		return storageErr(err)
	}
	needed := int(req.RoomsNeeded)
	// The count runs outside the losing transactions, so inventory
	// released in between can make it reach or exceed the need again.
	// Both attempts already proved the request at least one room short
	// at decision time; cap the report so the deficit stays positive.
	if available >= needed {
		available = needed - 1
	}
	return &InsufficientInventoryError{
		RoomType:  req.RoomType,
		Needed:    needed,
		Available: available,
	}
}

// Reject transitions a pending request to REJECTED with a reason.  Room
// state is never touched on this path.  Rejecting an already-settled
// request returns repository.ErrInvalidState and performs no side
// effect.
func (c *Coordinator) Reject(ctx context.Context, requestID uint64, reason string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := c.ledger.GetForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return storageErr(err)
	}
	if req.Status != model.RequestPending {
		return repository.ErrInvalidState
	}
	if err := c.ledger.MarkRejectedTx(ctx, tx, requestID, reason); err != nil {
		return storageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(err)
	}
	committed = true

	c.emit(queue.BookingOutcomeEvent{
		RequestID:  req.ID,
		Reference:  req.Reference,
		HotelID:    req.HotelID,
		Email:      req.Email,
		Outcome:    string(model.RequestRejected),
		Reason:     reason,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// emit hands the outcome to the notifier on its own goroutine with a
// fresh deadline, so a slow collaborator never holds up the caller or
// any inventory lock.
func (c *Coordinator) emit(ev queue.BookingOutcomeEvent) {
	if c.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.notifier.Notify(ctx, ev); err != nil {
			log.Printf("coordinator: outcome notify failed for request %d: %v", ev.RequestID, err)
		}
	}()
}
