package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/queue"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// captureNotifier records emitted outcome events for assertions.
type captureNotifier struct {
	ch chan queue.BookingOutcomeEvent
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan queue.BookingOutcomeEvent, 1)}
}

func (n *captureNotifier) Notify(_ context.Context, ev queue.BookingOutcomeEvent) error {
	n.ch <- ev
	return nil
}

func (n *captureNotifier) wait(t *testing.T) queue.BookingOutcomeEvent {
	t.Helper()
	select {
	case ev := <-n.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome event emitted")
		return queue.BookingOutcomeEvent{}
	}
}

func newCoordinatorMock(t *testing.T, notifier Notifier) (*Coordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	co := NewCoordinator(db, repository.NewRoomRepo(db), repository.NewBookingRequestRepo(db), notifier)
	return co, mock
}

func pendingRequestRows(id, hotelID uint64, roomType string, roomsNeeded uint32, status model.RequestStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "hotel_id", "reference", "email", "phone", "company_name",
		"guest_count", "rooms_needed", "room_type", "criteria",
		"status", "reject_reason", "created_at", "updated_at",
	}).AddRow(id, hotelID, "ref-7", "guest@example.com", "+49 30 1234", nil,
		roomsNeeded*2, roomsNeeded, roomType, "", string(status), nil, now, now)
}

func idRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

// expectApproveAttempt scripts the locked read and the candidate scan
// that open every approval attempt.
func expectApproveAttempt(mock sqlmock.Sqlmock, availableIDs ...uint64) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_requests WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestPending))
	mock.ExpectQuery(`SELECT id FROM rooms WHERE hotel_id = \? AND room_type = \? AND status = \?`).
		WithArgs(uint64(1), "Deluxe", string(model.RoomAvailable)).
		WillReturnRows(idRows(availableIDs...))
}

func TestApproveClaimsLowestAvailableIDs(t *testing.T) {
	notifier := newCaptureNotifier()
	co, mock := newCoordinatorMock(t, notifier)

	expectApproveAttempt(mock, 101, 102, 103)
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(101), uint64(102)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE booking_requests SET status = \?`).
		WithArgs(string(model.RequestApproved), uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO booking_request_rooms`).
		WithArgs(uint64(7), uint64(101), uint64(7), uint64(102)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ap, err := co.Approve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{101, 102}, ap.RoomIDs)
	assert.Equal(t, "ref-7", ap.Reference)

	ev := notifier.wait(t)
	assert.Equal(t, string(model.RequestApproved), ev.Outcome)
	assert.Equal(t, []uint64{101, 102}, ev.RoomIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveInsufficientInventory(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	// Two rooms needed, one available: no mutation may survive.
	expectApproveAttempt(mock, 101)
	mock.ExpectRollback()

	_, err := co.Approve(context.Background(), 7)
	var short *InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 2, short.Needed)
	assert.Equal(t, 1, short.Available)
	assert.Equal(t, 1, short.Shortfall())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRetriesAfterLostRace(t *testing.T) {
	notifier := newCaptureNotifier()
	co, mock := newCoordinatorMock(t, notifier)

	// First attempt loses the reservation race: the conditional UPDATE
	// matches one row instead of two.
	expectApproveAttempt(mock, 101, 102)
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(101), uint64(102)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	// The retry resolves against the post-mutation state and wins.
	expectApproveAttempt(mock, 102, 103)
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(102), uint64(103)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE booking_requests SET status = \?`).
		WithArgs(string(model.RequestApproved), uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO booking_request_rooms`).
		WithArgs(uint64(7), uint64(102), uint64(7), uint64(103)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ap, err := co.Approve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{102, 103}, ap.RoomIDs)
	notifier.wait(t)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveShortfallAfterRepeatedConflict(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	// Both attempts lose; the coordinator gives up and reports the
	// deficit from a fresh read instead of retrying forever.
	for i := 0; i < 2; i++ {
		expectApproveAttempt(mock, 101, 102)
		mock.ExpectExec(`UPDATE rooms SET status = \?`).
			WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(101), uint64(102)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()
	}
	mock.ExpectQuery(`FROM booking_requests WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestPending))
	mock.ExpectQuery(`SELECT room_id FROM booking_request_rooms`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rooms`).
		WithArgs(uint64(1), "Deluxe", string(model.RoomAvailable)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := co.Approve(context.Background(), 7)
	var short *InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 2, short.Needed)
	assert.Equal(t, 1, short.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveShortfallStaysPositiveWhenInventoryReturns(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	// Inventory released between the second lost race and the deficit
	// read can push the fresh count back to or above the need; the
	// reported shortfall must still reflect the race that was lost.
	for i := 0; i < 2; i++ {
		expectApproveAttempt(mock, 101, 102)
		mock.ExpectExec(`UPDATE rooms SET status = \?`).
			WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(101), uint64(102)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()
	}
	mock.ExpectQuery(`FROM booking_requests WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestPending))
	mock.ExpectQuery(`SELECT room_id FROM booking_request_rooms`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rooms`).
		WithArgs(uint64(1), "Deluxe", string(model.RoomAvailable)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	_, err := co.Approve(context.Background(), 7)
	var short *InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 2, short.Needed)
	assert.Equal(t, 1, short.Available)
	assert.Positive(t, short.Shortfall())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveAlreadySettled(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_requests WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestApproved))
	mock.ExpectRollback()

	_, err := co.Approve(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRequestNotFound(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_requests WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := co.Approve(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectLeavesRoomsUntouched(t *testing.T) {
	notifier := newCaptureNotifier()
	co, mock := newCoordinatorMock(t, notifier)

	// Rejection settles the ledger row only; any statement against the
	// rooms table would fail the expectation set.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_requests WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestPending))
	mock.ExpectExec(`UPDATE booking_requests SET status = \?, reject_reason = \?`).
		WithArgs(string(model.RequestRejected), "fully booked that week", uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, co.Reject(context.Background(), 7, "fully booked that week"))

	ev := notifier.wait(t)
	assert.Equal(t, string(model.RequestRejected), ev.Outcome)
	assert.Equal(t, "fully booked that week", ev.Reason)
	assert.Empty(t, ev.RoomIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectAlreadySettled(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_requests WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(pendingRequestRows(7, 1, "Deluxe", 2, model.RequestRejected))
	mock.ExpectRollback()

	err := co.Reject(context.Background(), 7, "again")
	assert.ErrorIs(t, err, repository.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveIsDeterministic(t *testing.T) {
	co, mock := newCoordinatorMock(t, nil)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE hotel_id = \? AND room_type = \? AND status = \?`).
			WithArgs(uint64(1), "Deluxe", string(model.RoomAvailable)).
			WillReturnRows(idRows(101, 102, 103))
		mock.ExpectRollback()
	}

	first, err := co.Resolve(context.Background(), 1, "Deluxe", 2)
	require.NoError(t, err)
	second, err := co.Resolve(context.Background(), 1, "Deluxe", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []uint64{101, 102}, first)
	assert.NoError(t, mock.ExpectationsWereMet())
}
