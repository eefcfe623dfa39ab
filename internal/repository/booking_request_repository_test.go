package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

func newRequestRepoMock(t *testing.T) (*BookingRequestRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRequestRepo(db), mock
}

func requestRows(reqs ...model.BookingRequest) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "hotel_id", "reference", "email", "phone", "company_name",
		"guest_count", "rooms_needed", "room_type", "criteria",
		"status", "reject_reason", "created_at", "updated_at",
	})
	for _, br := range reqs {
		var company, reason interface{}
		if br.CompanyName != nil {
			company = *br.CompanyName
		}
		if br.RejectReason != nil {
			reason = *br.RejectReason
		}
		rows.AddRow(br.ID, br.HotelID, br.Reference, br.Email, br.Phone, company,
			br.GuestCount, br.RoomsNeeded, br.RoomType, br.Criteria,
			string(br.Status), reason, br.CreatedAt, br.UpdatedAt)
	}
	return rows
}

func TestRequestCreateStartsPending(t *testing.T) {
	repo, mock := newRequestRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO booking_requests`).
		WithArgs(uint64(1), "ref-1", "guest@example.com", "+49 30 1234", nil,
			uint32(4), uint32(2), "Deluxe", "quiet floor").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT .+ FROM booking_requests WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(requestRows(model.BookingRequest{
			ID: 7, HotelID: 1, Reference: "ref-1", Email: "guest@example.com",
			Phone: "+49 30 1234", GuestCount: 4, RoomsNeeded: 2, RoomType: "Deluxe",
			Criteria: "quiet floor", Status: model.RequestPending,
			CreatedAt: now, UpdatedAt: now,
		}))

	br := model.BookingRequest{
		HotelID: 1, Reference: "ref-1", Email: "Guest@Example.com ",
		Phone: "+49 30 1234", GuestCount: 4, RoomsNeeded: 2,
		RoomType: "Deluxe", Criteria: "quiet floor",
	}
	require.NoError(t, repo.Create(context.Background(), &br))

	assert.Equal(t, uint64(7), br.ID)
	assert.Equal(t, model.RequestPending, br.Status)
	assert.Empty(t, br.ClaimedRoomIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestGetByReferenceNotFound(t *testing.T) {
	repo, mock := newRequestRepoMock(t)

	mock.ExpectQuery(`SELECT .+ FROM booking_requests WHERE reference = \?`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByReference(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestGetByIDLoadsClaimedRooms(t *testing.T) {
	repo, mock := newRequestRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM booking_requests WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(requestRows(model.BookingRequest{
			ID: 7, HotelID: 1, Reference: "ref-1", Email: "guest@example.com",
			Phone: "+49 30 1234", GuestCount: 4, RoomsNeeded: 2, RoomType: "Deluxe",
			Status: model.RequestApproved, CreatedAt: now, UpdatedAt: now,
		}))
	mock.ExpectQuery(`SELECT room_id FROM booking_request_rooms WHERE request_id = \? ORDER BY id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(10).AddRow(11))

	br, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, br.Status)
	assert.Equal(t, []uint64{10, 11}, br.ClaimedRoomIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkApprovedRecordsClaimedSet(t *testing.T) {
	repo, mock := newRequestRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE booking_requests SET status = \? WHERE id = \? AND status = \?`).
		WithArgs(string(model.RequestApproved), uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO booking_request_rooms`).
		WithArgs(uint64(7), uint64(10), uint64(7), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkApprovedTx(context.Background(), tx, 7, []uint64{10, 11}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkApprovedAlreadySettled(t *testing.T) {
	repo, mock := newRequestRepoMock(t)

	// A settled request no longer matches the PENDING guard; the flip
	// must fail without touching booking_request_rooms.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE booking_requests SET status = \?`).
		WithArgs(string(model.RequestApproved), uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.MarkApprovedTx(context.Background(), tx, 7, []uint64{10})
	assert.ErrorIs(t, err, ErrInvalidState)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRejectedGuard(t *testing.T) {
	repo, mock := newRequestRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE booking_requests SET status = \?, reject_reason = \?`).
		WithArgs(string(model.RequestRejected), "no suites left", uint64(7), string(model.RequestPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkRejectedTx(context.Background(), tx, 7, "no suites left"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
