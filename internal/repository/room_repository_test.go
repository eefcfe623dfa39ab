package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

func newRoomRepoMock(t *testing.T) (*RoomRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoomRepo(db), mock
}

func roomRows(rooms ...model.Room) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "hotel_id", "room_number", "room_type", "status",
		"price_cents", "max_guests", "description", "created_at", "updated_at",
	})
	for _, rm := range rooms {
		var desc interface{}
		if rm.Description != nil {
			desc = *rm.Description
		}
		rows.AddRow(rm.ID, rm.HotelID, rm.RoomNumber, rm.RoomType, string(rm.Status),
			rm.PriceCents, rm.MaxGuests, desc, rm.CreatedAt, rm.UpdatedAt)
	}
	return rows
}

func TestRoomCreatePopulatesDefaults(t *testing.T) {
	repo, mock := newRoomRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs(uint64(1), "204", "Deluxe", uint32(12900), uint32(2), nil).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT .+ FROM rooms WHERE id = \?`).
		WithArgs(uint64(42)).
		WillReturnRows(roomRows(model.Room{
			ID: 42, HotelID: 1, RoomNumber: "204", RoomType: "Deluxe",
			Status: model.RoomAvailable, PriceCents: 12900, MaxGuests: 2,
			CreatedAt: now, UpdatedAt: now,
		}))

	rm := model.Room{HotelID: 1, RoomNumber: "204", RoomType: "Deluxe", PriceCents: 12900, MaxGuests: 2}
	require.NoError(t, repo.Create(context.Background(), &rm))

	assert.Equal(t, uint64(42), rm.ID)
	assert.Equal(t, model.RoomAvailable, rm.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreateDuplicateNumber(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectExec(`INSERT INTO rooms`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-204' for key 'uq_hotel_room_number'"))

	rm := model.Room{HotelID: 1, RoomNumber: "204", RoomType: "Deluxe", PriceCents: 12900, MaxGuests: 2}
	err := repo.Create(context.Background(), &rm)
	assert.ErrorIs(t, err, ErrRoomNumberExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomReserveAllOrNothing(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	// Only one of the two rooms is still AVAILABLE: the conditional
	// UPDATE matches a single row, so the whole batch must fail and
	// roll back.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE hotel_id = \? AND status = \? AND id IN`).
		WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(10), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), 1, []uint64{10, 11})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomReserveSuccess(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomReserved), uint64(1), string(model.RoomAvailable), uint64(10), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Reserve(context.Background(), 1, []uint64{10, 11}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCheckInRequiresReserved(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	// The guarded UPDATE only matches rooms currently RESERVED; a
	// check-in against an AVAILABLE room affects zero rows.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomOccupied), uint64(1), string(model.RoomReserved), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CheckIn(context.Background(), 1, []uint64{10})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCheckOutFreesRoom(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET status = \?`).
		WithArgs(string(model.RoomAvailable), uint64(1), string(model.RoomOccupied), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CheckOut(context.Background(), 1, []uint64{10}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomEnsureOwned(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectQuery(`SELECT id, hotel_id FROM rooms WHERE id IN`).
		WithArgs(uint64(10), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id"}).
			AddRow(10, 1).AddRow(11, 1))

	require.NoError(t, repo.EnsureOwned(context.Background(), 1, []uint64{10, 11}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomEnsureOwnedRejectsForeignRoom(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	// Room 11 belongs to hotel 2: the caller must get an authorization
	// failure, not a status conflict.
	mock.ExpectQuery(`SELECT id, hotel_id FROM rooms WHERE id IN`).
		WithArgs(uint64(10), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id"}).
			AddRow(10, 1).AddRow(11, 2))

	err := repo.EnsureOwned(context.Background(), 1, []uint64{10, 11})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomEnsureOwnedMissingRoom(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectQuery(`SELECT id, hotel_id FROM rooms WHERE id IN`).
		WithArgs(uint64(10), uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id"}).
			AddRow(10, 1))

	err := repo.EnsureOwned(context.Background(), 1, []uint64{10, 99})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCountsByStatus(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM rooms`).
		WithArgs(uint64(1), "Deluxe").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("AVAILABLE", 3).
			AddRow("RESERVED", 2))

	counts, err := repo.CountsByStatus(context.Background(), 1, "Deluxe")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[model.RoomAvailable])
	assert.Equal(t, 2, counts[model.RoomReserved])
	assert.Equal(t, 0, counts[model.RoomOccupied])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListByTypeOrdering(t *testing.T) {
	repo, mock := newRoomRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM rooms WHERE hotel_id = \? AND room_type = \? ORDER BY id`).
		WithArgs(uint64(1), "Deluxe").
		WillReturnRows(roomRows(
			model.Room{ID: 10, HotelID: 1, RoomNumber: "101", RoomType: "Deluxe", Status: model.RoomAvailable, PriceCents: 100, MaxGuests: 2, CreatedAt: now, UpdatedAt: now},
			model.Room{ID: 11, HotelID: 1, RoomNumber: "102", RoomType: "Deluxe", Status: model.RoomReserved, PriceCents: 100, MaxGuests: 2, CreatedAt: now, UpdatedAt: now},
		))

	rooms, err := repo.ListByType(context.Background(), 1, "Deluxe")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, uint64(10), rooms[0].ID)
	assert.Equal(t, uint64(11), rooms[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
