// Package repository contains data access logic for the room catalog.
// Rooms carry the only mutable shared state in the system; every status
// mutation goes through a conditional bulk UPDATE that checks the
// expected current status, so the database is the serialization point
// and the design stays safe under multi-process deployment.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// ErrRoomNumberExists indicates a room number is already taken within
// the hotel.
var ErrRoomNumberExists = errors.New("room number already exists in hotel")

// RoomRepo manages persistence for rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *RoomRepo) DB() *sql.DB {
	return r.db
}

const roomColumns = `id, hotel_id, room_number, room_type, status, price_cents, max_guests, description, created_at, updated_at`

func scanRoom(row interface {
	Scan(dest ...interface{}) error
}) (model.Room, error) {
	var rm model.Room
	var desc sql.NullString
	err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.RoomNumber, &rm.RoomType, &rm.Status,
		&rm.PriceCents, &rm.MaxGuests, &desc, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return model.Room{}, err
	}
	if desc.Valid {
		d := desc.String
		rm.Description = &d
	}
	return rm, nil
}

// Create inserts a single room record.  New rooms start AVAILABLE via
// the DB default.  On success the room's ID and default fields are
// populated.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (hotel_id, room_number, room_type, price_cents, max_guests, description)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.HotelID, rm.RoomNumber, rm.RoomType, rm.PriceCents, rm.MaxGuests, rm.Description)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoomNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	got, err := scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID))
	if err != nil {
		return err
	}
	*rm = got
	return nil
}

// CreateBulk inserts multiple rooms in a single statement.  The ID
// fields of the passed structures are not populated.
func (r *RoomRepo) CreateBulk(ctx context.Context, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	query := `INSERT INTO rooms (hotel_id, room_number, room_type, price_cents, max_guests, description) VALUES `
	args := make([]interface{}, 0, len(rooms)*6)
	for i, rm := range rooms {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, rm.HotelID, rm.RoomNumber, rm.RoomType, rm.PriceCents, rm.MaxGuests, rm.Description)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrRoomNumberExists
	}
	return err
}

// ListByHotel retrieves all rooms of a hotel in insertion order.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? ORDER BY id`
	return r.queryRooms(ctx, q, hotelID)
}

// ListByType retrieves the rooms of a hotel matching the given type in
// stable insertion order.
func (r *RoomRepo) ListByType(ctx context.Context, hotelID uint64, roomType string) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? AND room_type = ? ORDER BY id`
	return r.queryRooms(ctx, q, hotelID, roomType)
}

func (r *RoomRepo) queryRooms(ctx context.Context, q string, args ...interface{}) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountAvailable returns the number of AVAILABLE rooms of the given
// type in a hotel.
func (r *RoomRepo) CountAvailable(ctx context.Context, hotelID uint64, roomType string) (int, error) {
	const q = `SELECT COUNT(*) FROM rooms WHERE hotel_id = ? AND room_type = ? AND status = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, hotelID, roomType, model.RoomAvailable).Scan(&n)
	return n, err
}

// CountsByStatus returns per-status room counts for a hotel and type.
// The public browse surface uses it to report availability without
// exposing individual room state.
func (r *RoomRepo) CountsByStatus(ctx context.Context, hotelID uint64, roomType string) (map[model.RoomStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM rooms WHERE hotel_id = ? AND room_type = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, hotelID, roomType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[model.RoomStatus]int{}
	for rows.Next() {
		var st model.RoomStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListAvailableIDsByTypeTx returns the IDs of AVAILABLE rooms of the
// requested type in ascending insertion order, inside the caller's
// transaction.  The ordering is the deterministic tie-break the
// availability resolver relies on: resolving twice against the same
// snapshot yields the same sequence.
func (r *RoomRepo) ListAvailableIDsByTypeTx(ctx context.Context, tx *sql.Tx, hotelID uint64, roomType string) ([]uint64, error) {
	const q = `SELECT id FROM rooms WHERE hotel_id = ? AND room_type = ? AND status = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, hotelID, roomType, model.RoomAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// EnsureOwned verifies every listed room exists and belongs to the
// given hotel.  A missing ID yields ErrRoomNotFound; a room owned by
// another hotel yields ErrForbidden.  Handlers run this before the
// status transitions so a cross-hotel request is rejected as an
// authorization failure rather than reported as a status conflict.
func (r *RoomRepo) EnsureOwned(ctx context.Context, hotelID uint64, roomIDs []uint64) error {
	if len(roomIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roomIDs)), ",")
	query := `SELECT id, hotel_id FROM rooms WHERE id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(roomIDs))
	for _, id := range roomIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	found := make(map[uint64]uint64, len(roomIDs))
	for rows.Next() {
		var id, owner uint64
		if err := rows.Scan(&id, &owner); err != nil {
			return err
		}
		found[id] = owner
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range roomIDs {
		owner, ok := found[id]
		if !ok {
			return ErrRoomNotFound
		}
		if owner != hotelID {
			return ErrForbidden
		}
	}
	return nil
}

// transitionTx performs the compare-and-set status mutation for a set
// of rooms within the caller's transaction.  The UPDATE only matches
// rows currently in the expected status; when it matches fewer rows
// than requested, another caller won the race (or a room does not
// exist) and the whole statement is reported as ErrConflict so the
// caller rolls back.  All-or-nothing: no partial mutation survives.
func (r *RoomRepo) transitionTx(ctx context.Context, tx *sql.Tx, hotelID uint64, roomIDs []uint64, from, to model.RoomStatus) error {
	if len(roomIDs) == 0 {
		return nil
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: room transition %s -> %s", ErrInvalidState, from, to)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roomIDs)), ",")
	query := `UPDATE rooms SET status = ? WHERE hotel_id = ? AND status = ? AND id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(roomIDs)+3)
	args = append(args, to, hotelID, from)
	for _, id := range roomIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(roomIDs)) {
		return ErrConflict
	}
	return nil
}

// ReserveTx transitions each listed room AVAILABLE -> RESERVED within
// the caller's transaction.  Fails with ErrConflict if any listed room
// is not currently AVAILABLE; the caller must roll back.
func (r *RoomRepo) ReserveTx(ctx context.Context, tx *sql.Tx, hotelID uint64, roomIDs []uint64) error {
	return r.transitionTx(ctx, tx, hotelID, roomIDs, model.RoomAvailable, model.RoomReserved)
}

// ReleaseTx transitions RESERVED -> AVAILABLE within the caller's
// transaction.  Used on rejection rollback or cancellation.
func (r *RoomRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, hotelID uint64, roomIDs []uint64) error {
	return r.transitionTx(ctx, tx, hotelID, roomIDs, model.RoomReserved, model.RoomAvailable)
}

// transition wraps a single CAS transition in its own transaction so
// standalone callers (check-in/check-out, release) keep the
// all-or-nothing guarantee.
func (r *RoomRepo) transition(ctx context.Context, hotelID uint64, roomIDs []uint64, from, to model.RoomStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.transitionTx(ctx, tx, hotelID, roomIDs, from, to); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Reserve atomically transitions the listed rooms AVAILABLE -> RESERVED.
func (r *RoomRepo) Reserve(ctx context.Context, hotelID uint64, roomIDs []uint64) error {
	return r.transition(ctx, hotelID, roomIDs, model.RoomAvailable, model.RoomReserved)
}

// Release atomically transitions the listed rooms RESERVED -> AVAILABLE.
func (r *RoomRepo) Release(ctx context.Context, hotelID uint64, roomIDs []uint64) error {
	return r.transition(ctx, hotelID, roomIDs, model.RoomReserved, model.RoomAvailable)
}

// CheckIn atomically transitions the listed rooms RESERVED -> OCCUPIED.
// A room cannot be occupied straight from AVAILABLE; the reserve step
// models the hold-then-check-in flow.
func (r *RoomRepo) CheckIn(ctx context.Context, hotelID uint64, roomIDs []uint64) error {
	return r.transition(ctx, hotelID, roomIDs, model.RoomReserved, model.RoomOccupied)
}

// CheckOut atomically transitions the listed rooms OCCUPIED -> AVAILABLE.
func (r *RoomRepo) CheckOut(ctx context.Context, hotelID uint64, roomIDs []uint64) error {
	return r.transition(ctx, hotelID, roomIDs, model.RoomOccupied, model.RoomAvailable)
}
