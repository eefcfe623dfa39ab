package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// BookingRequestRepo provides the append-only ledger of guest booking
// requests.  Rows are created pending, mutated exactly once into a
// terminal status and never deleted.  The claimed-room set recorded on
// approval lives in booking_request_rooms and is written in the same
// transaction as the status flip.
type BookingRequestRepo struct {
	db *sql.DB
}

// NewBookingRequestRepo returns a new BookingRequestRepo bound to the
// given database.
func NewBookingRequestRepo(db *sql.DB) *BookingRequestRepo {
	return &BookingRequestRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning the ledger and the room catalog.
func (r *BookingRequestRepo) DB() *sql.DB {
	return r.db
}

const requestColumns = `id, hotel_id, reference, email, phone, company_name, guest_count, rooms_needed, room_type, criteria, status, reject_reason, created_at, updated_at`

func scanRequest(row interface {
	Scan(dest ...interface{}) error
}) (model.BookingRequest, error) {
	var br model.BookingRequest
	var company, reason sql.NullString
	err := row.Scan(
		&br.ID, &br.HotelID, &br.Reference, &br.Email, &br.Phone, &company,
		&br.GuestCount, &br.RoomsNeeded, &br.RoomType, &br.Criteria,
		&br.Status, &reason, &br.CreatedAt, &br.UpdatedAt,
	)
	if err != nil {
		return model.BookingRequest{}, err
	}
	if company.Valid {
		c := company.String
		br.CompanyName = &c
	}
	if reason.Valid {
		rr := reason.String
		br.RejectReason = &rr
	}
	return br, nil
}

// Create inserts a new booking request with status PENDING (DB default)
// and populates the generated ID and default fields on the given
// struct.  The caller supplies the unique reference code.
func (r *BookingRequestRepo) Create(ctx context.Context, br *model.BookingRequest) error {
	const q = `INSERT INTO booking_requests
	           (hotel_id, reference, email, phone, company_name, guest_count, rooms_needed, room_type, criteria)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	br.Email = strings.ToLower(strings.TrimSpace(br.Email))
	res, err := r.db.ExecContext(ctx, q,
		br.HotelID, br.Reference, br.Email, br.Phone, br.CompanyName,
		br.GuestCount, br.RoomsNeeded, br.RoomType, br.Criteria,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	br.ID = uint64(id)
	const sel = `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = ?`
	got, err := scanRequest(r.db.QueryRowContext(ctx, sel, br.ID))
	if err != nil {
		return err
	}
	got.ClaimedRoomIDs = nil
	*br = got
	return nil
}

// GetByID retrieves a booking request and its claimed room IDs.  It
// returns ErrRequestNotFound if there is no matching row.
func (r *BookingRequestRepo) GetByID(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = ?`
	br, err := scanRequest(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	br.ClaimedRoomIDs, err = r.claimedRoomIDs(ctx, br.ID)
	if err != nil {
		return nil, err
	}
	return &br, nil
}

// GetByReference retrieves a booking request by its guest-facing
// reference code.
func (r *BookingRequestRepo) GetByReference(ctx context.Context, reference string) (*model.BookingRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM booking_requests WHERE reference = ?`
	br, err := scanRequest(r.db.QueryRowContext(ctx, q, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	br.ClaimedRoomIDs, err = r.claimedRoomIDs(ctx, br.ID)
	if err != nil {
		return nil, err
	}
	return &br, nil
}

func (r *BookingRequestRepo) claimedRoomIDs(ctx context.Context, requestID uint64) ([]uint64, error) {
	const q = `SELECT room_id FROM booking_request_rooms WHERE request_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, requestID)
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

// ListByHotel returns all booking requests for a hotel, newest first.
func (r *BookingRequestRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.BookingRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM booking_requests WHERE hotel_id = ? ORDER BY created_at DESC`
	return r.queryRequests(ctx, q, hotelID)
}

// ListPending returns all pending booking requests across hotels,
// oldest first, for the admin review queue.
func (r *BookingRequestRepo) ListPending(ctx context.Context) ([]model.BookingRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM booking_requests WHERE status = ? ORDER BY created_at`
	return r.queryRequests(ctx, q, model.RequestPending)
}

func (r *BookingRequestRepo) queryRequests(ctx context.Context, q string, args ...interface{}) ([]model.BookingRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.BookingRequest, 0)
	for rows.Next() {
		br, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, br)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetForUpdateTx loads a booking request inside the caller's
// transaction with a row lock, so the pending-only precondition holds
// until commit.  Returns ErrRequestNotFound when the row does not
// exist.
func (r *BookingRequestRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BookingRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = ? FOR UPDATE`
	br, err := scanRequest(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &br, nil
}

// MarkApprovedTx flips a pending request to APPROVED and records the
// claimed room set, all within the caller's transaction.  The UPDATE is
// guarded by status = PENDING; when it matches no row the request was
// already settled and ErrInvalidState is returned without side effect.
func (r *BookingRequestRepo) MarkApprovedTx(ctx context.Context, tx *sql.Tx, id uint64, roomIDs []uint64) error {
	const q = `UPDATE booking_requests SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.RequestApproved, id, model.RequestPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	if len(roomIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_request_rooms (request_id, room_id) VALUES `
	args := make([]interface{}, 0, len(roomIDs)*2)
	for i, rid := range roomIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, id, rid)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// MarkRejectedTx flips a pending request to REJECTED with a reason
// within the caller's transaction.  Same pending-only guard as
// MarkApprovedTx; room state is never touched on this path.
func (r *BookingRequestRepo) MarkRejectedTx(ctx context.Context, tx *sql.Tx, id uint64, reason string) error {
	const q = `UPDATE booking_requests SET status = ?, reject_reason = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.RequestRejected, reason, id, model.RequestPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}
