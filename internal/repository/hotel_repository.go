package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// HotelRepo manages persistence for hotels.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo constructs a HotelRepo with the given DB handle.
func NewHotelRepo(db *sql.DB) *HotelRepo {
	return &HotelRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *HotelRepo) DB() *sql.DB {
	return r.db
}

// ErrHotelEmailExists indicates the contact email is already taken by
// another hotel.
var ErrHotelEmailExists = errors.New("hotel contact email already exists")

// CreateTx inserts a new hotel within the provided transaction and
// populates the generated ID and DB-default timestamps on the given
// struct.  The caller must commit or roll back the transaction.  The
// contact email is normalized to lower case before insertion.
func (r *HotelRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hotel) error {
	h.ContactEmail = strings.ToLower(strings.TrimSpace(h.ContactEmail))
	const q = `INSERT INTO hotels (owner_id, name, contact_email) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, h.OwnerID, h.Name, h.ContactEmail)
	if err != nil {
		// 1062 is the MySQL duplicate-key error code
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrHotelEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	const sel = `SELECT id, owner_id, name, contact_email, created_at, updated_at FROM hotels WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, h.ID).Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.ContactEmail, &h.CreatedAt, &h.UpdatedAt,
	)
}

// GetByID retrieves a hotel by its ID.  It returns ErrHotelNotFound if
// there is no matching row.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	const q = `SELECT id, owner_id, name, contact_email, created_at, updated_at FROM hotels WHERE id = ?`
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.ContactEmail, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return &h, nil
}

// GetByOwner retrieves the hotel owned by the given hotelier.  Each
// hotelier owns at most one hotel.  Returns ErrHotelNotFound when the
// hotelier has no approved hotel yet.
func (r *HotelRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Hotel, error) {
	const q = `SELECT id, owner_id, name, contact_email, created_at, updated_at FROM hotels WHERE owner_id = ? LIMIT 1`
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.ContactEmail, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all hotels ordered by insertion.  Used by the public
// browse surface; no ownership restriction applies.
func (r *HotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	const q = `SELECT id, owner_id, name, contact_email, created_at, updated_at FROM hotels ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Hotel
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.ContactEmail, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
