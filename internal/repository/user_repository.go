package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/utils"
)

// UserRepo persists accounts.  Hotelier accounts are created inactive
// and activated by the admin approval flow; guest and admin accounts
// are active from the start.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.  hotelName is stored for
// hotelier applications so the admin can create the hotel on approval;
// pass nil for other roles.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, hotelName *string, active bool, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, hotel_name, is_active) VALUES (?,?,?,?,?)",
		email, hash, role, hotelName, active)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,email,password_hash,role,hotel_name,is_active,created_at,updated_at"

func scanUserRow(row interface {
	Scan(dest ...interface{}) error
}) (model.User, error) {
	var u model.User
	var hotelName sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &hotelName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if hotelName.Valid {
		hn := hotelName.String
		u.HotelName = &hn
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUserRow(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUserRow(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ListPendingHoteliers returns hotelier accounts awaiting admin review,
// oldest first.
func (r *UserRepo) ListPendingHoteliers(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role='HOTELIER' AND is_active=0 ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// ActivateTx marks a hotelier account active within the caller's
// transaction.  Returns ErrInvalidState when the account is not an
// inactive hotelier (already approved, or not a hotelier at all).
func (r *UserRepo) ActivateTx(ctx context.Context, tx *sql.Tx, userID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET is_active=1 WHERE id=? AND role='HOTELIER' AND is_active=0", userID)
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

// Decline removes a pending hotelier application.  Declined hoteliers
// may re-register; unlike booking requests, account applications are
// not part of the audit ledger.
func (r *UserRepo) Decline(ctx context.Context, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE id=? AND role='HOTELIER' AND is_active=0", userID)
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
