package model

import "time"

// Hotel represents a listed property owned by a hotelier.  A hotel owns
// its rooms and the booking requests submitted against it; neither
// outlives the hotel.  The row is created when an admin approves the
// hotelier's account.  This struct corresponds to a row in the
// `hotels` table.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – user ID of the hotelier who owns the property.
//  Name         – display name of the hotel.
//  ContactEmail – unique contact address for the property.
//  CreatedAt    – timestamp when the hotel was created.
//  UpdatedAt    – timestamp of last update.
type Hotel struct {
	ID           uint64    // hotels.id
	OwnerID      uint64    // hotels.owner_id
	Name         string    // hotels.name
	ContactEmail string    // hotels.contact_email (unique)
	CreatedAt    time.Time // hotels.created_at
	UpdatedAt    time.Time // hotels.updated_at
}
