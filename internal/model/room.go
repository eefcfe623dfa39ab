package model

import "time"

// RoomStatus enumerates the lifecycle states of a room.  A room must be
// reserved before it can be occupied; checking in directly from
// AVAILABLE is not a legal transition.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "AVAILABLE" // bookable, no claim on the room
	RoomReserved  RoomStatus = "RESERVED"  // claimed by an approved booking request
	RoomOccupied  RoomStatus = "OCCUPIED"  // guest has checked in
)

// roomTransitions lists every legal room status transition.  Any pair
// absent from this table is rejected at the mutation boundary.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomAvailable: {RoomReserved},
	RoomReserved:  {RoomAvailable, RoomOccupied},
	RoomOccupied:  {RoomAvailable},
}

// CanTransition reports whether moving a room from one status to
// another is legal.
func (s RoomStatus) CanTransition(to RoomStatus) bool {
	for _, nxt := range roomTransitions[s] {
		if nxt == to {
			return true
		}
	}
	return false
}

// Valid reports whether the status is one of the known enumeration values.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomReserved, RoomOccupied:
		return true
	}
	return false
}

// Room describes a bookable unit within a hotel.  Rooms are uniquely
// identified by their hotel and room number.  Status is mutated only by
// the lifecycle coordinator or the explicit check-in/check-out path.
//
// Fields:
//  ID          – primary key identifier.
//  HotelID     – hotel to which this room belongs.
//  RoomNumber  – label unique within the hotel (e.g. "204").
//  RoomType    – type label (e.g. "Deluxe", "Standard").
//  Status      – availability status (AVAILABLE, RESERVED, OCCUPIED).
//  PriceCents  – nightly price in cents (positive).
//  MaxGuests   – maximum guest capacity (positive).
//  Description – optional descriptive metadata.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
	ID          uint64     // rooms.id
	HotelID     uint64     // rooms.hotel_id
	RoomNumber  string     // rooms.room_number (unique per hotel)
	RoomType    string     // rooms.room_type
	Status      RoomStatus // rooms.status
	PriceCents  uint32     // rooms.price_cents
	MaxGuests   uint32     // rooms.max_guests
	Description *string    // rooms.description (nullable)
	CreatedAt   time.Time  // rooms.created_at
	UpdatedAt   time.Time  // rooms.updated_at
}
