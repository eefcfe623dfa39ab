package model

import "time"

// RequestStatus enumerates the lifecycle states of a booking request.
// A request is mutated exactly once: PENDING -> APPROVED or
// PENDING -> REJECTED.  Both outcomes are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Terminal reports whether the status is a final state.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// BookingRequest records a guest's request for a number of rooms of a
// given type.  Requests are never deleted; they form the audit trail of
// the marketplace.  Once approved, ClaimedRoomIDs holds the rooms the
// request reserved; that set is immutable and disjoint from every other
// request's claimed set.
//
// Fields:
//  ID             – primary key identifier.
//  HotelID        – hotel the request targets.
//  Reference      – opaque code returned to the guest for lookups.
//  Email          – requester contact email.
//  Phone          – requester contact phone.
//  CompanyName    – optional company name.
//  GuestCount     – number of guests (positive).
//  RoomsNeeded    – number of rooms requested (positive).
//  RoomType       – desired room type label.
//  Criteria       – free-text criteria supplied by the guest.
//  Status         – lifecycle status (PENDING, APPROVED, REJECTED).
//  RejectReason   – reason recorded on rejection (nullable).
//  ClaimedRoomIDs – room IDs reserved on approval, in claim order.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type BookingRequest struct {
	ID             uint64        // booking_requests.id
	HotelID        uint64        // booking_requests.hotel_id
	Reference      string        // booking_requests.reference (unique)
	Email          string        // booking_requests.email
	Phone          string        // booking_requests.phone
	CompanyName    *string       // booking_requests.company_name (nullable)
	GuestCount     uint32        // booking_requests.guest_count
	RoomsNeeded    uint32        // booking_requests.rooms_needed
	RoomType       string        // booking_requests.room_type
	Criteria       string        // booking_requests.criteria
	Status         RequestStatus // booking_requests.status
	RejectReason   *string       // booking_requests.reject_reason (nullable)
	ClaimedRoomIDs []uint64      // booking_request_rooms.room_id, insertion order
	CreatedAt      time.Time     // booking_requests.created_at
	UpdatedAt      time.Time     // booking_requests.updated_at
}
