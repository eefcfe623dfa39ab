// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingOutcomeEvent is published after a booking request settles into
// a terminal status. It carries enough information for the downstream
// payment and notification collaborator to act without querying the
// primary database. Outcome is APPROVED or REJECTED; RoomIDs and Reason
// are populated on approval and rejection respectively.
type BookingOutcomeEvent struct {
	RequestID  uint64   `json:"request_id"`
	Reference  string   `json:"reference"`
	HotelID    uint64   `json:"hotel_id"`
	Email      string   `json:"email"`
	Outcome    string   `json:"outcome"`
	RoomIDs    []uint64 `json:"room_ids,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
