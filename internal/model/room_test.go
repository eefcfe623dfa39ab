package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to RoomStatus
		ok       bool
	}{
		{RoomAvailable, RoomReserved, true},
		{RoomReserved, RoomAvailable, true},
		{RoomReserved, RoomOccupied, true},
		{RoomOccupied, RoomAvailable, true},
		// a room must be reserved before it is occupied
		{RoomAvailable, RoomOccupied, false},
		{RoomOccupied, RoomReserved, false},
		{RoomAvailable, RoomAvailable, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRoomStatusValid(t *testing.T) {
	assert.True(t, RoomAvailable.Valid())
	assert.True(t, RoomReserved.Valid())
	assert.True(t, RoomOccupied.Valid())
	assert.False(t, RoomStatus("FREE").Valid())
	assert.False(t, RoomStatus("").Valid())
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestPending.Terminal())
	assert.True(t, RequestApproved.Terminal())
	assert.True(t, RequestRejected.Terminal())
}
