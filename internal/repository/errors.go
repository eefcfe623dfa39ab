// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// lifecycle coordinator and handlers to distinguish between failure
// scenarios. ErrConflict signals a lost reservation race: a conditional
// room status update matched fewer rows than requested because another
// caller claimed the rooms first. ErrInvalidState signals an operation
// against a request or room that is not in the required state.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a compare-and-set room status update
// loses a race with a concurrent caller. The lifecycle coordinator
// recovers from it with a single bounded retry; handlers that see it
// escalate should translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a mutation targets a booking request
// that is no longer pending, or a room transition that is not legal.
// It is safe to treat as "already handled": the first terminal
// transition won and no side effect occurred.
var ErrInvalidState = errors.New("invalid state")

// ErrHotelNotFound indicates that a hotel was not located in the DB.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrRoomNotFound indicates that one or more rooms were not located in the DB.
var ErrRoomNotFound = errors.New("room not found")

// ErrRequestNotFound indicates that a booking request was not located in the DB.
var ErrRequestNotFound = errors.New("booking request not found")
