package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// validate checks struct tags on request payloads.  A single instance
// is safe for concurrent use.
var validate = validator.New()

// getUserID extracts the user_id placed in context by the JWT
// middleware and converts it to uint64.  JWT numeric claims decode as
// float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// requestView is the JSON shape shared by every surface that returns
// booking requests.  Claimed rooms are included only once approved.
type requestView struct {
	ID           uint64    `json:"id"`
	HotelID      uint64    `json:"hotel_id"`
	Reference    string    `json:"reference"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CompanyName  string    `json:"company_name,omitempty"`
	GuestCount   uint32    `json:"guest_count"`
	RoomsNeeded  uint32    `json:"rooms_needed"`
	RoomType     string    `json:"room_type"`
	Criteria     string    `json:"criteria,omitempty"`
	Status       string    `json:"status"`
	RejectReason string    `json:"reject_reason,omitempty"`
	RoomIDs      []uint64  `json:"room_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func requestView1(br *model.BookingRequest) requestView {
	v := requestView{
		ID:          br.ID,
		HotelID:     br.HotelID,
		Reference:   br.Reference,
		Email:       br.Email,
		Phone:       br.Phone,
		GuestCount:  br.GuestCount,
		RoomsNeeded: br.RoomsNeeded,
		RoomType:    br.RoomType,
		Criteria:    br.Criteria,
		Status:      string(br.Status),
		RoomIDs:     br.ClaimedRoomIDs,
		CreatedAt:   br.CreatedAt,
		UpdatedAt:   br.UpdatedAt,
	}
	if br.CompanyName != nil {
		v.CompanyName = *br.CompanyName
	}
	if br.RejectReason != nil {
		v.RejectReason = *br.RejectReason
	}
	return v
}

func requestViews(reqs []model.BookingRequest) []requestView {
	out := make([]requestView, 0, len(reqs))
	for i := range reqs {
		out = append(out, requestView1(&reqs[i]))
	}
	return out
}

// roomView is the JSON shape for a room across hotelier and public
// surfaces.
type roomView struct {
	ID          uint64    `json:"id"`
	HotelID     uint64    `json:"hotel_id"`
	RoomNumber  string    `json:"room_number"`
	RoomType    string    `json:"room_type"`
	Status      string    `json:"status"`
	PriceCents  uint32    `json:"price_cents"`
	MaxGuests   uint32    `json:"max_guests"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func roomViews(rooms []model.Room) []roomView {
	out := make([]roomView, 0, len(rooms))
	for _, rm := range rooms {
		v := roomView{
			ID:         rm.ID,
			HotelID:    rm.HotelID,
			RoomNumber: rm.RoomNumber,
			RoomType:   rm.RoomType,
			Status:     string(rm.Status),
			PriceCents: rm.PriceCents,
			MaxGuests:  rm.MaxGuests,
			CreatedAt:  rm.CreatedAt,
			UpdatedAt:  rm.UpdatedAt,
		}
		if rm.Description != nil {
			v.Description = *rm.Description
		}
		out = append(out, v)
	}
	return out
}
