package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// HotelierHandler serves the hotel-management surface.  Every endpoint
// resolves the caller's hotel from their user ID first, so a hotelier
// can only ever touch their own inventory.
type HotelierHandler struct {
	Hotels   *repository.HotelRepo
	Rooms    *repository.RoomRepo
	Requests *repository.BookingRequestRepo
}

func NewHotelierHandler(h *repository.HotelRepo, r *repository.RoomRepo, br *repository.BookingRequestRepo) *HotelierHandler {
	return &HotelierHandler{Hotels: h, Rooms: r, Requests: br}
}

// ownHotel loads the hotel owned by the authenticated hotelier.
func (h *HotelierHandler) ownHotel(ctx context.Context, c echo.Context) (*model.Hotel, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return h.Hotels.GetByOwner(ctx, uid)
}

// MyHotel returns the caller's hotel record.
func (h *HotelierHandler) MyHotel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            hotel.ID,
		"name":          hotel.Name,
		"contact_email": hotel.ContactEmail,
		"created_at":    hotel.CreatedAt,
	})
}

type createRoomReq struct {
	RoomNumber  string `json:"room_number" validate:"required,max=16"`
	RoomType    string `json:"room_type" validate:"required,max=64"`
	PriceCents  uint32 `json:"price_cents" validate:"required,gt=0"`
	MaxGuests   uint32 `json:"max_guests" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=1024"`
}

func (req *createRoomReq) toRoom(hotelID uint64) model.Room {
	rm := model.Room{
		HotelID:    hotelID,
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		RoomType:   strings.TrimSpace(req.RoomType),
		PriceCents: req.PriceCents,
		MaxGuests:  req.MaxGuests,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		rm.Description = &d
	}
	return rm
}

// CreateRoom adds a single room to the caller's hotel.  New rooms
// always start AVAILABLE.
func (h *HotelierHandler) CreateRoom(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
	}

	rm := req.toRoom(hotel.ID)
	if err := h.Rooms.Create(ctx, &rm); err != nil {
		if errors.Is(err, repository.ErrRoomNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, roomViews([]model.Room{rm})[0])
}

type createRoomsBulkReq struct {
	Rooms []createRoomReq `json:"rooms" validate:"required,min=1,max=200,dive"`
}

// CreateRoomsBulk inserts a batch of rooms in one statement.  The batch
// is all-or-nothing; a duplicate room number fails the whole call.
func (h *HotelierHandler) CreateRoomsBulk(c echo.Context) error {
	var req createRoomsBulkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
	}

	rooms := make([]model.Room, 0, len(req.Rooms))
	for i := range req.Rooms {
		rooms = append(rooms, req.Rooms[i].toRoom(hotel.ID))
	}
	if err := h.Rooms.CreateBulk(ctx, rooms); err != nil {
		if errors.Is(err, repository.ErrRoomNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rooms failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(rooms)})
}

// ListRooms returns every room in the caller's hotel, optionally
// filtered by ?type=.
func (h *HotelierHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
	}

	var rooms []model.Room
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		rooms, err = h.Rooms.ListByType(ctx, hotel.ID, t)
	} else {
		rooms, err = h.Rooms.ListByHotel(ctx, hotel.ID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": roomViews(rooms)})
}

// ListRequests returns the booking requests against the caller's
// hotel, newest first.
func (h *HotelierHandler) ListRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
	}

	reqs, err := h.Requests.ListByHotel(ctx, hotel.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requestViews(reqs)})
}

type roomIDsReq struct {
	RoomIDs []uint64 `json:"room_ids" validate:"required,min=1,dive,gt=0"`
}

// roomAction runs one of the catalog status transitions over a set of
// the caller's rooms and maps the outcome onto HTTP.
func (h *HotelierHandler) roomAction(c echo.Context, act func(ctx context.Context, hotelID uint64, roomIDs []uint64) error) error {
	var req roomIDsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.ownHotel(ctx, c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no hotel for account"})
	}

	if err := h.Rooms.EnsureOwned(ctx, hotel.ID, req.RoomIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "room belongs to another hotel"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	if err := act(ctx, hotel.ID, req.RoomIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidState):
			return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "one or more rooms not in expected status"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": len(req.RoomIDs)})
}

// CheckIn moves reserved rooms to OCCUPIED when the guests arrive.
func (h *HotelierHandler) CheckIn(c echo.Context) error {
	return h.roomAction(c, h.Rooms.CheckIn)
}

// CheckOut returns occupied rooms to AVAILABLE.
func (h *HotelierHandler) CheckOut(c echo.Context) error {
	return h.roomAction(c, h.Rooms.CheckOut)
}

// Release frees reserved rooms without a stay, e.g. a no-show.
func (h *HotelierHandler) Release(c echo.Context) error {
	return h.roomAction(c, h.Rooms.Release)
}
