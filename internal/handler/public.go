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

// PublicHandler serves the read-only browse surface.  Responses here
// sit behind the Redis cache middleware.
type PublicHandler struct {
	Hotels *repository.HotelRepo
	Rooms  *repository.RoomRepo
}

func NewPublicHandler(h *repository.HotelRepo, r *repository.RoomRepo) *PublicHandler {
	return &PublicHandler{Hotels: h, Rooms: r}
}

// ListHotels returns all listed hotels.
func (h *PublicHandler) ListHotels(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotels, err := h.Hotels.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type hotelView struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	out := make([]hotelView, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, hotelView{ID: ht.ID, Name: ht.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": out})
}

// ListHotelRooms returns a hotel's rooms, optionally filtered by
// ?type=.  Room status is included so guests can see what is open.
func (h *PublicHandler) ListHotelRooms(c echo.Context) error {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Hotels.GetByID(ctx, hotelID); err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var (
		rooms []model.Room
		err   error
	)
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		rooms, err = h.Rooms.ListByType(ctx, hotelID, t)
	} else {
		rooms, err = h.Rooms.ListByHotel(ctx, hotelID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": roomViews(rooms)})
}

// Availability reports room counts by status for a hotel and room
// type.  It is a read-only snapshot: a submit decision based on it may
// still lose to a concurrent approval.
func (h *PublicHandler) Availability(c echo.Context) error {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	roomType := strings.TrimSpace(c.QueryParam("type"))
	if roomType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type query parameter required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Hotels.GetByID(ctx, hotelID); err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	counts, err := h.Rooms.CountsByStatus(ctx, hotelID, roomType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hotel_id":  hotelID,
		"room_type": roomType,
		"available": counts[model.RoomAvailable],
		"reserved":  counts[model.RoomReserved],
		"occupied":  counts[model.RoomOccupied],
	})
}
