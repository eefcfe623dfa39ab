package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// GuestHandler serves the unauthenticated guest surface: submitting a
// booking request and looking it up by reference.
type GuestHandler struct {
	Hotels   *repository.HotelRepo
	Requests *repository.BookingRequestRepo
}

func NewGuestHandler(h *repository.HotelRepo, br *repository.BookingRequestRepo) *GuestHandler {
	return &GuestHandler{Hotels: h, Requests: br}
}

type submitRequestReq struct {
	HotelID     uint64 `json:"hotel_id" validate:"required,gt=0"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,max=32"`
	CompanyName string `json:"company_name" validate:"max=128"`
	GuestCount  uint32 `json:"guest_count" validate:"required,gt=0"`
	RoomsNeeded uint32 `json:"rooms_needed" validate:"required,gt=0"`
	RoomType    string `json:"room_type" validate:"required,max=64"`
	Criteria    string `json:"criteria" validate:"max=2048"`
}

// SubmitRequest records a new booking request in PENDING state.  The
// generated reference is the guest's handle for later lookups; nothing
// is reserved until an admin approves the request.
func (h *GuestHandler) SubmitRequest(c echo.Context) error {
	var req submitRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Hotels.GetByID(ctx, req.HotelID); err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	br := model.BookingRequest{
		HotelID:     req.HotelID,
		Reference:   uuid.NewString(),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		GuestCount:  req.GuestCount,
		RoomsNeeded: req.RoomsNeeded,
		RoomType:    strings.TrimSpace(req.RoomType),
		Criteria:    strings.TrimSpace(req.Criteria),
	}
	if cn := strings.TrimSpace(req.CompanyName); cn != "" {
		br.CompanyName = &cn
	}

	if err := h.Requests.Create(ctx, &br); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}
	return c.JSON(http.StatusCreated, requestView1(&br))
}

// GetRequestByReference returns the state of a booking request.  The
// reference is unguessable, so no authentication is required.
func (h *GuestHandler) GetRequestByReference(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	br, err := h.Requests.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, requestView1(br))
}
