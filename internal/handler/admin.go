package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/booking"
	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// AdminHandler serves the back-office surface: hotelier approval and
// the booking-request decision endpoints.
type AdminHandler struct {
	Users       *repository.UserRepo
	Hotels      *repository.HotelRepo
	Requests    *repository.BookingRequestRepo
	Coordinator *booking.Coordinator
}

func NewAdminHandler(u *repository.UserRepo, h *repository.HotelRepo, br *repository.BookingRequestRepo, co *booking.Coordinator) *AdminHandler {
	return &AdminHandler{Users: u, Hotels: h, Requests: br, Coordinator: co}
}

// ListPendingHoteliers returns hotelier accounts awaiting approval,
// oldest first.
func (h *AdminHandler) ListPendingHoteliers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListPendingHoteliers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type pending struct {
		ID        uint64    `json:"id"`
		Email     string    `json:"email"`
		HotelName string    `json:"hotel_name"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]pending, 0, len(users))
	for _, u := range users {
		p := pending{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
		if u.HotelName != nil {
			p.HotelName = *u.HotelName
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"pending": out})
}

// ApproveHotelier activates a hotelier account and creates the hotel
// it applied with.  Both writes share one transaction so a crash never
// leaves an active hotelier without a hotel.
func (h *AdminHandler) ApproveHotelier(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if u.Role != "HOTELIER" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "not a hotelier account"})
	}
	hotelName := ""
	if u.HotelName != nil {
		hotelName = strings.TrimSpace(*u.HotelName)
	}
	if hotelName == "" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "application has no hotel name"})
	}

	tx, err := h.Hotels.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Users.ActivateTx(ctx, tx, u.ID); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate failed"})
	}

	hotel := &model.Hotel{OwnerID: u.ID, Name: hotelName, ContactEmail: u.Email}
	if err := h.Hotels.CreateTx(ctx, tx, hotel); err != nil {
		if errors.Is(err, repository.ErrHotelEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hotel contact email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hotel failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"user_id": u.ID,
		"hotel": echo.Map{
			"id":            hotel.ID,
			"name":          hotel.Name,
			"contact_email": hotel.ContactEmail,
		},
	})
}

// DeclineHotelier removes a pending hotelier application.
func (h *AdminHandler) DeclineHotelier(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Decline(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no pending application for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decline failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPendingRequests returns pending booking requests across all
// hotels, oldest first.
func (h *AdminHandler) ListPendingRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reqs, err := h.Requests.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requestViews(reqs)})
}

// ApproveRequest runs the approval flow for one booking request and
// maps the coordinator's outcome onto HTTP.
func (h *AdminHandler) ApproveRequest(c echo.Context) error {
	requestID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	approval, err := h.Coordinator.Approve(ctx, requestID)
	if err != nil {
		return decisionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"request_id": approval.RequestID,
		"reference":  approval.Reference,
		"status":     model.RequestApproved,
		"room_ids":   approval.RoomIDs,
	})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// RejectRequest settles a pending request as rejected.  No room state
// changes; the request record and its reason are the only writes.
func (h *AdminHandler) RejectRequest(c echo.Context) error {
	requestID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body rejectReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Coordinator.Reject(ctx, requestID, strings.TrimSpace(body.Reason)); err != nil {
		return decisionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"request_id": requestID,
		"status":     model.RequestRejected,
	})
}

// decisionError translates coordinator errors into HTTP responses.
func decisionError(c echo.Context, err error) error {
	var short *booking.InsufficientInventoryError
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "request already settled"})
	case errors.As(err, &short):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     "insufficient inventory",
			"room_type": short.RoomType,
			"needed":    short.Needed,
			"available": short.Available,
			"shortfall": short.Shortfall(),
		})
	case errors.Is(err, booking.ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "storage timeout"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decision failed"})
	}
}
