package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/response"
)

type BookingService interface {
	Create(ctx context.Context, clientID string, input usecase.CreateBookingInput) (*entity.Booking, error)
	List(ctx context.Context, userID string) ([]*entity.Booking, error)
	Get(ctx context.Context, userID, id string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, userID, id string, status entity.BookingStatus) (*entity.Booking, error)
}

type BookingHandler struct {
	bookingUseCase BookingService
}

func NewBookingHandler(bookingUseCase BookingService) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
	}
}

type createBookingRequest struct {
	TherapistID     string    `json:"therapist_id" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0,max=480"`
	Notes           string    `json:"notes" validate:"omitempty,max=1000"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req createBookingRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	booking, err := h.bookingUseCase.Create(c.Request().Context(), uid, usecase.CreateBookingInput{
		TherapistID:     req.TherapistID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, booking)
}

func (h *BookingHandler) List(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	bookings, err := h.bookingUseCase.List(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bookings)
}

func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	booking, err := h.bookingUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, booking)
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateBookingStatusRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	booking, err := h.bookingUseCase.UpdateStatus(c.Request().Context(), uid, c.Param("id"), entity.BookingStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, booking)
}
