package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/response"
	"mindhaven/pkg/utils"
)

type AdminService interface {
	Overview(ctx context.Context) (*usecase.Overview, error)
	ListUsers(ctx context.Context, role, status string) ([]*entity.User, error)
	ListBookings(ctx context.Context) ([]*entity.Booking, error)
	SetTherapistStatus(ctx context.Context, therapistID string, status entity.TherapistStatus) (*entity.User, error)
	DeleteUserCascade(ctx context.Context, requesterID, userID string) (int, error)
}

type AdminHandler struct {
	adminUseCase AdminService
}

func NewAdminHandler(adminUseCase AdminService) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

type therapistStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved denied"`
}

type deleteUserRequest struct {
	Confirmation string `json:"confirmation" validate:"required"`
}

func (h *AdminHandler) Overview(c echo.Context) error {
	overview, err := h.adminUseCase.Overview(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, overview)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminUseCase.ListUsers(c.Request().Context(), c.QueryParam("role"), c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c)
	start, end := page.Window(len(users))
	return response.Paginated(c, users[start:end], int64(len(users)), page.Page, page.PageSize)
}

func (h *AdminHandler) ListBookings(c echo.Context) error {
	bookings, err := h.adminUseCase.ListBookings(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c)
	start, end := page.Window(len(bookings))
	return response.Paginated(c, bookings[start:end], int64(len(bookings)), page.Page, page.PageSize)
}

func (h *AdminHandler) SetTherapistStatus(c echo.Context) error {
	var req therapistStatusRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.adminUseCase.SetTherapistStatus(c.Request().Context(), c.Param("id"), entity.TherapistStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

// DeleteUser removes a user and everything they own in one atomic commit.
// The caller must echo the confirmation word.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req deleteUserRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	if req.Confirmation != usecase.DeleteConfirmation {
		return response.Error(c, errors.BadRequest("Type "+usecase.DeleteConfirmation+" to confirm the deletion", nil))
	}

	deleted, err := h.adminUseCase.DeleteUserCascade(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{
		"deleted_documents": deleted,
	})
}
