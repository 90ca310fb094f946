package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/response"
)

type UserService interface {
	GetProfile(ctx context.Context, uid string) (*entity.User, error)
	UpdateProfile(ctx context.Context, uid string, input usecase.UpdateProfileInput) (*entity.User, error)
	UploadAvatar(ctx context.Context, uid, dataURI string) (*entity.User, error)
	ListTherapists(ctx context.Context) ([]*entity.PublicProfile, error)
	GetPublicProfile(ctx context.Context, id string) (*entity.PublicProfile, error)
}

type UserHandler struct {
	userUseCase UserService
}

func NewUserHandler(userUseCase UserService) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

// Absent fields are left unchanged.
type updateProfileRequest struct {
	Name           *string  `json:"name" validate:"omitempty,max=100"`
	Phone          *string  `json:"phone" validate:"omitempty,max=30"`
	Avatar         *string  `json:"avatar" validate:"omitempty,max=16"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	Specialization *string  `json:"specialization" validate:"omitempty,max=100"`
	SessionRate    *float64 `json:"session_rate" validate:"omitempty,gte=0"`
}

type uploadAvatarRequest struct {
	Photo string `json:"photo" validate:"required,datauri"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Avatar:         req.Avatar,
		Bio:            req.Bio,
		Specialization: req.Specialization,
		SessionRate:    req.SessionRate,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UploadAvatar(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req uploadAvatarRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UploadAvatar(c.Request().Context(), uid, req.Photo)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) ListTherapists(c echo.Context) error {
	therapists, err := h.userUseCase.ListTherapists(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, therapists)
}

func (h *UserHandler) GetPublicProfile(c echo.Context) error {
	profile, err := h.userUseCase.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}
