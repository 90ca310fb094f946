package usecase

import (
	"bytes"
	"context"
	"strings"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/domain/service"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/utils"
)

const maxAvatarBytes = 5 << 20

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	storage      service.FileUploadService
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, storage service.FileUploadService) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		storage:      storage,
	}
}

// UpdateProfileInput carries optional changes; nil fields are left alone.
type UpdateProfileInput struct {
	Name           *string
	Phone          *string
	Avatar         *string
	Bio            *string
	Specialization *string
	SessionRate    *float64
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if user.Role != entity.RoleTherapist && (input.Specialization != nil || input.SessionRate != nil) {
		return nil, errors.BadRequest("Only therapists have a specialization and session rate", nil)
	}

	nameChanged := false
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.BadRequest("Name cannot be empty", nil)
		}
		nameChanged = name != user.Name
		user.Name = name
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Specialization != nil {
		user.Specialization = strings.TrimSpace(*input.Specialization)
	}
	if input.SessionRate != nil {
		if *input.SessionRate < 0 {
			return nil, errors.BadRequest("Session rate cannot be negative", nil)
		}
		user.SessionRate = *input.SessionRate
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if nameChanged {
		if err := uc.firebaseAuth.UpdateProfile(ctx, uid, user.Name, ""); err != nil {
			logger.Warn("Failed to sync display name for %s: %v", uid, err)
		}
	}

	return user, nil
}

// UploadAvatar stores a data-URI image under avatars/{uid}/ and records its
// public URL on the profile and the identity account.
func (uc *UserUseCase) UploadAvatar(ctx context.Context, uid, dataURI string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	image, err := utils.ParseDataURI(dataURI)
	if err != nil {
		return nil, errors.BadRequest("Avatar must be a data URI", err)
	}
	if !image.IsImage() {
		return nil, errors.BadRequest("Avatar must be an image", nil)
	}
	if len(image.Data) > maxAvatarBytes {
		return nil, errors.BadRequest("Avatar must be at most 5 MB", nil)
	}

	url, err := uc.storage.UploadFile(ctx, bytes.NewReader(image.Data), image.MIMEType, image.Extension, "avatars/"+uid, true)
	if err != nil {
		return nil, errors.Internal("Failed to upload avatar", err)
	}

	previous := user.AvatarURL
	user.AvatarURL = url
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.firebaseAuth.UpdateProfile(ctx, uid, "", url); err != nil {
		logger.Warn("Failed to sync photo URL for %s: %v", uid, err)
	}
	if previous != "" {
		if err := uc.storage.DeleteFile(ctx, previous); err != nil {
			logger.Warn("Failed to delete previous avatar of %s: %v", uid, err)
		}
	}

	return user, nil
}

// ListTherapists is the roster shown to clients: approved therapists only.
func (uc *UserUseCase) ListTherapists(ctx context.Context) ([]*entity.PublicProfile, error) {
	therapists, err := uc.userRepo.ListTherapistsByStatus(ctx, entity.TherapistApproved)
	if err != nil {
		return nil, err
	}

	profiles := make([]*entity.PublicProfile, 0, len(therapists))
	for _, t := range therapists {
		profiles = append(profiles, t.Public())
	}
	return profiles, nil
}

func (uc *UserUseCase) GetPublicProfile(ctx context.Context, id string) (*entity.PublicProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}
