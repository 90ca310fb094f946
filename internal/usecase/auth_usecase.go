package usecase

import (
	"context"
	"strings"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	notifier     Notifier
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, notifier Notifier) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		notifier:     notifier,
	}
}

type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Role           entity.Role
	Phone          string
	Specialization string
	Bio            string
	SessionRate    float64
}

type AuthResult struct {
	User         *entity.User
	Token        string
	RefreshToken string
}

// Register creates the identity account and the profile. Clients are signed in
// straight away; therapists wait for approval and get no tokens.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	switch input.Role {
	case entity.RoleClient, entity.RoleTherapist:
	case entity.RoleAdmin:
		return nil, errors.Forbidden("Admin accounts cannot be self-registered", nil)
	default:
		return nil, errors.BadRequest("Unknown role", nil)
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use")
	} else if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, email, input.Password, input.Name)
	if err != nil {
		return nil, errors.BadRequest("Failed to create account", err)
	}

	user := &entity.User{
		ID:    uid,
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Phone: input.Phone,
		Role:  input.Role,
		Bio:   input.Bio,
	}
	if input.Role == entity.RoleTherapist {
		user.TherapistStatus = entity.TherapistPending
		user.Specialization = input.Specialization
		user.SessionRate = input.SessionRate
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("Failed to roll back identity account %s: %v", uid, delErr)
		}
		return nil, err
	}

	result := &AuthResult{User: user}

	if user.Role == entity.RoleTherapist {
		uc.notifyAdmins(ctx, user)
		return result, nil
	}

	token, refresh, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}
	result.Token = token
	result.RefreshToken = refresh

	if err := uc.userRepo.SetOnline(ctx, uid, true); err != nil {
		logger.Warn("Failed to mark user %s online: %v", uid, err)
	}
	user.Online = true

	return result, nil
}

func (uc *AuthUseCase) notifyAdmins(ctx context.Context, therapist *entity.User) {
	admins, err := uc.userRepo.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		logger.Warn("Failed to list admins for registration notice: %v", err)
		return
	}
	for _, admin := range admins {
		notifyQuietly(ctx, uc.notifier, admin.ID,
			"New therapist registration",
			therapist.Name+" registered as a therapist and is awaiting approval.",
			"/admin/users?role=therapist")
	}
}

// Login signs in with email and password. Accounts without a profile and
// therapists that are not approved are refused with a descriptive message.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	token, refresh, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Debug("Login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.Unauthorized("No profile exists for this account", err)
		}
		return nil, err
	}

	if ok, reason := user.CanSignIn(); !ok {
		return nil, errors.Unauthorized(reason, nil)
	}

	if err := uc.userRepo.SetOnline(ctx, uid, true); err != nil {
		logger.Warn("Failed to mark user %s online: %v", uid, err)
	}
	user.Online = true

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refresh,
	}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	return uc.userRepo.SetOnline(ctx, uid, false)
}

func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	token, refresh, err := uc.firebaseAuth.RefreshIDToken(ctx, refreshToken)
	if err != nil {
		return "", "", errors.Unauthorized("Invalid refresh token", err)
	}
	return token, refresh, nil
}

// Authenticate resolves an ID token to the signed-in profile.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.Unauthorized("No profile exists for this account", err)
	}
	if ok, reason := user.CanSignIn(); !ok {
		return nil, errors.Unauthorized(reason, nil)
	}
	return user, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

func (uc *AuthUseCase) TestConnection(ctx context.Context) error {
	return uc.firebaseAuth.TestConnection(ctx)
}
