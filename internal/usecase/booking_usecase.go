package usecase

import (
	"context"
	"fmt"
	"time"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type BookingUseCase struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewBookingUseCase(bookingRepo repository.BookingRepository, userRepo repository.UserRepository, notifier Notifier) *BookingUseCase {
	return &BookingUseCase{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

type CreateBookingInput struct {
	TherapistID     string
	Date            time.Time
	DurationMinutes int
	Notes           string
}

func (uc *BookingUseCase) Create(ctx context.Context, clientID string, input CreateBookingInput) (*entity.Booking, error) {
	client, err := uc.userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.Role != entity.RoleClient {
		return nil, errors.Forbidden("Only clients can book sessions", nil)
	}

	therapist, err := uc.userRepo.GetByID(ctx, input.TherapistID)
	if err != nil {
		return nil, err
	}
	if !therapist.Bookable() {
		return nil, errors.BadRequest("This therapist is not accepting bookings", nil)
	}

	if !input.Date.After(uc.now()) {
		return nil, errors.BadRequest("Session date must be in the future", nil)
	}
	if input.DurationMinutes <= 0 {
		return nil, errors.BadRequest("Session duration must be positive", nil)
	}

	booking := &entity.Booking{
		ClientID:        client.ID,
		ClientName:      client.Name,
		TherapistID:     therapist.ID,
		TherapistName:   therapist.Name,
		Date:            input.Date.UTC(),
		DurationMinutes: input.DurationMinutes,
		Price:           entity.SessionPrice(therapist.SessionRate, input.DurationMinutes),
		Status:          entity.BookingPending,
		Notes:           input.Notes,
	}
	if err := uc.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	notifyQuietly(ctx, uc.notifier, therapist.ID,
		"New booking request",
		fmt.Sprintf("%s requested a session on %s.", client.Name, booking.Date.Format("Jan 2, 2006 15:04 MST")),
		"/bookings/"+booking.ID)

	return booking, nil
}

// List returns the bookings visible to the user: their own as a client, the
// assigned ones as a therapist, and all of them for admins.
func (uc *BookingUseCase) List(ctx context.Context, userID string) ([]*entity.Booking, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case entity.RoleClient:
		return uc.bookingRepo.ListByClient(ctx, user.ID)
	case entity.RoleTherapist:
		return uc.bookingRepo.ListByTherapist(ctx, user.ID)
	case entity.RoleAdmin:
		return uc.bookingRepo.ListAll(ctx)
	default:
		return nil, errors.Forbidden("Account has an unknown role", nil)
	}
}

func (uc *BookingUseCase) Get(ctx context.Context, userID, id string) (*entity.Booking, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleAdmin && !booking.Involves(user.ID) {
		return nil, errors.NotFound("Booking", nil)
	}
	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Therapists manage their
// own bookings, clients may only cancel theirs, admins may make any valid move.
func (uc *BookingUseCase) UpdateStatus(ctx context.Context, userID, id string, status entity.BookingStatus) (*entity.Booking, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Unknown booking status", nil)
	}

	booking, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case entity.RoleAdmin:
	case entity.RoleTherapist:
		if booking.TherapistID != user.ID {
			return nil, errors.Forbidden("Not your booking", nil)
		}
	case entity.RoleClient:
		if status != entity.BookingCancelled {
			return nil, errors.Forbidden("Clients can only cancel bookings", nil)
		}
	default:
		return nil, errors.Forbidden("Account has an unknown role", nil)
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, errors.BadRequest(fmt.Sprintf("Cannot change a %s booking to %s", booking.Status, status), nil)
	}

	if err := uc.bookingRepo.UpdateStatus(ctx, booking.ID, status); err != nil {
		return nil, err
	}
	booking.Status = status
	booking.UpdatedAt = uc.now()

	title := "Booking " + string(status)
	message := fmt.Sprintf("Your session on %s is now %s.", booking.Date.Format("Jan 2, 2006 15:04 MST"), status)
	for _, party := range []string{booking.ClientID, booking.TherapistID} {
		if party != user.ID {
			notifyQuietly(ctx, uc.notifier, party, title, message, "/bookings/"+booking.ID)
		}
	}

	return booking, nil
}
