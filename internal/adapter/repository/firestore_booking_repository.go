package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreBookingRepository struct {
	client *firestore.Client
}

func NewFirestoreBookingRepository(client *firestore.Client) repository.BookingRepository {
	return &firestoreBookingRepository{
		client: client,
	}
}

func (r *firestoreBookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.client.Collection(bookingsCollection).Doc(booking.ID).Set(ctx, booking)
	if err != nil {
		return errors.Internal("Failed to create booking", err)
	}
	return nil
}

func (r *firestoreBookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	doc, err := r.client.Collection(bookingsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Booking", err)
		}
		return nil, errors.Internal("Failed to get booking", err)
	}

	var booking entity.Booking
	if err := doc.DataTo(&booking); err != nil {
		return nil, errors.Internal("Failed to parse booking data", err)
	}
	return &booking, nil
}

func (r *firestoreBookingRepository) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error {
	_, err := r.client.Collection(bookingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Booking", err)
		}
		return errors.Internal("Failed to update booking", err)
	}
	return nil
}

func (r *firestoreBookingRepository) ListByClient(ctx context.Context, clientID string) ([]*entity.Booking, error) {
	return r.list(ctx, r.client.Collection(bookingsCollection).Where("clientId", "==", clientID))
}

func (r *firestoreBookingRepository) ListByTherapist(ctx context.Context, therapistID string) ([]*entity.Booking, error) {
	return r.list(ctx, r.client.Collection(bookingsCollection).Where("therapistId", "==", therapistID))
}

func (r *firestoreBookingRepository) ListAll(ctx context.Context) ([]*entity.Booking, error) {
	return r.list(ctx, r.client.Collection(bookingsCollection).Query)
}

// list sorts in memory, newest session first, so single-field queries need no
// composite index.
func (r *firestoreBookingRepository) list(ctx context.Context, query firestore.Query) ([]*entity.Booking, error) {
	bookings, err := decodeAll[entity.Booking](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list bookings", err)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Date.After(bookings[j].Date)
	})
	return bookings, nil
}
