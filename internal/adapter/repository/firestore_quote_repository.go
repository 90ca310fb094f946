package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreQuoteRepository struct {
	client *firestore.Client
}

func NewFirestoreQuoteRepository(client *firestore.Client) repository.QuoteRepository {
	return &firestoreQuoteRepository{
		client: client,
	}
}

func (r *firestoreQuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}

	now := time.Now()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	if _, err := r.client.Collection(quotesCollection).Doc(quote.ID).Set(ctx, quote); err != nil {
		return errors.Internal("Failed to create quote", err)
	}
	return nil
}

func (r *firestoreQuoteRepository) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	doc, err := r.client.Collection(quotesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Quote", err)
		}
		return nil, errors.Internal("Failed to get quote", err)
	}

	var quote entity.Quote
	if err := doc.DataTo(&quote); err != nil {
		return nil, errors.Internal("Failed to parse quote data", err)
	}
	return &quote, nil
}

func (r *firestoreQuoteRepository) Update(ctx context.Context, quote *entity.Quote) error {
	quote.UpdatedAt = time.Now()

	_, err := r.client.Collection(quotesCollection).Doc(quote.ID).Update(ctx, []firestore.Update{
		{Path: "text", Value: quote.Text},
		{Path: "updatedAt", Value: quote.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Quote", err)
		}
		return errors.Internal("Failed to update quote", err)
	}
	return nil
}

func (r *firestoreQuoteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(quotesCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete quote", err)
	}
	return nil
}

func (r *firestoreQuoteRepository) List(ctx context.Context) ([]*entity.Quote, error) {
	quotes, err := decodeAll[entity.Quote](r.client.Collection(quotesCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list quotes", err)
	}
	return quotes, nil
}

func (r *firestoreQuoteRepository) Count(ctx context.Context) (int64, error) {
	n, err := countQuery(ctx, r.client.Collection(quotesCollection).Query)
	if err != nil {
		return 0, errors.Internal("Failed to count quotes", err)
	}
	return n, nil
}
