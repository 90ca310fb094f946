package usecase

import (
	"context"
	"math/rand"
	"strings"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type QuoteUseCase struct {
	quoteRepo repository.QuoteRepository
	userRepo  repository.UserRepository
	pick      func(n int) int
}

func NewQuoteUseCase(quoteRepo repository.QuoteRepository, userRepo repository.UserRepository) *QuoteUseCase {
	return &QuoteUseCase{
		quoteRepo: quoteRepo,
		userRepo:  userRepo,
		pick:      rand.Intn,
	}
}

func (uc *QuoteUseCase) List(ctx context.Context) ([]*entity.Quote, error) {
	return uc.quoteRepo.List(ctx)
}

func (uc *QuoteUseCase) Random(ctx context.Context) (*entity.Quote, error) {
	quotes, err := uc.quoteRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.NotFound("Quote", nil)
	}
	return quotes[uc.pick(len(quotes))], nil
}

func (uc *QuoteUseCase) Create(ctx context.Context, userID, text string) (*entity.Quote, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case entity.RoleTherapist, entity.RoleAdmin:
	case entity.RoleClient:
		return nil, errors.Forbidden("Only therapists and admins can add quotes", nil)
	default:
		return nil, errors.Forbidden("Account has an unknown role", nil)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Quote text is required", nil)
	}

	quote := &entity.Quote{
		Text:       text,
		AuthorID:   user.ID,
		AuthorName: user.Name,
	}
	if err := uc.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (uc *QuoteUseCase) Update(ctx context.Context, userID, id, text string) (*entity.Quote, error) {
	quote, err := uc.editable(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Quote text is required", nil)
	}
	quote.Text = text

	if err := uc.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (uc *QuoteUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.editable(ctx, userID, id); err != nil {
		return err
	}
	return uc.quoteRepo.Delete(ctx, id)
}

// editable loads a quote the user may change: their own, or any for admins.
func (uc *QuoteUseCase) editable(ctx context.Context, userID, id string) (*entity.Quote, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleAdmin && quote.AuthorID != user.ID {
		return nil, errors.Forbidden("You can only change your own quotes", nil)
	}
	return quote, nil
}
