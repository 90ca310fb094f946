package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreDeletionRepository struct {
	client *firestore.Client
}

func NewFirestoreDeletionRepository(client *firestore.Client) repository.DeletionRepository {
	return &firestoreDeletionRepository{
		client: client,
	}
}

// Refs lists the document references a plan deletes: messages before their
// chat, the user document last.
func (r *firestoreDeletionRepository) Refs(plan *entity.DeletionPlan) []*firestore.DocumentRef {
	refs := make([]*firestore.DocumentRef, 0, plan.Count())

	for _, id := range plan.BookingIDs {
		refs = append(refs, r.client.Collection(bookingsCollection).Doc(id))
	}
	for _, id := range plan.AiChatIDs {
		refs = append(refs, r.client.Collection(aiChatsCollection).Doc(id))
	}
	for _, chat := range plan.Chats {
		chatRef := r.client.Collection(chatsCollection).Doc(chat.ChatID)
		for _, id := range chat.MessageIDs {
			refs = append(refs, chatRef.Collection(messagesCollection).Doc(id))
		}
		refs = append(refs, chatRef)
	}
	return append(refs, r.client.Collection(usersCollection).Doc(plan.UserID))
}

// Commit deletes every document of the plan in a single transaction.
func (r *firestoreDeletionRepository) Commit(ctx context.Context, plan *entity.DeletionPlan) error {
	refs := r.Refs(plan)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return nil
	}, firestore.MaxAttempts(1))
	if err != nil {
		return errors.Internal("Failed to delete user data", err)
	}
	return nil
}
