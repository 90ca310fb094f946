package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

// Update writes the editable profile fields. Identity fields (email, role,
// createdAt) are never touched here.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	updateData := map[string]interface{}{
		"name":            user.Name,
		"phone":           user.Phone,
		"avatar":          user.Avatar,
		"avatarUrl":       user.AvatarURL,
		"bio":             user.Bio,
		"specialization":  user.Specialization,
		"sessionRate":     user.SessionRate,
		"therapistStatus": user.TherapistStatus,
		"updatedAt":       user.UpdatedAt,
	}

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, updateData, firestore.MergeAll)
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) SetOnline(ctx context.Context, id string, online bool) error {
	_, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "online", Value: online},
		{Path: "lastSeen", Value: time.Now()},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to update presence", err)
	}
	return nil
}

func (r *firestoreUserRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	users, err := decodeAll[entity.User](r.client.Collection(usersCollection).Where("role", "==", role).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	sortUsers(users)
	return users, nil
}

func (r *firestoreUserRepository) ListTherapistsByStatus(ctx context.Context, status entity.TherapistStatus) ([]*entity.User, error) {
	query := r.client.Collection(usersCollection).
		Where("role", "==", entity.RoleTherapist).
		Where("therapistStatus", "==", status)

	users, err := decodeAll[entity.User](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list therapists", err)
	}
	sortUsers(users)
	return users, nil
}

func (r *firestoreUserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	users, err := decodeAll[entity.User](r.client.Collection(usersCollection).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	sortUsers(users)
	return users, nil
}

func sortUsers(users []*entity.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
}
