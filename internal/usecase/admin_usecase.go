package usecase

import (
	"context"
	"fmt"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/metrics"
)

// DeleteConfirmation must be typed by an operator before a cascading delete.
const DeleteConfirmation = "DELETE"

type AdminUseCase struct {
	userRepo     repository.UserRepository
	bookingRepo  repository.BookingRepository
	chatRepo     repository.ChatRepository
	aiChatRepo   repository.AiChatRepository
	quoteRepo    repository.QuoteRepository
	deletionRepo repository.DeletionRepository
	firebaseAuth FirebaseAuthClient
	notifier     Notifier
	maxWrites    int
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	chatRepo repository.ChatRepository,
	aiChatRepo repository.AiChatRepository,
	quoteRepo repository.QuoteRepository,
	deletionRepo repository.DeletionRepository,
	firebaseAuth FirebaseAuthClient,
	notifier Notifier,
	maxWrites int,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:     userRepo,
		bookingRepo:  bookingRepo,
		chatRepo:     chatRepo,
		aiChatRepo:   aiChatRepo,
		quoteRepo:    quoteRepo,
		deletionRepo: deletionRepo,
		firebaseAuth: firebaseAuth,
		notifier:     notifier,
		maxWrites:    maxWrites,
	}
}

type Overview struct {
	UsersByRole       map[entity.Role]int          `json:"users_by_role"`
	PendingTherapists int                          `json:"pending_therapists"`
	OnlineUsers       int                          `json:"online_users"`
	BookingsByStatus  map[entity.BookingStatus]int `json:"bookings_by_status"`
	AiChats           int64                        `json:"ai_chats"`
	Quotes            int64                        `json:"quotes"`
}

func (uc *AdminUseCase) Overview(ctx context.Context) (*Overview, error) {
	users, err := uc.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := uc.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	aiChats, err := uc.aiChatRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := uc.quoteRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		UsersByRole:      map[entity.Role]int{},
		BookingsByStatus: map[entity.BookingStatus]int{},
		AiChats:          aiChats,
		Quotes:           quotes,
	}
	for _, u := range users {
		overview.UsersByRole[u.Role]++
		if u.Online {
			overview.OnlineUsers++
		}
		if u.Role == entity.RoleTherapist && u.TherapistStatus == entity.TherapistPending {
			overview.PendingTherapists++
		}
	}
	for _, b := range bookings {
		overview.BookingsByStatus[b.Status]++
	}
	return overview, nil
}

// ListUsers lists every user, or only those of role when it is set. For
// therapists, status narrows the list further.
func (uc *AdminUseCase) ListUsers(ctx context.Context, role, status string) ([]*entity.User, error) {
	if role == "" {
		return uc.userRepo.ListAll(ctx)
	}

	r, err := entity.ParseRole(role)
	if err != nil {
		return nil, errors.BadRequest("Unknown role", err)
	}
	if r == entity.RoleTherapist && status != "" {
		return uc.userRepo.ListTherapistsByStatus(ctx, entity.TherapistStatus(status))
	}
	return uc.userRepo.ListByRole(ctx, r)
}

func (uc *AdminUseCase) ListBookings(ctx context.Context) ([]*entity.Booking, error) {
	return uc.bookingRepo.ListAll(ctx)
}

// SetTherapistStatus approves or denies a therapist registration.
func (uc *AdminUseCase) SetTherapistStatus(ctx context.Context, therapistID string, status entity.TherapistStatus) (*entity.User, error) {
	switch status {
	case entity.TherapistApproved, entity.TherapistDenied:
	default:
		return nil, errors.BadRequest("Status must be approved or denied", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleTherapist {
		return nil, errors.BadRequest("User is not a therapist", nil)
	}
	if user.TherapistStatus == status {
		return user, nil
	}

	user.TherapistStatus = status
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	message := "Your therapist registration was approved. You can now sign in."
	if status == entity.TherapistDenied {
		message = "Your therapist registration was denied."
	}
	notifyQuietly(ctx, uc.notifier, user.ID, "Registration "+string(status), message, "/profile")

	return user, nil
}

// PlanUserDeletion lists every document removed together with the user:
// their bookings on either side, their support-assistant history when they
// are a client, and each of their chats with all its messages.
func (uc *AdminUseCase) PlanUserDeletion(ctx context.Context, userID string) (*entity.DeletionPlan, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := &entity.DeletionPlan{UserID: user.ID}

	asClient, err := uc.bookingRepo.ListByClient(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	asTherapist, err := uc.bookingRepo.ListByTherapist(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, b := range append(asClient, asTherapist...) {
		if !seen[b.ID] {
			seen[b.ID] = true
			plan.BookingIDs = append(plan.BookingIDs, b.ID)
		}
	}

	switch user.Role {
	case entity.RoleClient:
		records, err := uc.aiChatRepo.ListByOwner(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			plan.AiChatIDs = append(plan.AiChatIDs, r.ID)
		}
	case entity.RoleTherapist, entity.RoleAdmin:
	default:
		return nil, errors.BadRequest("Account has an unknown role", nil)
	}

	chats, err := uc.chatRepo.ListByParticipant(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		messages, err := uc.chatRepo.ListMessages(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		deletion := entity.ChatDeletion{ChatID: chat.ID}
		for _, m := range messages {
			deletion.MessageIDs = append(deletion.MessageIDs, m.ID)
		}
		plan.Chats = append(plan.Chats, deletion)
	}

	return plan, nil
}

// DeleteUserCascade removes the user and everything planned with them in one
// atomic commit and returns how many documents were deleted. The identity
// account is removed afterwards on a best-effort basis.
func (uc *AdminUseCase) DeleteUserCascade(ctx context.Context, requesterID, userID string) (int, error) {
	if requesterID != "" && requesterID == userID {
		return 0, errors.BadRequest("You cannot delete your own account", nil)
	}

	plan, err := uc.PlanUserDeletion(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := plan.Count()
	log := logger.With("user", userID, "documents", count)
	if uc.maxWrites > 0 && count > uc.maxWrites {
		metrics.CascadeDeletions.WithLabelValues("refused").Inc()
		log.Warnw("Cascading delete refused", "limit", uc.maxWrites)
		return 0, errors.BadRequest(fmt.Sprintf("Deleting this user touches %d documents, above the limit of %d", count, uc.maxWrites), nil)
	}

	if err := uc.deletionRepo.Commit(ctx, plan); err != nil {
		metrics.CascadeDeletions.WithLabelValues("failed").Inc()
		log.Errorw("Cascading delete failed", "error", err)
		return 0, err
	}

	metrics.CascadeDeletions.WithLabelValues("committed").Inc()
	metrics.CascadeDocuments.Add(float64(count))
	log.Infow("Cascading delete committed")

	if err := uc.firebaseAuth.DeleteUser(ctx, userID); err != nil {
		log.Warnw("Failed to delete identity account", "error", err)
	}

	return count, nil
}
