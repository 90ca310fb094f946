package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

// store backs every fake repository so a deletion commit can see all of them.
type store struct {
	mu            sync.Mutex
	users         map[string]*entity.User
	bookings      map[string]*entity.Booking
	chats         map[string]*entity.Chat
	messages      map[string][]*entity.Message
	aiChats       map[string]*entity.AiChatRecord
	quotes        map[string]*entity.Quote
	notifications map[string]*entity.Notification

	clock    time.Time
	seq      int
	watchers map[int]*messageWatcher
}

type messageWatcher struct {
	chatID   string
	onChange func([]*entity.Message)
}

func newStore() *store {
	return &store{
		users:         map[string]*entity.User{},
		bookings:      map[string]*entity.Booking{},
		chats:         map[string]*entity.Chat{},
		messages:      map[string][]*entity.Message{},
		aiChats:       map[string]*entity.AiChatRecord{},
		quotes:        map[string]*entity.Quote{},
		notifications: map[string]*entity.Notification{},
		clock:         time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		watchers:      map[int]*messageWatcher{},
	}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) addUser(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return u
}

func (s *store) documentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.users) + len(s.bookings) + len(s.chats) + len(s.aiChats) + len(s.quotes) + len(s.notifications)
	for _, msgs := range s.messages {
		n += len(msgs)
	}
	return n
}

// users

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	c := *u
	return &c, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r fakeUserRepo) SetOnline(ctx context.Context, id string, online bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Online = online
	return nil
}

func (r fakeUserRepo) filter(keep func(*entity.User) bool) []*entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if keep(u) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeUserRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	return r.filter(func(u *entity.User) bool { return u.Role == role }), nil
}

func (r fakeUserRepo) ListTherapistsByStatus(ctx context.Context, status entity.TherapistStatus) ([]*entity.User, error) {
	return r.filter(func(u *entity.User) bool {
		return u.Role == entity.RoleTherapist && u.TherapistStatus == status
	}), nil
}

func (r fakeUserRepo) ListAll(ctx context.Context) ([]*entity.User, error) {
	return r.filter(func(*entity.User) bool { return true }), nil
}

// bookings

type fakeBookingRepo struct{ s *store }

func (r fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if booking.ID == "" {
		booking.ID = r.s.nextID("b")
	}
	b := *booking
	r.s.bookings[b.ID] = &b
	return nil
}

func (r fakeBookingRepo) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, errors.NotFound("Booking", nil)
	}
	c := *b
	return &c, nil
}

func (r fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return errors.NotFound("Booking", nil)
	}
	b.Status = status
	return nil
}

func (r fakeBookingRepo) filter(keep func(*entity.Booking) bool) []*entity.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeBookingRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.ClientID == clientID }), nil
}

func (r fakeBookingRepo) ListByTherapist(ctx context.Context, therapistID string) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.TherapistID == therapistID }), nil
}

func (r fakeBookingRepo) ListAll(ctx context.Context) ([]*entity.Booking, error) {
	return r.filter(func(*entity.Booking) bool { return true }), nil
}

// chats

type fakeChatRepo struct{ s *store }

func (r fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.chats[chat.ID]; exists {
		return nil
	}
	c := *chat
	c.CreatedAt = r.s.tick()
	c.LastUpdated = c.CreatedAt
	r.s.chats[chat.ID] = &c
	return nil
}

func (r fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	cp := *c
	return &cp, nil
}

func (r fakeChatRepo) Touch(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[message.ChatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessage = message.Text
	c.LastMessageID = message.ID
	c.LastUpdated = r.s.tick()
	return nil
}

func (r fakeChatRepo) ListByParticipant(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Chat
	for _, c := range r.s.chats {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (r fakeChatRepo) snapshot(chatID string) []*entity.Message {
	out := make([]*entity.Message, 0, len(r.s.messages[chatID]))
	for _, m := range r.s.messages[chatID] {
		c := *m
		out = append(out, &c)
	}
	return out
}

// publish must be called without the lock held.
func (r fakeChatRepo) publish(chatID string) {
	r.s.mu.Lock()
	var targets []func([]*entity.Message)
	for _, w := range r.s.watchers {
		if w.chatID == chatID {
			targets = append(targets, w.onChange)
		}
	}
	snap := r.snapshot(chatID)
	r.s.mu.Unlock()

	for _, fn := range targets {
		fn(snap)
	}
}

func (r fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	message.ID = r.s.nextID("m")
	message.Timestamp = r.s.tick()
	m := *message
	r.s.messages[message.ChatID] = append(r.s.messages[message.ChatID], &m)
	r.s.mu.Unlock()

	r.publish(message.ChatID)
	return nil
}

func (r fakeChatRepo) GetMessage(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages[chatID] {
		if m.ID == messageID {
			c := *m
			return &c, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r fakeChatRepo) SoftDeleteMessage(ctx context.Context, chatID, messageID string) error {
	r.s.mu.Lock()
	found := false
	for _, m := range r.s.messages[chatID] {
		if m.ID == messageID {
			m.SoftDelete()
			found = true
		}
	}
	if c, ok := r.s.chats[chatID]; ok && found {
		c.RedactLastMessage(messageID)
	}
	r.s.mu.Unlock()

	if !found {
		return errors.NotFound("Message", nil)
	}
	r.publish(chatID)
	return nil
}

func (r fakeChatRepo) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.snapshot(chatID), nil
}

func (r fakeChatRepo) ListMessagesBySender(ctx context.Context, chatID, senderID string) ([]*entity.Message, error) {
	all, _ := r.ListMessages(ctx, chatID)
	var out []*entity.Message
	for _, m := range all {
		if m.SenderID == senderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeChatRepo) WatchMessages(ctx context.Context, chatID string, onChange func([]*entity.Message), onError func(error)) repository.Unsubscribe {
	r.s.mu.Lock()
	r.s.seq++
	id := r.s.seq
	r.s.watchers[id] = &messageWatcher{chatID: chatID, onChange: onChange}
	snap := r.snapshot(chatID)
	r.s.mu.Unlock()

	onChange(snap)

	return repository.Once(func() {
		r.s.mu.Lock()
		delete(r.s.watchers, id)
		r.s.mu.Unlock()
	})
}

func (s *store) watcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// AI chats

type fakeAiChatRepo struct{ s *store }

func (r fakeAiChatRepo) Create(ctx context.Context, record *entity.AiChatRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if record.ID == "" {
		record.ID = r.s.nextID("a")
	}
	c := *record
	r.s.aiChats[c.ID] = &c
	return nil
}

func (r fakeAiChatRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.AiChatRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AiChatRecord
	for _, rec := range r.s.aiChats {
		if rec.OwnerID == ownerID {
			c := *rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeAiChatRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.aiChats)), nil
}

// quotes

type fakeQuoteRepo struct{ s *store }

func (r fakeQuoteRepo) Create(ctx context.Context, quote *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if quote.ID == "" {
		quote.ID = r.s.nextID("q")
	}
	c := *quote
	r.s.quotes[c.ID] = &c
	return nil
}

func (r fakeQuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, errors.NotFound("Quote", nil)
	}
	c := *q
	return &c, nil
}

func (r fakeQuoteRepo) Update(ctx context.Context, quote *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quotes[quote.ID]; !ok {
		return errors.NotFound("Quote", nil)
	}
	c := *quote
	r.s.quotes[c.ID] = &c
	return nil
}

func (r fakeQuoteRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.quotes, id)
	return nil
}

func (r fakeQuoteRepo) List(ctx context.Context) ([]*entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Quote
	for _, q := range r.s.quotes {
		c := *q
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeQuoteRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.quotes)), nil
}

// notifications

type fakeNotificationRepo struct{ s *store }

func (r fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = r.s.nextID("n")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.tick()
	}
	c := *n
	r.s.notifications[c.ID] = &c
	return nil
}

func (r fakeNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	c := *n
	return &c, nil
}

func (r fakeNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	n.Read = true
	return nil
}

func (r fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	changed := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r fakeNotificationRepo) WatchByUser(ctx context.Context, userID string, onChange func([]*entity.Notification), onError func(error)) repository.Unsubscribe {
	items, _ := r.ListByUser(ctx, userID)
	onChange(items)
	return repository.Once(func() {})
}

// deletion

type fakeDeletionRepo struct {
	s       *store
	failErr error
	commits int
}

func (r *fakeDeletionRepo) Commit(ctx context.Context, plan *entity.DeletionPlan) error {
	if r.failErr != nil {
		return r.failErr
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.commits++
	for _, id := range plan.BookingIDs {
		delete(r.s.bookings, id)
	}
	for _, id := range plan.AiChatIDs {
		delete(r.s.aiChats, id)
	}
	for _, chat := range plan.Chats {
		remaining := r.s.messages[chat.ChatID][:0]
		drop := map[string]bool{}
		for _, id := range chat.MessageIDs {
			drop[id] = true
		}
		for _, m := range r.s.messages[chat.ChatID] {
			if !drop[m.ID] {
				remaining = append(remaining, m)
			}
		}
		if len(remaining) == 0 {
			delete(r.s.messages, chat.ChatID)
		} else {
			r.s.messages[chat.ChatID] = remaining
		}
		delete(r.s.chats, chat.ChatID)
	}
	delete(r.s.users, plan.UserID)
	return nil
}

// identity provider

type fakeAuth struct {
	mu        sync.Mutex
	accounts  map[string]string // email -> password
	uids      map[string]string // email -> uid
	tokens    map[string]string // token -> uid
	deleted   []string
	photoURLs map[string]string
	seq       int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		accounts:  map[string]string{},
		uids:      map[string]string{},
		tokens:    map[string]string{},
		photoURLs: map[string]string{},
	}
}

// add registers an existing account and returns its ID token.
func (f *fakeAuth) add(uid, email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = password
	f.uids[email] = uid
	token := "token-" + uid
	f.tokens[token] = uid
	return token
}

func (f *fakeAuth) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[email]; exists {
		return "", fmt.Errorf("email exists")
	}
	f.seq++
	uid := fmt.Sprintf("uid%d", f.seq)
	f.accounts[email] = password
	f.uids[email] = uid
	f.tokens["token-"+uid] = uid
	return uid, nil
}

func (f *fakeAuth) VerifyToken(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[token]
	if !ok {
		return "", fmt.Errorf("invalid token")
	}
	return uid, nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if photoURL != "" {
		f.photoURLs[uid] = photoURL
	}
	return nil
}

func (f *fakeAuth) DeleteUser(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeAuth) TestConnection(ctx context.Context) error { return nil }

func (f *fakeAuth) SignInWithEmailPassword(ctx context.Context, email, password string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.accounts[email]; !ok || stored != password {
		return "", "", fmt.Errorf("INVALID_LOGIN_CREDENTIALS")
	}
	uid := f.uids[email]
	return "token-" + uid, "refresh-" + uid, nil
}

func (f *fakeAuth) RefreshIDToken(ctx context.Context, refreshToken string) (string, string, error) {
	if len(refreshToken) <= len("refresh-") {
		return "", "", fmt.Errorf("invalid refresh token")
	}
	uid := refreshToken[len("refresh-"):]
	return "token-" + uid, refreshToken, nil
}

// generative services

type fakeClassifier struct {
	counts entity.SentimentCounts
	err    error
	calls  int
	inputs []string
}

func (f *fakeClassifier) Classify(ctx context.Context, messages []string) (entity.SentimentCounts, error) {
	if len(messages) == 0 {
		return entity.SentimentCounts{}, nil
	}
	f.calls++
	f.inputs = messages
	return f.counts, f.err
}

type fakeSuggester struct {
	text  string
	err   error
	calls int
}

func (f *fakeSuggester) Suggest(ctx context.Context, counts entity.SentimentCounts) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeAssistant struct {
	answer string
	err    error
	calls  int
}

func (f *fakeAssistant) Answer(ctx context.Context, question, photo string) (string, error) {
	f.calls++
	return f.answer, f.err
}

type fakeStorage struct {
	uploads []string
	deleted []string
}

func (f *fakeStorage) UploadFile(ctx context.Context, file io.Reader, contentType, extension, folder string, isPublic bool) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://storage.googleapis.com/test/%s/%d%s", folder, len(data)+len(f.uploads), extension)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeStorage) Close() error { return nil }

type denyLimiter struct{}

func (denyLimiter) Allow(key, action string) (bool, time.Duration) {
	return false, 1500 * time.Millisecond
}

// fixtures

func seedPeople(s *store) (client, therapist, admin *entity.User) {
	client = s.addUser(&entity.User{ID: "c1", Name: "Casey", Email: "casey@example.com", Role: entity.RoleClient})
	therapist = s.addUser(&entity.User{
		ID: "t1", Name: "Dr. Tan", Email: "tan@example.com",
		Role: entity.RoleTherapist, TherapistStatus: entity.TherapistApproved, SessionRate: 80,
	})
	admin = s.addUser(&entity.User{ID: "a1", Name: "Alex", Email: "alex@example.com", Role: entity.RoleAdmin})
	return client, therapist, admin
}
