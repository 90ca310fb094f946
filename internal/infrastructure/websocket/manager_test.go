package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/errors"
)

type fakeChats struct {
	mutex    sync.Mutex
	messages map[string][]*entity.Message
	watchers map[string]map[int]func([]*entity.Message)
	seq      int
}

func newFakeChats() *fakeChats {
	return &fakeChats{
		messages: map[string][]*entity.Message{},
		watchers: map[string]map[int]func([]*entity.Message){},
	}
}

func (f *fakeChats) OpenConversation(_ context.Context, selfID, peerID string, onChange func([]*entity.Message), _ func(error)) (*usecase.Conversation, repository.Unsubscribe, error) {
	if peerID == "stranger" {
		return nil, nil, errors.Forbidden("Conversations are only available between a client and an approved therapist", nil)
	}
	chatID := entity.ChatID(selfID, peerID)

	f.mutex.Lock()
	f.seq++
	id := f.seq
	if f.watchers[chatID] == nil {
		f.watchers[chatID] = map[int]func([]*entity.Message){}
	}
	f.watchers[chatID][id] = onChange
	snapshot := append([]*entity.Message(nil), f.messages[chatID]...)
	f.mutex.Unlock()

	onChange(snapshot)

	return &usecase.Conversation{ChatID: chatID, Peer: &entity.PublicProfile{ID: peerID}}, repository.Once(func() {
		f.mutex.Lock()
		defer f.mutex.Unlock()
		delete(f.watchers[chatID], id)
	}), nil
}

func (f *fakeChats) SendMessage(_ context.Context, chatID, senderID, text string) (*entity.Message, error) {
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}
	f.mutex.Lock()
	msg := &entity.Message{ID: chatID + "-" + text, ChatID: chatID, SenderID: senderID, Text: text, Timestamp: time.Now()}
	f.messages[chatID] = append(f.messages[chatID], msg)
	snapshot := append([]*entity.Message(nil), f.messages[chatID]...)
	var watchers []func([]*entity.Message)
	for _, w := range f.watchers[chatID] {
		watchers = append(watchers, w)
	}
	f.mutex.Unlock()

	for _, w := range watchers {
		w(snapshot)
	}
	return msg, nil
}

func (f *fakeChats) SoftDeleteMessage(context.Context, string, string, string) error {
	return errors.Forbidden("Only the sender can delete a message", nil)
}

func (f *fakeChats) watcherCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	n := 0
	for _, ws := range f.watchers {
		n += len(ws)
	}
	return n
}

type fakeFeeds struct {
	mutex   sync.Mutex
	active  int
	publish func(usecase.Feed)
}

func (f *fakeFeeds) WatchFeed(_ context.Context, _ string, onChange func(usecase.Feed), _ func(error)) repository.Unsubscribe {
	f.mutex.Lock()
	f.active++
	f.publish = onChange
	f.mutex.Unlock()

	onChange(usecase.Feed{Items: []*entity.Notification{}, UnreadCount: 0})
	return repository.Once(func() {
		f.mutex.Lock()
		defer f.mutex.Unlock()
		f.active--
	})
}

// handoffChats hands the newest snapshot to the latest subscription when an
// earlier one is torn down, the way a listener can fire while a
// conversation is being reopened.
type handoffChats struct {
	fakeChats
	opened int
	latest func([]*entity.Message)
}

func (f *handoffChats) OpenConversation(_ context.Context, selfID, peerID string, onChange func([]*entity.Message), _ func(error)) (*usecase.Conversation, repository.Unsubscribe, error) {
	first := &entity.Message{ID: "m1", Text: "first"}
	second := &entity.Message{ID: "m2", Text: "second"}

	f.opened++
	f.latest = onChange
	onChange([]*entity.Message{first})

	unsubscribe := repository.Once(func() {})
	if f.opened == 1 {
		unsubscribe = repository.Once(func() {
			f.latest([]*entity.Message{first, second})
		})
	}
	return &usecase.Conversation{ChatID: entity.ChatID(selfID, peerID), Peer: &entity.PublicProfile{ID: peerID}}, unsubscribe, nil
}

type decodedFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func nextFrame(t *testing.T, c *Client) decodedFrame {
	t.Helper()
	select {
	case raw := <-c.send:
		var frame decodedFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("expected a queued frame")
		return decodedFrame{}
	}
}

func sendFrame(t *testing.T, m *Manager, c *Client, msg ClientMessage) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	m.HandleClientMessage(c, raw)
}

func TestPingPong(t *testing.T) {
	m := NewManager(newFakeChats(), &fakeFeeds{})
	c := NewClient("c1", nil)

	sendFrame(t, m, c, ClientMessage{Type: TypePing})
	assert.Equal(t, TypePong, nextFrame(t, c).Type)
}

func TestOpenConversationPushesEverySnapshot(t *testing.T) {
	chats := newFakeChats()
	m := NewManager(chats, &fakeFeeds{})
	client := NewClient("c1", nil)
	therapist := NewClient("t1", nil)

	sendFrame(t, m, client, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})
	sendFrame(t, m, therapist, ClientMessage{Type: TypeOpenConversation, PeerID: "c1"})

	frame := nextFrame(t, client)
	require.Equal(t, TypeConversation, frame.Type)
	var conv ConversationFrame
	require.NoError(t, json.Unmarshal(frame.Data, &conv))
	assert.Equal(t, entity.ChatID("c1", "t1"), conv.ChatID)
	assert.Equal(t, "t1", conv.Peer.ID)
	assert.Empty(t, conv.Messages)
	nextFrame(t, therapist)

	sendFrame(t, m, client, ClientMessage{Type: TypeSendMessage, ChatID: conv.ChatID, Text: "hello"})

	for _, c := range []*Client{client, therapist} {
		frame := nextFrame(t, c)
		require.Equal(t, TypeConversation, frame.Type)
		var update ConversationFrame
		require.NoError(t, json.Unmarshal(frame.Data, &update))
		require.Len(t, update.Messages, 1)
		assert.Equal(t, "hello", update.Messages[0].Text)
	}
}

func TestCloseConversationStopsPushes(t *testing.T) {
	chats := newFakeChats()
	m := NewManager(chats, &fakeFeeds{})
	c := NewClient("c1", nil)
	chatID := entity.ChatID("c1", "t1")

	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})
	nextFrame(t, c)
	require.Equal(t, 1, chats.watcherCount())

	sendFrame(t, m, c, ClientMessage{Type: TypeCloseConversation, ChatID: chatID})
	assert.Equal(t, 0, chats.watcherCount())
	assert.Equal(t, 0, c.subscriptionCount())

	_, err := chats.SendMessage(context.Background(), chatID, "t1", "are you there?")
	require.NoError(t, err)
	assert.Len(t, c.send, 0)
}

func TestReopeningReplacesSubscription(t *testing.T) {
	chats := newFakeChats()
	m := NewManager(chats, &fakeFeeds{})
	c := NewClient("c1", nil)

	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})
	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})

	assert.Equal(t, 1, chats.watcherCount())
	assert.Equal(t, 1, c.subscriptionCount())
}

func TestReopenPushesNewestSnapshotLast(t *testing.T) {
	m := NewManager(&handoffChats{}, &fakeFeeds{})
	c := NewClient("c1", nil)

	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})
	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})

	var last ConversationFrame
	frames := 0
	for len(c.send) > 0 {
		frame := nextFrame(t, c)
		require.Equal(t, TypeConversation, frame.Type)
		require.NoError(t, json.Unmarshal(frame.Data, &last))
		frames++
	}
	require.Positive(t, frames)
	assert.Len(t, last.Messages, 2)
	assert.Equal(t, "second", last.Messages[1].Text)
}

func TestNotificationSubscription(t *testing.T) {
	feeds := &fakeFeeds{}
	m := NewManager(newFakeChats(), feeds)
	c := NewClient("c1", nil)

	sendFrame(t, m, c, ClientMessage{Type: TypeSubscribeNotifications})
	frame := nextFrame(t, c)
	require.Equal(t, TypeNotifications, frame.Type)
	assert.JSONEq(t, `{"items":[],"unread_count":0}`, string(frame.Data))

	feeds.publish(usecase.Feed{Items: []*entity.Notification{{ID: "n1", Title: "Hi"}}, UnreadCount: 1})
	frame = nextFrame(t, c)
	assert.Contains(t, string(frame.Data), `"unread_count":1`)

	sendFrame(t, m, c, ClientMessage{Type: TypeUnsubscribeNotifications})
	assert.Equal(t, 0, feeds.active)
}

func TestErrorsBecomeErrorFrames(t *testing.T) {
	m := NewManager(newFakeChats(), &fakeFeeds{})
	c := NewClient("c1", nil)

	cases := []struct {
		raw     string
		message string
	}{
		{`{"type":"open_conversation","peer_id":"stranger"}`, "Conversations are only available between a client and an approved therapist"},
		{`{"type":"open_conversation"}`, "peer_id is required"},
		{`{"type":"delete_message","chat_id":"a_b","message_id":"m"}`, "Only the sender can delete a message"},
		{`{"type":"dance"}`, "Unknown frame type: dance"},
		{`not json`, "Malformed frame"},
	}

	for _, tc := range cases {
		m.HandleClientMessage(c, []byte(tc.raw))
		frame := nextFrame(t, c)
		require.Equal(t, TypeError, frame.Type, tc.raw)
		var body ErrorFrame
		require.NoError(t, json.Unmarshal(frame.Data, &body))
		assert.Equal(t, tc.message, body.Message)
	}
}

func TestCloseTearsDownAndDropsLatePushes(t *testing.T) {
	chats := newFakeChats()
	feeds := &fakeFeeds{}
	m := NewManager(chats, feeds)
	c := NewClient("c1", nil)

	sendFrame(t, m, c, ClientMessage{Type: TypeOpenConversation, PeerID: "t1"})
	sendFrame(t, m, c, ClientMessage{Type: TypeSubscribeNotifications})
	publish := feeds.publish

	c.Close()
	c.Close()

	assert.Equal(t, 0, chats.watcherCount())
	assert.Equal(t, 0, feeds.active)
	assert.Error(t, c.ctx.Err())

	publish(usecase.Feed{UnreadCount: 3})
	assert.False(t, c.push(TypePong, nil))

	// A subscription opened after close is torn down straight away.
	sendFrame(t, m, c, ClientMessage{Type: TypeSubscribeNotifications})
	assert.Equal(t, 0, feeds.active)
}

func TestManagerTracksConnectionsPerUser(t *testing.T) {
	m := NewManager(newFakeChats(), &fakeFeeds{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	first, second := NewClient("c1", nil), NewClient("c1", nil)
	m.Register <- first
	m.Register <- second
	require.Eventually(t, func() bool { return connectionCount(m, "c1") == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, m.SendToUser("c1", TypePong, nil))

	m.Unregister <- first
	require.Eventually(t, func() bool { return connectionCount(m, "c1") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, m.SendToUser("c1", TypePong, nil))
	assert.Equal(t, 0, m.SendToUser("nobody", TypePong, nil))
}

func connectionCount(m *Manager, userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

func TestPushNotificationReachesEveryConnection(t *testing.T) {
	m := NewManager(newFakeChats(), &fakeFeeds{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	tabs := []*Client{NewClient("c1", nil), NewClient("c1", nil)}
	other := NewClient("t1", nil)
	for _, c := range append(tabs, other) {
		require.True(t, m.Connect(c))
	}
	require.Eventually(t, func() bool { return connectionCount(m, "c1") == 2 && connectionCount(m, "t1") == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, m.PushNotification("c1", &entity.Notification{ID: "n1", UserID: "c1", Title: "Booking confirmed"}))
	for _, c := range tabs {
		frame := nextFrame(t, c)
		require.Equal(t, TypeNotification, frame.Type)
		assert.Contains(t, string(frame.Data), `"Booking confirmed"`)
	}
	assert.Len(t, other.send, 0)
	assert.Equal(t, 0, m.PushNotification("nobody", &entity.Notification{ID: "n2"}))
}

func TestUnregisterAfterShutdownDoesNotBlock(t *testing.T) {
	m := NewManager(newFakeChats(), &fakeFeeds{})
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	c := NewClient("c1", nil)
	m.Register <- c
	cancel()

	finished := make(chan struct{})
	go func() {
		m.unregister(c)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}
	assert.Eventually(t, func() bool { return c.ctx.Err() != nil }, time.Second, 5*time.Millisecond)

	select {
	case <-m.done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
	late := NewClient("c2", nil)
	assert.False(t, m.Connect(late))
	assert.Error(t, late.ctx.Err())
}
