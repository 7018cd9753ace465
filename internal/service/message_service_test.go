package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"art-market/internal/model"
	"art-market/pkg/convid"
	"art-market/pkg/sanitize"

	"gorm.io/gorm"
)

// In-memory fakes standing in for the repositories and the gateway hub.

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*model.Message
	nextID   uint
}

func (f *fakeMessageStore) Create(m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	stored := *m
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageStore) ListByConversation(conversationID string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) MarkConversationRead(conversationID string, receiverID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			m.ReadAt = &now
		}
	}
	return nil
}

func (f *fakeMessageStore) LatestPerConversation(userID uint, limit int) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := map[string]*model.Message{}
	for _, m := range f.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		if cur, ok := latest[m.ConversationID]; !ok || m.ID > cur.ID {
			latest[m.ConversationID] = m
		}
	}
	out := make([]*model.Message, 0, len(latest))
	for _, m := range latest {
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageStore) UnreadCountByConversation(userID uint) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, m := range f.messages {
		if m.ReceiverID == userID && !m.Read {
			counts[m.ConversationID]++
		}
	}
	return counts, nil
}

type fakeConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: map[string]*model.Conversation{}}
}

func (f *fakeConversationStore) GetByConversationID(conversationID string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConversationStore) UpsertFinalize(conversationID string, byUserID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[conversationID]
	if !ok {
		c = &model.Conversation{ConversationID: conversationID, CreatedAt: at}
		f.conversations[conversationID] = c
	}
	by := byUserID
	ts := at
	c.FinalizedBy = &by
	c.FinalizedAt = &ts
	return nil
}

type fakeUserStore struct {
	users map[uint]*model.User
	err   error
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByIDs(ids []uint) ([]*model.User, error) {
	var out []*model.User
	seen := map[uint]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeArtistStore struct {
	artists map[uint]*model.Artist
}

func (f *fakeArtistStore) GetByUserID(userID uint) (*model.Artist, error) {
	a, ok := f.artists[userID]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeArtistStore) GetByUserIDs(userIDs []uint) (map[uint]*model.Artist, error) {
	out := map[uint]*model.Artist{}
	for _, id := range userIDs {
		if a, ok := f.artists[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

func (f *fakeNotificationStore) Create(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(userID uint, limit int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(id, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// syncNotifier records enqueued notifications without a worker.
type syncNotifier struct {
	mu      sync.Mutex
	entries []*model.Notification
}

func (n *syncNotifier) Enqueue(notification *model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, notification)
}

func (n *syncNotifier) last() *model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.entries) == 0 {
		return nil
	}
	return n.entries[len(n.entries)-1]
}

type fakePusher struct {
	mu       sync.Mutex
	payloads map[uint][][]byte
}

func newFakePusher() *fakePusher {
	return &fakePusher{payloads: map[uint][][]byte{}}
}

func (p *fakePusher) SendToUser(userID uint, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads[userID] = append(p.payloads[userID], payload)
}

func (p *fakePusher) IsOnline(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads[userID]) > 0
}

func (p *fakePusher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads[userID])
}

type fixture struct {
	service       *MessageService
	messages      *fakeMessageStore
	conversations *fakeConversationStore
	users         *fakeUserStore
	notifier      *syncNotifier
	pusher        *fakePusher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := &fakeUserStore{users: map[uint]*model.User{
		1: {ID: 1, Name: "Asha", Email: "asha@example.com", Role: "user"},
		2: {ID: 2, Name: "Meera", Email: "meera@example.com", Role: "artist"},
		3: {ID: 3, Name: "Ravi", Email: "ravi@example.com", Role: "user"},
		4: {ID: 4, Name: "Banned", Email: "banned@example.com", Role: "user", IsBanned: true},
	}}
	artists := &fakeArtistStore{artists: map[uint]*model.Artist{
		2: {ID: 10, UserID: 2, DisplayName: "Meera Originals"},
	}}
	messages := &fakeMessageStore{}
	conversations := newFakeConversationStore()
	notifier := &syncNotifier{}
	pusher := newFakePusher()

	svc := NewMessageService(
		messages,
		conversations,
		users,
		NewDirectoryService(users, artists),
		notifier,
		pusher,
		sanitize.MustDefault(),
	)
	return &fixture{
		service:       svc,
		messages:      messages,
		conversations: conversations,
		users:         users,
		notifier:      notifier,
		pusher:        pusher,
	}
}

func TestSendStoresSanitizedContent(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Send(1, 2, "call me on 9876543210 about the portrait", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.WasSanitized {
		t.Fatal("expected was_sanitized true")
	}
	if result.Warning == "" {
		t.Fatal("expected a warning on a sanitized send")
	}
	if strings.Contains(result.Message.Content, "9876543210") {
		t.Fatalf("phone number leaked into stored content: %q", result.Message.Content)
	}
	if !strings.Contains(result.Message.Content, "*****") {
		t.Fatalf("expected masked content, got %q", result.Message.Content)
	}

	stored, _ := f.messages.ListByConversation(convid.Derive(1, 2))
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(stored))
	}
	if stored[0].Content != result.Message.Content {
		t.Fatalf("stored content %q differs from returned %q", stored[0].Content, result.Message.Content)
	}
}

func TestSendCleanContentNoWarning(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Send(1, 2, "does next week work for the piece?", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.WasSanitized {
		t.Fatal("clean content marked as sanitized")
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}
	if result.Message.Content != "does next week work for the piece?" {
		t.Fatalf("clean content altered: %q", result.Message.Content)
	}
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		senderID   uint
		receiverID uint
		content    string
		wantErr    error
	}{
		{"self message", 1, 1, "hi", ErrSelfMessage},
		{"empty content", 1, 2, "", ErrEmptyContent},
		{"whitespace content", 1, 2, "   \t\n", ErrEmptyContent},
		{"unknown receiver", 1, 99, "hi", ErrReceiverNotFound},
		{"banned receiver", 1, 4, "hi", ErrReceiverNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Send(tt.senderID, tt.receiverID, tt.content, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(f.messages.messages) != 0 {
		t.Fatalf("rejected sends must not persist, found %d rows", len(f.messages.messages))
	}
}

func TestSendReceiverLookupFailureIsNotNotFound(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("connection refused")

	_, err := f.service.Send(1, 2, "hi", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("storage failure collapsed into ErrReceiverNotFound: %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("cause not wrapped: %v", err)
	}
}

func TestSendRejectedOnFinalizedConversation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Send(1, 2, "first message", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.service.Finalize(1, 2); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := f.service.Send(2, 1, "one more thing", nil)
	if !errors.Is(err, ErrConversationFinalized) {
		t.Fatalf("got %v, want ErrConversationFinalized", err)
	}
	_, err = f.service.Send(1, 2, "me too", nil)
	if !errors.Is(err, ErrConversationFinalized) {
		t.Fatalf("got %v, want ErrConversationFinalized", err)
	}

	// an unrelated pair is unaffected
	if _, err := f.service.Send(1, 3, "hello there", nil); err != nil {
		t.Fatalf("unrelated conversation blocked: %v", err)
	}
}

func TestSendNotificationPreview(t *testing.T) {
	f := newFixture(t)

	long := strings.Repeat("a", 80)
	if _, err := f.service.Send(1, 2, long, nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	n := f.notifier.last()
	if n == nil {
		t.Fatal("no notification enqueued")
	}
	if n.UserID != 2 {
		t.Fatalf("notification addressed to %d, want receiver 2", n.UserID)
	}
	if n.Type != model.NotificationNewMessage {
		t.Fatalf("notification type %q", n.Type)
	}
	want := strings.Repeat("a", 50) + "..."
	if n.Body != want {
		t.Fatalf("preview %q, want %q", n.Body, want)
	}
	if n.Link != "/messages/1" {
		t.Fatalf("link %q, want /messages/1", n.Link)
	}

	// short content passes through untruncated
	if _, err := f.service.Send(1, 2, "short one", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := f.notifier.last().Body; got != "short one" {
		t.Fatalf("preview %q, want %q", got, "short one")
	}
}

func TestSendPushesToBothParticipants(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Send(1, 2, "hello", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.pusher.count(2) != 1 {
		t.Fatalf("receiver got %d pushes, want 1", f.pusher.count(2))
	}
	if f.pusher.count(1) != 1 {
		t.Fatalf("sender sessions got %d pushes, want 1", f.pusher.count(1))
	}
}

func TestSendWithOrderRef(t *testing.T) {
	f := newFixture(t)

	orderRef := uint(42)
	result, err := f.service.Send(1, 2, "about order", &orderRef)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Message.OrderRef == nil || *result.Message.OrderRef != 42 {
		t.Fatalf("order ref not carried: %v", result.Message.OrderRef)
	}
}

func TestGetThreadMarksRead(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.service.Send(1, 2, fmt.Sprintf("message %d", i), nil); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	thread, err := f.service.GetThread(2, 1)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("thread length %d, want 3", len(thread))
	}
	for i, m := range thread {
		if !m.Read || m.ReadAt == nil {
			t.Fatalf("message %d not marked read in returned thread", i)
		}
	}

	unread, _ := f.messages.UnreadCountByConversation(2)
	if unread[convid.Derive(1, 2)] != 0 {
		t.Fatalf("unread count after read: %d, want 0", unread[convid.Derive(1, 2)])
	}

	// sender fetching the thread does not mark their own outgoing flags
	if _, err := f.service.GetThread(1, 2); err != nil {
		t.Fatalf("get thread as sender: %v", err)
	}
}

func TestGetThreadSelfRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.GetThread(1, 1); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("got %v, want ErrSelfMessage", err)
	}
}

func TestGetThreadEmptyConversation(t *testing.T) {
	f := newFixture(t)
	thread, err := f.service.GetThread(1, 3)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if len(thread) != 0 {
		t.Fatalf("expected empty thread, got %d", len(thread))
	}
}

func TestListConversationsGrouping(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Send(1, 2, "first to meera", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.service.Send(3, 1, "hello from ravi", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.service.Send(2, 1, "reply from meera", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	list, err := f.service.ListConversations(1)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d conversations, want 2", len(list))
	}

	// most recent activity first: meera's reply outranks ravi's hello
	if list[0].ConversationID != convid.Derive(1, 2) {
		t.Fatalf("first entry is %s, want the 1_2 thread", list[0].ConversationID)
	}
	if list[0].LastMessage != "reply from meera" {
		t.Fatalf("last message %q", list[0].LastMessage)
	}
	if list[0].IsSender {
		t.Fatal("meera's reply flagged as sent by user 1")
	}
	if list[0].OtherUser == nil || list[0].OtherUser.DisplayName != "Meera Originals" {
		t.Fatalf("artist display name not applied: %+v", list[0].OtherUser)
	}
	if list[0].UnreadCount != 1 {
		t.Fatalf("unread count %d, want 1", list[0].UnreadCount)
	}

	if list[1].ConversationID != convid.Derive(1, 3) {
		t.Fatalf("second entry is %s, want the 1_3 thread", list[1].ConversationID)
	}
	if !strings.Contains(list[1].LastMessage, "hello from ravi") {
		t.Fatalf("last message %q", list[1].LastMessage)
	}
}

func TestListConversationsSingleEntryPerCounterpart(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.service.Send(1, 2, fmt.Sprintf("message %d", i), nil); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	list, err := f.service.ListConversations(1)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d entries, want 1", len(list))
	}
	if list[0].LastMessage != "message 2" {
		t.Fatalf("last message %q, want the latest", list[0].LastMessage)
	}
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Send(1, 2, "unread for meera", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.service.MarkRead(2, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ := f.messages.UnreadCountByConversation(2)
	if unread[convid.Derive(1, 2)] != 0 {
		t.Fatalf("unread after mark read: %d", unread[convid.Derive(1, 2)])
	}
	// idempotent
	if err := f.service.MarkRead(2, 1); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if err := f.service.MarkRead(2, 2); !errors.Is(err, ErrSelfMessage) {
		t.Fatal("self mark read accepted")
	}
}

func TestFinalizeAndStatus(t *testing.T) {
	f := newFixture(t)

	before, err := f.service.GetStatus(1, 2)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if before.IsFinalized {
		t.Fatal("fresh conversation reported finalized")
	}

	start := time.Now()
	view, err := f.service.Finalize(1, 2)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !view.IsFinalized || view.FinalizedBy == nil || *view.FinalizedBy != 1 {
		t.Fatalf("finalize view: %+v", view)
	}
	if view.FinalizedAt == nil || view.FinalizedAt.Before(start) {
		t.Fatalf("finalized_at %v predates the call", view.FinalizedAt)
	}

	after, err := f.service.GetStatus(2, 1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !after.IsFinalized || after.FinalizedBy == nil || *after.FinalizedBy != 1 {
		t.Fatalf("status after finalize: %+v", after)
	}
}

func TestFinalizeRepeatOverwrites(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Finalize(1, 2); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := f.service.Finalize(2, 1); err != nil {
		t.Fatalf("repeat finalize: %v", err)
	}

	status, err := f.service.GetStatus(1, 2)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.FinalizedBy == nil || *status.FinalizedBy != 2 {
		t.Fatalf("finalized_by %v, want last writer 2", status.FinalizedBy)
	}
}

func TestPresence(t *testing.T) {
	f := newFixture(t)

	if got := f.service.Presence(2); got.Online {
		t.Fatal("user with no sessions reported online")
	}

	f.pusher.SendToUser(2, []byte("session marker"))
	got := f.service.Presence(2)
	if !got.Online {
		t.Fatal("user with a live session reported offline")
	}
	if got.UserID != 2 {
		t.Fatalf("presence for user %d, want 2", got.UserID)
	}
}

func TestFinalizeSelfRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Finalize(1, 1); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("got %v, want ErrSelfMessage", err)
	}
}
