package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"art-market/internal/model"
	"art-market/pkg/convid"
	"art-market/pkg/logger"
	"art-market/pkg/redis"
	"art-market/pkg/response"
	"art-market/pkg/sanitize"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// maxConversations caps the conversation list.
	maxConversations = 50
	// previewLength is how much of a message the notification body shows.
	previewLength = 50
)

// PushEventNewMessage is the payload type pushed over the gateway.
const PushEventNewMessage = "new_message"

// PushPayload is what both participants' connected sessions receive when a
// message is created, regardless of which transport carried the send.
type PushPayload struct {
	Type         string         `json:"type"`
	Message      *model.Message `json:"message"`
	WasSanitized bool           `json:"was_sanitized,omitempty"`
	Warning      string         `json:"warning,omitempty"`
}

// SendResult is returned to the sender.
type SendResult struct {
	Message      *model.Message `json:"message"`
	WasSanitized bool           `json:"was_sanitized"`
	Warning      string         `json:"warning,omitempty"`
}

// MessageService orchestrates the messaging subsystem: validation,
// sanitization, persistence, the finalization gate, notifications and
// realtime pushes. Both the REST handlers and the websocket gateway call
// into this one service, so the two transports can never diverge.
type MessageService struct {
	messages      MessageStore
	conversations ConversationStore
	users         UserLookup
	directory     *DirectoryService
	notifier      Notifier
	pusher        Pusher
	sanitizer     *sanitize.Sanitizer
}

// NewMessageService wires the service. The pusher is the gateway hub; the
// notifier is the async notification dispatcher.
func NewMessageService(
	messages MessageStore,
	conversations ConversationStore,
	users UserLookup,
	directory *DirectoryService,
	notifier Notifier,
	pusher Pusher,
	sanitizer *sanitize.Sanitizer,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		users:         users,
		directory:     directory,
		notifier:      notifier,
		pusher:        pusher,
		sanitizer:     sanitizer,
	}
}

// Send validates, sanitizes and persists one message, then fans out the
// side effects: a notification entry for the receiver and a realtime push
// to both participants' sessions. Raw content never reaches storage; the
// sanitizer runs before any persistence. Sends on a finalized conversation
// are rejected.
func (s *MessageService) Send(senderID, receiverID uint, content string, orderRef *uint) (*SendResult, error) {
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	receiver, err := s.users.GetByID(receiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("load receiver: %w", err)
	}
	if receiver == nil || receiver.IsBanned {
		return nil, ErrReceiverNotFound
	}

	conversationID := convid.Derive(senderID, receiverID)

	conversation, err := s.conversations.GetByConversationID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	if conversation != nil && conversation.FinalizedAt != nil {
		return nil, ErrConversationFinalized
	}

	sanitized := s.sanitizer.Apply(content)

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		OrderRef:       orderRef,
		Content:        sanitized.Sanitized,
	}
	if err := s.messages.Create(message); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	// Everything past the append is best-effort: counters, caches,
	// notification and push may individually fail without undoing the send.
	if err := redis.IncrementUnread(receiverID, conversationID); err != nil {
		logger.Debug("unread counter skipped", zap.Error(err))
	}
	if err := redis.InvalidateConversations(senderID, receiverID); err != nil {
		logger.Debug("conversation cache invalidation skipped", zap.Error(err))
	}

	s.notifier.Enqueue(&model.Notification{
		UserID: receiverID,
		Type:   model.NotificationNewMessage,
		Title:  "New message",
		Body:   preview(sanitized.Sanitized),
		Link:   fmt.Sprintf("/messages/%d", senderID),
	})

	result := &SendResult{Message: message, WasSanitized: sanitized.WasSanitized}
	if sanitized.WasSanitized {
		result.Warning = s.sanitizer.Warning()
	}
	s.push(message, sanitized.WasSanitized, result.Warning)

	return result, nil
}

// push delivers the new-message payload to the receiver's sessions and
// echoes it to the sender's own sessions so multiple logins stay in sync.
func (s *MessageService) push(message *model.Message, wasSanitized bool, warning string) {
	payload, err := json.Marshal(PushPayload{
		Type:         PushEventNewMessage,
		Message:      message,
		WasSanitized: wasSanitized,
		Warning:      warning,
	})
	if err != nil {
		logger.Error("marshal push payload", zap.Error(err))
		return
	}
	s.pusher.SendToUser(message.ReceiverID, payload)
	s.pusher.SendToUser(message.SenderID, payload)
}

// ListConversations returns, per counterpart, the latest message enriched
// with the counterpart's display identity and unread count. Capped at 50,
// most recent activity first.
func (s *MessageService) ListConversations(userID uint) ([]*response.ConversationView, error) {
	if raw, err := redis.GetCachedConversations(userID); err == nil && raw != nil {
		var cached []*response.ConversationView
		if json.Unmarshal(raw, &cached) == nil {
			return cached, nil
		}
	}

	latest, err := s.messages.LatestPerConversation(userID, maxConversations)
	if err != nil {
		return nil, fmt.Errorf("latest per conversation: %w", err)
	}

	otherIDs := make([]uint, 0, len(latest))
	for _, m := range latest {
		otherIDs = append(otherIDs, counterpart(m, userID))
	}
	identities, err := s.directory.Identities(otherIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve identities: %w", err)
	}

	// an empty hash also counts as a miss: the counters may have been
	// flushed or aged out, so rebuild from the database rather than show
	// zero badges
	unread, err := redis.GetUnreadCounts(userID)
	if err != nil || len(unread) == 0 {
		if unread, err = s.messages.UnreadCountByConversation(userID); err != nil {
			return nil, fmt.Errorf("unread counts: %w", err)
		}
		rebuilt := unread
		go func() {
			_ = redis.SetUnreadCounts(userID, rebuilt)
		}()
	}

	list := make([]*response.ConversationView, 0, len(latest))
	for _, m := range latest {
		otherID := counterpart(m, userID)
		list = append(list, &response.ConversationView{
			MessageID:      m.ID,
			ConversationID: m.ConversationID,
			OtherUser:      identities[otherID], // nil when the account no longer resolves
			LastMessage:    m.Content,
			CreatedAt:      m.CreatedAt,
			Read:           m.Read,
			IsSender:       m.SenderID == userID,
			UnreadCount:    unread[m.ConversationID],
		})
	}

	if data, err := json.Marshal(list); err == nil {
		go func() {
			_ = redis.CacheConversations(userID, data)
		}()
	}
	return list, nil
}

// GetThread returns the full history with the other user in creation order
// and, as a side effect, marks every message addressed to the caller as
// read. The derived conversation id scopes access; the participant check
// below guards against any cross-thread leakage regardless.
func (s *MessageService) GetThread(userID, otherUserID uint) ([]*model.Message, error) {
	if userID == otherUserID {
		return nil, ErrSelfMessage
	}
	conversationID := convid.Derive(userID, otherUserID)

	messages, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	for _, m := range messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			return nil, ErrNotParticipant
		}
	}

	if err := s.messages.MarkConversationRead(conversationID, userID); err != nil {
		return nil, fmt.Errorf("mark conversation read: %w", err)
	}
	now := time.Now()
	for _, m := range messages {
		if m.ReceiverID == userID && !m.Read {
			m.Read = true
			m.ReadAt = &now
		}
	}

	if err := redis.ClearUnread(userID, conversationID); err != nil {
		logger.Debug("unread counter skipped", zap.Error(err))
	}
	// the counterpart's cached list carries the read flag of the last
	// message, so both entries are stale now
	if err := redis.InvalidateConversations(userID, otherUserID); err != nil {
		logger.Debug("conversation cache invalidation skipped", zap.Error(err))
	}
	return messages, nil
}

// MarkRead marks every message in the thread addressed to the caller as
// read. Idempotent.
func (s *MessageService) MarkRead(userID, otherUserID uint) error {
	if userID == otherUserID {
		return ErrSelfMessage
	}
	conversationID := convid.Derive(userID, otherUserID)

	if err := s.messages.MarkConversationRead(conversationID, userID); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	if err := redis.ClearUnread(userID, conversationID); err != nil {
		logger.Debug("unread counter skipped", zap.Error(err))
	}
	if err := redis.InvalidateConversations(userID, otherUserID); err != nil {
		logger.Debug("conversation cache invalidation skipped", zap.Error(err))
	}
	return nil
}

// GetStatus reports whether the conversation with the other user has been
// finalized, and by whom and when if so.
func (s *MessageService) GetStatus(userID, otherUserID uint) (*response.StatusView, error) {
	conversationID := convid.Derive(userID, otherUserID)
	conversation, err := s.conversations.GetByConversationID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	if conversation == nil || conversation.FinalizedAt == nil {
		return &response.StatusView{IsFinalized: false}, nil
	}
	return &response.StatusView{
		IsFinalized: true,
		FinalizedBy: conversation.FinalizedBy,
		FinalizedAt: conversation.FinalizedAt,
	}, nil
}

// Finalize marks the conversation as concluded. Repeat calls succeed and
// overwrite the finalizer and timestamp; the flag is never cleared.
func (s *MessageService) Finalize(userID, otherUserID uint) (*response.StatusView, error) {
	if userID == otherUserID {
		return nil, ErrSelfMessage
	}
	conversationID := convid.Derive(userID, otherUserID)

	now := time.Now()
	if err := s.conversations.UpsertFinalize(conversationID, userID, now); err != nil {
		return nil, fmt.Errorf("finalize conversation: %w", err)
	}
	return &response.StatusView{
		IsFinalized: true,
		FinalizedBy: &userID,
		FinalizedAt: &now,
	}, nil
}

// Presence reports whether the other user is reachable right now. A live
// session on this instance answers immediately; otherwise the shared
// presence entry covers sessions held by other instances.
func (s *MessageService) Presence(otherUserID uint) *response.PresenceView {
	if s.pusher.IsOnline(otherUserID) {
		return &response.PresenceView{UserID: otherUserID, Online: true}
	}
	presence, err := redis.GetUserPresence(otherUserID)
	if err != nil || presence == nil {
		return &response.PresenceView{UserID: otherUserID, Online: false}
	}
	view := &response.PresenceView{UserID: otherUserID, Online: presence.Connected}
	lastSeen := presence.LastSeen
	view.LastSeen = &lastSeen
	return view
}

func counterpart(m *model.Message, userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
