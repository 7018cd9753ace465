package service

import (
	"sync"

	"art-market/internal/model"
	"art-market/pkg/logger"

	"go.uber.org/zap"
)

// NotificationService persists the notification feed. Writes go through a
// buffered queue drained by a background worker, so a slow or failing
// insert can never add latency to the send path or surface to its caller.
type NotificationService struct {
	store NotificationStore

	mu     sync.Mutex
	queue  chan *model.Notification
	closed bool
	done   chan struct{}
}

// NewNotificationService creates the service with the given queue depth.
func NewNotificationService(store NotificationStore, queueSize int) *NotificationService {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationService{
		store: store,
		queue: make(chan *model.Notification, queueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the dispatch worker.
func (s *NotificationService) Start() {
	go func() {
		defer close(s.done)
		for notification := range s.queue {
			if err := s.store.Create(notification); err != nil {
				logger.Error("notification dispatch failed",
					zap.Uint("user_id", notification.UserID),
					zap.String("type", notification.Type),
					zap.Error(err),
				)
			}
		}
	}()
}

// Enqueue hands a notification to the worker. Never blocks: when the queue
// is full or already stopped the entry is dropped with a warning.
func (s *NotificationService) Enqueue(notification *model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		logger.Warn("notification dropped, dispatcher stopped",
			zap.Uint("user_id", notification.UserID))
		return
	}
	select {
	case s.queue <- notification:
	default:
		logger.Warn("notification dropped, queue full",
			zap.Uint("user_id", notification.UserID))
	}
}

// Stop drains the queue and waits for the worker to finish.
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
}

// ListByUser returns the user's notification feed, newest first.
func (s *NotificationService) ListByUser(userID uint, limit int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListByUser(userID, limit)
}

// MarkRead marks one of the user's notifications as read. Idempotent.
func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.store.MarkRead(id, userID)
}
