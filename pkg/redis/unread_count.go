package redis

import (
	"fmt"
	"time"
)

// Unread counters live in one hash per user, keyed by conversation id, so
// the conversation list can show per-thread badges with a single HGETALL.
const (
	UnreadKeyPrefix = "am:unread:"
	UnreadTTL       = 7 * 24 * time.Hour
)

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s%d", UnreadKeyPrefix, userID)
}

// IncrementUnread bumps the user's unread counter for one conversation.
func IncrementUnread(userID uint, conversationID string) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := unreadKey(userID)
	if err := client.HIncrBy(ctx, key, conversationID, 1).Err(); err != nil {
		return fmt.Errorf("increment unread: %w", err)
	}
	if err := client.Expire(ctx, key, UnreadTTL).Err(); err != nil {
		return fmt.Errorf("set unread ttl: %w", err)
	}
	return nil
}

// ClearUnread resets the user's counter for one conversation, after a
// thread fetch or an explicit mark-read.
func ClearUnread(userID uint, conversationID string) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := client.HDel(ctx, unreadKey(userID), conversationID).Err(); err != nil {
		return fmt.Errorf("clear unread: %w", err)
	}
	return nil
}

// GetUnreadCounts returns the user's unread counters keyed by conversation
// id. A missing hash means no cached counters, returned as an empty map.
func GetUnreadCounts(userID uint) (map[string]int64, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	fields, err := client.HGetAll(ctx, unreadKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get unread counts: %w", err)
	}

	counts := make(map[string]int64, len(fields))
	for convID, raw := range fields {
		var n int64
		if _, err := fmt.Sscan(raw, &n); err == nil && n > 0 {
			counts[convID] = n
		}
	}
	return counts, nil
}

// SetUnreadCounts replaces the user's counters, used when rebuilding from
// the database.
func SetUnreadCounts(userID uint, counts map[string]int64) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := unreadKey(userID)
	if err := client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(counts))
	for convID, n := range counts {
		fields[convID] = n
	}
	if err := client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("set unread counts: %w", err)
	}
	if err := client.Expire(ctx, key, UnreadTTL).Err(); err != nil {
		return fmt.Errorf("set unread ttl: %w", err)
	}
	return nil
}
