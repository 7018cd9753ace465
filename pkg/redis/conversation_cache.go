package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The assembled conversation list is cached per user as an opaque JSON
// blob; the service owns the shape. Any new message or read transition in
// one of the user's threads invalidates the entry.
const (
	ConversationsKeyPrefix = "am:conversations:"
	ConversationsCacheTTL  = 5 * time.Minute
)

func conversationsKey(userID uint) string {
	return fmt.Sprintf("%s%d", ConversationsKeyPrefix, userID)
}

// CacheConversations stores the serialized conversation list for a user.
func CacheConversations(userID uint, data []byte) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := client.Set(ctx, conversationsKey(userID), data, ConversationsCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache conversations: %w", err)
	}
	return nil
}

// GetCachedConversations returns the cached list, or (nil, nil) on a miss.
func GetCachedConversations(userID uint) ([]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	raw, err := client.Get(ctx, conversationsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached conversations: %w", err)
	}
	return raw, nil
}

// InvalidateConversations drops the cached lists of the given users.
func InvalidateConversations(userIDs ...uint) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, conversationsKey(id))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate conversations: %w", err)
	}
	return nil
}
