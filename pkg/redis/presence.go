package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceData is the stored online state of a user.
type PresenceData struct {
	UserID    uint      `json:"user_id"`
	Status    string    `json:"status"` // online/offline
	LastSeen  time.Time `json:"last_seen"`
	Connected bool      `json:"connected"`
}

const (
	PresenceKeyPrefix = "am:presence:"
	// PresenceTTL is twice the gateway ping interval so a wedged
	// connection ages out on its own.
	PresenceTTL = 2 * time.Minute
)

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}

// SetUserPresence records the user's current status, called from the
// gateway's connect/disconnect hooks.
func SetUserPresence(userID uint, status string) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	presence := PresenceData{
		UserID:    userID,
		Status:    status,
		LastSeen:  time.Now(),
		Connected: status == "online",
	}
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}

	ttl := PresenceTTL
	if status != "online" {
		// offline entries only need to outlive a quick reconnect
		ttl = 30 * time.Second
	}
	if err := client.Set(ctx, presenceKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

// RefreshUserPresence extends the TTL of an online entry, called on each
// heartbeat.
func RefreshUserPresence(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Err(); err != nil {
		return fmt.Errorf("refresh presence: %w", err)
	}
	return nil
}

// GetUserPresence returns the stored presence, or (nil, nil) for a user
// with no entry.
func GetUserPresence(userID uint) (*PresenceData, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	raw, err := client.Get(ctx, presenceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get presence: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal([]byte(raw), &presence); err != nil {
		return nil, fmt.Errorf("unmarshal presence: %w", err)
	}
	return &presence, nil
}
