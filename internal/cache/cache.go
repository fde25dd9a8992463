// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil when Redis is disabled; callers must
// check before publishing.
var Rdb *redis.Client

// matchActionsKey is the list the historian consumer drains.
const matchActionsKey = "cowking:match_actions"

// MatchActionRecord is one entry in the match action history stream. The
// historian replays these to reconstruct a match.
type MatchActionRecord struct {
	MatchID       uuid.UUID              `json:"matchId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // Nil for lifecycle events
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix millis
}

// InitRedis connects the shared client and verifies the connection with a
// ping.
func InitRedis(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	logrus.Infof("cache: connected to Redis at %s", addr)
	return nil
}

// PublishMatchAction appends an action record to the historian queue.
func PublishMatchAction(ctx context.Context, rec MatchActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, matchActionsKey, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", matchActionsKey, err)
	}
	return nil
}

// Close shuts down the shared client. Safe to call when Redis is disabled.
func Close() {
	if Rdb != nil {
		if err := Rdb.Close(); err != nil {
			logrus.Warnf("cache: closing Redis client: %v", err)
		}
		Rdb = nil
	}
}
