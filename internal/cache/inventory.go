package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	CapstoneKeyPrefix     = "capstone:%d"
	CapstoneListKey       = "capstones:list"
	CapstoneStatsKey      = "capstones:stats"
	UnreadCountKeyPrefix  = "user:%d:unread"
	TokenBlacklistPrefix  = "blacklist:%s"
)

const (
	UserTTL          = 5 * time.Minute
	CapstoneTTL      = 10 * time.Minute
	CapstoneStatsTTL = time.Minute
	UnreadCountTTL   = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CapstoneKey(capstoneID uint) string {
	return fmt.Sprintf(CapstoneKeyPrefix, capstoneID)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

func TokenBlacklistKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateCapstone drops both the capstone entry and the aggregate views,
// which embed availability derived from its requests.
func InvalidateCapstone(ctx context.Context, capstoneID uint) {
	Invalidate(ctx, CapstoneKey(capstoneID))
	Invalidate(ctx, CapstoneListKey)
	Invalidate(ctx, CapstoneStatsKey)
}
