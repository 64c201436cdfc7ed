package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern: dest is filled from Redis when the
// key is present, otherwise loader runs and its result is cached under key for
// ttl. A nil Redis client degrades to calling loader directly; cache write
// failures are ignored since the loader already produced the data.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() error) error {
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil {
			if err := json.Unmarshal(raw, dest); err == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to the loader.
			client.Del(ctx, key)
		}
	}

	if err := loader(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
