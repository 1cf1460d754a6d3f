// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// folder.go provides a Valkey-backed cache for Google Drive folder IDs.
// The Drive backup flow resolves app/year/month folders before every
// upload; caching the IDs skips three Drive API round-trips per backup.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// folderKeyPrefix is the Valkey key prefix for cached folder IDs.
	folderKeyPrefix = "drive:folder:"

	// DefaultFolderTTL is how long a resolved folder ID stays cached.
	DefaultFolderTTL = 24 * time.Hour
)

// FolderCache caches resolved Drive folder IDs per user and path.
type FolderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFolderCache creates a folder cache backed by the given Valkey client.
func NewFolderCache(client *redis.Client, ttl time.Duration) *FolderCache {
	if ttl == 0 {
		ttl = DefaultFolderTTL
	}
	return &FolderCache{client: client, ttl: ttl}
}

func folderKey(userID uuid.UUID, path string) string {
	return fmt.Sprintf("%s%s:%s", folderKeyPrefix, userID, path)
}

// Get retrieves a cached folder ID. Returns empty string on miss.
func (fc *FolderCache) Get(ctx context.Context, userID uuid.UUID, path string) (string, bool) {
	val, err := fc.client.Get(ctx, folderKey(userID, path)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("folder cache get error", "path", path, "error", err)
		return "", false
	}
	return val, true
}

// Set stores a resolved folder ID with the configured TTL.
func (fc *FolderCache) Set(ctx context.Context, userID uuid.UUID, path, folderID string) {
	if err := fc.client.Set(ctx, folderKey(userID, path), folderID, fc.ttl).Err(); err != nil {
		slog.Warn("folder cache set error", "path", path, "error", err)
	}
}

// InvalidateUser removes all cached folder IDs for a user, used when they
// disconnect their Drive account.
func (fc *FolderCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	prefix := fmt.Sprintf("%s%s:*", folderKeyPrefix, userID)
	var cursor uint64
	for {
		keys, nextCursor, err := fc.client.Scan(ctx, cursor, prefix, 100).Result()
		if err != nil {
			slog.Warn("folder cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("folder cache bulk delete error", "error", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}
