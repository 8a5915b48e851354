package roster

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/examdesk/exam-seat-allocation/internal/config"
	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// ErrUploadNotFound is returned when a cached upload has expired or
// never existed.
var ErrUploadNotFound = errors.New("upload not found or expired")

// Cache keeps parsed roster uploads in Redis for a bounded TTL, keyed
// by upload id.  This replaces the "last uploaded roster" session
// global of older deployments with explicit, expiring state: allocation
// can replay an upload by id, and a dead Redis simply disables replay
// rather than breaking uploads.
type Cache struct {
	rdb *redis.Client
	cfg config.RosterCacheConfig
}

// NewCache builds a roster cache.  A nil Redis client or a disabled
// config yields a cache whose Enabled() is false; Store and Load then
// return ErrUploadNotFound without touching the network.
func NewCache(rdb *redis.Client, cfg config.RosterCacheConfig) *Cache {
	return &Cache{rdb: rdb, cfg: cfg}
}

// Enabled reports whether the cache is operational.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil && c.cfg.Enabled
}

func (c *Cache) key(uploadID string) string {
	return c.cfg.Prefix + ":" + uploadID
}

// Store saves the rows of one upload under its id with the configured
// TTL.
func (c *Cache) Store(ctx context.Context, uploadID string, rows []model.RegistrationRow) error {
	if !c.Enabled() {
		return nil
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(uploadID), body, c.cfg.TTL).Err()
}

// Load retrieves the rows of a cached upload.  Expired or unknown ids
// yield ErrUploadNotFound.
func (c *Cache) Load(ctx context.Context, uploadID string) ([]model.RegistrationRow, error) {
	if !c.Enabled() {
		return nil, ErrUploadNotFound
	}
	body, err := c.rdb.Get(ctx, c.key(uploadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	var rows []model.RegistrationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
