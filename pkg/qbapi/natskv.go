package qbapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the NATS JetStream key/value cache backend. It is
// useful when several exporter processes share one realm and should not each
// re-list the same schema.
type NATSKVConfig struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222.
	URL string

	// Bucket is the KV bucket name; created if missing.
	Bucket string

	// Credentials is an optional path to a NATS credentials file.
	Credentials string
}

// NATSKVCache is a Cache backed by a NATS JetStream KV bucket.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// natsEntry is the stored representation of a CacheEntry.
type natsEntry struct {
	Data      []byte `json:"data"`
	ExpiresAt int64  `json:"expires_at"`
	ETag      string `json:"etag,omitempty"`
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	var opts []nats.Option
	if config.Credentials != "" {
		opts = append(opts, nats.UserCredentials(config.Credentials))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("getting JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: config.Bucket})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding KV bucket %q: %w", config.Bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// Close releases the NATS connection.
func (c *NATSKVCache) Close() {
	c.conn.Close()
}

// sanitizeKey maps request paths onto the NATS KV key alphabet.
var keySanitizer = strings.NewReplacer("/", ".", "?", "_", "&", "_", "=", "-", " ", "-")

func sanitizeKey(key string) string {
	return keySanitizer.Replace(key)
}

// Get retrieves an entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(sanitizeKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting key from NATS KV: %w", err)
	}

	var stored natsEntry

	err = json.Unmarshal(kvEntry.Value(), &stored)
	if err != nil {
		return nil, fmt.Errorf("decoding NATS KV entry: %w", err)
	}

	entry := &CacheEntry{Data: stored.Data, ETag: stored.ETag}
	if stored.ExpiresAt > 0 {
		entry.ExpiresAt = time.Unix(stored.ExpiresAt, 0)
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheEntryExpired
	}

	return entry, nil
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	stored := natsEntry{Data: entry.Data, ETag: entry.ETag}
	if !entry.ExpiresAt.IsZero() {
		stored.ExpiresAt = entry.ExpiresAt.Unix()
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding NATS KV entry: %w", err)
	}

	_, err = c.kv.Put(sanitizeKey(key), payload)
	if err != nil {
		return fmt.Errorf("putting key to NATS KV: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(sanitizeKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting key from NATS KV: %w", err)
	}

	return nil
}

// Clear removes every entry in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS KV keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Purge(key)
		if err != nil {
			return fmt.Errorf("purging NATS KV key %q: %w", key, err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	entry, err := c.Get(ctx, key)

	return err == nil && entry != nil
}
