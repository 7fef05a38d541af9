package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"invoice-backend/internal/logger"
	"invoice-backend/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Cache key layout. Invoice keys carry the account's generation.
const (
	AccountKeyFmt     = "account:%s"
	GenerationKeyFmt  = "invoicegen:%s"
	InvoiceListKeyFmt = "invoices:%s:g%d:list"
	InvoiceKeyFmt     = "invoices:%s:g%d:%s"
	AccountPatternFmt = "invoices:%s:*"
)

func AccountKey(accountID string) string { return fmt.Sprintf(AccountKeyFmt, accountID) }

func GenerationKey(accountID string) string { return fmt.Sprintf(GenerationKeyFmt, accountID) }

func InvoiceListKey(accountID string, gen int64) string {
	return fmt.Sprintf(InvoiceListKeyFmt, accountID, gen)
}

func InvoiceKey(accountID string, gen int64, invoiceID string) string {
	return fmt.Sprintf(InvoiceKeyFmt, accountID, gen, invoiceID)
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache wraps a Redis client. A Cache with no client, including a nil
// *Cache, misses on every read and drops every write.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. When the server is unreachable the returned Cache
// is disabled and the ping error is returned alongside it.
func New(opts Options) (*Cache, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return &Cache{ttl: ttl}, err
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Disabled returns a cache that never stores anything
func Disabled() *Cache {
	return &Cache{}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Enabled reports whether a live client is attached
func (c *Cache) Enabled() bool {
	return c.enabled()
}

// TTL is the default expiry for entries
func (c *Cache) TTL() time.Duration {
	if c == nil || c.ttl <= 0 {
		return 5 * time.Minute
	}
	return c.ttl
}

// Get returns cached bytes for key
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data under key for ttl
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log := logger.WithComponent("cache")
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// GetJSON decodes a cached JSON value into dst. name labels the lookup metric.
func (c *Cache) GetJSON(ctx context.Context, name, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	data, ok := c.Get(ctx, key)
	if !ok {
		metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheLookups.WithLabelValues(name, "error").Inc()
		c.InvalidateKeys(ctx, key)
		return false
	}
	metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
	return true
}

// SetJSON encodes v and stores it with the default TTL
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, data, c.TTL())
}

// InvalidateKeys removes specific cache keys
func (c *Cache) InvalidateKeys(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// InvalidatePattern removes all keys matching a glob pattern
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if !c.enabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

// InvoiceGeneration returns the account's current invoice cache generation.
// ok is false when the cache is disabled or the generation could not be read,
// and callers must then neither read nor fill invoice entries.
func (c *Cache) InvoiceGeneration(ctx context.Context, accountID string) (int64, bool) {
	if !c.enabled() {
		return 0, false
	}
	gen, err := c.client.Get(ctx, GenerationKey(accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return gen, true
}

// InvalidateInvoiceCaches advances the account's generation, orphaning any
// entry filled from a read that raced the write, then clears current entries.
// Called on create, update and delete.
func (c *Cache) InvalidateInvoiceCaches(ctx context.Context, accountID string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Incr(ctx, GenerationKey(accountID)).Err(); err != nil {
		log := logger.WithComponent("cache")
		log.Warn().Err(err).Str("account_id", accountID).Msg("invoice generation bump failed")
	}
	c.InvalidatePattern(ctx, fmt.Sprintf(AccountPatternFmt, accountID))
}

// InvalidateAccount drops the cached account record
func (c *Cache) InvalidateAccount(ctx context.Context, accountID string) {
	c.InvalidateKeys(ctx, AccountKey(accountID))
}

// IsHealthy returns true if the Redis connection is working
func (c *Cache) IsHealthy(ctx context.Context) bool {
	if !c.enabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err() == nil
}

// Close releases the client
func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}
