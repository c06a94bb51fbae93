package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogKeyPrefix = "catalog:"

	// Entries are retained well past the freshness window so the catalog
	// can fall back to last-known-good data when a live read fails. The
	// reader, not Redis, decides freshness from the entry timestamp.
	catalogRetention = 24 * time.Hour
)

// RedisCacheRepository implements domain.CatalogCache using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// GetCatalog retrieves the persisted catalog entry for a variant. A missing
// key and a corrupted entry both surface as domain.ErrCacheMiss: cache
// corruption is never propagated, only treated as absence.
func (r *RedisCacheRepository) GetCatalog(ctx context.Context, variant domain.Variant) (*domain.CatalogEntry, error) {
	key := catalogKeyPrefix + variant.Collection()

	data, err := r.get(ctx, key)
	if err != nil {
		return nil, err
	}

	var entry domain.CatalogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupted entry: drop it and report a miss.
		log.Printf("Warning: corrupted cache entry for %s, discarding: %v", key, err)
		_ = r.client.Del(ctx, key).Err()
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

// SetCatalog writes the normalized package list with the current timestamp.
func (r *RedisCacheRepository) SetCatalog(ctx context.Context, variant domain.Variant, pkgs []*domain.Package) error {
	entry := domain.CatalogEntry{
		Data:      pkgs,
		Timestamp: time.Now().UnixMilli(),
	}
	return r.set(ctx, catalogKeyPrefix+variant.Collection(), entry, catalogRetention)
}

// InvalidateCatalog removes the persisted entry for a variant.
func (r *RedisCacheRepository) InvalidateCatalog(ctx context.Context, variant domain.Variant) error {
	key := catalogKeyPrefix + variant.Collection()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// get reads a raw value with OTel tracing
func (r *RedisCacheRepository) get(ctx context.Context, key string) ([]byte, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return nil, domain.ErrCacheMiss
		}
		span.RecordError(err)
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	return data, nil
}

// set stores a JSON value with TTL and OTel tracing
func (r *RedisCacheRepository) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}
