// Package cache decora el catálogo de precios con una caché cache-aside (Redis) y singleflight.
package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jhoicas/stockledger-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "price:"

// PriceSource origen de verdad de los precios (repositorio de productos).
type PriceSource interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

// Backend almacén clave/valor con TTL.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// LookupRecorder cuenta hits, misses y errores de la caché. Opcional.
type LookupRecorder interface {
	ObserveCacheLookup(result string)
}

// PriceCache implementa ledger.PriceCatalog. Los fallos del backend degradan a consultar el origen.
type PriceCache struct {
	source   PriceSource
	backend  Backend
	ttl      time.Duration
	group    singleflight.Group
	log      *logger.Logger
	recorder LookupRecorder
}

// NewPriceCache construye la caché. backend nil = passthrough al origen.
func NewPriceCache(source PriceSource, backend Backend, ttl time.Duration, log *logger.Logger, recorder LookupRecorder) *PriceCache {
	return &PriceCache{source: source, backend: backend, ttl: ttl, log: log, recorder: recorder}
}

// PricesByIDs devuelve precios de la caché y completa los faltantes con una sola consulta al origen.
// Las consultas concurrentes por el mismo conjunto de faltantes se colapsan.
func (c *PriceCache) PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	if c.backend == nil {
		return c.source.PricesByIDs(ctx, ids)
	}

	out := make(map[string]decimal.Decimal, len(ids))
	var misses []string
	for _, id := range ids {
		raw, ok, err := c.backend.Get(ctx, keyPrefix+id)
		if err != nil {
			c.observe("error")
			c.log.Warn().Err(err).Str("product_id", id).Msg("caché de precios no disponible")
			misses = append(misses, id)
			continue
		}
		if !ok {
			c.observe("miss")
			misses = append(misses, id)
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			c.observe("error")
			misses = append(misses, id)
			continue
		}
		c.observe("hit")
		out[id] = price
	}
	if len(misses) == 0 {
		return out, nil
	}

	sort.Strings(misses)
	// la consulta compartida no hereda la cancelación de quien la inicia;
	// cada llamador abandona la espera con su propio contexto
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strings.Join(misses, ","), func() (interface{}, error) {
		fresh, err := c.source.PricesByIDs(shared, misses)
		if err != nil {
			return nil, err
		}
		for id, price := range fresh {
			if err := c.backend.Set(shared, keyPrefix+id, price.String(), c.ttl); err != nil {
				c.log.Warn().Err(err).Str("product_id", id).Msg("no se pudo guardar precio en caché")
			}
		}
		return fresh, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		for id, price := range r.Val.(map[string]decimal.Decimal) {
			out[id] = price
		}
		return out, nil
	}
}

// Invalidate elimina precios cacheados (al actualizar o borrar un producto).
func (c *PriceCache) Invalidate(ctx context.Context, ids ...string) error {
	if c.backend == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	return c.backend.Del(ctx, keys...)
}

func (c *PriceCache) observe(result string) {
	if c.recorder != nil {
		c.recorder.ObserveCacheLookup(result)
	}
}

// RedisBackend Backend sobre go-redis.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend usa un cliente ya configurado.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Del(ctx context.Context, keys ...string) error {
	return b.client.Del(ctx, keys...).Err()
}
