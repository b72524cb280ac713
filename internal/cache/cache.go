// Package cache is the local offline cache: entity snapshots keyed by kind
// and id, used as fallback when the remote store is unreachable. Storage
// failures and corrupt entries are treated as cache misses, never as fatal
// errors. There is no eviction.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	prefijoUsuario = "user_"
	prefijoEventos = "prod_eventos_"
)

// Store is the raw key-value surface the cache sits on. Implementations
// swallow their own errors: a failed read is a miss, a failed write is a
// warn-level log line.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Keys(ctx context.Context, pattern string) []string
	Delete(ctx context.Context, key string)
}

// ── Redis store ──────────────────────────────────────────────────────────────

type redisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) Store { return &redisStore{rdb: rdb} }

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Str("key", key).Err(err).Msg("cache: lectura falló, tratada como miss")
		}
		return nil, false
	}
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key string, val []byte) {
	if err := s.rdb.Set(ctx, key, val, 0).Err(); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache: escritura falló")
	}
}

func (s *redisStore) Keys(ctx context.Context, pattern string) []string {
	keys, err := s.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		log.Warn().Str("pattern", pattern).Err(err).Msg("cache: scan falló")
		return nil
	}
	return keys
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache: delete falló")
	}
}

// ── In-memory store ──────────────────────────────────────────────────────────

// memStore backs unit tests and the no-redis development mode.
type memStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoria() Store { return &memStore{data: make(map[string][]byte)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

func (s *memStore) Set(_ context.Context, key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
}

func (s *memStore) Keys(_ context.Context, pattern string) []string {
	// Only the two prefix patterns the cache uses are supported.
	prefijo := pattern
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefijo = pattern[:n-1]
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if len(k) >= len(prefijo) && k[:len(prefijo)] == prefijo {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *memStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// ── Typed cache ──────────────────────────────────────────────────────────────

// Cache exposes the entity-level operations over a Store.
type Cache struct{ store Store }

func New(store Store) *Cache { return &Cache{store: store} }

// ObtenerPerfil returns the cached profile snapshot or nil on miss. Corrupt
// JSON is a miss.
func (c *Cache) ObtenerPerfil(ctx context.Context, uid string) *model.PerfilSnapshot {
	raw, ok := c.store.Get(ctx, prefijoUsuario+uid)
	if !ok {
		return nil
	}
	var snap model.PerfilSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("cache: snapshot de perfil corrupto, tratado como miss")
		return nil
	}
	return &snap
}

func (c *Cache) GuardarPerfil(ctx context.Context, snap *model.PerfilSnapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Str("uid", snap.ID).Err(err).Msg("cache: no se pudo serializar perfil")
		return
	}
	c.store.Set(ctx, prefijoUsuario+snap.ID, raw)
}

// PerfilesPendientes returns every cached profile flagged pendingSync, for
// the sweep.
func (c *Cache) PerfilesPendientes(ctx context.Context) []*model.PerfilSnapshot {
	var pendientes []*model.PerfilSnapshot
	for _, key := range c.store.Keys(ctx, prefijoUsuario+"*") {
		raw, ok := c.store.Get(ctx, key)
		if !ok {
			continue
		}
		var snap model.PerfilSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("cache: snapshot corrupto omitido del barrido")
			continue
		}
		if snap.PendingSync {
			pendientes = append(pendientes, &snap)
		}
	}
	return pendientes
}

// ObtenerEventos returns the locally stored productivity events of a user.
func (c *Cache) ObtenerEventos(ctx context.Context, uid string) []model.EventoProductividad {
	raw, ok := c.store.Get(ctx, prefijoEventos+uid)
	if !ok {
		return nil
	}
	var eventos []model.EventoProductividad
	if err := json.Unmarshal(raw, &eventos); err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("cache: eventos locales corruptos, tratados como miss")
		return nil
	}
	return eventos
}

func (c *Cache) GuardarEventos(ctx context.Context, uid string, eventos []model.EventoProductividad) {
	raw, err := json.Marshal(eventos)
	if err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("cache: no se pudieron serializar eventos")
		return
	}
	c.store.Set(ctx, prefijoEventos+uid, raw)
}
