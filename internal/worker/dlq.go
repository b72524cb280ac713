// Package worker holds the background pieces of the reconciliation loop: the
// pending-profile sweep and its dead-letter queue.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const claveDLQ = "dlq:sync:perfiles"

// EntradaDLQ is one dead-lettered profile: the snapshot as it looked when it
// exhausted its attempts, plus why.
type EntradaDLQ struct {
	Perfil    *model.PerfilSnapshot `json:"perfil"`
	Motivo    string                `json:"motivo"`
	Intentos  int                   `json:"intentos"`
	Timestamp time.Time             `json:"timestamp"`
}

// RedisDLQ appends dead-lettered snapshots to a Redis list for manual
// inspection. Enqueue failures are logged and dropped; the DLQ is diagnostic,
// a broken queue must not wedge the sweep.
type RedisDLQ struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisDLQ(rdb *redis.Client) *RedisDLQ {
	return &RedisDLQ{rdb: rdb, now: time.Now}
}

func (q *RedisDLQ) Enviar(ctx context.Context, snap *model.PerfilSnapshot, motivo string, intentos int) {
	entrada := EntradaDLQ{Perfil: snap, Motivo: motivo, Intentos: intentos, Timestamp: q.now()}
	raw, err := json.Marshal(entrada)
	if err != nil {
		log.Error().Str("uid", snap.ID).Err(err).Msg("dlq: no se pudo serializar la entrada")
		return
	}
	if err := q.rdb.RPush(ctx, claveDLQ, raw).Err(); err != nil {
		log.Error().Str("uid", snap.ID).Err(err).Msg("dlq: no se pudo encolar la entrada")
	}
}

// Longitud reports the queue depth, for the health endpoint.
func (q *RedisDLQ) Longitud(ctx context.Context) int64 {
	n, err := q.rdb.LLen(ctx, claveDLQ).Result()
	if err != nil {
		log.Warn().Err(err).Msg("dlq: no se pudo leer la longitud")
		return 0
	}
	return n
}
