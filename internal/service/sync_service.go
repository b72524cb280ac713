package service

import (
	"context"
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"

	"github.com/rs/zerolog/log"
)

// DeadLetter receives profile snapshots that exhausted their sync attempts.
type DeadLetter interface {
	Enviar(ctx context.Context, snap *model.PerfilSnapshot, motivo string, intentos int)
}

// SyncService is the pending-profile sweep: it pushes cached pendingSync
// profiles to the remote store with a merge write. Each snapshot gets a
// bounded number of attempts with exponential backoff; past the limit it goes
// to the dead-letter queue and stops being retried.
type SyncService interface {
	SincronizarPendientes(ctx context.Context) int
}

type syncService struct {
	repo        repository.UsuarioRepository
	cache       *cache.Cache
	dlq         DeadLetter
	maxIntentos int
	backoff     time.Duration
	now         func() time.Time
}

func NewSyncService(repo repository.UsuarioRepository, c *cache.Cache, dlq DeadLetter, maxIntentos int, backoff time.Duration) SyncService {
	return &syncService{
		repo:        repo,
		cache:       c,
		dlq:         dlq,
		maxIntentos: maxIntentos,
		backoff:     backoff,
		now:         time.Now,
	}
}

func (s *syncService) SincronizarPendientes(ctx context.Context) int {
	sincronizados := 0
	for _, snap := range s.cache.PerfilesPendientes(ctx) {
		if snap.ProximoIntento != nil && s.now().Before(*snap.ProximoIntento) {
			continue
		}

		// The pushed document carries none of the local-only flags.
		usuario := snap.Usuario
		usuario.UpdatedAt = s.now()
		err := s.repo.Merge(ctx, &usuario)
		if err == nil {
			snap.Offline = false
			snap.PendingSync = false
			snap.Temporary = false
			snap.Intentos = 0
			snap.ProximoIntento = nil
			s.cache.GuardarPerfil(ctx, snap)
			sincronizados++
			log.Info().Str("uid", snap.ID).Msg("sync: perfil pendiente sincronizado")
			continue
		}

		snap.Intentos++
		if snap.Intentos >= s.maxIntentos {
			s.dlq.Enviar(ctx, snap, err.Error(), snap.Intentos)
			// The flag comes off so the sweep never touches this snapshot
			// again; the DLQ entry is the durable record of the failure.
			snap.PendingSync = false
			snap.ProximoIntento = nil
			s.cache.GuardarPerfil(ctx, snap)
			log.Error().Str("uid", snap.ID).Int("intentos", snap.Intentos).Err(err).
				Msg("sync: perfil agotó reintentos, enviado a dead-letter")
			continue
		}

		// Exponential backoff: base × 2^(intentos-1).
		espera := s.backoff * (1 << (snap.Intentos - 1))
		proximo := s.now().Add(espera)
		snap.ProximoIntento = &proximo
		s.cache.GuardarPerfil(ctx, snap)
		log.Warn().Str("uid", snap.ID).Int("intentos", snap.Intentos).Dur("backoff", espera).Err(err).
			Msg("sync: merge falló, reintento programado")
	}
	return sincronizados
}
