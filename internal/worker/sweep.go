package worker

import (
	"context"

	"github.com/iatechsabana/cotecmar/internal/infra"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/rs/zerolog/log"
)

// StartSyncWorker wires the pending-profile sweep to connectivity: one run at
// startup if the remote store is already reachable, then one run on every
// offline→online transition the monitor observes.
func StartSyncWorker(ctx context.Context, sync service.SyncService, monitor *infra.Monitor) {
	correr := func() {
		if n := sync.SincronizarPendientes(ctx); n > 0 {
			log.Info().Int("sincronizados", n).Msg("sweep: perfiles pendientes empujados")
		}
	}

	monitor.Subscribe(func() {
		log.Info().Msg("sweep: conexión recuperada, ejecutando barrido")
		correr()
	})

	if monitor.IsOnline(ctx) {
		go correr()
	}
}
