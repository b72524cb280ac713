package service

import (
	"context"
	"testing"
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perfilPendiente(id string) *model.PerfilSnapshot {
	return &model.PerfilSnapshot{
		Usuario:     model.Usuario{ID: id, Email: id + "@cotecmar.com", Nombre: "Op " + id, Rol: model.RolModelista},
		Offline:     true,
		PendingSync: true,
	}
}

func TestBarridoEmpujaPerfilesPendientes(t *testing.T) {
	repo := newStubUsuarioRepo()
	almacen := cache.New(cache.NewMemoria())
	svc := NewSyncService(repo, almacen, &stubDLQ{}, 5, 30*time.Second)

	ctx := context.Background()
	almacen.GuardarPerfil(ctx, perfilPendiente("u1"))
	almacen.GuardarPerfil(ctx, perfilPendiente("u2"))

	n := svc.SincronizarPendientes(ctx)
	assert.Equal(t, 2, n)
	assert.Contains(t, repo.usuarios, "u1")
	assert.Contains(t, repo.usuarios, "u2")

	// Flags cleared: a second sweep finds nothing.
	assert.Equal(t, 0, svc.SincronizarPendientes(ctx))
	local := almacen.ObtenerPerfil(ctx, "u1")
	assert.False(t, local.PendingSync)
	assert.False(t, local.Offline)
}

func TestBarridoRespetaElBackoff(t *testing.T) {
	repo := newStubUsuarioRepo()
	repo.errMerge = errConectividad("merge usuario")
	almacen := cache.New(cache.NewMemoria())
	reloj := &relojFijo{t: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)}
	svc := NewSyncService(repo, almacen, &stubDLQ{}, 5, 30*time.Second)
	svc.(*syncService).now = reloj.ahora

	ctx := context.Background()
	almacen.GuardarPerfil(ctx, perfilPendiente("u1"))

	assert.Equal(t, 0, svc.SincronizarPendientes(ctx))
	assert.Equal(t, 1, repo.merges)

	// Inside the backoff window the snapshot is skipped entirely.
	assert.Equal(t, 0, svc.SincronizarPendientes(ctx))
	assert.Equal(t, 1, repo.merges)

	// Past the window it is retried, and the window doubles.
	reloj.avanzar(31 * time.Second)
	svc.SincronizarPendientes(ctx)
	assert.Equal(t, 2, repo.merges)

	reloj.avanzar(31 * time.Second) // second window is 60s, still inside
	svc.SincronizarPendientes(ctx)
	assert.Equal(t, 2, repo.merges)
}

func TestBarridoAgotadoVaADeadLetter(t *testing.T) {
	repo := newStubUsuarioRepo()
	repo.errMerge = errConectividad("merge usuario")
	almacen := cache.New(cache.NewMemoria())
	dlq := &stubDLQ{}
	reloj := &relojFijo{t: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)}
	svc := NewSyncService(repo, almacen, dlq, 3, time.Second)
	svc.(*syncService).now = reloj.ahora

	ctx := context.Background()
	almacen.GuardarPerfil(ctx, perfilPendiente("u1"))

	for i := 0; i < 3; i++ {
		svc.SincronizarPendientes(ctx)
		reloj.avanzar(time.Minute)
	}

	require.Len(t, dlq.entradas, 1)
	assert.Equal(t, "u1", dlq.entradas[0].ID)

	// Dead-lettered snapshots leave the sweep permanently.
	antes := repo.merges
	svc.SincronizarPendientes(ctx)
	assert.Equal(t, antes, repo.merges)
	assert.False(t, almacen.ObtenerPerfil(ctx, "u1").PendingSync)
}

func TestBarridoExitosoTrasRecuperarse(t *testing.T) {
	repo := newStubUsuarioRepo()
	repo.errMerge = errConectividad("merge usuario")
	almacen := cache.New(cache.NewMemoria())
	reloj := &relojFijo{t: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)}
	svc := NewSyncService(repo, almacen, &stubDLQ{}, 5, time.Second)
	svc.(*syncService).now = reloj.ahora

	ctx := context.Background()
	almacen.GuardarPerfil(ctx, perfilPendiente("u1"))

	svc.SincronizarPendientes(ctx)
	reloj.avanzar(time.Minute)
	repo.errMerge = nil

	assert.Equal(t, 1, svc.SincronizarPendientes(ctx))
	assert.Contains(t, repo.usuarios, "u1")
	local := almacen.ObtenerPerfil(ctx, "u1")
	assert.False(t, local.PendingSync)
	assert.Equal(t, 0, local.Intentos)
	assert.Nil(t, local.ProximoIntento)
}
