package cache

import (
	"context"
	"testing"

	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfilIdaYVuelta(t *testing.T) {
	c := New(NewMemoria())
	ctx := context.Background()

	c.GuardarPerfil(ctx, &model.PerfilSnapshot{
		Usuario:     model.Usuario{ID: "u1", Email: "ana@cotecmar.com", Nombre: "Ana", Rol: model.RolLider},
		Offline:     true,
		PendingSync: true,
	})

	snap := c.ObtenerPerfil(ctx, "u1")
	require.NotNil(t, snap)
	assert.Equal(t, model.RolLider, snap.Rol)
	assert.True(t, snap.PendingSync)
}

func TestPerfilAusenteEsMiss(t *testing.T) {
	c := New(NewMemoria())
	assert.Nil(t, c.ObtenerPerfil(context.Background(), "nadie"))
}

func TestEntradaCorruptaEsMiss(t *testing.T) {
	store := NewMemoria()
	c := New(store)
	ctx := context.Background()

	store.Set(ctx, "user_u1", []byte("{esto no es json"))
	assert.Nil(t, c.ObtenerPerfil(ctx, "u1"))
}

func TestPerfilesPendientesFiltraYOmiteCorruptos(t *testing.T) {
	store := NewMemoria()
	c := New(store)
	ctx := context.Background()

	c.GuardarPerfil(ctx, &model.PerfilSnapshot{
		Usuario: model.Usuario{ID: "u1"}, PendingSync: true,
	})
	c.GuardarPerfil(ctx, &model.PerfilSnapshot{
		Usuario: model.Usuario{ID: "u2"},
	})
	store.Set(ctx, "user_u3", []byte("basura"))

	pendientes := c.PerfilesPendientes(ctx)
	require.Len(t, pendientes, 1)
	assert.Equal(t, "u1", pendientes[0].ID)
}

func TestEventosIdaYVuelta(t *testing.T) {
	c := New(NewMemoria())
	ctx := context.Background()

	c.GuardarEventos(ctx, "u1", []model.EventoProductividad{
		{ID: "e1", Fecha: "2026-08-31", Operario: "Pérez", Sistema: "HVAC",
			Tipo: model.TipoProductivo, DuracionMin: 90, PendingSync: true},
	})

	eventos := c.ObtenerEventos(ctx, "u1")
	require.Len(t, eventos, 1)
	assert.True(t, eventos[0].PendingSync)

	// Another user's bucket is independent.
	assert.Empty(t, c.ObtenerEventos(ctx, "u2"))
}

func TestMemoriaKeysPorPrefijo(t *testing.T) {
	store := NewMemoria()
	ctx := context.Background()

	store.Set(ctx, "user_b", []byte("1"))
	store.Set(ctx, "user_a", []byte("1"))
	store.Set(ctx, "prod_eventos_a", []byte("1"))

	assert.Equal(t, []string{"user_a", "user_b"}, store.Keys(ctx, "user_*"))

	store.Delete(ctx, "user_a")
	assert.Equal(t, []string{"user_b"}, store.Keys(ctx, "user_*"))
}
