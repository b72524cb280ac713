package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reqEvento(tipo string, minutos int) dto.CrearEventoRequest {
	return dto.CrearEventoRequest{
		Fecha:       "2026-08-31",
		Operario:    "Pérez",
		Bloque:      "B-204",
		Sistema:     "HVAC",
		Tipo:        tipo,
		DuracionMin: minutos,
	}
}

func TestRegistrarEsVisibleDeInmediatoYSeCompromete(t *testing.T) {
	repo := &stubProductividadRepo{}
	almacen := cache.New(cache.NewMemoria())
	svc := NewProductividadService(repo, almacen)

	evento, err := svc.Registrar(context.Background(), "u1", reqEvento("PRODUCTIVO", 90))
	require.NoError(t, err)
	assert.True(t, evento.PendingSync)

	svc.Esperar()
	// Committed remotely and cleaned from the local cache.
	require.Len(t, repo.eventos, 1)
	assert.False(t, repo.eventos[0].PendingSync)
	assert.Empty(t, almacen.ObtenerEventos(context.Background(), "u1"))
}

func TestRegistrarConRemotoCaidoQuedaPendienteYSeReintenta(t *testing.T) {
	repo := &stubProductividadRepo{errCrear: errConectividad("crear evento")}
	almacen := cache.New(cache.NewMemoria())
	svc := NewProductividadService(repo, almacen)

	_, err := svc.Registrar(context.Background(), "u1", reqEvento("PNP", 30))
	require.NoError(t, err)
	svc.Esperar()

	locales := almacen.ObtenerEventos(context.Background(), "u1")
	require.Len(t, locales, 1)
	assert.True(t, locales[0].PendingSync)

	// Next load cycle retries the pending write first.
	repo.errCrear = nil
	eventos, err := svc.Listar(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	assert.Len(t, repo.eventos, 1)
	assert.Empty(t, almacen.ObtenerEventos(context.Background(), "u1"))
}

func TestListarDeduplicaPorFirma(t *testing.T) {
	repo := &stubProductividadRepo{}
	almacen := cache.New(cache.NewMemoria())
	svc := NewProductividadService(repo, almacen)

	// The write landed remotely but the local cleanup never ran (e.g. a
	// crash in between): same signature on both sides.
	evento := model.EventoProductividad{
		ID: "e1", Fecha: "2026-08-31", Operario: "Pérez", Bloque: "B-204",
		Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 90,
	}
	repo.eventos = append(repo.eventos, evento)
	local := evento
	local.ID = "e1-local"
	almacen.GuardarEventos(context.Background(), "u1", []model.EventoProductividad{local})

	eventos, err := svc.Listar(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, eventos, 1)
}

func TestListarConRemotoCaidoSirveLocales(t *testing.T) {
	repo := &stubProductividadRepo{errListar: errConectividad("listar productividad")}
	almacen := cache.New(cache.NewMemoria())
	svc := NewProductividadService(repo, almacen)

	almacen.GuardarEventos(context.Background(), "u1", []model.EventoProductividad{
		{ID: "e1", Fecha: "2026-08-31", Operario: "Pérez", Sistema: "HVAC",
			Tipo: model.TipoPNP, DuracionMin: 15, PendingSync: true},
	})

	// The pending retry also fails; the event must still be served.
	repo.errCrear = errConectividad("crear evento")
	eventos, err := svc.Listar(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	assert.Equal(t, "e1", eventos[0].ID)
}

func TestListarErrorNoDeConectividadSePropagaProductividad(t *testing.T) {
	repo := &stubProductividadRepo{errListar: errors.New("permiso denegado")}
	svc := NewProductividadService(repo, cache.New(cache.NewMemoria()))

	_, err := svc.Listar(context.Background(), "u1")
	require.Error(t, err)
}

func TestResumenCalculaPorcentajesPorOperario(t *testing.T) {
	repo := &stubProductividadRepo{eventos: []model.EventoProductividad{
		{Fecha: "2026-08-30", Operario: "Pérez", Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 300},
		{Fecha: "2026-08-30", Operario: "Pérez", Sistema: "HVAC", Tipo: model.TipoPNP, DuracionMin: 100},
		{Fecha: "2026-08-31", Operario: "Pérez", Sistema: "PIPE", Tipo: model.TipoRW, DuracionMin: 100},
		{Fecha: "2026-08-31", Operario: "Gómez", Sistema: "CBTR", Tipo: model.TipoProductivo, DuracionMin: 60},
	}}
	svc := NewProductividadService(repo, cache.New(cache.NewMemoria()))

	resumen, err := svc.Resumen(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, resumen, 2)

	// Sorted by operator name.
	gomez, perez := resumen[0], resumen[1]
	assert.Equal(t, "Gómez", gomez.Operario)
	assert.InDelta(t, 100.0, gomez.PctProd, 0.001)

	assert.Equal(t, "Pérez", perez.Operario)
	assert.Equal(t, 2, perez.Dias)
	assert.Equal(t, 300, perez.TPRMin)
	assert.Equal(t, 500, perez.TDMin)
	assert.InDelta(t, 60.0, perez.PctProd, 0.001)
	assert.InDelta(t, 20.0, perez.PctPNP, 0.001)
	assert.InDelta(t, 20.0, perez.PctRW, 0.001)
	assert.InDelta(t, 0.0, perez.PctTM, 0.001)
}

func TestMatrizSoloCuentaMinutosProductivos(t *testing.T) {
	repo := &stubProductividadRepo{eventos: []model.EventoProductividad{
		{Fecha: "2026-08-31", Operario: "Pérez", Bloque: "B-204", Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 90},
		{Fecha: "2026-08-31", Operario: "Pérez", Bloque: "B-204", Sistema: "PIPE", Tipo: model.TipoProductivo, DuracionMin: 30},
		{Fecha: "2026-08-31", Operario: "Pérez", Bloque: "B-204", Sistema: "HVAC", Tipo: model.TipoPNP, DuracionMin: 999},
		{Fecha: "2026-08-31", Operario: "Gómez", Bloque: "", Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 45},
	}}
	svc := NewProductividadService(repo, cache.New(cache.NewMemoria()))

	matriz, err := svc.Matriz(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"HVAC", "PIPE"}, matriz.Sistemas)
	require.Len(t, matriz.Filas, 2)

	assert.Equal(t, "B-204", matriz.Filas[0].Bloque)
	assert.Equal(t, 90, matriz.Filas[0].Minutos["HVAC"])
	assert.Equal(t, 120, matriz.Filas[0].Total)

	assert.Equal(t, "Sin bloque", matriz.Filas[1].Bloque)
	assert.Equal(t, 45, matriz.Filas[1].Total)
}
