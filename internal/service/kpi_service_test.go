package service

import (
	"context"
	"testing"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKPIsCombinanAmbasFuentes(t *testing.T) {
	avRepo := newStubAvanceRepo()
	prodRepo := &stubProductividadRepo{eventos: []model.EventoProductividad{
		{Fecha: "2026-08-31", Operario: "Op u1", Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 90},
		// Case-insensitive operator match.
		{Fecha: "2026-08-31", Operario: "op U1", Sistema: "PIPE", Tipo: model.TipoPNP, DuracionMin: 30},
		// Someone else's entries never count.
		{Fecha: "2026-08-31", Operario: "Gómez", Sistema: "HVAC", Tipo: model.TipoProductivo, DuracionMin: 500},
	}}

	avances := NewAvanceService(avRepo, &conectividadFija{online: true})
	productividad := NewProductividadService(prodRepo, cache.New(cache.NewMemoria()))
	svc := NewKPIService(avances, productividad)

	ctx := context.Background()
	ses := sesionDe("u1")

	req := reqAvance() // 4h, En progreso
	_, err := avances.Crear(ctx, ses, "u1", req)
	require.NoError(t, err)

	req2 := reqAvance()
	req2.Estado = "Completado"
	req2.HorasInvertidas = decimal.NewFromInt(6)
	_, err = avances.Crear(ctx, ses, "u1", req2)
	require.NoError(t, err)
	avances.Esperar()

	// One rework on the completed record.
	lista, err := avances.Listar(ctx, "u1")
	require.NoError(t, err)
	var completadoID string
	for _, a := range lista {
		if a.Estado == "Completado" {
			completadoID = a.ID
		}
	}
	_, err = avances.AgregarReproceso(ctx, ses, completadoID,
		dto.ReprocesoRequest{HorasAdicionales: decimal.NewFromInt(2), Motivo: "Soldadura rechazada"})
	require.NoError(t, err)

	kpis, err := svc.Calcular(ctx, "u1", "Op u1")
	require.NoError(t, err)

	assert.Equal(t, 1, kpis.Completados)
	assert.Equal(t, 1, kpis.EnProgreso)
	assert.Equal(t, 0, kpis.Bloqueados)
	assert.Equal(t, 1, kpis.ReprocesosReportados)
	assert.Equal(t, 120, kpis.MinutosProductividad)
	// 4 + (6 + 2 de reproceso) = 12 horas de avances; 120 min = 2 horas más.
	assert.True(t, kpis.HorasAvances.Equal(decimal.NewFromInt(12)), "horas avances: %s", kpis.HorasAvances)
	assert.True(t, kpis.HorasTotales.Equal(decimal.NewFromInt(14)), "horas totales: %s", kpis.HorasTotales)
}

func TestKPIsVaciosSonCero(t *testing.T) {
	avances := NewAvanceService(newStubAvanceRepo(), &conectividadFija{online: true})
	productividad := NewProductividadService(&stubProductividadRepo{}, cache.New(cache.NewMemoria()))
	svc := NewKPIService(avances, productividad)

	kpis, err := svc.Calcular(context.Background(), "u1", "Op u1")
	require.NoError(t, err)
	assert.True(t, kpis.HorasTotales.IsZero())
	assert.Equal(t, 0, kpis.Completados)
}
