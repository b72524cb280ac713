package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPorcentajeIndefinidoConTotalCero(t *testing.T) {
	a := Avance{AvanceMm: 120, TotalMm: 0}
	_, ok := a.Porcentaje()
	assert.False(t, ok)

	a.TotalMm = 480
	pct, ok := a.Porcentaje()
	assert.True(t, ok)
	assert.InDelta(t, 25.0, pct, 0.001)
}

func TestIDRegistroDistingueEstados(t *testing.T) {
	id := NuevoIDLocal(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	assert.False(t, id.Confirmado())
	assert.Contains(t, id.String(), "temp-")

	confirmado := id.Confirmar("doc-1")
	assert.True(t, confirmado.Confirmado())
	assert.Equal(t, "doc-1", confirmado.String())
}

func TestEnumsCerrados(t *testing.T) {
	assert.True(t, EstadoCompletado.Valida())
	assert.False(t, EstadoAvance("Pausado").Valida())

	assert.True(t, RolLider.Valida())
	assert.False(t, Rol("superadmin").Valida())

	assert.True(t, TipoCapNP.Valida())
	assert.False(t, TipoEvento("DESCANSO").Valida())
}
