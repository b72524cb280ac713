package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EstadoAvance is the closed set of progress-record states.
type EstadoAvance string

const (
	EstadoEnProgreso EstadoAvance = "En progreso"
	EstadoCompletado EstadoAvance = "Completado"
	EstadoBloqueado  EstadoAvance = "Bloqueado"
)

func (e EstadoAvance) Valida() bool {
	switch e {
	case EstadoEnProgreso, EstadoCompletado, EstadoBloqueado:
		return true
	}
	return false
}

// Reproceso is a rework event embedded in its parent avance. Numero is
// 1-based and scoped to the parent (prior count + 1 at creation), not
// globally unique.
type Reproceso struct {
	ID               string          `json:"id"`
	Numero           int             `json:"numero"`
	HorasAdicionales decimal.Decimal `json:"horasAdicionales"`
	Motivo           string          `json:"motivo"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Avance is a progress record in the avances collection. Reprocesos live
// embedded in the parent document (JSONB column); the remote store's
// append+increment update is the only concurrent-writer-safe mutation path.
type Avance struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	UserID          string          `gorm:"index;not null"`
	Proyecto        string          `gorm:"not null"`
	SWBS            string          `gorm:"column:swbs"`
	Actividad       string          `gorm:"not null"`
	HorasInvertidas decimal.Decimal `gorm:"type:numeric(12,2)"`
	AvanceMm        float64
	TotalMm         float64
	Estado          EstadoAvance `gorm:"type:varchar(20);not null"`
	Comentarios     string
	Reprocesos      []Reproceso `gorm:"serializer:json;type:jsonb;default:'[]'"`
	CreatedAt       time.Time
}

func (Avance) TableName() string { return "avances" }

// Porcentaje returns the completion percentage and whether it is defined.
// A zero planned total yields (0, false) — undefined, never an Inf that gets
// silently charted.
func (a *Avance) Porcentaje() (float64, bool) {
	if a.TotalMm == 0 {
		return 0, false
	}
	return a.AvanceMm / a.TotalMm * 100, true
}

// IDRegistro identifies an avance either by a provisional local token (the
// record has not been persisted yet) or by the server-assigned document id.
// The two states are distinct fields so call sites cannot confuse them by
// matching string prefixes.
type IDRegistro struct {
	local  string
	remoto string
}

// NuevoIDLocal mints a provisional identifier. The token keeps the
// temp-<timestamp> shape so it is recognizable in logs and API payloads.
func NuevoIDLocal(now time.Time) IDRegistro {
	return IDRegistro{local: fmt.Sprintf("temp-%d", now.UnixNano())}
}

func IDRemoto(id string) IDRegistro { return IDRegistro{remoto: id} }

// Confirmado reports whether the record holds a server-assigned id.
func (id IDRegistro) Confirmado() bool { return id.remoto != "" }

// Confirmar returns the committed form of a provisional id.
func (id IDRegistro) Confirmar(remoto string) IDRegistro {
	return IDRegistro{remoto: remoto}
}

// String yields the visible identifier: the permanent id once committed,
// the temp token before that.
func (id IDRegistro) String() string {
	if id.remoto != "" {
		return id.remoto
	}
	return id.local
}
