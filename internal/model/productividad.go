package model

import (
	"fmt"
	"time"
)

// TipoEvento classifies a productivity time entry.
type TipoEvento string

const (
	TipoProductivo TipoEvento = "PRODUCTIVO"
	TipoPNP        TipoEvento = "PNP"
	TipoTM         TipoEvento = "TM"
	TipoRW         TipoEvento = "RW"
	TipoADM        TipoEvento = "ADM"
	TipoCapNP      TipoEvento = "CAP_NP"
)

func (t TipoEvento) Valida() bool {
	switch t {
	case TipoProductivo, TipoPNP, TipoTM, TipoRW, TipoADM, TipoCapNP:
		return true
	}
	return false
}

// EventoProductividad is a time entry in the productividad collection.
// Sistema is an open set (HVAC, PIPE, CBTR, ...); Tipo is closed.
type EventoProductividad struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Fecha       string     `gorm:"not null" json:"fecha"` // YYYY-MM-DD
	Operario    string     `gorm:"not null" json:"operario"`
	Bloque      string     `json:"bloque"`
	Sistema     string     `gorm:"not null" json:"sistema"`
	Tipo        TipoEvento `gorm:"type:varchar(20);not null" json:"tipo"`
	DuracionMin int        `gorm:"not null" json:"duracionMin"`
	CreatedAt   time.Time  `json:"createdAt"`

	// PendingSync marks an event created locally whose remote write has not
	// succeeded yet. Retried on the next load cycle, never persisted remotely.
	PendingSync bool `gorm:"-" json:"pendingSync,omitempty"`
}

func (EventoProductividad) TableName() string { return "productividad" }

// Firma is the composite signature used to deduplicate local events against
// remotely fetched ones after a merge.
func (e *EventoProductividad) Firma() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		e.Fecha, e.Operario, e.Bloque, e.Sistema, e.Tipo, e.DuracionMin)
}
