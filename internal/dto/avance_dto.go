package dto

import (
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/shopspring/decimal"
)

type CrearAvanceRequest struct {
	Proyecto        string          `json:"proyecto"  validate:"required"`
	SWBS            string          `json:"swbs"      validate:"required"`
	Actividad       string          `json:"actividad" validate:"required"`
	HorasInvertidas decimal.Decimal `json:"horasInvertidas" validate:"min=0"`
	AvanceMm        float64         `json:"avanceMm"  validate:"min=0"`
	TotalMm         float64         `json:"totalMm"   validate:"min=0"`
	// Estado defaults to "En progreso" when omitted.
	Estado      string `json:"estado"    validate:"omitempty,estado_avance"`
	Comentarios string `json:"comentarios"`
}

type ReprocesoRequest struct {
	HorasAdicionales decimal.Decimal `json:"horasAdicionales" validate:"min=0"`
	Motivo           string          `json:"motivo"           validate:"required"`
}

// AvanceResponse is the display form of a record. ID is the permanent
// document id once committed, the temp-<ns> token before that.
type AvanceResponse struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Proyecto        string            `json:"proyecto"`
	SWBS            string            `json:"swbs"`
	Actividad       string            `json:"actividad"`
	HorasInvertidas decimal.Decimal   `json:"horasInvertidas"`
	AvanceMm        float64           `json:"avanceMm"`
	TotalMm         float64           `json:"totalMm"`
	Estado          string            `json:"estado"`
	Comentarios     string            `json:"comentarios"`
	Reprocesos      []model.Reproceso `json:"reprocesos"`
	CreatedAt       string            `json:"createdAt"`

	// Porcentaje is nil when TotalMm is zero: undefined, not Infinity.
	Porcentaje *float64 `json:"porcentaje"`

	// Syncing: remote persistence still in flight (or never attempted for a
	// record created offline). LocalOnly: created without a session, kept
	// local permanently with no retry scheduled. PendingReprocesos: rework
	// events queued while the parent id was still provisional.
	Syncing           bool `json:"syncing,omitempty"`
	LocalOnly         bool `json:"localOnly,omitempty"`
	PendingReprocesos bool `json:"pendingReprocesos,omitempty"`
}
