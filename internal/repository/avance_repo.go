package repository

import (
	"context"
	"encoding/json"

	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AvanceRepository interface {
	// Crear persists a new record and returns the server-assigned id.
	Crear(ctx context.Context, a *model.Avance) (string, error)
	// ListarPorUsuario returns the user's records ordered by creation time
	// descending. When the backing ordered query fails with the
	// missing-index signature, the same filter is retried without the
	// ordering clause and the unordered result is returned instead of the
	// index error.
	ListarPorUsuario(ctx context.Context, userID string) ([]model.Avance, error)
	ListarTodos(ctx context.Context) ([]model.Avance, error)
	// AgregarReproceso appends the event to the embedded sequence and
	// increments the parent's invested-hours total in one statement: both
	// effects apply together or neither is visible.
	AgregarReproceso(ctx context.Context, id string, r model.Reproceso) error
}

type avanceRepo struct{ db *gorm.DB }

func NewAvanceRepository(db *gorm.DB) AvanceRepository { return &avanceRepo{db: db} }

func (r *avanceRepo) Crear(ctx context.Context, a *model.Avance) (string, error) {
	a.ID = uuid.NewString()
	if a.Reprocesos == nil {
		a.Reprocesos = []model.Reproceso{}
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return "", envolver("crear avance", err)
	}
	return a.ID, nil
}

func (r *avanceRepo) ListarPorUsuario(ctx context.Context, userID string) ([]model.Avance, error) {
	var avances []model.Avance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&avances).Error
	if err == nil {
		return avances, nil
	}
	if !esFaltaIndice(err) {
		return nil, envolver("listar avances", err)
	}

	// Degraded mode: same filter, no ordering.
	log.Warn().Str("user_id", userID).Err(err).
		Msg("listar avances: consulta ordenada falló por índice faltante, reintentando sin orden")
	avances = nil
	err = r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&avances).Error
	return avances, envolver("listar avances sin orden", err)
}

func (r *avanceRepo) ListarTodos(ctx context.Context) ([]model.Avance, error) {
	var avances []model.Avance
	err := r.db.WithContext(ctx).Find(&avances).Error
	return avances, envolver("listar todos los avances", err)
}

func (r *avanceRepo) AgregarReproceso(ctx context.Context, id string, rep model.Reproceso) error {
	elem, err := json.Marshal([]model.Reproceso{rep})
	if err != nil {
		return &RemoteError{Code: CodeInternal, Op: "agregar reproceso", Err: err}
	}
	horas := rep.HorasAdicionales
	if horas.LessThan(decimal.Zero) {
		horas = decimal.Zero
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE avances
		   SET reprocesos = reprocesos || ?::jsonb,
		       horas_invertidas = horas_invertidas + ?
		 WHERE id = ?`,
		string(elem), horas, id)
	if res.Error != nil {
		return envolver("agregar reproceso", res.Error)
	}
	if res.RowsAffected == 0 {
		return &RemoteError{Code: CodeNotFound, Op: "agregar reproceso", Err: gorm.ErrRecordNotFound}
	}
	return nil
}
