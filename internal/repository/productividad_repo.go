package repository

import (
	"context"

	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductividadRepository interface {
	Crear(ctx context.Context, e *model.EventoProductividad) error
	// Listar returns every event ordered by creation time descending, with
	// the same unordered degraded mode as the avance queries.
	Listar(ctx context.Context) ([]model.EventoProductividad, error)
}

type productividadRepo struct{ db *gorm.DB }

func NewProductividadRepository(db *gorm.DB) ProductividadRepository {
	return &productividadRepo{db: db}
}

func (r *productividadRepo) Crear(ctx context.Context, e *model.EventoProductividad) error {
	return envolver("crear evento productividad", r.db.WithContext(ctx).Create(e).Error)
}

func (r *productividadRepo) Listar(ctx context.Context) ([]model.EventoProductividad, error) {
	var eventos []model.EventoProductividad
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&eventos).Error
	if err == nil {
		return eventos, nil
	}
	if !esFaltaIndice(err) {
		return nil, envolver("listar productividad", err)
	}

	log.Warn().Err(err).
		Msg("listar productividad: consulta ordenada falló por índice faltante, reintentando sin orden")
	eventos = nil
	err = r.db.WithContext(ctx).Find(&eventos).Error
	return eventos, envolver("listar productividad sin orden", err)
}
