package service

import (
	"context"
	"strings"

	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"

	"github.com/shopspring/decimal"
)

const minutosPorHora = 60

// KPIService aggregates the dashboard figures from both sources: invested
// hours from avances plus the user's own productivity minutes.
type KPIService interface {
	Calcular(ctx context.Context, userID, nombre string) (*dto.KPIResponse, error)
}

type kpiService struct {
	avances       AvanceService
	productividad ProductividadService
}

func NewKPIService(avances AvanceService, productividad ProductividadService) KPIService {
	return &kpiService{avances: avances, productividad: productividad}
}

func (s *kpiService) Calcular(ctx context.Context, userID, nombre string) (*dto.KPIResponse, error) {
	avances, err := s.avances.Listar(ctx, userID)
	if err != nil {
		return nil, err
	}
	eventos, err := s.productividad.Listar(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.KPIResponse{}
	for i := range avances {
		av := &avances[i]
		resp.HorasAvances = resp.HorasAvances.Add(av.HorasInvertidas)
		resp.ReprocesosReportados += len(av.Reprocesos)
		switch model.EstadoAvance(av.Estado) {
		case model.EstadoCompletado:
			resp.Completados++
		case model.EstadoEnProgreso:
			resp.EnProgreso++
		case model.EstadoBloqueado:
			resp.Bloqueados++
		}
	}

	// The productivity collection is shared; only entries the user reported
	// under their own name count toward their dashboard.
	for i := range eventos {
		if strings.EqualFold(eventos[i].Operario, nombre) {
			resp.MinutosProductividad += eventos[i].DuracionMin
		}
	}

	resp.HorasTotales = resp.HorasAvances.Add(
		decimal.NewFromInt(int64(resp.MinutosProductividad)).Div(decimal.NewFromInt(minutosPorHora)))
	return resp, nil
}
