package service

import (
	"errors"

	"github.com/iatechsabana/cotecmar/internal/dto"

	"github.com/shopspring/decimal"
)

var ErrTipoBuqueDesconocido = errors.New("tipo de buque desconocido")

// factoresCGT: coeficiente de gross tonnage compensado por tipo de buque.
var factoresCGT = []dto.FactorCGT{
	{TipoBuque: "Petrolero", Factor: decimal.NewFromFloat(0.45)},
	{TipoBuque: "Granelero", Factor: decimal.NewFromFloat(0.36)},
	{TipoBuque: "Portacontenedores", Factor: decimal.NewFromFloat(0.60)},
	{TipoBuque: "Gasero", Factor: decimal.NewFromFloat(0.73)},
	{TipoBuque: "Pasajeros", Factor: decimal.NewFromFloat(1.90)},
	{TipoBuque: "Carga General", Factor: decimal.NewFromFloat(0.45)},
	{TipoBuque: "Ferry Ro-Ro", Factor: decimal.NewFromFloat(1.00)},
	{TipoBuque: "Pesquero", Factor: decimal.NewFromFloat(0.52)},
	{TipoBuque: "Militar", Factor: decimal.NewFromFloat(1.50)},
	{TipoBuque: "Remolcador", Factor: decimal.NewFromFloat(0.75)},
}

// CGTService computes compensated gross tonnage: CGT = GT × factor.
type CGTService interface {
	Factores() []dto.FactorCGT
	Calcular(req dto.CalcularCGTRequest) (*dto.CGTResponse, error)
}

type cgtService struct{}

func NewCGTService() CGTService { return &cgtService{} }

func (s *cgtService) Factores() []dto.FactorCGT {
	out := make([]dto.FactorCGT, len(factoresCGT))
	copy(out, factoresCGT)
	return out
}

func (s *cgtService) Calcular(req dto.CalcularCGTRequest) (*dto.CGTResponse, error) {
	factor := decimal.Decimal{}
	switch {
	case req.Factor != nil:
		factor = *req.Factor
	default:
		encontrado := false
		for _, f := range factoresCGT {
			if f.TipoBuque == req.TipoBuque {
				factor = f.Factor
				encontrado = true
				break
			}
		}
		if !encontrado {
			return nil, ErrTipoBuqueDesconocido
		}
	}

	return &dto.CGTResponse{
		GT:        req.GT,
		TipoBuque: req.TipoBuque,
		Factor:    factor,
		CGT:       req.GT.Mul(factor).Round(2),
	}, nil
}
