package dto

import "github.com/shopspring/decimal"

// CalcularCGTRequest: GT × factor del tipo de buque. A custom factor
// overrides the table.
type CalcularCGTRequest struct {
	GT        decimal.Decimal  `json:"gt"         validate:"required"`
	TipoBuque string           `json:"tipo_buque" validate:"required_without=Factor"`
	Factor    *decimal.Decimal `json:"factor"`
}

type CGTResponse struct {
	GT        decimal.Decimal `json:"gt"`
	TipoBuque string          `json:"tipo_buque,omitempty"`
	Factor    decimal.Decimal `json:"factor"`
	CGT       decimal.Decimal `json:"cgt"`
}

type FactorCGT struct {
	TipoBuque string          `json:"tipo_buque"`
	Factor    decimal.Decimal `json:"factor"`
}
