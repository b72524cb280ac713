package dto

import "github.com/shopspring/decimal"

// KPIResponse feeds the dashboard cards: hour totals across both sources and
// record counts per estado.
type KPIResponse struct {
	HorasAvances         decimal.Decimal `json:"horasAvances"`
	MinutosProductividad int             `json:"minutosProductividad"`
	HorasTotales         decimal.Decimal `json:"horasTotales"`
	Completados          int             `json:"completados"`
	EnProgreso           int             `json:"enProgreso"`
	Bloqueados           int             `json:"bloqueados"`
	ReprocesosReportados int             `json:"reprocesosReportados"`
}
