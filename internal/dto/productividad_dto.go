package dto

type CrearEventoRequest struct {
	Fecha       string `json:"fecha"       validate:"required,datetime=2006-01-02"`
	Operario    string `json:"operario"    validate:"required"`
	Bloque      string `json:"bloque"`
	Sistema     string `json:"sistema"     validate:"required"`
	Tipo        string `json:"tipo"        validate:"required,oneof=PRODUCTIVO PNP TM RW ADM CAP_NP"`
	DuracionMin int    `json:"duracionMin" validate:"required,min=1"`
}

// ResumenOperario aggregates a single operator's time split, averaged over
// the days they reported.
type ResumenOperario struct {
	Operario string  `json:"operario"`
	Dias     int     `json:"dias"`
	TPRMin   int     `json:"tprMin"` // productive minutes
	TDMin    int     `json:"tdMin"`  // total minutes
	PctProd  float64 `json:"pctProductivo"`
	PctPNP   float64 `json:"pctPnp"`
	PctTM    float64 `json:"pctTm"`
	PctRW    float64 `json:"pctRw"`
}

// FilaMatriz is one block row of the Bloque × Sistema matrix of productive
// minutes.
type FilaMatriz struct {
	Bloque  string         `json:"bloque"`
	Minutos map[string]int `json:"minutos"`
	Total   int            `json:"total"`
}

type MatrizResponse struct {
	Sistemas []string     `json:"sistemas"`
	Filas    []FilaMatriz `json:"filas"`
}
