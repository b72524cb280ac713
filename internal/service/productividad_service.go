package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProductividadService records time entries optimistically and serves the
// aggregated views. Events created while the remote store is unreachable are
// kept in the local cache flagged pendingSync and retried on the next load
// cycle.
type ProductividadService interface {
	Registrar(ctx context.Context, userID string, req dto.CrearEventoRequest) (*model.EventoProductividad, error)
	Listar(ctx context.Context, userID string) ([]model.EventoProductividad, error)
	Resumen(ctx context.Context, userID string) ([]dto.ResumenOperario, error)
	Matriz(ctx context.Context, userID string) (*dto.MatrizResponse, error)
	// Esperar blocks until in-flight remote writes finish. Test hook.
	Esperar()
}

type productividadService struct {
	repo    repository.ProductividadRepository
	cache   *cache.Cache
	enVuelo sync.WaitGroup
	now     func() time.Time
}

func NewProductividadService(repo repository.ProductividadRepository, c *cache.Cache) ProductividadService {
	return &productividadService{repo: repo, cache: c, now: time.Now}
}

func (s *productividadService) Registrar(ctx context.Context, userID string, req dto.CrearEventoRequest) (*model.EventoProductividad, error) {
	evento := model.EventoProductividad{
		ID:          uuid.NewString(),
		Fecha:       req.Fecha,
		Operario:    req.Operario,
		Bloque:      req.Bloque,
		Sistema:     req.Sistema,
		Tipo:        model.TipoEvento(req.Tipo),
		DuracionMin: req.DuracionMin,
		CreatedAt:   s.now(),
		PendingSync: true,
	}

	// Optimistic: the event is visible from the local cache before the
	// remote write resolves.
	locales := s.cache.ObtenerEventos(ctx, userID)
	s.cache.GuardarEventos(ctx, userID, append([]model.EventoProductividad{evento}, locales...))

	s.enVuelo.Add(1)
	go s.comprometer(context.WithoutCancel(ctx), userID, evento)

	return &evento, nil
}

func (s *productividadService) comprometer(ctx context.Context, userID string, evento model.EventoProductividad) {
	defer s.enVuelo.Done()

	remoto := evento
	remoto.PendingSync = false
	if err := s.repo.Crear(ctx, &remoto); err != nil {
		// The cached copy stays pendingSync; the next Listar retries it.
		log.Warn().Str("user_id", userID).Str("evento_id", evento.ID).Err(err).
			Msg("productividad: escritura remota falló, evento queda pendiente")
		return
	}
	s.quitarLocal(ctx, userID, evento.ID)
}

func (s *productividadService) quitarLocal(ctx context.Context, userID, eventoID string) {
	locales := s.cache.ObtenerEventos(ctx, userID)
	resto := locales[:0]
	for _, e := range locales {
		if e.ID != eventoID {
			resto = append(resto, e)
		}
	}
	s.cache.GuardarEventos(ctx, userID, resto)
}

// Listar retries the user's pending events first, then merges the remote
// collection with whatever is still local, deduplicating by composite
// signature so an event whose write landed but whose local cleanup did not is
// never shown twice.
func (s *productividadService) Listar(ctx context.Context, userID string) ([]model.EventoProductividad, error) {
	s.reintentarPendientes(ctx, userID)

	remotos, err := s.repo.Listar(ctx)
	if err != nil {
		if !repository.EsConectividad(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("productividad: remoto inalcanzable, sirviendo eventos locales")
		remotos = nil
	}

	vistos := make(map[string]bool, len(remotos))
	for i := range remotos {
		vistos[remotos[i].Firma()] = true
	}

	var out []model.EventoProductividad
	for _, e := range s.cache.ObtenerEventos(ctx, userID) {
		if !vistos[e.Firma()] {
			out = append(out, e)
		}
	}
	return append(out, remotos...), nil
}

func (s *productividadService) reintentarPendientes(ctx context.Context, userID string) {
	locales := s.cache.ObtenerEventos(ctx, userID)
	if len(locales) == 0 {
		return
	}
	resto := make([]model.EventoProductividad, 0, len(locales))
	for _, e := range locales {
		if !e.PendingSync {
			continue
		}
		remoto := e
		remoto.PendingSync = false
		if err := s.repo.Crear(ctx, &remoto); err != nil {
			resto = append(resto, e)
			continue
		}
		log.Info().Str("evento_id", e.ID).Msg("productividad: evento pendiente sincronizado")
	}
	s.cache.GuardarEventos(ctx, userID, resto)
}

// Resumen computes the per-operator time split: per-day buckets first, then
// percentages over the operator's total reported minutes.
func (s *productividadService) Resumen(ctx context.Context, userID string) ([]dto.ResumenOperario, error) {
	eventos, err := s.Listar(ctx, userID)
	if err != nil {
		return nil, err
	}

	type acumulado struct {
		dias   map[string]bool
		minUti map[model.TipoEvento]int
		total  int
	}
	porOperario := make(map[string]*acumulado)
	for i := range eventos {
		e := &eventos[i]
		ac, ok := porOperario[e.Operario]
		if !ok {
			ac = &acumulado{dias: make(map[string]bool), minUti: make(map[model.TipoEvento]int)}
			porOperario[e.Operario] = ac
		}
		ac.dias[e.Fecha] = true
		ac.minUti[e.Tipo] += e.DuracionMin
		ac.total += e.DuracionMin
	}

	resumen := make([]dto.ResumenOperario, 0, len(porOperario))
	for operario, ac := range porOperario {
		fila := dto.ResumenOperario{
			Operario: operario,
			Dias:     len(ac.dias),
			TPRMin:   ac.minUti[model.TipoProductivo],
			TDMin:    ac.total,
		}
		if ac.total > 0 {
			fila.PctProd = pct(ac.minUti[model.TipoProductivo], ac.total)
			fila.PctPNP = pct(ac.minUti[model.TipoPNP], ac.total)
			fila.PctTM = pct(ac.minUti[model.TipoTM], ac.total)
			fila.PctRW = pct(ac.minUti[model.TipoRW], ac.total)
		}
		resumen = append(resumen, fila)
	}
	sort.Slice(resumen, func(i, j int) bool { return resumen[i].Operario < resumen[j].Operario })
	return resumen, nil
}

// Matriz builds the Bloque × Sistema matrix of productive minutes. Only
// PRODUCTIVO entries count; blank blocks group under "Sin bloque".
func (s *productividadService) Matriz(ctx context.Context, userID string) (*dto.MatrizResponse, error) {
	eventos, err := s.Listar(ctx, userID)
	if err != nil {
		return nil, err
	}

	sistemas := make(map[string]bool)
	porBloque := make(map[string]map[string]int)
	for i := range eventos {
		e := &eventos[i]
		if e.Tipo != model.TipoProductivo {
			continue
		}
		bloque := e.Bloque
		if bloque == "" {
			bloque = "Sin bloque"
		}
		sistemas[e.Sistema] = true
		if porBloque[bloque] == nil {
			porBloque[bloque] = make(map[string]int)
		}
		porBloque[bloque][e.Sistema] += e.DuracionMin
	}

	resp := &dto.MatrizResponse{Sistemas: ordenadas(sistemas)}
	for _, bloque := range clavesOrdenadas(porBloque) {
		fila := dto.FilaMatriz{Bloque: bloque, Minutos: porBloque[bloque]}
		for _, min := range fila.Minutos {
			fila.Total += min
		}
		resp.Filas = append(resp.Filas, fila)
	}
	return resp, nil
}

func (s *productividadService) Esperar() { s.enVuelo.Wait() }

func pct(parte, total int) float64 {
	return float64(parte) / float64(total) * 100
}

func ordenadas(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clavesOrdenadas(m map[string]map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
