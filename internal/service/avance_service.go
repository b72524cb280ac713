package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"
	"github.com/iatechsabana/cotecmar/internal/sesion"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrEstadoInvalido  = errors.New("estado de avance inválido")
	ErrAvanceNoHallado = errors.New("avance no encontrado")
)

// AvanceService is the optimistic-creation side of the reconciliation
// workflow. Every record appears in the per-user display model before it is
// durable; commits run asynchronously and either swap in the permanent id or
// remove the optimistic entry.
type AvanceService interface {
	// Crear returns the optimistic record synchronously, with a provisional
	// id and syncing set. ses == nil keeps the record local-only forever.
	Crear(ctx context.Context, ses *sesion.Contexto, userID string, req dto.CrearAvanceRequest) (*dto.AvanceResponse, error)
	// AgregarReproceso branches on the parent's id state: queued for replay
	// while provisional, atomic remote append (with rollback on failure)
	// once committed.
	AgregarReproceso(ctx context.Context, ses *sesion.Contexto, avanceID string, req dto.ReprocesoRequest) (*dto.AvanceResponse, error)
	// Listar merges the remote collection with local not-yet-committed
	// records and hydrates the display model.
	Listar(ctx context.Context, userID string) ([]dto.AvanceResponse, error)
	// ListarEquipo is the líder board: every user's records, remote plus
	// whatever only exists locally.
	ListarEquipo(ctx context.Context) ([]dto.AvanceResponse, error)
	// Avisos drains the user's accumulated failure notices.
	Avisos(userID string) []string
	// Esperar blocks until in-flight commits finish. Test hook.
	Esperar()
}

// registroTablero is one entry of the display model. The tagged id is the
// sole source of truth for the record's commit state.
type registroTablero struct {
	id        model.IDRegistro
	avance    model.Avance
	syncing   bool
	localOnly bool
	noSync    bool // committed parent mutated while offline; never retried
	// pendientes queues rework events recorded while the id was still
	// provisional, for in-order replay after commit.
	pendientes []model.Reproceso
}

type tableroUsuario struct {
	mu        sync.Mutex
	registros []*registroTablero // newest first
	avisos    []string
}

type avanceService struct {
	repo    repository.AvanceRepository
	monitor Conectividad

	mu       sync.Mutex
	tableros map[string]*tableroUsuario

	enVuelo sync.WaitGroup
	now     func() time.Time
}

func NewAvanceService(repo repository.AvanceRepository, monitor Conectividad) AvanceService {
	return &avanceService{
		repo:     repo,
		monitor:  monitor,
		tableros: make(map[string]*tableroUsuario),
		now:      time.Now,
	}
}

func (s *avanceService) tablero(userID string) *tableroUsuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tableros[userID]
	if !ok {
		t = &tableroUsuario{}
		s.tableros[userID] = t
	}
	return t
}

func (s *avanceService) Crear(ctx context.Context, ses *sesion.Contexto, userID string, req dto.CrearAvanceRequest) (*dto.AvanceResponse, error) {
	estado := model.EstadoAvance(req.Estado)
	if estado == "" {
		estado = model.EstadoEnProgreso
	}
	if !estado.Valida() {
		return nil, ErrEstadoInvalido
	}

	now := s.now()
	reg := &registroTablero{
		id:      model.NuevoIDLocal(now),
		syncing: true,
		avance: model.Avance{
			UserID:          userID,
			Proyecto:        req.Proyecto,
			SWBS:            req.SWBS,
			Actividad:       req.Actividad,
			HorasInvertidas: req.HorasInvertidas,
			AvanceMm:        req.AvanceMm,
			TotalMm:         req.TotalMm,
			Estado:          estado,
			Comentarios:     req.Comentarios,
			Reprocesos:      []model.Reproceso{},
			CreatedAt:       now,
		},
	}

	confirmable := false
	switch {
	case ses == nil:
		// No authenticated session: the record stays local permanently,
		// labeled as such. No retry is ever scheduled.
		reg.syncing = false
		reg.localOnly = true

	case !s.monitor.IsOnline(ctx):
		// Offline: the record keeps syncing=true indefinitely. There is no
		// sweep for this entity kind; it is never silently dropped.
		log.Warn().Str("user_id", userID).
			Msg("avance: creado sin conexión, queda pendiente de sincronización")

	default:
		confirmable = true
	}

	// The record must be in the display model before the commit starts, or a
	// fast commit finds nothing to confirm and the entry dangles provisional.
	t := s.tablero(userID)
	t.mu.Lock()
	t.registros = append([]*registroTablero{reg}, t.registros...)
	display := s.aDisplay(reg)
	t.mu.Unlock()

	if confirmable {
		s.enVuelo.Add(1)
		// The commit must outlive the request; in-flight work is never
		// cancelled by a caller going away.
		go s.confirmar(context.WithoutCancel(ctx), userID, reg.id.String(), reg.avance)
	}

	return display, nil
}

// confirmar runs the asynchronous remote create for one optimistic record.
func (s *avanceService) confirmar(ctx context.Context, userID, localID string, av model.Avance) {
	defer s.enVuelo.Done()

	remotoID, err := s.repo.Crear(ctx, &av)

	t := s.tablero(userID)
	t.mu.Lock()
	reg, idx := t.buscar(localID)
	if reg == nil {
		// The record was removed while the create was in flight; drop the
		// late result rather than erroring.
		t.mu.Unlock()
		return
	}

	if err != nil {
		// Roll back: the optimistic entry is removed entirely, not left in
		// a dangling failed state.
		t.registros = append(t.registros[:idx], t.registros[idx+1:]...)
		t.avisos = append(t.avisos, "No se pudo guardar el avance de "+av.Proyecto+", fue descartado")
		t.mu.Unlock()
		log.Error().Str("user_id", userID).Err(err).Msg("avance: creación remota falló, registro descartado")
		return
	}

	reg.id = reg.id.Confirmar(remotoID)
	reg.syncing = false
	reg.avance.ID = remotoID
	pendientes := reg.pendientes
	reg.pendientes = nil
	t.mu.Unlock()

	// Replay queued rework events sequentially, in original order, so
	// sequence numbers and the cumulative hour increments stay consistent.
	// An individual failure is reported but never rolls back the parent.
	for _, rep := range pendientes {
		if err := s.repo.AgregarReproceso(ctx, remotoID, rep); err != nil {
			t.mu.Lock()
			t.avisos = append(t.avisos, "No se pudo sincronizar el reproceso #"+strconv.Itoa(rep.Numero))
			t.mu.Unlock()
			log.Error().Str("avance_id", remotoID).Int("numero", rep.Numero).Err(err).
				Msg("avance: replay de reproceso falló")
		}
	}
}

func (s *avanceService) AgregarReproceso(ctx context.Context, ses *sesion.Contexto, avanceID string, req dto.ReprocesoRequest) (*dto.AvanceResponse, error) {
	if ses == nil {
		return nil, ErrAvanceNoHallado
	}
	t := s.tablero(ses.UserID)

	t.mu.Lock()
	reg, _ := t.buscar(avanceID)
	if reg == nil {
		t.mu.Unlock()
		return nil, ErrAvanceNoHallado
	}

	rep := model.Reproceso{
		ID:               uuid.NewString(),
		Numero:           len(reg.avance.Reprocesos) + 1,
		HorasAdicionales: req.HorasAdicionales,
		Motivo:           req.Motivo,
		CreatedAt:        s.now(),
	}

	if !reg.id.Confirmado() {
		// Provisional parent: embed plus queue for replay; no network yet.
		reg.avance.Reprocesos = append(reg.avance.Reprocesos, rep)
		reg.pendientes = append(reg.pendientes, rep)
		reg.syncing = true
		display := s.aDisplay(reg)
		t.mu.Unlock()
		return display, nil
	}

	// Committed parent: optimistic splice, visible immediately.
	reg.avance.Reprocesos = append(reg.avance.Reprocesos, rep)
	reg.avance.HorasInvertidas = reg.avance.HorasInvertidas.Add(rep.HorasAdicionales)

	if !s.monitor.IsOnline(ctx) {
		// Same optimistic mutation, left unsynced with no scheduled retry.
		reg.noSync = true
		display := s.aDisplay(reg)
		t.mu.Unlock()
		log.Warn().Str("avance_id", avanceID).
			Msg("reproceso: aplicado localmente sin conexión, sin reintento programado")
		return display, nil
	}

	remotoID := reg.id.String()
	t.mu.Unlock()

	// Atomic append + increment: both effects or neither.
	if err := s.repo.AgregarReproceso(ctx, remotoID, rep); err != nil {
		t.mu.Lock()
		if regActual, _ := t.buscar(avanceID); regActual != nil {
			// Undo only the failed event. A whole-record snapshot would
			// erase appends that committed while this call was in flight.
			quitarReproceso(&regActual.avance, rep.ID)
		}
		t.mu.Unlock()
		log.Error().Str("avance_id", avanceID).Err(err).Msg("reproceso: append remoto falló, revertido")
		return nil, err
	}

	t.mu.Lock()
	reg, _ = t.buscar(avanceID)
	var display *dto.AvanceResponse
	if reg != nil {
		display = s.aDisplay(reg)
	}
	t.mu.Unlock()
	return display, nil
}

func (s *avanceService) Listar(ctx context.Context, userID string) ([]dto.AvanceResponse, error) {
	remotos, err := s.repo.ListarPorUsuario(ctx, userID)
	if err != nil {
		if !repository.EsConectividad(err) {
			return nil, err
		}
		log.Warn().Str("user_id", userID).Err(err).
			Msg("avances: remoto inalcanzable, sirviendo solo el modelo local")
		remotos = nil
		err = nil
	}

	t := s.tablero(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	// Rebuild the display model: committed records refresh from the remote
	// store (unless they carry unsynced local mutations), provisional and
	// local-only records stay in front.
	locales := make(map[string]*registroTablero, len(t.registros))
	var frente []*registroTablero
	for _, reg := range t.registros {
		if reg.id.Confirmado() {
			locales[reg.id.String()] = reg
		} else {
			frente = append(frente, reg)
		}
	}

	nuevos := frente
	for i := range remotos {
		av := remotos[i]
		if prev, ok := locales[av.ID]; ok {
			delete(locales, av.ID)
			if prev.noSync {
				nuevos = append(nuevos, prev)
				continue
			}
			prev.avance = av
			nuevos = append(nuevos, prev)
			continue
		}
		nuevos = append(nuevos, &registroTablero{id: model.IDRemoto(av.ID), avance: av})
	}
	// Committed records the remote no longer returned (connectivity-degraded
	// listing) survive untouched.
	for _, reg := range t.registros {
		if reg.id.Confirmado() {
			if _, quedo := locales[reg.id.String()]; quedo {
				nuevos = append(nuevos, reg)
			}
		}
	}
	t.registros = nuevos

	out := make([]dto.AvanceResponse, 0, len(t.registros))
	for _, reg := range t.registros {
		out = append(out, *s.aDisplay(reg))
	}
	return out, nil
}

// ListarEquipo is a read-only cross-user view; unlike Listar it never
// rehydrates the per-user models it walks.
func (s *avanceService) ListarEquipo(ctx context.Context) ([]dto.AvanceResponse, error) {
	remotos, err := s.repo.ListarTodos(ctx)
	if err != nil {
		if !repository.EsConectividad(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("avances: remoto inalcanzable, tablero de equipo solo con datos locales")
		remotos = nil
	}

	s.mu.Lock()
	tableros := make([]*tableroUsuario, 0, len(s.tableros))
	for _, t := range s.tableros {
		tableros = append(tableros, t)
	}
	s.mu.Unlock()

	vistos := make(map[string]bool)
	var out []dto.AvanceResponse
	for _, t := range tableros {
		t.mu.Lock()
		for _, reg := range t.registros {
			// Local-only state the remote cannot know about goes first.
			if !reg.id.Confirmado() || reg.noSync {
				out = append(out, *s.aDisplay(reg))
				vistos[reg.id.String()] = true
			}
		}
		t.mu.Unlock()
	}
	for i := range remotos {
		if vistos[remotos[i].ID] {
			continue
		}
		out = append(out, *s.aDisplay(&registroTablero{id: model.IDRemoto(remotos[i].ID), avance: remotos[i]}))
	}
	return out, nil
}

func (s *avanceService) Avisos(userID string) []string {
	t := s.tablero(userID)
	t.mu.Lock()
	defer t.mu.Unlock()
	avisos := t.avisos
	t.avisos = nil
	return avisos
}

func (s *avanceService) Esperar() { s.enVuelo.Wait() }

// buscar must be called with t.mu held.
func (t *tableroUsuario) buscar(id string) (*registroTablero, int) {
	for i, reg := range t.registros {
		if reg.id.String() == id {
			return reg, i
		}
	}
	return nil, -1
}

func (s *avanceService) aDisplay(reg *registroTablero) *dto.AvanceResponse {
	av := reg.avance
	resp := &dto.AvanceResponse{
		ID:                reg.id.String(),
		UserID:            av.UserID,
		Proyecto:          av.Proyecto,
		SWBS:              av.SWBS,
		Actividad:         av.Actividad,
		HorasInvertidas:   av.HorasInvertidas,
		AvanceMm:          av.AvanceMm,
		TotalMm:           av.TotalMm,
		Estado:            string(av.Estado),
		Comentarios:       av.Comentarios,
		Reprocesos:        append([]model.Reproceso{}, av.Reprocesos...),
		CreatedAt:         av.CreatedAt.Format(time.RFC3339),
		Syncing:           reg.syncing,
		LocalOnly:         reg.localOnly,
		PendingReprocesos: len(reg.pendientes) > 0,
	}
	if pct, ok := av.Porcentaje(); ok {
		resp.Porcentaje = &pct
	}
	return resp
}

// quitarReproceso removes one event by id and subtracts its hours, leaving
// every other embed untouched.
func quitarReproceso(av *model.Avance, repID string) {
	for i, r := range av.Reprocesos {
		if r.ID == repID {
			av.Reprocesos = append(av.Reprocesos[:i], av.Reprocesos[i+1:]...)
			av.HorasInvertidas = av.HorasInvertidas.Sub(r.HorasAdicionales)
			return
		}
	}
}
