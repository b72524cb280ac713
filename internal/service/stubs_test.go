package service

// Shared in-memory stubs for the service tests. Failure injection mimics the
// remote store's error classes so the workflows exercise their degraded
// branches without a database.

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"
)

func errConectividad(op string) error {
	return &repository.RemoteError{Code: repository.CodeUnavailable, Op: op, Err: errors.New("connection refused")}
}

func errNoEncontrado(op string) error {
	return &repository.RemoteError{Code: repository.CodeNotFound, Op: op, Err: errors.New("record not found")}
}

// ── Connectivity stub ────────────────────────────────────────────────────────

type conectividadFija struct {
	mu     sync.Mutex
	online bool
}

func (c *conectividadFija) IsOnline(context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *conectividadFija) cambiar(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = online
}

// ── UsuarioRepository stub ───────────────────────────────────────────────────

type stubUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[string]model.Usuario

	errCrear  error
	errBuscar error
	errMerge  error
	merges    int
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[string]model.Usuario)}
}

func (r *stubUsuarioRepo) Crear(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errCrear != nil {
		return r.errCrear
	}
	r.usuarios[u.ID] = *u
	return nil
}

func (r *stubUsuarioRepo) Buscar(_ context.Context, id string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errBuscar != nil {
		return nil, r.errBuscar
	}
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errNoEncontrado("buscar usuario")
	}
	return &u, nil
}

func (r *stubUsuarioRepo) Merge(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges++
	if r.errMerge != nil {
		return r.errMerge
	}
	r.usuarios[u.ID] = *u
	return nil
}

func (r *stubUsuarioRepo) ActualizarRol(_ context.Context, id string, rol model.Rol) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !rol.Valida() {
		return repository.ErrRolInvalido
	}
	u, ok := r.usuarios[id]
	if !ok {
		return errNoEncontrado("actualizar rol")
	}
	u.Rol = rol
	r.usuarios[id] = u
	return nil
}

func (r *stubUsuarioRepo) Listar(_ context.Context) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Usuario, 0, len(r.usuarios))
	for _, u := range r.usuarios {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListarPorRol(_ context.Context, rol model.Rol) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Rol == rol {
			out = append(out, u)
		}
	}
	return out, nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── AvanceRepository stub ────────────────────────────────────────────────────

type stubAvanceRepo struct {
	mu        sync.Mutex
	avances   map[string]model.Avance
	secuencia int

	errCrear     error
	errListar    error
	errReproceso error
	reprocesos   int

	// interceptarCrear / interceptarReproceso, when set, run before the
	// write lands and may block or fail the call. Invoked without the
	// stub's lock held so other calls can interleave.
	interceptarCrear     func()
	interceptarReproceso func(rep model.Reproceso) error
}

func newStubAvanceRepo() *stubAvanceRepo {
	return &stubAvanceRepo{avances: make(map[string]model.Avance)}
}

func (r *stubAvanceRepo) Crear(_ context.Context, a *model.Avance) (string, error) {
	r.mu.Lock()
	hook := r.interceptarCrear
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errCrear != nil {
		return "", r.errCrear
	}
	r.secuencia++
	id := "doc-" + strconv.Itoa(r.secuencia)
	copia := *a
	copia.ID = id
	copia.Reprocesos = append([]model.Reproceso{}, a.Reprocesos...)
	r.avances[id] = copia
	return id, nil
}

func (r *stubAvanceRepo) ListarPorUsuario(_ context.Context, userID string) ([]model.Avance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errListar != nil {
		return nil, r.errListar
	}
	var out []model.Avance
	for _, a := range r.avances {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAvanceRepo) ListarTodos(_ context.Context) ([]model.Avance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errListar != nil {
		return nil, r.errListar
	}
	out := make([]model.Avance, 0, len(r.avances))
	for _, a := range r.avances {
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAvanceRepo) AgregarReproceso(_ context.Context, id string, rep model.Reproceso) error {
	r.mu.Lock()
	hook := r.interceptarReproceso
	r.mu.Unlock()
	if hook != nil {
		if err := hook(rep); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errReproceso != nil {
		return r.errReproceso
	}
	a, ok := r.avances[id]
	if !ok {
		return errNoEncontrado("agregar reproceso")
	}
	a.Reprocesos = append(a.Reprocesos, rep)
	a.HorasInvertidas = a.HorasInvertidas.Add(rep.HorasAdicionales)
	r.avances[id] = a
	r.reprocesos++
	return nil
}

var _ repository.AvanceRepository = (*stubAvanceRepo)(nil)

// ── ProductividadRepository stub ─────────────────────────────────────────────

type stubProductividadRepo struct {
	mu      sync.Mutex
	eventos []model.EventoProductividad

	errCrear  error
	errListar error
}

func (r *stubProductividadRepo) Crear(_ context.Context, e *model.EventoProductividad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errCrear != nil {
		return r.errCrear
	}
	r.eventos = append(r.eventos, *e)
	return nil
}

func (r *stubProductividadRepo) Listar(_ context.Context) ([]model.EventoProductividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errListar != nil {
		return nil, r.errListar
	}
	return append([]model.EventoProductividad{}, r.eventos...), nil
}

var _ repository.ProductividadRepository = (*stubProductividadRepo)(nil)

// ── IdentityProvider stub ────────────────────────────────────────────────────

type stubIdentity struct {
	mu        sync.Mutex
	cuentas   map[string]string // email → account id
	secuencia int

	errCrear      error
	errSesion     error
	errEliminar   error
	eliminaciones []string
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{cuentas: make(map[string]string)}
}

func (s *stubIdentity) CrearCuenta(_ context.Context, email, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errCrear != nil {
		return "", s.errCrear
	}
	s.secuencia++
	id := "acct-" + strconv.Itoa(s.secuencia)
	s.cuentas[email] = id
	return id, nil
}

func (s *stubIdentity) IniciarSesion(_ context.Context, email, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errSesion != nil {
		return "", s.errSesion
	}
	id, ok := s.cuentas[email]
	if !ok {
		return "", errors.New("cuenta desconocida")
	}
	return id, nil
}

func (s *stubIdentity) CerrarSesion(context.Context, string) error { return nil }

func (s *stubIdentity) EliminarCuenta(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errEliminar != nil {
		return s.errEliminar
	}
	s.eliminaciones = append(s.eliminaciones, accountID)
	for email, id := range s.cuentas {
		if id == accountID {
			delete(s.cuentas, email)
		}
	}
	return nil
}

var _ IdentityProvider = (*stubIdentity)(nil)

// ── DeadLetter stub ──────────────────────────────────────────────────────────

type stubDLQ struct {
	mu       sync.Mutex
	entradas []*model.PerfilSnapshot
}

func (q *stubDLQ) Enviar(_ context.Context, snap *model.PerfilSnapshot, _ string, _ int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entradas = append(q.entradas, snap)
}

// relojFijo provides a controllable time source.
type relojFijo struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relojFijo) ahora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relojFijo) avanzar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(d)
}
