package service

import (
	"context"
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"

	"github.com/rs/zerolog/log"
)

// Conectividad is the connectivity signal consumed by the workflows. The
// probe runs at call time; nothing here is cached.
type Conectividad interface {
	IsOnline(ctx context.Context) bool
}

// PerfilService implements the profile side of the reconciliation workflow:
// reads with local-cache fallback, creation with offline fallback, and the
// best-effort self-healing that runs on every session change.
type PerfilService interface {
	// Obtener returns the profile, preferring the remote store and falling
	// back to the cache (flagged offline) or, as a last resort, a
	// synthesized temporary placeholder. (nil, nil) means confirmed-absent.
	Obtener(ctx context.Context, uid string) (*model.PerfilSnapshot, error)
	// Crear writes the profile document and confirms it readable back. When
	// the write fails while offline, the snapshot is kept locally with
	// pendingSync set and no error is returned.
	Crear(ctx context.Context, u model.Usuario) (*model.PerfilSnapshot, error)
	ActualizarRol(ctx context.Context, uid string, rol model.Rol) error
	// Reconciliar runs on every authenticated session change. Best-effort:
	// every failure is logged and the flow continues with whatever profile
	// data is available; it never blocks sign-in.
	Reconciliar(ctx context.Context, uid, email, nombre string) *model.PerfilSnapshot
	Listar(ctx context.Context) ([]model.Usuario, error)
	ListarPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error)
}

type perfilService struct {
	repo    repository.UsuarioRepository
	cache   *cache.Cache
	monitor Conectividad
	now     func() time.Time
}

func NewPerfilService(repo repository.UsuarioRepository, c *cache.Cache, monitor Conectividad) PerfilService {
	return &perfilService{repo: repo, cache: c, monitor: monitor, now: time.Now}
}

func (s *perfilService) Obtener(ctx context.Context, uid string) (*model.PerfilSnapshot, error) {
	local := s.cache.ObtenerPerfil(ctx, uid)

	if !s.monitor.IsOnline(ctx) {
		if local != nil {
			return comoOffline(local), nil
		}
		return model.PerfilTemporal(uid), nil
	}

	remoto, err := s.repo.Buscar(ctx, uid)
	switch {
	case err == nil:
		snap := &model.PerfilSnapshot{Usuario: *remoto}
		s.cache.GuardarPerfil(ctx, snap)
		return snap, nil

	case repository.EsNoEncontrado(err):
		// Absent remotely is not an error. Locally cached data (e.g. a
		// pending-sync creation) still wins over nothing.
		if local != nil {
			return comoOffline(local), nil
		}
		return nil, nil

	case repository.EsConectividad(err):
		log.Warn().Str("uid", uid).Err(err).Msg("perfil: remoto inalcanzable, usando datos locales")
		if local != nil {
			return comoOffline(local), nil
		}
		return model.PerfilTemporal(uid), nil

	default:
		if local != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("perfil: error remoto, usando caché local")
			return comoOffline(local), nil
		}
		return nil, err
	}
}

func (s *perfilService) Crear(ctx context.Context, u model.Usuario) (*model.PerfilSnapshot, error) {
	if u.Rol == "" {
		u.Rol = model.RolModelista
	}
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.repo.Crear(ctx, &u); err != nil {
		if !s.monitor.IsOnline(ctx) {
			// Connectivity dropped mid-flow: keep the profile locally,
			// flagged for the sweep.
			snap := &model.PerfilSnapshot{Usuario: u, Offline: true, PendingSync: true}
			s.cache.GuardarPerfil(ctx, snap)
			return snap, nil
		}
		return nil, err
	}

	// Confirm the write is readable back before reporting success.
	confirmado, err := s.repo.Buscar(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	snap := &model.PerfilSnapshot{Usuario: *confirmado}
	s.cache.GuardarPerfil(ctx, snap)
	return snap, nil
}

func (s *perfilService) ActualizarRol(ctx context.Context, uid string, rol model.Rol) error {
	if err := s.repo.ActualizarRol(ctx, uid, rol); err != nil {
		return err
	}
	if local := s.cache.ObtenerPerfil(ctx, uid); local != nil {
		local.Rol = rol
		local.UpdatedAt = s.now()
		s.cache.GuardarPerfil(ctx, local)
	}
	return nil
}

func (s *perfilService) Reconciliar(ctx context.Context, uid, email, nombre string) *model.PerfilSnapshot {
	if nombre == "" {
		nombre = email
	}

	perfil, err := s.Obtener(ctx, uid)
	if err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("reconciliar: no se pudo obtener el perfil")
		perfil = nil
	}

	switch {
	case perfil == nil || perfil.Offline:
		// First sign-in without a remote profile (or only offline data):
		// create the default one.
		_, err := s.Crear(ctx, model.Usuario{
			ID:     uid,
			Email:  email,
			Nombre: nombre,
			Rol:    model.RolModelista,
		})
		if err != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("reconciliar: no se pudo crear el perfil por defecto")
		} else if actualizado, err := s.Obtener(ctx, uid); err == nil && actualizado != nil {
			perfil = actualizado
		}

	case perfil.Rol == model.RolPendiente:
		if err := s.ActualizarRol(ctx, uid, model.RolModelista); err != nil {
			log.Warn().Str("uid", uid).Err(err).Msg("reconciliar: no se pudo promover rol pendiente")
		} else if actualizado, err := s.Obtener(ctx, uid); err == nil && actualizado != nil {
			perfil = actualizado
		}
	}

	if perfil == nil {
		perfil = model.PerfilTemporal(uid)
		perfil.Email = email
		perfil.Nombre = nombre
	}
	return perfil
}

func (s *perfilService) Listar(ctx context.Context) ([]model.Usuario, error) {
	return s.repo.Listar(ctx)
}

func (s *perfilService) ListarPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error) {
	return s.repo.ListarPorRol(ctx, rol)
}

// comoOffline returns a copy flagged as served-from-cache.
func comoOffline(snap *model.PerfilSnapshot) *model.PerfilSnapshot {
	copia := *snap
	copia.Offline = true
	return &copia
}
