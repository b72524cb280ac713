package service

import (
	"context"
	"errors"
	"time"

	"github.com/iatechsabana/cotecmar/internal/config"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/infra"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/sesion"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// IdentityProvider is the consumed surface of the hosted identity provider.
// EliminarCuenta exists solely as compensating action.
type IdentityProvider interface {
	CrearCuenta(ctx context.Context, email, password string) (string, error)
	IniciarSesion(ctx context.Context, email, password string) (string, error)
	CerrarSesion(ctx context.Context, accountID string) error
	EliminarCuenta(ctx context.Context, accountID string) error
}

// ErrRegistroIncompleto is surfaced when the profile write fell back to a
// local pending-sync snapshot: the identity account is rolled back and the
// user must retry with connectivity.
var ErrRegistroIncompleto = errors.New(
	"no hay conexión: el registro no se completó en el servidor, intenta nuevamente cuando tengas conexión")

type AuthService interface {
	// Registrar runs the two-store registration flow: identity account
	// first, profile document second, compensating account deletion when
	// the second store fails or degrades to pending-sync.
	Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.UsuarioResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context) error
}

type authService struct {
	identidad IdentityProvider
	perfiles  PerfilService
	monitor   Conectividad
	sesiones  *sesion.Registro
	cfg       *config.Config
}

func NewAuthService(identidad IdentityProvider, perfiles PerfilService, monitor Conectividad,
	sesiones *sesion.Registro, cfg *config.Config) AuthService {
	return &authService{
		identidad: identidad,
		perfiles:  perfiles,
		monitor:   monitor,
		sesiones:  sesiones,
		cfg:       cfg,
	}
}

func (s *authService) Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.UsuarioResponse, error) {
	rol := model.Rol(req.Rol)
	if rol == "" {
		rol = model.RolModelista
	}

	// Step 1: identity account. Failure here is terminal — nothing was
	// created yet, so there is nothing to compensate.
	accountID, err := s.identidad.CrearCuenta(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// Step 2: profile document in the second, independently-failing store.
	snap, err := s.perfiles.Crear(ctx, model.Usuario{
		ID:     accountID,
		Email:  req.Email,
		Nombre: req.Nombre,
		Rol:    rol,
	})
	if err != nil {
		// Forward-creation failed while online: compensate by deleting the
		// account just created. Best-effort — a failed compensation leaves
		// an orphaned account and is only logged.
		if s.monitor.IsOnline(ctx) {
			if delErr := s.identidad.EliminarCuenta(ctx, accountID); delErr != nil {
				log.Error().Str("account_id", accountID).Err(delErr).
					Msg("registro: compensación falló, cuenta de identidad huérfana")
			} else {
				log.Warn().Str("account_id", accountID).
					Msg("registro: cuenta de identidad eliminada por fallo al guardar el perfil")
			}
		}
		return nil, err
	}

	if snap.PendingSync {
		// The adapter fell back to local-only mid-flow. An identity account
		// paired with no server-side profile must not survive; tell the
		// user registration did not complete.
		if delErr := s.identidad.EliminarCuenta(ctx, accountID); delErr != nil {
			log.Error().Str("account_id", accountID).Err(delErr).
				Msg("registro: no se pudo eliminar la cuenta tras registro pendiente")
		} else {
			log.Warn().Str("account_id", accountID).
				Msg("registro: cuenta de identidad eliminada por registro pendiente offline")
		}
		return nil, ErrRegistroIncompleto
	}

	return perfilAResponse(snap), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	accountID, err := s.identidad.IniciarSesion(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// Session-change reconciliation: best-effort, never blocks sign-in.
	perfil := s.perfiles.Reconciliar(ctx, accountID, req.Email, "")

	ses := &sesion.Contexto{
		UserID:  accountID,
		Email:   perfil.Email,
		Nombre:  perfil.Nombre,
		Rol:     perfil.Rol,
		Offline: perfil.Offline,
	}
	s.sesiones.Publicar(ses)

	token, err := s.generarToken(ses)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        *perfilAResponse(perfil),
	}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if ses := s.sesiones.Actual(); ses != nil {
		if err := s.identidad.CerrarSesion(ctx, ses.UserID); err != nil {
			log.Warn().Str("uid", ses.UserID).Err(err).Msg("logout: cierre de sesión remoto falló")
		}
	}
	s.sesiones.Publicar(nil)
	return nil
}

func (s *authService) generarToken(ses *sesion.Contexto) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": ses.UserID,
		"email":   ses.Email,
		"nombre":  ses.Nombre,
		"rol":     string(ses.Rol),
		"exp":     now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func perfilAResponse(snap *model.PerfilSnapshot) *dto.UsuarioResponse {
	return &dto.UsuarioResponse{
		ID:          snap.ID,
		Email:       snap.Email,
		Nombre:      snap.Nombre,
		Rol:         string(snap.Rol),
		Offline:     snap.Offline,
		PendingSync: snap.PendingSync,
	}
}

// TraducirErrorAuth maps identity-provider errors to user-displayable
// messages; internal details never reach the client raw.
func TraducirErrorAuth(err error) string {
	switch {
	case errors.Is(err, infra.ErrCredenciales):
		return "Credenciales inválidas"
	case errors.Is(err, infra.ErrCuentaExiste):
		return "Ya existe una cuenta con ese correo"
	case errors.Is(err, ErrRegistroIncompleto):
		return err.Error()
	default:
		return "No se pudo completar la operación"
	}
}
