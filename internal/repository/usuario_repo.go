package repository

import (
	"context"

	"github.com/iatechsabana/cotecmar/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsuarioRepository interface {
	// Crear writes a full profile document keyed by the identity account id.
	Crear(ctx context.Context, u *model.Usuario) error
	// Buscar returns the profile or a not-found RemoteError (distinct from
	// connectivity failure).
	Buscar(ctx context.Context, id string) (*model.Usuario, error)
	// Merge upserts the given fields into the document, creating it when
	// absent — the merge-write used by the pending-sync sweep.
	Merge(ctx context.Context, u *model.Usuario) error
	// ActualizarRol rejects roles outside the enumerated set before any
	// store call.
	ActualizarRol(ctx context.Context, id string, rol model.Rol) error
	Listar(ctx context.Context) ([]model.Usuario, error)
	ListarPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Crear(ctx context.Context, u *model.Usuario) error {
	return envolver("crear usuario", r.db.WithContext(ctx).Create(u).Error)
}

func (r *usuarioRepo) Buscar(ctx context.Context, id string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, envolver("buscar usuario", err)
	}
	return &u, nil
}

func (r *usuarioRepo) Merge(ctx context.Context, u *model.Usuario) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "nombre", "rol", "updated_at"}),
		}).
		Create(u).Error
	return envolver("merge usuario", err)
}

func (r *usuarioRepo) ActualizarRol(ctx context.Context, id string, rol model.Rol) error {
	if !rol.Valida() {
		return ErrRolInvalido
	}
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ?", id).
		Update("rol", rol)
	if res.Error != nil {
		return envolver("actualizar rol", res.Error)
	}
	if res.RowsAffected == 0 {
		return &RemoteError{Code: CodeNotFound, Op: "actualizar rol", Err: gorm.ErrRecordNotFound}
	}
	return nil
}

func (r *usuarioRepo) Listar(ctx context.Context) ([]model.Usuario, error) {
	var usuarios []model.Usuario
	err := r.db.WithContext(ctx).Find(&usuarios).Error
	return usuarios, envolver("listar usuarios", err)
}

func (r *usuarioRepo) ListarPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error) {
	var usuarios []model.Usuario
	err := r.db.WithContext(ctx).Where("rol = ?", rol).Find(&usuarios).Error
	return usuarios, envolver("listar usuarios por rol", err)
}
