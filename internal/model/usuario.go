package model

import (
	"time"
)

// Rol is the closed set of operational roles. "pendiente" is transitional:
// it is assigned before profile reconciliation completes and is promoted to
// modelista on the next authenticated session.
type Rol string

const (
	RolLider     Rol = "lider"
	RolModelista Rol = "modelista"
	RolPendiente Rol = "pendiente"
)

// Valida reports whether r is one of the enumerated roles.
func (r Rol) Valida() bool {
	switch r {
	case RolLider, RolModelista, RolPendiente:
		return true
	}
	return false
}

// Usuario is the profile document in the users collection. The primary key is
// the identity-provider account id, never generated locally.
type Usuario struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"not null"`
	Nombre    string `gorm:"not null"`
	Rol       Rol    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PerfilSnapshot is the cached form of a profile: the document plus the
// transient flags that only exist locally. It is what gets serialized under
// the user_<id> cache key.
type PerfilSnapshot struct {
	Usuario

	// Offline: served from the local cache, not confirmed against the remote
	// store. PendingSync: created while offline, awaiting push. Temporary:
	// synthesized placeholder with no real data behind it.
	Offline     bool `json:"offline,omitempty"`
	PendingSync bool `json:"pendingSync,omitempty"`
	Temporary   bool `json:"temporary,omitempty"`

	// Sweep bookkeeping. Intentos counts merge-write attempts; past
	// ProximoIntento the snapshot is eligible again.
	Intentos       int        `json:"intentos,omitempty"`
	ProximoIntento *time.Time `json:"proximoIntento,omitempty"`
}

// PerfilTemporal synthesizes the placeholder profile used when neither the
// remote store nor the cache can produce one. Role defaults to modelista.
func PerfilTemporal(id string) *PerfilSnapshot {
	return &PerfilSnapshot{
		Usuario:   Usuario{ID: id, Rol: RolModelista},
		Offline:   true,
		Temporary: true,
	}
}
