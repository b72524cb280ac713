package dto

// RegistroRequest carries the registration form. Validation runs before any
// network call; the role defaults to modelista when omitted.
type RegistroRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Nombre          string `json:"nombre"           validate:"required"`
	Password        string `json:"password"         validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Rol             string `json:"rol"              validate:"omitempty,oneof=lider modelista"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	User        UsuarioResponse `json:"user"`
}

type UsuarioResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
	// Offline: the profile was served from the local cache without remote
	// confirmation.
	Offline     bool `json:"offline,omitempty"`
	PendingSync bool `json:"pending_sync,omitempty"`
}

type ActualizarRolRequest struct {
	Rol string `json:"rol" validate:"required,oneof=lider modelista pendiente"`
}
