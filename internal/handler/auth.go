package handler

import (
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Registro godoc
// @Summary Registro de usuario: cuenta + perfil, con compensación
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegistroRequest true "Formulario de registro"
// @Success 201 {object} dto.UsuarioResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/auth/registro [post]
func (h *AuthHandler) Registro(c *gin.Context) {
	var req dto.RegistroRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(service.TraducirErrorAuth(err)))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Login con reconciliación de perfil
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(service.TraducirErrorAuth(err)))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo cerrar la sesión"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
