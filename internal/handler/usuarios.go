package handler

import (
	"errors"
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

// UsuariosHandler exposes the team-management routes, restricted to líderes.
type UsuariosHandler struct{ svc service.PerfilService }

func NewUsuariosHandler(svc service.PerfilService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Listar godoc
// @Summary Lista perfiles, opcionalmente filtrados por rol
// @Tags usuarios
// @Produce json
// @Param rol query string false "lider | modelista | pendiente"
// @Success 200 {array} dto.UsuarioResponse
// @Router /v1/usuarios [get]
func (h *UsuariosHandler) Listar(c *gin.Context) {
	var (
		usuarios []model.Usuario
		err      error
	)
	if rol := c.Query("rol"); rol != "" {
		if !model.Rol(rol).Valida() {
			c.JSON(http.StatusBadRequest, apierror.New("Rol desconocido: "+rol))
			return
		}
		usuarios, err = h.svc.ListarPorRol(c.Request.Context(), model.Rol(rol))
	} else {
		usuarios, err = h.svc.Listar(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar usuarios"))
		return
	}

	resp := make([]dto.UsuarioResponse, 0, len(usuarios))
	for _, u := range usuarios {
		resp = append(resp, dto.UsuarioResponse{
			ID: u.ID, Email: u.Email, Nombre: u.Nombre, Rol: string(u.Rol),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) ActualizarRol(c *gin.Context) {
	var req dto.ActualizarRolRequest
	if !bindAndValidate(c, &req) {
		return
	}

	err := h.svc.ActualizarRol(c.Request.Context(), c.Param("id"), model.Rol(req.Rol))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, repository.ErrRolInvalido):
		c.JSON(http.StatusBadRequest, apierror.New("Rol inválido"))
	case repository.EsNoEncontrado(err):
		c.JSON(http.StatusNotFound, apierror.New("Usuario no encontrado"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo actualizar el rol"))
	}
}
