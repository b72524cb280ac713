package handler

import (
	"errors"
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/middleware"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

type AvancesHandler struct{ svc service.AvanceService }

func NewAvancesHandler(svc service.AvanceService) *AvancesHandler {
	return &AvancesHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un avance de forma optimista
// @Description Responde 202 con el registro provisional; la persistencia
// @Description remota corre en segundo plano y el id definitivo aparece en el
// @Description próximo listado.
// @Tags avances
// @Accept json
// @Produce json
// @Param body body dto.CrearAvanceRequest true "Avance"
// @Success 202 {object} dto.AvanceResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/avances [post]
func (h *AvancesHandler) Crear(c *gin.Context) {
	var req dto.CrearAvanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ses := middleware.ContextoSesion(c)
	resp, err := h.svc.Crear(c.Request.Context(), ses, ses.UserID, req)
	if err != nil {
		if errors.Is(err, service.ErrEstadoInvalido) {
			c.JSON(http.StatusBadRequest, apierror.New("Estado de avance inválido"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo registrar el avance"))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *AvancesHandler) Listar(c *gin.Context) {
	ses := middleware.ContextoSesion(c)
	resp, err := h.svc.Listar(c.Request.Context(), ses.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar avances"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarEquipo godoc
// @Summary Tablero de equipo: avances de todos los usuarios
// @Tags avances
// @Produce json
// @Success 200 {array} dto.AvanceResponse
// @Router /v1/avances/equipo [get]
func (h *AvancesHandler) ListarEquipo(c *gin.Context) {
	resp, err := h.svc.ListarEquipo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar los avances del equipo"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarReproceso godoc
// @Summary Agrega un reproceso a un avance
// @Tags avances
// @Accept json
// @Produce json
// @Param id path string true "Id del avance (definitivo o provisional)"
// @Param body body dto.ReprocesoRequest true "Reproceso"
// @Success 200 {object} dto.AvanceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/avances/{id}/reprocesos [post]
func (h *AvancesHandler) AgregarReproceso(c *gin.Context) {
	var req dto.ReprocesoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ses := middleware.ContextoSesion(c)
	resp, err := h.svc.AgregarReproceso(c.Request.Context(), ses, c.Param("id"), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrAvanceNoHallado):
		c.JSON(http.StatusNotFound, apierror.New("Avance no encontrado"))
	default:
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo registrar el reproceso, los cambios fueron revertidos"))
	}
}

// Avisos drains the user's accumulated background-failure notices.
func (h *AvancesHandler) Avisos(c *gin.Context) {
	ses := middleware.ContextoSesion(c)
	avisos := h.svc.Avisos(ses.UserID)
	if avisos == nil {
		avisos = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"avisos": avisos})
}
