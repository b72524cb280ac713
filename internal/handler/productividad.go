package handler

import (
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/middleware"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductividadHandler struct{ svc service.ProductividadService }

func NewProductividadHandler(svc service.ProductividadService) *ProductividadHandler {
	return &ProductividadHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra un evento de tiempo
// @Description El evento queda visible de inmediato; si la escritura remota
// @Description falla se reintenta en el próximo ciclo de carga.
// @Tags productividad
// @Accept json
// @Produce json
// @Param body body dto.CrearEventoRequest true "Evento"
// @Success 202 {object} model.EventoProductividad
// @Router /v1/productividad [post]
func (h *ProductividadHandler) Registrar(c *gin.Context) {
	var req dto.CrearEventoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ses := middleware.ContextoSesion(c)
	evento, err := h.svc.Registrar(c.Request.Context(), ses.UserID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo registrar el evento"))
		return
	}
	c.JSON(http.StatusAccepted, evento)
}

func (h *ProductividadHandler) Listar(c *gin.Context) {
	ses := middleware.ContextoSesion(c)
	eventos, err := h.svc.Listar(c.Request.Context(), ses.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar eventos"))
		return
	}
	c.JSON(http.StatusOK, eventos)
}

func (h *ProductividadHandler) Resumen(c *gin.Context) {
	ses := middleware.ContextoSesion(c)
	resumen, err := h.svc.Resumen(c.Request.Context(), ses.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular el resumen"))
		return
	}
	c.JSON(http.StatusOK, resumen)
}

func (h *ProductividadHandler) Matriz(c *gin.Context) {
	ses := middleware.ContextoSesion(c)
	matriz, err := h.svc.Matriz(c.Request.Context(), ses.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al armar la matriz"))
		return
	}
	c.JSON(http.StatusOK, matriz)
}
