package handler

import (
	"errors"
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/dto"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

type CGTHandler struct{ svc service.CGTService }

func NewCGTHandler(svc service.CGTService) *CGTHandler { return &CGTHandler{svc: svc} }

func (h *CGTHandler) Factores(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Factores())
}

// Calcular godoc
// @Summary Calcula el gross tonnage compensado
// @Tags cgt
// @Accept json
// @Produce json
// @Param body body dto.CalcularCGTRequest true "GT y tipo de buque o factor"
// @Success 200 {object} dto.CGTResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cgt/calcular [post]
func (h *CGTHandler) Calcular(c *gin.Context) {
	var req dto.CalcularCGTRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Calcular(req)
	if err != nil {
		if errors.Is(err, service.ErrTipoBuqueDesconocido) {
			c.JSON(http.StatusBadRequest, apierror.New("Tipo de buque desconocido"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo calcular el CGT"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
