package handler

import (
	"net/http"

	"github.com/iatechsabana/cotecmar/internal/apierror"
	"github.com/iatechsabana/cotecmar/internal/middleware"
	"github.com/iatechsabana/cotecmar/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.KPIService }

func NewDashboardHandler(svc service.KPIService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// KPIs godoc
// @Summary KPIs del tablero del usuario autenticado
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.KPIResponse
// @Router /v1/dashboard/kpis [get]
func (h *DashboardHandler) KPIs(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Calcular(c.Request.Context(), claims.UserID, claims.Nombre)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular los indicadores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
