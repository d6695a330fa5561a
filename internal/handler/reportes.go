package handler

import (
	"fmt"
	"net/http"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/middleware"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Tablero de indicadores
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string true "YYYY-MM-DD"
// @Param        hasta query string true "YYYY-MM-DD (inclusive)"
// @Success      200  {object} dto.DashboardResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	var rango dto.RangoFechas
	if !bindQuery(c, &rango) || !validateStruct(c, &rango) {
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), rango)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Crear(c *gin.Context) {
	var req dto.CrearReporteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReportesHandler) Listar(c *gin.Context) {
	var filter dto.ReporteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar deletes the reports listed in the body.
func (h *ReportesHandler) Eliminar(c *gin.Context) {
	var req dto.IDsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.Eliminar(c.Request.Context(), middleware.GetPrincipal(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eliminados": n})
}

// ProductosPorAlcance lists products with history for ?tipo=VENTAS|COMPRAS.
func (h *ReportesHandler) ProductosPorAlcance(c *gin.Context) {
	resp, err := h.svc.ProductosPorAlcance(c.Request.Context(), c.DefaultQuery("tipo", "VENTAS"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Descargar reporte en PDF
// @Tags         reportes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "ID de reporte"
// @Success      200  {file} binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/reportes/{id}/pdf [get]
func (h *ReportesHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	out, filename, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", out)
}

func (h *ReportesHandler) Enviar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EnviarReporteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Enviar(c.Request.Context(), middleware.GetPrincipal(c), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "El reporte será enviado a " + req.Email})
}
