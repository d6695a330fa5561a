package handler

import (
	"net/http"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/middleware"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler { return &ComprasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar orden de compra
// @Description  Crea la compra en estado PENDIENTE. Con "recibir": true ingresa el stock en la misma transacción.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CompraRequest true "Compra"
// @Success      201  {object} dto.CompraRegistradaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) Registrar(c *gin.Context) {
	var req dto.CompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Recibir godoc
// @Summary      Recibir compra
// @Description  Ingresa al stock cada línea de una compra PENDIENTE y la marca RECIBIDA.
// @Tags         compras
// @Security     BearerAuth
// @Param        id path int true "ID de compra"
// @Success      200  {object} dto.CompraRegistradaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras/{id}/recibir [post]
func (h *ComprasHandler) Recibir(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Recibir(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) Modificar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Modificar(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary      Anular compra
// @Description  Revierte el stock de una compra recibida y la marca ANULADO. Una segunda anulación devuelve 400.
// @Tags         compras
// @Accept       json
// @Security     BearerAuth
// @Param        id   path int               true  "ID de compra"
// @Param        body body dto.MotivoRequest false "Motivo"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras/{id}/anular [post]
func (h *ComprasHandler) Anular(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.MotivoRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := h.svc.Anular(c.Request.Context(), middleware.GetPrincipal(c), id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "estado": "ANULADO"})
}

func (h *ComprasHandler) Listar(c *gin.Context) {
	var filter dto.CompraFilter
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

func (h *ComprasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarProductos returns the catalog the purchase form picks from.
func (h *ComprasHandler) ListarProductos(c *gin.Context) {
	resp, err := h.svc.ListarProductos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) ListarProveedores(c *gin.Context) {
	resp, err := h.svc.ListarProveedores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
