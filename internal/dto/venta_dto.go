package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VentaItem struct {
	ProductoID     int64            `json:"producto_id"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"` // defaults to the product price
}

type VentaRequest struct {
	Cliente       *string     `json:"cliente"       validate:"omitempty,max=150"`
	Fecha         string      `json:"fecha"         validate:"omitempty,datetime=2006-01-02"`
	Observaciones *string     `json:"observaciones" validate:"omitempty,max=500"`
	Items         []VentaItem `json:"items"`
}

type VentaFilter struct {
	Estado string `form:"estado"` // COMPLETADA | ANULADA; empty = all
	Desde  string `form:"desde"`
	Hasta  string `form:"hasta"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ProductoID     int64           `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            int64                  `json:"id"`
	NumeroRemito  int64                  `json:"numero_remito"`
	Cliente       *string                `json:"cliente"`
	Fecha         string                 `json:"fecha"`
	Total         decimal.Decimal        `json:"total"`
	Estado        string                 `json:"estado"`
	Observaciones *string                `json:"observaciones"`
	Detalles      []DetalleVentaResponse `json:"detalles"`
}
