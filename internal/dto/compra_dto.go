package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CompraItem is validated line by line by the service so that each error names its 1-indexed position.
type CompraItem struct {
	ProductoID     int64           `json:"producto_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

type CompraRequest struct {
	ProveedorID   int64        `json:"proveedor_id" validate:"required,gt=0"`
	Fecha         string       `json:"fecha"        validate:"omitempty,datetime=2006-01-02"`
	Observaciones *string      `json:"observaciones" validate:"omitempty,max=500"`
	Recibir       bool         `json:"recibir"`
	Items         []CompraItem `json:"items"`
}

type CompraFilter struct {
	ProveedorID int64  `form:"proveedor_id"`
	Estado      string `form:"estado"`
	Desde       string `form:"desde"`
	Hasta       string `form:"hasta"`
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompraRegistradaResponse struct {
	ID     int64           `json:"id"`
	Total  decimal.Decimal `json:"total"`
	Estado string          `json:"estado"`
}

type DetalleCompraResponse struct {
	ID             int64           `json:"id"`
	ProductoID     int64           `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CompraResponse struct {
	ID            int64                   `json:"id"`
	ProveedorID   int64                   `json:"proveedor_id"`
	Proveedor     string                  `json:"proveedor"`
	Fecha         string                  `json:"fecha"`
	Total         decimal.Decimal         `json:"total"`
	Estado        string                  `json:"estado"`
	Observaciones *string                 `json:"observaciones"`
	Detalles      []DetalleCompraResponse `json:"detalles"`
}
