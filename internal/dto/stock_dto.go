package dto

import "github.com/shopspring/decimal"

type PesajeItem struct {
	ProductoID int64           `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

type PesajeRequest struct {
	Items         []PesajeItem `json:"items" validate:"required,min=1"`
	Observaciones string       `json:"observaciones" validate:"max=300"`
}

type PesajeResponse struct {
	Items []StockResponse `json:"items"`
}

type StockResponse struct {
	ProductoID           int64           `json:"producto_id"`
	Producto             string          `json:"producto"`
	Tipo                 string          `json:"tipo"`
	Categoria            string          `json:"categoria"`
	Cantidad             decimal.Decimal `json:"cantidad"`
	FechaUltimaActualiza string          `json:"fecha_ultima_actualiza"`
}

type MovimientoFilter struct {
	ProductoID int64  `form:"producto_id"`
	Tipo       string `form:"tipo"` // ENTRADA | SALIDA
	Desde      string `form:"desde"`
	Hasta      string `form:"hasta"`
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=100"`
}

type MovimientoResponse struct {
	ID             int64           `json:"id"`
	ProductoID     int64           `json:"producto_id"`
	Producto       string          `json:"producto"`
	Tipo           string          `json:"tipo"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	Fecha          string          `json:"fecha"`
	Observaciones  string          `json:"observaciones"`
	ReferenciaTipo *string         `json:"referencia_tipo"`
	ReferenciaID   *int64          `json:"referencia_id"`
}

// ConciliacionResponse compares the stock row against the movement ledger.
type ConciliacionResponse struct {
	ProductoID int64           `json:"producto_id"`
	Stock      decimal.Decimal `json:"stock"`
	Entradas   decimal.Decimal `json:"entradas"`
	Salidas    decimal.Decimal `json:"salidas"`
	Diferencia decimal.Decimal `json:"diferencia"`
	Conciliado bool            `json:"conciliado"`
}
