package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoRequest is shared by create and update. Tipo 1 (Caja) needs the three
// dimensions; Tipo 2 (Material) needs Categoria.
type ProductoRequest struct {
	Nombre          string           `json:"nombre"           validate:"required,min=2,max=120"`
	Descripcion     *string          `json:"descripcion"`
	TipoID          int64            `json:"tipo_id"          validate:"required,oneof=1 2"`
	Categoria       string           `json:"categoria"`
	Largo           *float64         `json:"largo"`
	Ancho           *float64         `json:"ancho"`
	Alto            *float64         `json:"alto"`
	PrecioUnitario  decimal.Decimal  `json:"precio_unitario"  validate:"min=0"`
	CantidadInicial *decimal.Decimal `json:"cantidad_inicial"`
}

type ProductoFilter struct {
	Q                string `form:"q"`
	TipoID           int64  `form:"tipo"`
	CategoriaID      int64  `form:"categoria_id"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
	Page             int    `form:"page,default=1"`
	Limit            int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MedidaResponse struct {
	ID      int64   `json:"id"`
	Largo   float64 `json:"largo"`
	Ancho   float64 `json:"ancho"`
	Alto    float64 `json:"alto"`
	Volumen float64 `json:"volumen"`
}

type CategoriaResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	TipoID *int64 `json:"tipo_id"`
}

type ProductoResponse struct {
	ID             int64           `json:"id"`
	Nombre         string          `json:"nombre"`
	Descripcion    *string         `json:"descripcion"`
	TipoID         int64           `json:"tipo_id"`
	Tipo           string          `json:"tipo"`
	CategoriaID    int64           `json:"categoria_id"`
	Categoria      string          `json:"categoria"`
	Medida         *MedidaResponse `json:"medida"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Stock          decimal.Decimal `json:"stock"`
	Activo         bool            `json:"activo"`
}
