package dto

import "github.com/shopspring/decimal"

type RangoFechas struct {
	Desde string `form:"desde" json:"desde" validate:"required,datetime=2006-01-02"`
	Hasta string `form:"hasta" json:"hasta" validate:"required,datetime=2006-01-02"`
}

type CrearReporteRequest struct {
	Tipo       string `json:"tipo"        validate:"required,oneof=VENTAS COMPRAS"`
	ProductoID *int64 `json:"producto_id" validate:"omitempty,gt=0"`
	Desde      string `json:"desde"       validate:"required,datetime=2006-01-02"`
	Hasta      string `json:"hasta"       validate:"required,datetime=2006-01-02"`
}

type EnviarReporteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ReporteFilter struct {
	Tipo  string `form:"tipo"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
}

type ReporteResponse struct {
	ID            int64           `json:"id"`
	Tipo          string          `json:"tipo"`
	ProductoID    *int64          `json:"producto_id"`
	Producto      *string         `json:"producto"`
	Desde         string          `json:"desde"`
	Hasta         string          `json:"hasta"`
	CantidadTotal decimal.Decimal `json:"cantidad_total"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
	CreatedAt     string          `json:"created_at"`
}

// SerieItem is one bucket of a dashboard series (a day, a category, a product).
type SerieItem struct {
	Clave    string          `json:"clave"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

type DashboardResponse struct {
	Desde          string          `json:"desde"`
	Hasta          string          `json:"hasta"`
	TotalVentas    decimal.Decimal `json:"total_ventas"`
	TotalCompras   decimal.Decimal `json:"total_compras"`
	CantidadVentas int64           `json:"cantidad_ventas"`
	VentasPorDia   []SerieItem     `json:"ventas_por_dia"`
	ComprasPorDia  []SerieItem     `json:"compras_por_dia"`
	PorCategoria   []SerieItem     `json:"por_categoria"`
	PorMaterial    []SerieItem     `json:"por_material"`
	TopProductos   []SerieItem     `json:"top_productos"`
}
