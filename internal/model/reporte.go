package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report scopes.
const (
	ReporteVentas  = "VENTAS"
	ReporteCompras = "COMPRAS"
)

// Reporte stores the parameters of a report plus the totals computed when it was created.
type Reporte struct {
	ID            int64           `gorm:"primaryKey"`
	Tipo          string          `gorm:"size:10;not null;index"`
	ProductoID    *int64          `gorm:"index"`
	FechaDesde    time.Time       `gorm:"not null"`
	FechaHasta    time.Time       `gorm:"not null"`
	CantidadTotal decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	MontoTotal    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	UsuarioID     *int64
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Reporte) TableName() string { return "reportes" }
