package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement kinds.
const (
	MovimientoEntrada = "ENTRADA"
	MovimientoSalida  = "SALIDA"
)

// Reference kinds linking a movement to the document that caused it.
const (
	RefCompra = "COMPRA"
	RefVenta  = "VENTA"
	RefPesaje = "PESAJE"
	RefAlta   = "ALTA"
)

type TipoMovimiento struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"size:20;uniqueIndex;not null"`
}

func (TipoMovimiento) TableName() string { return "tipos_movimiento" }

// MovimientoStock is an append-only ledger entry. Cantidad is always positive;
// the direction comes from TipoMovimiento.
type MovimientoStock struct {
	ID               int64           `gorm:"primaryKey"`
	ProductoID       int64           `gorm:"not null;index"`
	TipoMovimientoID int64           `gorm:"not null;index"`
	Cantidad         decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Fecha            time.Time       `gorm:"not null;index"`
	Observaciones    string
	ReferenciaTipo   *string `gorm:"size:20"`
	ReferenciaID     *int64
	UsuarioID        *int64

	Producto       *Producto       `gorm:"foreignKey:ProductoID"`
	TipoMovimiento *TipoMovimiento `gorm:"foreignKey:TipoMovimientoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
