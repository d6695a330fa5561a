package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	VentaCompletada = "COMPLETADA"
	VentaAnulada    = "ANULADA"
)

// Venta is a sale; NumeroRemito comes from remitos_numero_seq.
type Venta struct {
	ID            int64           `gorm:"primaryKey"`
	NumeroRemito  int64           `gorm:"uniqueIndex;not null"`
	Cliente       *string
	Fecha         time.Time       `gorm:"not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado        string          `gorm:"size:20;not null;default:'COMPLETADA'"`
	Observaciones *string
	UsuarioID     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

type DetalleVenta struct {
	ID             int64           `gorm:"primaryKey"`
	VentaID        int64           `gorm:"not null;index"`
	ProductoID     int64           `gorm:"not null;index"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(19,5);not null"` // cantidad × precio, exact

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }
