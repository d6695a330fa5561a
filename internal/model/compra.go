package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase states.
const (
	CompraPendiente = "PENDIENTE"
	CompraRecibida  = "RECIBIDA"
	CompraAnulada   = "ANULADO"
)

type EstadoCompra struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"size:20;uniqueIndex;not null"`
}

func (EstadoCompra) TableName() string { return "estados_compra" }

// OrdenCompra is a purchase header. Total is always Σ Detalles.Subtotal rounded to cents.
type OrdenCompra struct {
	ID            int64           `gorm:"primaryKey"`
	ProveedorID   int64           `gorm:"not null;index"`
	Fecha         time.Time       `gorm:"not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	EstadoID      int64           `gorm:"not null;index"`
	Observaciones *string
	UsuarioID     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Estado    *EstadoCompra   `gorm:"foreignKey:EstadoID"`
	Detalles  []DetalleCompra `gorm:"foreignKey:OrdenCompraID"`
}

func (OrdenCompra) TableName() string { return "ordenes_compra" }

// EstadoNombre returns the state name or "" when not preloaded.
func (o *OrdenCompra) EstadoNombre() string {
	if o.Estado == nil {
		return ""
	}
	return o.Estado.Nombre
}

type DetalleCompra struct {
	ID             int64           `gorm:"primaryKey"`
	OrdenCompraID  int64           `gorm:"not null;index"`
	ProductoID     int64           `gorm:"not null;index"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(19,5);not null"` // cantidad × precio, exact

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleCompra) TableName() string { return "detalles_compra" }
