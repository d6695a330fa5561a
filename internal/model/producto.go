package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product kinds.
const (
	TipoCaja     int64 = 1
	TipoMaterial int64 = 2
)

type TipoProducto struct {
	ID     int64  `gorm:"primaryKey;autoIncrement:false"`
	Nombre string `gorm:"size:30;not null"`
}

func (TipoProducto) TableName() string { return "tipos_producto" }

// Producto is either a box (with Medida) or a bulk material sold by weight.
// Activo=false is a soft delete.
type Producto struct {
	ID             int64   `gorm:"primaryKey"`
	Nombre         string  `gorm:"index;not null"`
	Descripcion    *string
	TipoID         int64           `gorm:"not null;index"`
	CategoriaID    int64           `gorm:"not null;index"`
	MedidaID       *int64          `gorm:"index"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tipo      *TipoProducto `gorm:"foreignKey:TipoID"`
	Categoria *Categoria    `gorm:"foreignKey:CategoriaID"`
	Medida    *Medida       `gorm:"foreignKey:MedidaID"`
	Stock     *Stock        `gorm:"foreignKey:ProductoID"`
}

func (Producto) TableName() string { return "productos" }

// Stock holds the current quantity of one product. It only changes together
// with a MovimientoStock row written in the same transaction.
type Stock struct {
	ProductoID           int64           `gorm:"primaryKey;autoIncrement:false"`
	Cantidad             decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	FechaUltimaActualiza time.Time       `gorm:"not null"`
}

func (Stock) TableName() string { return "stock" }
