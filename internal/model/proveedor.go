package model

import "time"

// Proveedor is a supplier. Inactive rows stay joinable from historical purchases.
type Proveedor struct {
	ID        int64   `gorm:"primaryKey"`
	CUIT      string  `gorm:"column:cuit;size:11;uniqueIndex;not null"`
	Nombre    string  `gorm:"not null"`
	Contacto  *string
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
