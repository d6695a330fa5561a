package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names referenced by authorization checks.
const (
	RolAdmin      = "ADMIN"
	RolCompras    = "COMPRAS"
	RolVentas     = "VENTAS"
	RolStock      = "STOCK"
	RolOperador   = "OPERADOR"
	RolSupervisor = "SUPERVISOR"
	RolConsulta   = "CONSULTA"
)

// Usuario states.
const (
	UsuarioActivo   = "ACTIVO"
	UsuarioInactivo = "INACTIVO"
)

// Rol is one of the fixed roles seeded at startup.
type Rol struct {
	ID          int64   `gorm:"primaryKey"`
	Nombre      string  `gorm:"size:30;uniqueIndex;not null"`
	Descripcion *string
}

func (Rol) TableName() string { return "roles" }

// Usuario is the local mirror of an identity-provider account.
// Mail is stored lower-cased; AuthID is the provider subject and is nil until
// the first authenticated request links it.
type Usuario struct {
	ID        int64      `gorm:"primaryKey"`
	DNI       *string    `gorm:"column:dni;size:20"`
	Nombre    string     `gorm:"not null"`
	Mail      string     `gorm:"column:mail;size:255;uniqueIndex;not null"`
	Estado    string     `gorm:"size:10;not null;default:'ACTIVO'"`
	RolID     int64      `gorm:"not null;index"`
	AuthID    *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Rol *Rol `gorm:"foreignKey:RolID"`
}

func (Usuario) TableName() string { return "usuarios" }

// RolNombre returns the role name or "" when the association was not preloaded.
func (u *Usuario) RolNombre() string {
	if u.Rol == nil {
		return ""
	}
	return u.Rol.Nombre
}
