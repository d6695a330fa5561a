package model

import "time"

// Auditoria is an append-only action log row.
type Auditoria struct {
	ID          int64  `gorm:"primaryKey"`
	UsuarioID   *int64 `gorm:"index"`
	Evento      string `gorm:"size:50;not null"`
	Modulo      string `gorm:"size:30;not null;index"`
	Descripcion string
	FechaHora   time.Time `gorm:"not null;index"`

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (Auditoria) TableName() string { return "auditoria" }
