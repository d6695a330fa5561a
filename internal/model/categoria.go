package model

// Categoria groups products. Box categories (Chica, Mediana, Grande) are derived
// from volume; material categories are free text. Names are unique per tipo,
// case-insensitively (see the schema patches).
type Categoria struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"size:100;not null"`
	TipoID *int64 `gorm:"index"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

// Medida is a deduplicated box dimension triple, in centimetres.
type Medida struct {
	ID    int64   `gorm:"primaryKey"`
	Largo float64 `gorm:"not null;uniqueIndex:idx_medida_triple"`
	Ancho float64 `gorm:"not null;uniqueIndex:idx_medida_triple"`
	Alto  float64 `gorm:"not null;uniqueIndex:idx_medida_triple"`
}

func (Medida) TableName() string { return "medidas" }

// Volumen returns largo × ancho × alto.
func (m Medida) Volumen() float64 { return m.Largo * m.Ancho * m.Alto }
