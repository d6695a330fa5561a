package repository

import (
	"context"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoriaRepository owns categorias and medidas, the two lookup tables a
// product write may extend.
type CategoriaRepository interface {
	// FindOrCreateTx returns the categoria of tipoID whose name matches
	// case-insensitively, inserting it when absent. A box "Grande" and a
	// material "grande" are different rows.
	FindOrCreateTx(tx *gorm.DB, nombre string, tipoID int64) (*model.Categoria, error)
	// FindOrCreateMedidaTx deduplicates on the exact dimension triple.
	FindOrCreateMedidaTx(tx *gorm.DB, largo, ancho, alto float64) (*model.Medida, error)
	List(ctx context.Context, tipoID int64) ([]model.Categoria, error)
	ListMedidas(ctx context.Context) ([]model.Medida, error)
}

type categoriaRepo struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository { return &categoriaRepo{db: db} }

func (r *categoriaRepo) FindOrCreateTx(tx *gorm.DB, nombre string, tipoID int64) (*model.Categoria, error) {
	nombre = strings.TrimSpace(nombre)
	var c model.Categoria
	err := tx.Where("tipo_id = ? AND lower(nombre) = lower(?)", tipoID, nombre).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	c = model.Categoria{Nombre: nombre, TipoID: &tipoID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c).Error; err != nil {
		return nil, Classify(err)
	}
	if c.ID == 0 {
		// lost the race against a concurrent insert
		if err := tx.Where("tipo_id = ? AND lower(nombre) = lower(?)", tipoID, nombre).First(&c).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *categoriaRepo) FindOrCreateMedidaTx(tx *gorm.DB, largo, ancho, alto float64) (*model.Medida, error) {
	m := model.Medida{Largo: largo, Ancho: ancho, Alto: alto}
	err := tx.Where("largo = ? AND ancho = ? AND alto = ?", largo, ancho, alto).
		Attrs(m).FirstOrCreate(&m).Error
	return &m, Classify(err)
}

func (r *categoriaRepo) List(ctx context.Context, tipoID int64) ([]model.Categoria, error) {
	q := r.db.WithContext(ctx).Model(&model.Categoria{})
	if tipoID > 0 {
		q = q.Where("tipo_id = ?", tipoID)
	}
	var cats []model.Categoria
	err := q.Order("nombre ASC").Find(&cats).Error
	return cats, err
}

func (r *categoriaRepo) ListMedidas(ctx context.Context) ([]model.Medida, error) {
	var medidas []model.Medida
	err := r.db.WithContext(ctx).Order("largo * ancho * alto ASC").Find(&medidas).Error
	return medidas, err
}
