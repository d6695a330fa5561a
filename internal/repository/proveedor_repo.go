package repository

import (
	"context"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id int64) (*model.Proveedor, error)
	List(ctx context.Context, filter dto.ProveedorFilter) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	// Delete removes the row; ErrReferenced when purchases point at it.
	Delete(ctx context.Context, id int64) error
	SetActivo(ctx context.Context, id int64, activo bool) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return Classify(r.db.WithContext(ctx).Create(p).Error)
}

func (r *proveedorRepo) FindByID(ctx context.Context, id int64) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *proveedorRepo) List(ctx context.Context, filter dto.ProveedorFilter) ([]model.Proveedor, error) {
	q := r.db.WithContext(ctx).Model(&model.Proveedor{})
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("nombre ILIKE ? OR cuit LIKE ?", like, like)
	}
	var proveedores []model.Proveedor
	err := q.Order("nombre ASC").Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return Classify(r.db.WithContext(ctx).Save(p).Error)
}

func (r *proveedorRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Proveedor{}, id)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *proveedorRepo) SetActivo(ctx context.Context, id int64, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
