package repository

import (
	"context"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface so they can be tested with in-memory stubs.
type ProductoRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Producto, error)
	// FindByIDs returns the products found; missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	CreateTx(tx *gorm.DB, p *model.Producto) error
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	SetActivo(ctx context.Context, id int64, activo bool) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) withAssociations(q *gorm.DB) *gorm.DB {
	return q.Preload("Tipo").Preload("Categoria").Preload("Medida").Preload("Stock")
}

func (r *productoRepo) FindByID(ctx context.Context, id int64) (*model.Producto, error) {
	var p model.Producto
	err := r.withAssociations(r.db.WithContext(ctx)).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := r.withAssociations(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	if filter.TipoID > 0 {
		q = q.Where("tipo_id = ?", filter.TipoID)
	}
	if filter.CategoriaID > 0 {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.Q != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Q+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(filter.Page, filter.Limit)
	var productos []model.Producto
	err := r.withAssociations(q).Order("nombre ASC").Offset(offset).Limit(limit).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return Classify(tx.Omit("Tipo", "Categoria", "Medida", "Stock").Create(p).Error)
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return Classify(tx.Model(p).
		Select("nombre", "descripcion", "tipo_id", "categoria_id", "medida_id", "precio_unitario", "updated_at").
		Updates(p).Error)
}

func (r *productoRepo) SetActivo(ctx context.Context, id int64, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
