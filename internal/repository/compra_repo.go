package repository

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompraFilter narrows the purchase listing; Hasta is exclusive.
type CompraFilter struct {
	ProveedorID int64
	Estado      string
	Desde       *time.Time
	Hasta       *time.Time
	Page        int
	Limit       int
}

type CompraRepository interface {
	// EstadoID resolves a purchase state by name; ErrNotFound when missing.
	EstadoID(ctx context.Context, nombre string) (int64, error)
	CreateTx(tx *gorm.DB, o *model.OrdenCompra) error
	FindByID(ctx context.Context, id int64) (*model.OrdenCompra, error)
	// LockTx reads the header FOR UPDATE together with its state and detail lines.
	LockTx(tx *gorm.DB, id int64) (*model.OrdenCompra, error)
	UpdateHeaderTx(tx *gorm.DB, o *model.OrdenCompra) error
	ReplaceDetallesTx(tx *gorm.DB, ordenID int64, detalles []model.DetalleCompra) error
	List(ctx context.Context, filter CompraFilter) ([]model.OrdenCompra, int64, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) EstadoID(ctx context.Context, nombre string) (int64, error) {
	var e model.EstadoCompra
	if err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&e).Error; err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (r *compraRepo) CreateTx(tx *gorm.DB, o *model.OrdenCompra) error {
	return Classify(tx.Omit("Proveedor", "Estado").Create(o).Error)
}

func (r *compraRepo) FindByID(ctx context.Context, id int64) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	err := r.db.WithContext(ctx).
		Preload("Proveedor").Preload("Estado").Preload("Detalles.Producto").
		First(&o, id).Error
	return &o, err
}

func (r *compraRepo) LockTx(tx *gorm.DB, id int64) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, err
	}
	var estado model.EstadoCompra
	if err := tx.Where("id = ?", o.EstadoID).First(&estado).Error; err != nil {
		return nil, err
	}
	o.Estado = &estado
	if err := tx.Where("orden_compra_id = ?", o.ID).Order("id ASC").Find(&o.Detalles).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *compraRepo) UpdateHeaderTx(tx *gorm.DB, o *model.OrdenCompra) error {
	return Classify(tx.Model(o).
		Select("proveedor_id", "fecha", "total", "estado_id", "observaciones", "updated_at").
		Updates(o).Error)
}

func (r *compraRepo) ReplaceDetallesTx(tx *gorm.DB, ordenID int64, detalles []model.DetalleCompra) error {
	if err := tx.Where("orden_compra_id = ?", ordenID).Delete(&model.DetalleCompra{}).Error; err != nil {
		return err
	}
	if len(detalles) == 0 {
		return nil
	}
	for i := range detalles {
		detalles[i].ID = 0
		detalles[i].OrdenCompraID = ordenID
	}
	return Classify(tx.Omit("Producto").Create(&detalles).Error)
}

func (r *compraRepo) List(ctx context.Context, filter CompraFilter) ([]model.OrdenCompra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.OrdenCompra{})
	if filter.ProveedorID > 0 {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Estado != "" {
		q = q.Where("estado_id = (SELECT id FROM estados_compra WHERE nombre = ?)", filter.Estado)
	}
	if filter.Desde != nil {
		q = q.Where("fecha >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha < ?", *filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(filter.Page, filter.Limit)
	var ordenes []model.OrdenCompra
	err := q.Preload("Proveedor").Preload("Estado").Preload("Detalles.Producto").
		Order("fecha DESC, id DESC").Offset(offset).Limit(limit).Find(&ordenes).Error
	return ordenes, total, err
}
