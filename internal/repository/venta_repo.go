package repository

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaFilter narrows the sale listing; Hasta is exclusive.
type VentaFilter struct {
	Estado string
	Desde  *time.Time
	Hasta  *time.Time
	Page   int
	Limit  int
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id int64) (*model.Venta, error)
	LockTx(tx *gorm.DB, id int64) (*model.Venta, error)
	UpdateEstadoTx(tx *gorm.DB, id int64, estado string, observaciones *string) error
	NextRemitoNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return Classify(tx.Create(v).Error)
}

func (r *ventaRepo) FindByID(ctx context.Context, id int64) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) LockTx(tx *gorm.DB, id int64) (*model.Venta, error) {
	var v model.Venta
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("venta_id = ?", v.ID).Order("id ASC").Find(&v.Detalles).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id int64, estado string, observaciones *string) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":        estado,
		"observaciones": observaciones,
		"updated_at":    time.Now(),
	}).Error
}

func (r *ventaRepo) NextRemitoNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('remitos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
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
	var ventas []model.Venta
	err := q.Preload("Detalles.Producto").
		Order("fecha DESC, id DESC").Offset(offset).Limit(limit).Find(&ventas).Error
	return ventas, total, err
}
