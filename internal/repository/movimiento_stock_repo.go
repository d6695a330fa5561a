package repository

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovimientoStockFilter defines filters for listing stock movements.
type MovimientoStockFilter struct {
	ProductoID int64
	Tipo       string
	Desde      *time.Time
	Hasta      *time.Time // exclusive
	Page       int
	Limit      int
}

// StockRepository pairs the stock table with its movement ledger. Every
// AdjustTx must be followed by a CreateMovimientoTx in the same transaction.
type StockRepository interface {
	// TipoMovimientoID resolves ENTRADA / SALIDA; ErrNotFound when the row is missing.
	TipoMovimientoID(ctx context.Context, nombre string) (int64, error)
	CreateTx(tx *gorm.DB, s *model.Stock) error
	// LockTx reads the stock row with SELECT ... FOR UPDATE.
	LockTx(tx *gorm.DB, productoID int64) (*model.Stock, error)
	AdjustTx(tx *gorm.DB, productoID int64, delta decimal.Decimal, at time.Time) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error

	ListMovimientos(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
	// Balance returns Σ ENTRADA and Σ SALIDA for one product.
	Balance(ctx context.Context, productoID int64) (entradas, salidas decimal.Decimal, err error)
	Find(ctx context.Context, productoID int64) (*model.Stock, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) TipoMovimientoID(ctx context.Context, nombre string) (int64, error) {
	var t model.TipoMovimiento
	if err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&t).Error; err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return Classify(tx.Create(s).Error)
}

func (r *stockRepo) LockTx(tx *gorm.DB, productoID int64) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("producto_id = ?", productoID).First(&s).Error
	return &s, err
}

func (r *stockRepo) AdjustTx(tx *gorm.DB, productoID int64, delta decimal.Decimal, at time.Time) error {
	res := tx.Model(&model.Stock{}).Where("producto_id = ?", productoID).Updates(map[string]interface{}{
		"cantidad":               gorm.Expr("cantidad + ?", delta),
		"fecha_ultima_actualiza": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// products created before their stock row existed
		return r.CreateTx(tx, &model.Stock{ProductoID: productoID, Cantidad: delta, FechaUltimaActualiza: at})
	}
	return nil
}

func (r *stockRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return Classify(tx.Omit("Producto", "TipoMovimiento").Create(m).Error)
}

func (r *stockRepo) ListMovimientos(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.ProductoID > 0 {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo_movimiento_id = (SELECT id FROM tipos_movimiento WHERE nombre = ?)", filter.Tipo)
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
	var movimientos []model.MovimientoStock
	err := q.Preload("Producto").Preload("TipoMovimiento").
		Order("fecha DESC, id DESC").Offset(offset).Limit(limit).Find(&movimientos).Error
	return movimientos, total, err
}

func (r *stockRepo) Balance(ctx context.Context, productoID int64) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Entradas decimal.Decimal
		Salidas  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(CASE WHEN t.nombre = 'ENTRADA' THEN m.cantidad END), 0) AS entradas,
  COALESCE(SUM(CASE WHEN t.nombre = 'SALIDA'  THEN m.cantidad END), 0) AS salidas
FROM movimientos_stock m
JOIN tipos_movimiento t ON t.id = m.tipo_movimiento_id
WHERE m.producto_id = ?`, productoID).Scan(&row).Error
	return row.Entradas, row.Salidas, err
}

func (r *stockRepo) Find(ctx context.Context, productoID int64) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("producto_id = ?", productoID).First(&s).Error
	return &s, err
}
