package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rango is a half-open [Desde, Hasta) interval.
type Rango struct {
	Desde time.Time
	Hasta time.Time
}

// Agregado is one bucket of a grouped aggregate.
type Agregado struct {
	Clave    string
	Cantidad decimal.Decimal
	Monto    decimal.Decimal
}

// LineaReporte is one detail row of a report.
type LineaReporte struct {
	Fecha    time.Time
	Producto string
	Cantidad decimal.Decimal
	Monto    decimal.Decimal
}

// ReporteRepository persists report definitions and runs the aggregate queries
// over non-voided sales and purchases.
type ReporteRepository interface {
	Create(ctx context.Context, r *model.Reporte) error
	FindByID(ctx context.Context, id int64) (*model.Reporte, error)
	List(ctx context.Context, tipo string, page, limit int) ([]model.Reporte, int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	Totales(ctx context.Context, tipo string, productoID *int64, rango Rango) (cantidad, monto decimal.Decimal, err error)
	Lineas(ctx context.Context, tipo string, productoID *int64, rango Rango) ([]LineaReporte, error)
	ProductosConMovimiento(ctx context.Context, tipo string) ([]model.Producto, error)

	ContarVentas(ctx context.Context, rango Rango) (int64, error)
	PorDia(ctx context.Context, tipo string, rango Rango) ([]Agregado, error)
	PorCategoria(ctx context.Context, rango Rango) ([]Agregado, error)
	PorMaterial(ctx context.Context, rango Rango) ([]Agregado, error)
	TopProductos(ctx context.Context, rango Rango, limit int) ([]Agregado, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

// source returns the FROM/WHERE fragment selecting the live detail lines of
// sales or purchases as (fecha, producto_id, cantidad, subtotal).
func source(tipo string) string {
	if tipo == model.ReporteCompras {
		return `(SELECT o.fecha, d.producto_id, d.cantidad, d.subtotal
  FROM ordenes_compra o
  JOIN detalles_compra d ON d.orden_compra_id = o.id
  JOIN estados_compra e ON e.id = o.estado_id
  WHERE e.nombre <> 'ANULADO') src`
	}
	return `(SELECT v.fecha, d.producto_id, d.cantidad, d.subtotal
  FROM ventas v
  JOIN detalles_venta d ON d.venta_id = v.id
  WHERE v.estado <> 'ANULADA') src`
}

func (r *reporteRepo) Create(ctx context.Context, rep *model.Reporte) error {
	return Classify(r.db.WithContext(ctx).Omit("Producto").Create(rep).Error)
}

func (r *reporteRepo) FindByID(ctx context.Context, id int64) (*model.Reporte, error) {
	var rep model.Reporte
	err := r.db.WithContext(ctx).Preload("Producto").First(&rep, id).Error
	return &rep, err
}

func (r *reporteRepo) List(ctx context.Context, tipo string, page, limit int) ([]model.Reporte, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Reporte{})
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, lim := paginate(page, limit)
	var reps []model.Reporte
	err := q.Preload("Producto").Order("created_at DESC, id DESC").Offset(offset).Limit(lim).Find(&reps).Error
	return reps, total, err
}

func (r *reporteRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Reporte{})
	return res.RowsAffected, res.Error
}

func (r *reporteRepo) Totales(ctx context.Context, tipo string, productoID *int64, rango Rango) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Cantidad decimal.Decimal
		Monto    decimal.Decimal
	}
	sql := fmt.Sprintf(`SELECT COALESCE(SUM(src.cantidad), 0) AS cantidad, COALESCE(SUM(src.subtotal), 0) AS monto
FROM %s
WHERE src.fecha >= ? AND src.fecha < ? AND (CAST(? AS BIGINT) IS NULL OR src.producto_id = ?)`, source(tipo))
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta, productoID, productoID).Scan(&row).Error
	return row.Cantidad, row.Monto, err
}

func (r *reporteRepo) Lineas(ctx context.Context, tipo string, productoID *int64, rango Rango) ([]LineaReporte, error) {
	sql := fmt.Sprintf(`SELECT date_trunc('day', src.fecha) AS fecha, p.nombre AS producto,
       SUM(src.cantidad) AS cantidad, SUM(src.subtotal) AS monto
FROM %s
JOIN productos p ON p.id = src.producto_id
WHERE src.fecha >= ? AND src.fecha < ? AND (CAST(? AS BIGINT) IS NULL OR src.producto_id = ?)
GROUP BY 1, 2
ORDER BY 1, 2`, source(tipo))
	var rows []LineaReporte
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta, productoID, productoID).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) ProductosConMovimiento(ctx context.Context, tipo string) ([]model.Producto, error) {
	sql := fmt.Sprintf(`SELECT DISTINCT src.producto_id FROM %s`, source(tipo))
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("id IN (?)", gorm.Expr(sql)).
		Preload("Categoria").
		Order("nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *reporteRepo) ContarVentas(ctx context.Context, rango Rango) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("estado <> ? AND fecha >= ? AND fecha < ?", model.VentaAnulada, rango.Desde, rango.Hasta).
		Count(&n).Error
	return n, err
}

func (r *reporteRepo) PorDia(ctx context.Context, tipo string, rango Rango) ([]Agregado, error) {
	sql := fmt.Sprintf(`SELECT to_char(date_trunc('day', src.fecha), 'YYYY-MM-DD') AS clave,
       SUM(src.cantidad) AS cantidad, SUM(src.subtotal) AS monto
FROM %s
WHERE src.fecha >= ? AND src.fecha < ?
GROUP BY 1
ORDER BY 1`, source(tipo))
	var rows []Agregado
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) PorCategoria(ctx context.Context, rango Rango) ([]Agregado, error) {
	sql := fmt.Sprintf(`SELECT c.nombre AS clave, SUM(src.cantidad) AS cantidad, SUM(src.subtotal) AS monto
FROM %s
JOIN productos p ON p.id = src.producto_id
JOIN categorias c ON c.id = p.categoria_id
WHERE src.fecha >= ? AND src.fecha < ?
GROUP BY c.id, c.nombre
ORDER BY monto DESC`, source(model.ReporteVentas))
	var rows []Agregado
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta).Scan(&rows).Error
	return rows, err
}

// PorMaterial aggregates purchased material by weight, the main input of the plant.
func (r *reporteRepo) PorMaterial(ctx context.Context, rango Rango) ([]Agregado, error) {
	sql := fmt.Sprintf(`SELECT p.nombre AS clave, SUM(src.cantidad) AS cantidad, SUM(src.subtotal) AS monto
FROM %s
JOIN productos p ON p.id = src.producto_id
WHERE src.fecha >= ? AND src.fecha < ? AND p.tipo_id = ?
GROUP BY p.nombre
ORDER BY cantidad DESC`, source(model.ReporteCompras))
	var rows []Agregado
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta, model.TipoMaterial).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) TopProductos(ctx context.Context, rango Rango, limit int) ([]Agregado, error) {
	sql := fmt.Sprintf(`SELECT p.nombre AS clave, SUM(src.cantidad) AS cantidad, SUM(src.subtotal) AS monto
FROM %s
JOIN productos p ON p.id = src.producto_id
WHERE src.fecha >= ? AND src.fecha < ?
GROUP BY p.nombre
ORDER BY monto DESC
LIMIT ?`, source(model.ReporteVentas))
	var rows []Agregado
	err := r.db.WithContext(ctx).Raw(sql, rango.Desde, rango.Hasta, limit).Scan(&rows).Error
	return rows, err
}
