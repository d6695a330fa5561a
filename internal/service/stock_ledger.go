package service

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledger applies stock changes. Each call updates the stock row and appends
// the matching movement in the same transaction, so stock = Σ movements holds.
type ledger struct {
	repo    repository.StockRepository
	entrada int64
	salida  int64
}

// movimiento describes one ledger write; cantidad is always positive.
type movimiento struct {
	productoID int64
	cantidad   decimal.Decimal
	obs        string
	refTipo    string
	refID      *int64
	usuarioID  *int64
}

// newLedger resolves the ENTRADA/SALIDA ids. Both rows are required configuration:
// a missing one fails the operation instead of being defaulted.
func newLedger(ctx context.Context, repo repository.StockRepository) (*ledger, error) {
	entrada, err := repo.TipoMovimientoID(ctx, model.MovimientoEntrada)
	if err != nil {
		return nil, internal("configuración faltante: tipo de movimiento ENTRADA", err)
	}
	salida, err := repo.TipoMovimientoID(ctx, model.MovimientoSalida)
	if err != nil {
		return nil, internal("configuración faltante: tipo de movimiento SALIDA", err)
	}
	return &ledger{repo: repo, entrada: entrada, salida: salida}, nil
}

func (l *ledger) entradaTx(tx *gorm.DB, m movimiento, at time.Time) error {
	return l.apply(tx, l.entrada, m.cantidad, m, at)
}

func (l *ledger) salidaTx(tx *gorm.DB, m movimiento, at time.Time) error {
	return l.apply(tx, l.salida, m.cantidad.Neg(), m, at)
}

func (l *ledger) apply(tx *gorm.DB, tipoID int64, delta decimal.Decimal, m movimiento, at time.Time) error {
	if err := l.repo.AdjustTx(tx, m.productoID, delta, at); err != nil {
		return err
	}
	var refTipo *string
	if m.refTipo != "" {
		rt := m.refTipo
		refTipo = &rt
	}
	return l.repo.CreateMovimientoTx(tx, &model.MovimientoStock{
		ProductoID:       m.productoID,
		TipoMovimientoID: tipoID,
		Cantidad:         m.cantidad,
		Fecha:            at,
		Observaciones:    m.obs,
		ReferenciaTipo:   refTipo,
		ReferenciaID:     m.refID,
		UsuarioID:        m.usuarioID,
	})
}
