package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReportePDF(t *testing.T) {
	r := &model.Reporte{
		ID:            42,
		Tipo:          model.ReporteVentas,
		FechaDesde:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		FechaHasta:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		CantidadTotal: decimal.RequireFromString("15.5"),
		MontoTotal:    decimal.RequireFromString("3100.25"),
		CreatedAt:     time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	lineas := []ReporteLinea{
		{Fecha: r.FechaDesde, Producto: "Cartón corrugado", Cantidad: decimal.NewFromInt(10), Monto: decimal.NewFromInt(2000)},
		{Fecha: r.FechaHasta, Producto: "Caja Chica 10x10x10", Cantidad: decimal.RequireFromString("5.5"), Monto: decimal.RequireFromString("1100.25")},
	}

	out, err := GenerateReportePDF(r, "", lineas)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "DN-VENTAS-000042", ReferenciaReporte(r))
}

func TestGenerateReportePDF_Empty(t *testing.T) {
	r := &model.Reporte{ID: 1, Tipo: model.ReporteCompras}
	out, err := GenerateReportePDF(r, "Papel", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
