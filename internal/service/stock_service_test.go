package service_test

import (
	"context"
	"testing"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPesaje_SumaDuplicadosEnUnaTransaccion(t *testing.T) {
	stock := newStubStockRepo()
	productos := newStubProductoRepo(stock)
	audit := &stubAudit{}
	svc := service.NewStockService(stock, productos, audit)
	carton := productos.add("Cartón", model.TipoMaterial, "100", "1")
	papel := productos.add("Papel", model.TipoMaterial, "90", "0")

	resp, err := svc.Pesaje(context.Background(), admin(), dto.PesajeRequest{
		Items: []dto.PesajeItem{
			{ProductoID: carton.ID, Cantidad: dec("10.5")},
			{ProductoID: papel.ID, Cantidad: dec("3")},
			{ProductoID: carton.ID, Cantidad: dec("2")},
		},
		Observaciones: "Balanza 2",
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.True(t, dec("13.5").Equal(stock.stock[carton.ID]))
	assert.True(t, dec("3").Equal(stock.stock[papel.ID]))

	entradas := stock.movimientosDe(carton.ID, tipoEntradaID)
	require.Len(t, entradas, 1)
	assert.True(t, dec("12.5").Equal(entradas[0].Cantidad))
	assert.Equal(t, "Pesaje: Balanza 2", entradas[0].Observaciones)
	assert.Equal(t, model.RefPesaje, *entradas[0].ReferenciaTipo)
	assert.Equal(t, 1, audit.count("PESAJE"))
}

func TestPesaje_ItemInvalidoNoEscribeNada(t *testing.T) {
	stock := newStubStockRepo()
	productos := newStubProductoRepo(stock)
	svc := service.NewStockService(stock, productos, &stubAudit{})
	carton := productos.add("Cartón", model.TipoMaterial, "100", "0")
	inactivo := productos.add("Vidrio", model.TipoMaterial, "10", "0")
	productos.productos[inactivo.ID].Activo = false

	cases := []struct {
		name  string
		items []dto.PesajeItem
	}{
		{"cantidad cero", []dto.PesajeItem{{ProductoID: carton.ID, Cantidad: dec("5")}, {ProductoID: carton.ID, Cantidad: dec("0")}}},
		{"producto inexistente", []dto.PesajeItem{{ProductoID: carton.ID, Cantidad: dec("5")}, {ProductoID: 999, Cantidad: dec("1")}}},
		{"producto inactivo", []dto.PesajeItem{{ProductoID: carton.ID, Cantidad: dec("5")}, {ProductoID: inactivo.ID, Cantidad: dec("1")}}},
		{"sin items", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Pesaje(context.Background(), admin(), dto.PesajeRequest{Items: tc.items})
			require.Error(t, err)
			assert.Equal(t, service.KindValidation, service.KindOf(err))
			assert.True(t, stock.stock[carton.ID].IsZero())
			assert.Empty(t, stock.movimientos)
		})
	}
}

func TestPesaje_TiposDeMovimientoFaltantes(t *testing.T) {
	stock := newStubStockRepo()
	stock.sinTipos = true
	productos := newStubProductoRepo(stock)
	svc := service.NewStockService(stock, productos, &stubAudit{})
	carton := productos.add("Cartón", model.TipoMaterial, "100", "0")

	_, err := svc.Pesaje(context.Background(), admin(), dto.PesajeRequest{
		Items: []dto.PesajeItem{{ProductoID: carton.ID, Cantidad: dec("1")}},
	})
	assert.Equal(t, service.KindInternal, service.KindOf(err))
	assert.Empty(t, stock.movimientos)
}

func TestConciliar(t *testing.T) {
	stock := newStubStockRepo()
	productos := newStubProductoRepo(stock)
	svc := service.NewStockService(stock, productos, &stubAudit{})
	carton := productos.add("Cartón", model.TipoMaterial, "100", "0")

	_, err := svc.Pesaje(context.Background(), admin(), dto.PesajeRequest{
		Items: []dto.PesajeItem{{ProductoID: carton.ID, Cantidad: dec("8")}},
	})
	require.NoError(t, err)

	c, err := svc.Conciliar(context.Background(), carton.ID)
	require.NoError(t, err)
	assert.True(t, c.Conciliado)

	stock.stock[carton.ID] = dec("9")
	c, err = svc.Conciliar(context.Background(), carton.ID)
	require.NoError(t, err)
	assert.False(t, c.Conciliado)
	assert.True(t, dec("1").Equal(c.Diferencia))
}

func TestMovimientos_TipoInvalido(t *testing.T) {
	stock := newStubStockRepo()
	svc := service.NewStockService(stock, newStubProductoRepo(stock), &stubAudit{})
	_, err := svc.Movimientos(context.Background(), dto.MovimientoFilter{Tipo: "AJUSTE"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}
