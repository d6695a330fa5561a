package service_test

import (
	"context"
	"testing"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizarCUIT(t *testing.T) {
	cuit, err := service.NormalizarCUIT("20-12345678-9")
	require.NoError(t, err)
	assert.Equal(t, "20123456789", cuit)

	for _, bad := range []string{"", "20-1234-9", "20-12345678-9X", "201234567890"} {
		_, err := service.NormalizarCUIT(bad)
		assert.Equal(t, service.KindValidation, service.KindOf(err), bad)
	}
}

func TestCrearProveedor_CUITDuplicado(t *testing.T) {
	repo := newStubProveedorRepo()
	svc := service.NewProveedorService(repo, &stubAudit{})

	_, err := svc.Crear(context.Background(), admin(), dto.ProveedorRequest{CUIT: "30-71234567-1", Nombre: "Papelera Norte"})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), admin(), dto.ProveedorRequest{CUIT: "30712345671", Nombre: "Otra"})
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.Contains(t, err.Error(), "Ya existe un proveedor con ese CUIT")
}

func TestEliminarProveedor(t *testing.T) {
	repo := newStubProveedorRepo()
	audit := &stubAudit{}
	svc := service.NewProveedorService(repo, audit)
	libre, err := svc.Crear(context.Background(), admin(), dto.ProveedorRequest{CUIT: "20111111112", Nombre: "Libre"})
	require.NoError(t, err)
	usado, err := svc.Crear(context.Background(), admin(), dto.ProveedorRequest{CUIT: "20222222223", Nombre: "Con compras"})
	require.NoError(t, err)
	repo.referenced[usado.ID] = true

	require.NoError(t, svc.Eliminar(context.Background(), admin(), libre.ID, false))
	assert.NotContains(t, repo.proveedores, libre.ID)

	err = svc.Eliminar(context.Background(), admin(), usado.ID, false)
	assert.Equal(t, service.KindInUse, service.KindOf(err))
	assert.Contains(t, err.Error(), "tiene compras asociadas")

	require.NoError(t, svc.Eliminar(context.Background(), admin(), usado.ID, true))
	assert.False(t, repo.proveedores[usado.ID].Activo)

	assert.Equal(t, service.KindNotFound, service.KindOf(svc.Eliminar(context.Background(), admin(), 999, false)))
	assert.Equal(t, 1, audit.count("ELIMINACION"))
	assert.Equal(t, 1, audit.count("BAJA"))
}
