package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditQueue struct {
	entries []model.Auditoria
	err     error
	ctxErr  error
}

func (q *stubAuditQueue) EnqueueAuditoria(ctx context.Context, e model.Auditoria) error {
	q.ctxErr = ctx.Err()
	if q.err != nil {
		return q.err
	}
	q.entries = append(q.entries, e)
	return nil
}

type stubAuditoriaRepo struct {
	rows       []model.Auditoria
	lastFilter repository.AuditoriaFilter
}

func (r *stubAuditoriaRepo) Create(_ context.Context, a *model.Auditoria) error {
	r.rows = append(r.rows, *a)
	return nil
}

func (r *stubAuditoriaRepo) List(_ context.Context, f repository.AuditoriaFilter) ([]model.Auditoria, int64, error) {
	r.lastFilter = f
	return r.rows, int64(len(r.rows)), nil
}

func TestRegistrar_EncolaAunConContextoCancelado(t *testing.T) {
	q := &stubAuditQueue{}
	svc := service.NewAuditoriaService(&stubAuditoriaRepo{}, q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uid := int64(7)
	svc.Registrar(ctx, &uid, service.ModuloVentas, "REGISTRAR", "Venta #1")

	require.Len(t, q.entries, 1)
	assert.NoError(t, q.ctxErr)
	assert.Equal(t, "VENTAS", q.entries[0].Modulo)
	assert.Equal(t, &uid, q.entries[0].UsuarioID)
	assert.WithinDuration(t, time.Now(), q.entries[0].FechaHora, time.Second)
}

func TestRegistrar_FallaDeColaNoPropaga(t *testing.T) {
	q := &stubAuditQueue{err: errors.New("redis down")}
	svc := service.NewAuditoriaService(&stubAuditoriaRepo{}, q)
	assert.NotPanics(t, func() {
		svc.Registrar(context.Background(), nil, service.ModuloAuth, "LOGIN", "x")
	})

	nilQueue := service.NewAuditoriaService(&stubAuditoriaRepo{}, nil)
	assert.NotPanics(t, func() {
		nilQueue.Registrar(context.Background(), nil, service.ModuloAuth, "LOGIN", "x")
	})
}

func TestListarAuditoria(t *testing.T) {
	repo := &stubAuditoriaRepo{rows: []model.Auditoria{
		{ID: 1, Evento: "LOGIN", Modulo: "AUTH", FechaHora: time.Now(), Usuario: &model.Usuario{Nombre: "Ana"}},
	}}
	svc := service.NewAuditoriaService(repo, nil)

	resp, err := svc.Listar(context.Background(), dto.AuditoriaFilter{Modulo: "AUTH", Desde: "2025-01-01", Hasta: "2025-01-31"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ana", *resp.Data[0].Usuario)
	assert.Equal(t, "2025-02-01", repo.lastFilter.Hasta.Format("2006-01-02"))
	assert.Equal(t, "AUTH", repo.lastFilter.Modulo)

	_, err = svc.Listar(context.Background(), dto.AuditoriaFilter{Desde: "01/01/2025"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}
