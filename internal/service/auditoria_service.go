package service

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// Audit modules.
const (
	ModuloAuth        = "AUTH"
	ModuloUsuarios    = "USUARIOS"
	ModuloCompras     = "COMPRAS"
	ModuloProveedores = "PROVEEDORES"
	ModuloStock       = "STOCK"
	ModuloVentas      = "VENTAS"
	ModuloReportes    = "REPORTES"
)

// AuditQueue is the async sink for audit rows (the Redis job dispatcher).
type AuditQueue interface {
	EnqueueAuditoria(ctx context.Context, entry model.Auditoria) error
}

type AuditoriaService interface {
	// Registrar never fails: enqueue errors are logged and the entry is dropped.
	// Callers invoke it only after their transaction committed.
	Registrar(ctx context.Context, usuarioID *int64, modulo, evento, descripcion string)
	Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.ListResponse[dto.AuditoriaResponse], error)
}

type auditoriaService struct {
	repo  repository.AuditoriaRepository
	queue AuditQueue
}

func NewAuditoriaService(repo repository.AuditoriaRepository, queue AuditQueue) AuditoriaService {
	return &auditoriaService{repo: repo, queue: queue}
}

func (s *auditoriaService) Registrar(ctx context.Context, usuarioID *int64, modulo, evento, descripcion string) {
	entry := model.Auditoria{
		UsuarioID:   usuarioID,
		Evento:      evento,
		Modulo:      modulo,
		Descripcion: descripcion,
		FechaHora:   time.Now(),
	}
	if s.queue == nil {
		log.Warn().Str("modulo", modulo).Str("evento", evento).Msg("auditoria: no queue configured, entry dropped")
		return
	}
	// the request may already be finished; the enqueue must not inherit its cancellation
	enqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.queue.EnqueueAuditoria(enqCtx, entry); err != nil {
		log.Error().Err(err).
			Str("modulo", modulo).
			Str("evento", evento).
			Msg("auditoria: enqueue failed, entry dropped")
	}
}

func (s *auditoriaService) Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.ListResponse[dto.AuditoriaResponse], error) {
	desde, hasta, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	page, limit := dto.Pagination(filter.Page, filter.Limit, 200)
	rows, total, err := s.repo.List(ctx, repository.AuditoriaFilter{
		Modulo:    filter.Modulo,
		Evento:    filter.Evento,
		UsuarioID: filter.UsuarioID,
		Desde:     desde,
		Hasta:     hasta,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, internal("error al listar auditoría", err)
	}

	resp := &dto.ListResponse[dto.AuditoriaResponse]{Data: make([]dto.AuditoriaResponse, 0, len(rows)), Total: total, Page: page, Limit: limit}
	for _, a := range rows {
		item := dto.AuditoriaResponse{
			ID:          a.ID,
			UsuarioID:   a.UsuarioID,
			Evento:      a.Evento,
			Modulo:      a.Modulo,
			Descripcion: a.Descripcion,
			FechaHora:   fmtFechaHora(a.FechaHora),
		}
		if a.Usuario != nil {
			nombre := a.Usuario.Nombre
			item.Usuario = &nombre
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}
