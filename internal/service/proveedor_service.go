package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
)

type ProveedorService interface {
	Crear(ctx context.Context, actor *Principal, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id int64) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, filter dto.ProveedorFilter) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	// Eliminar hard-deletes the provider. soft only flips activo.
	Eliminar(ctx context.Context, actor *Principal, id int64, soft bool) error
}

type proveedorService struct {
	repo  repository.ProveedorRepository
	audit AuditoriaService
}

func NewProveedorService(repo repository.ProveedorRepository, audit AuditoriaService) ProveedorService {
	return &proveedorService{repo: repo, audit: audit}
}

// NormalizarCUIT strips separators and requires exactly 11 digits.
func NormalizarCUIT(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.':
		default:
			return "", validation("CUIT inválido: %s", raw)
		}
	}
	cuit := b.String()
	if len(cuit) != 11 {
		return "", validation("el CUIT debe tener 11 dígitos")
	}
	return cuit, nil
}

func toProveedorResponse(p *model.Proveedor) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:        p.ID,
		CUIT:      p.CUIT,
		Nombre:    p.Nombre,
		Contacto:  p.Contacto,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		Activo:    p.Activo,
	}
}

func (s *proveedorService) Crear(ctx context.Context, actor *Principal, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	cuit, err := NormalizarCUIT(req.CUIT)
	if err != nil {
		return nil, err
	}
	p := &model.Proveedor{
		CUIT:      cuit,
		Nombre:    strings.TrimSpace(req.Nombre),
		Contacto:  req.Contacto,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Ya existe un proveedor con ese CUIT", err)
		}
		return nil, internal("error al crear proveedor", err)
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloProveedores, "ALTA",
		fmt.Sprintf("Proveedor %d %s (CUIT %s)", p.ID, p.Nombre, p.CUIT))
	resp := toProveedorResponse(p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id int64) (*dto.ProveedorResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProveedorResponse(p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context, filter dto.ProveedorFilter) ([]dto.ProveedorResponse, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal("error al listar proveedores", err)
	}
	resp := make([]dto.ProveedorResponse, len(list))
	for i := range list {
		resp[i] = toProveedorResponse(&list[i])
	}
	return resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	cuit, err := NormalizarCUIT(req.CUIT)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.CUIT = cuit
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Contacto = req.Contacto
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Ya existe un proveedor con ese CUIT", err)
		}
		return nil, internal("error al actualizar proveedor", err)
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloProveedores, "MODIFICACION",
		fmt.Sprintf("Proveedor %d %s actualizado", p.ID, p.Nombre))
	resp := toProveedorResponse(p)
	return &resp, nil
}

func (s *proveedorService) Eliminar(ctx context.Context, actor *Principal, id int64, soft bool) error {
	if soft {
		if _, err := s.find(ctx, id); err != nil {
			return err
		}
		if err := s.repo.SetActivo(ctx, id, false); err != nil {
			return internal("error al desactivar proveedor", err)
		}
		s.audit.Registrar(ctx, actor.ActorID(), ModuloProveedores, "BAJA", fmt.Sprintf("Proveedor %d desactivado", id))
		return nil
	}

	err := s.repo.Delete(ctx, id)
	switch {
	case repository.IsNotFound(err):
		return notFound("Proveedor no encontrado")
	case errors.Is(err, repository.ErrReferenced):
		return inUse("No se puede eliminar: el proveedor tiene compras asociadas", err)
	case err != nil:
		return internal("error al eliminar proveedor", err)
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloProveedores, "ELIMINACION", fmt.Sprintf("Proveedor %d eliminado", id))
	return nil
}

func (s *proveedorService) find(ctx context.Context, id int64) (*model.Proveedor, error) {
	p, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Proveedor no encontrado")
	}
	if err != nil {
		return nil, internal("error al leer proveedor", err)
	}
	return p, nil
}
