package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

type UsuarioService interface {
	Listar(ctx context.Context, filter dto.UsuarioFilter) (*dto.ListResponse[dto.UsuarioResponse], error)
	Crear(ctx context.Context, actor *Principal, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	Desactivar(ctx context.Context, actor *Principal, id int64) error
	ListarRoles(ctx context.Context) ([]dto.RolResponse, error)

	Perfil(ctx context.Context, p *Principal) (*dto.UsuarioResponse, error)
	ActualizarPerfil(ctx context.Context, p *Principal, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error)
}

type usuarioService struct {
	repo     repository.UsuarioRepository
	cache    repository.SessionCache
	identity IdentityProvider
	audit    AuditoriaService
	baseURL  string
}

func NewUsuarioService(
	repo repository.UsuarioRepository,
	cache repository.SessionCache,
	identity IdentityProvider,
	audit AuditoriaService,
	appBaseURL string,
) UsuarioService {
	return &usuarioService{repo: repo, cache: cache, identity: identity, audit: audit, baseURL: appBaseURL}
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:     u.ID,
		DNI:    u.DNI,
		Nombre: u.Nombre,
		Mail:   u.Mail,
		Estado: u.Estado,
		Rol:    u.RolNombre(),
	}
}

func (s *usuarioService) Listar(ctx context.Context, filter dto.UsuarioFilter) (*dto.ListResponse[dto.UsuarioResponse], error) {
	filter.Page, filter.Limit = dto.Pagination(filter.Page, filter.Limit, 200)
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal("error al listar usuarios", err)
	}
	resp := &dto.ListResponse[dto.UsuarioResponse]{Data: make([]dto.UsuarioResponse, len(users)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range users {
		resp.Data[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

// Crear invites the mail at the identity provider and stores the local row
// already linked to the returned subject.
func (s *usuarioService) Crear(ctx context.Context, actor *Principal, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rol, err := s.repo.FindRolByNombre(ctx, req.Rol)
	if repository.IsNotFound(err) {
		return nil, validation("rol inexistente: %s", req.Rol)
	}
	if err != nil {
		return nil, internal("error al leer rol", err)
	}

	mail := strings.ToLower(strings.TrimSpace(req.Mail))
	invited, err := s.identity.InviteUser(ctx, mail, strings.TrimRight(s.baseURL, "/")+"/login")
	if err != nil {
		return nil, internal("no se pudo invitar al usuario", err)
	}

	u := &model.Usuario{
		DNI:    req.DNI,
		Nombre: strings.TrimSpace(req.Nombre),
		Mail:   mail,
		Estado: model.UsuarioActivo,
		RolID:  rol.ID,
		AuthID: &invited.ID,
		Rol:    rol,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Ya existe un usuario con ese mail", err)
		}
		return nil, internal("error al crear usuario", err)
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloUsuarios, "ALTA",
		fmt.Sprintf("Alta de usuario %s con rol %s", u.Mail, rol.Nombre))
	resp := toUsuarioResponse(u)
	return &resp, nil
}

func (s *usuarioService) Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		u.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.DNI != nil {
		u.DNI = req.DNI
	}
	if req.Estado != nil {
		if actor != nil && actor.UsuarioID == id && *req.Estado != model.UsuarioActivo {
			return nil, validation("no puede desactivar su propia cuenta")
		}
		u.Estado = *req.Estado
	}
	if req.Rol != nil {
		rol, err := s.repo.FindRolByNombre(ctx, *req.Rol)
		if repository.IsNotFound(err) {
			return nil, validation("rol inexistente: %s", *req.Rol)
		}
		if err != nil {
			return nil, internal("error al leer rol", err)
		}
		u.RolID = rol.ID
		u.Rol = rol
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, internal("error al actualizar usuario", err)
	}
	s.invalidate(ctx, u)
	s.audit.Registrar(ctx, actor.ActorID(), ModuloUsuarios, "MODIFICACION",
		fmt.Sprintf("Usuario %d (%s) actualizado: rol %s, estado %s", u.ID, u.Mail, u.RolNombre(), u.Estado))
	resp := toUsuarioResponse(u)
	return &resp, nil
}

func (s *usuarioService) Desactivar(ctx context.Context, actor *Principal, id int64) error {
	if actor != nil && actor.UsuarioID == id {
		return validation("no puede desactivar su propia cuenta")
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	u.Estado = model.UsuarioInactivo
	if err := s.repo.Update(ctx, u); err != nil {
		return internal("error al desactivar usuario", err)
	}
	s.invalidate(ctx, u)
	s.audit.Registrar(ctx, actor.ActorID(), ModuloUsuarios, "BAJA", fmt.Sprintf("Usuario %d (%s) desactivado", u.ID, u.Mail))
	return nil
}

func (s *usuarioService) ListarRoles(ctx context.Context) ([]dto.RolResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, internal("error al listar roles", err)
	}
	resp := make([]dto.RolResponse, len(roles))
	for i, r := range roles {
		resp[i] = dto.RolResponse{ID: r.ID, Nombre: r.Nombre, Descripcion: r.Descripcion}
	}
	return resp, nil
}

func (s *usuarioService) Perfil(ctx context.Context, p *Principal) (*dto.UsuarioResponse, error) {
	u, err := s.find(ctx, p.UsuarioID)
	if err != nil {
		return nil, err
	}
	resp := toUsuarioResponse(u)
	return &resp, nil
}

func (s *usuarioService) ActualizarPerfil(ctx context.Context, p *Principal, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error) {
	u, err := s.find(ctx, p.UsuarioID)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		u.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.DNI != nil {
		u.DNI = req.DNI
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, internal("error al actualizar el perfil", err)
	}
	s.invalidate(ctx, u)
	s.audit.Registrar(ctx, p.ActorID(), ModuloUsuarios, "PERFIL", "Perfil actualizado por "+u.Mail)
	resp := toUsuarioResponse(u)
	return &resp, nil
}

func (s *usuarioService) find(ctx context.Context, id int64) (*model.Usuario, error) {
	u, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Usuario no encontrado")
	}
	if err != nil {
		return nil, internal("error al leer usuario", err)
	}
	return u, nil
}

func (s *usuarioService) invalidate(ctx context.Context, u *model.Usuario) {
	if s.cache == nil || u.AuthID == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, *u.AuthID); err != nil {
		log.Warn().Err(err).Int64("usuario_id", u.ID).Msg("usuarios: cache invalidation failed")
	}
}
