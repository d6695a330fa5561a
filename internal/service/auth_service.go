package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Principal is the authenticated caller attached to every protected request.
type Principal struct {
	UsuarioID int64
	Nombre    string
	Mail      string
	Rol       string
	Subject   uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// ActorID is the usuario id recorded in audit rows and movements.
func (p *Principal) ActorID() *int64 {
	if p == nil || p.UsuarioID == 0 {
		return nil
	}
	id := p.UsuarioID
	return &id
}

// IdentityProvider is the external auth server (Supabase GoTrue in production).
type IdentityProvider interface {
	PasswordLogin(ctx context.Context, email, password string) (*infra.IdentitySession, error)
	Logout(ctx context.Context, accessToken string) error
	RecoverPassword(ctx context.Context, email, redirectTo string) error
	InviteUser(ctx context.Context, email, redirectTo string) (*infra.IdentityUser, error)
}

type AuthService interface {
	// Authenticate resolves a bearer token to an active local usuario,
	// provisioning the row on first sight of a new provider account.
	Authenticate(ctx context.Context, token string) (*Principal, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, p *Principal) error
	RecuperarPassword(ctx context.Context, req dto.PasswordResetRequest) error
	Me(ctx context.Context, p *Principal) (*dto.UsuarioResponse, error)
}

// providerClaims are the claims of a Supabase access token we rely on.
type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	repo     repository.UsuarioRepository
	cache    repository.SessionCache
	identity IdentityProvider
	audit    AuditoriaService
	secret   []byte
	baseURL  string
}

func NewAuthService(
	repo repository.UsuarioRepository,
	cache repository.SessionCache,
	identity IdentityProvider,
	audit AuditoriaService,
	jwtSecret, appBaseURL string,
) AuthService {
	return &authService{
		repo:     repo,
		cache:    cache,
		identity: identity,
		audit:    audit,
		secret:   []byte(jwtSecret),
		baseURL:  appBaseURL,
	}
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, unauthorized(apierror.CodeAuthRequired, "Autenticación requerida")
	}

	claims, err := s.verify(token)
	if err != nil {
		return nil, unauthorized(apierror.CodeTokenInvalid, "Token inválido o expirado")
	}
	sub, err := uuid.Parse(claims.Subject)
	if err != nil || claims.Email == "" {
		return nil, unauthorized(apierror.CodeTokenInvalid, "Token inválido o expirado")
	}

	if s.cache != nil {
		revoked, err := s.cache.IsRevoked(ctx, token)
		if err != nil {
			log.Warn().Err(err).Msg("auth: deny-list lookup failed")
		} else if revoked {
			return nil, unauthorized(apierror.CodeTokenInvalid, "La sesión fue cerrada")
		}
	}

	u, err := s.resolveUsuario(ctx, sub, claims.Email)
	if err != nil {
		return nil, err
	}
	if u.Estado != model.UsuarioActivo {
		return nil, unauthorized(apierror.CodeAccountDisabled, "La cuenta está deshabilitada")
	}

	p := &Principal{
		UsuarioID: u.ID,
		Nombre:    u.Nombre,
		Mail:      u.Mail,
		Rol:       u.RolNombre(),
		Subject:   sub,
		Token:     token,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *authService) verify(token string) (*providerClaims, error) {
	claims := &providerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// resolveUsuario finds the local row for a provider subject: cache first, then
// by subject or mail, linking or provisioning as needed.
func (s *authService) resolveUsuario(ctx context.Context, sub uuid.UUID, email string) (*model.Usuario, error) {
	if s.cache != nil {
		if u, err := s.cache.GetUsuario(ctx, sub); err != nil {
			log.Warn().Err(err).Msg("auth: usuario cache read failed")
		} else if u != nil {
			return u, nil
		}
	}

	mail := strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.FindForAuth(ctx, sub, mail)
	switch {
	case repository.IsNotFound(err):
		u, err = s.provision(ctx, sub, mail)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, internal("error al resolver usuario", err)
	}

	if u.AuthID == nil {
		if err := s.repo.LinkAuthID(ctx, u.ID, sub); err != nil {
			return nil, internal("error al vincular la cuenta", err)
		}
		u.AuthID = &sub
		log.Info().Int64("usuario_id", u.ID).Str("sub", sub.String()).Msg("auth: cuenta vinculada")
		s.audit.Registrar(ctx, &u.ID, ModuloAuth, "VINCULAR_CUENTA",
			fmt.Sprintf("Cuenta %s vinculada al proveedor de identidad", u.Mail))
	}

	if s.cache != nil {
		if err := s.cache.SetUsuario(ctx, sub, u); err != nil {
			log.Warn().Err(err).Msg("auth: usuario cache write failed")
		}
	}
	return u, nil
}

// provision inserts an OPERADOR row for a first-time provider account. Two
// concurrent requests with the same token race on the unique mail and auth_id
// indexes; the loser re-reads the winner's row and only the one that inserted
// logs and audits.
func (s *authService) provision(ctx context.Context, sub uuid.UUID, mail string) (*model.Usuario, error) {
	rol, err := s.repo.FindRolByNombre(ctx, model.RolOperador)
	if err != nil {
		return nil, internal("configuración faltante: rol "+model.RolOperador, err)
	}
	nombre := mail
	if i := strings.IndexByte(mail, '@'); i > 0 {
		nombre = mail[:i]
	}
	nuevo := &model.Usuario{
		Nombre: nombre,
		Mail:   mail,
		Estado: model.UsuarioActivo,
		RolID:  rol.ID,
		AuthID: &sub,
	}
	created, err := s.repo.CreateIfAbsent(ctx, nuevo)
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, internal("error al crear usuario", err)
	}

	u, err := s.repo.FindForAuth(ctx, sub, mail)
	if repository.IsNotFound(err) {
		return nil, unauthorized(apierror.CodeTokenInvalid, "Usuario no registrado")
	}
	if err != nil {
		return nil, internal("error al resolver usuario", err)
	}
	if created {
		log.Info().Int64("usuario_id", u.ID).Str("mail", mail).Msg("auth: usuario provisionado")
		s.audit.Registrar(ctx, &u.ID, ModuloAuth, "AUTO_ALTA",
			fmt.Sprintf("Alta automática de %s con rol %s", mail, model.RolOperador))
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	sess, err := s.identity.PasswordLogin(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if errors.Is(err, infra.ErrInvalidCredentials) {
		return nil, unauthorized(apierror.CodeTokenInvalid, "Credenciales inválidas")
	}
	if err != nil {
		return nil, internal("el proveedor de identidad no está disponible", err)
	}

	p, err := s.Authenticate(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	s.audit.Registrar(ctx, p.ActorID(), ModuloAuth, "LOGIN", "Inicio de sesión de "+p.Mail)

	u, err := s.repo.FindByID(ctx, p.UsuarioID)
	if err != nil {
		return nil, internal("error al leer usuario", err)
	}
	tokenType := sess.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &dto.LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    sess.ExpiresIn,
		User:         toUsuarioResponse(u),
	}, nil
}

// Logout revokes the token at the provider and deny-lists it locally until it
// would have expired anyway. A provider failure does not keep the token alive.
func (s *authService) Logout(ctx context.Context, p *Principal) error {
	if err := s.identity.Logout(ctx, p.Token); err != nil {
		log.Warn().Err(err).Int64("usuario_id", p.UsuarioID).Msg("auth: provider logout failed")
	}
	if s.cache != nil {
		ttl := time.Until(p.ExpiresAt)
		if err := s.cache.Revoke(ctx, p.Token, ttl); err != nil {
			return internal("no se pudo cerrar la sesión", err)
		}
	}
	s.audit.Registrar(ctx, p.ActorID(), ModuloAuth, "LOGOUT", "Cierre de sesión de "+p.Mail)
	return nil
}

// RecuperarPassword never reports whether the mail exists.
func (s *authService) RecuperarPassword(ctx context.Context, req dto.PasswordResetRequest) error {
	mail := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.identity.RecoverPassword(ctx, mail, strings.TrimRight(s.baseURL, "/")+"/reset-password"); err != nil {
		log.Warn().Err(err).Msg("auth: password recovery request failed")
	}
	return nil
}

func (s *authService) Me(ctx context.Context, p *Principal) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, p.UsuarioID)
	if repository.IsNotFound(err) {
		return nil, notFound("Usuario no encontrado")
	}
	if err != nil {
		return nil, internal("error al leer usuario", err)
	}
	resp := toUsuarioResponse(u)
	return &resp, nil
}
