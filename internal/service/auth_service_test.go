package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "email": email, "exp": exp.Unix(), "role": "authenticated"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

type authFixture struct {
	svc      service.AuthService
	usuarios *stubUsuarioRepo
	cache    *stubSessionCache
	identity *stubIdentity
	audit    *stubAudit
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		usuarios: newStubUsuarioRepo(),
		cache:    newStubSessionCache(),
		identity: &stubIdentity{},
		audit:    &stubAudit{},
	}
	f.svc = service.NewAuthService(f.usuarios, f.cache, f.identity, f.audit, testSecret, "http://localhost:5173")
	return f
}

func errCode(err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func TestAuthenticate_TokenFaltanteOInvalido(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Authenticate(context.Background(), "")
	assert.Equal(t, apierror.CodeAuthRequired, errCode(err))

	_, err = f.svc.Authenticate(context.Background(), "not-a-jwt")
	assert.Equal(t, apierror.CodeTokenInvalid, errCode(err))

	expired := signToken(t, uuid.NewString(), "a@b.com", time.Now().Add(-time.Minute))
	_, err = f.svc.Authenticate(context.Background(), expired)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	noSub := signToken(t, "not-a-uuid", "a@b.com", time.Now().Add(time.Hour))
	_, err = f.svc.Authenticate(context.Background(), noSub)
	assert.Equal(t, apierror.CodeTokenInvalid, errCode(err))

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"sub": uuid.NewString(), "email": "a@b.com", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), other)
	assert.Equal(t, apierror.CodeTokenInvalid, errCode(err), "only HS256 is accepted")

	_, err = f.svc.Authenticate(context.Background(), signToken(t, uuid.NewString(), "", time.Now().Add(time.Hour)))
	assert.Equal(t, apierror.CodeTokenInvalid, errCode(err), "email claim is required")
}

func TestAuthenticate_ProvisionaUnaSolaVez(t *testing.T) {
	f := newAuthFixture()
	sub := uuid.New()
	tok := signToken(t, sub.String(), "Nuevo@DonNildo.com", time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.svc.Authenticate(context.Background(), tok)
			assert.NoError(t, err)
			if p != nil {
				assert.Equal(t, model.RolOperador, p.Rol)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.usuarios.len())
	assert.Equal(t, 1, f.audit.count("AUTO_ALTA"))

	p, err := f.svc.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "nuevo@donnildo.com", p.Mail)
	assert.Equal(t, sub, p.Subject)
	assert.Equal(t, 1, f.usuarios.len())
}

// authIDRaceRepo commits a row for the same subject under another mail just
// before the insert, so the insert fails on the auth_id index.
type authIDRaceRepo struct {
	*stubUsuarioRepo
	sub uuid.UUID
}

func (r *authIDRaceRepo) CreateIfAbsent(_ context.Context, _ *model.Usuario) (bool, error) {
	r.add("anterior@donnildo.com", model.RolOperador, model.UsuarioActivo, &r.sub)
	return false, repository.ErrDuplicate
}

func TestAuthenticate_CarreraPorAuthID(t *testing.T) {
	sub := uuid.New()
	repo := &authIDRaceRepo{stubUsuarioRepo: newStubUsuarioRepo(), sub: sub}
	audit := &stubAudit{}
	svc := service.NewAuthService(repo, newStubSessionCache(), &stubIdentity{}, audit, testSecret, "http://localhost:5173")

	p, err := svc.Authenticate(context.Background(), signToken(t, sub.String(), "nuevo@donnildo.com", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "anterior@donnildo.com", p.Mail)
	assert.Equal(t, sub, p.Subject)
	assert.Equal(t, 1, repo.len())
	assert.Equal(t, 0, audit.count("AUTO_ALTA"), "only the inserting request audits")
}

func TestAuthenticate_VinculaPorMail(t *testing.T) {
	f := newAuthFixture()
	u := f.usuarios.add("compras@donnildo.com", model.RolCompras, model.UsuarioActivo, nil)
	sub := uuid.New()

	p, err := f.svc.Authenticate(context.Background(), signToken(t, sub.String(), "compras@donnildo.com", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UsuarioID)
	assert.Equal(t, model.RolCompras, p.Rol)
	require.NotNil(t, f.usuarios.usuarios[u.ID].AuthID)
	assert.Equal(t, sub, *f.usuarios.usuarios[u.ID].AuthID)
	assert.Equal(t, 1, f.audit.count("VINCULAR_CUENTA"))
	assert.Equal(t, 0, f.audit.count("AUTO_ALTA"))
}

func TestAuthenticate_CuentaDeshabilitada(t *testing.T) {
	f := newAuthFixture()
	sub := uuid.New()
	f.usuarios.add("baja@donnildo.com", model.RolVentas, model.UsuarioInactivo, &sub)

	_, err := f.svc.Authenticate(context.Background(), signToken(t, sub.String(), "baja@donnildo.com", time.Now().Add(time.Hour)))
	assert.Equal(t, apierror.CodeAccountDisabled, errCode(err))
}

func TestLogout_RevocaElToken(t *testing.T) {
	f := newAuthFixture()
	sub := uuid.New()
	f.usuarios.add("ana@donnildo.com", model.RolAdmin, model.UsuarioActivo, &sub)
	tok := signToken(t, sub.String(), "ana@donnildo.com", time.Now().Add(time.Hour))

	p, err := f.svc.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(context.Background(), p))
	assert.Equal(t, []string{tok}, f.identity.loggedOut)
	assert.Greater(t, f.cache.revoked[tok], 50*time.Minute)

	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.Equal(t, apierror.CodeTokenInvalid, errCode(err))
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	sub := uuid.New()
	f.usuarios.add("ana@donnildo.com", model.RolAdmin, model.UsuarioActivo, &sub)
	tok := signToken(t, sub.String(), "ana@donnildo.com", time.Now().Add(time.Hour))
	f.identity.session = &infra.IdentitySession{AccessToken: tok, RefreshToken: "r", ExpiresIn: 3600}

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "ANA@donnildo.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, tok, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, model.RolAdmin, resp.User.Rol)

	f.identity.loginErr = infra.ErrInvalidCredentials
	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Email: "ana@donnildo.com", Password: "mala"})
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))
}

func TestRecuperarPassword_SiempreOK(t *testing.T) {
	f := newAuthFixture()
	require.NoError(t, f.svc.RecuperarPassword(context.Background(), dto.PasswordResetRequest{Email: "Nadie@x.com"}))
	assert.Equal(t, []string{"nadie@x.com"}, f.identity.recovered)
}
