package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/middleware"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func asAdmin(c *gin.Context) {
	c.Set(middleware.PrincipalKey, &service.Principal{UsuarioID: 1, Rol: "ADMIN"})
	c.Next()
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestRespondError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&service.Error{Kind: service.KindValidation, Msg: "x"}, http.StatusBadRequest, apierror.CodeValidation},
		{&service.Error{Kind: service.KindConflict, Msg: "x"}, http.StatusBadRequest, apierror.CodeConflict},
		{&service.Error{Kind: service.KindInUse, Msg: "x"}, http.StatusBadRequest, apierror.CodeInUse},
		{&service.Error{Kind: service.KindNotFound, Msg: "x"}, http.StatusNotFound, apierror.CodeNotFound},
		{&service.Error{Kind: service.KindUnauthorized, Code: apierror.CodeAccountDisabled, Msg: "x"}, http.StatusUnauthorized, apierror.CodeAccountDisabled},
		{&service.Error{Kind: service.KindForbidden, Msg: "x"}, http.StatusForbidden, apierror.CodeForbidden},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, apierror.CodeInternal},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })
		w := doJSON(r, http.MethodGet, "/", nil)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, errBody(t, w).Code)
	}
}

func TestRespondError_DebugOnlyOutsideRelease(t *testing.T) {
	cause := errors.New(`duplicate key value violates unique constraint "usuarios_mail_key"`)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, &service.Error{Kind: service.KindInternal, Msg: "error al crear usuario", Err: cause}) })

	w := doJSON(r, http.MethodGet, "/", nil)
	assert.Equal(t, cause.Error(), errBody(t, w).Debug)

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)
	w = doJSON(r, http.MethodGet, "/", nil)
	body := errBody(t, w)
	assert.Empty(t, body.Debug)
	assert.Equal(t, "error al crear usuario", body.Detail)
}

func TestRespondError_ItemFields(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		respondError(c, &service.Error{
			Kind:   service.KindValidation,
			Msg:    "Ítem 1: la cantidad debe ser mayor a cero; Ítem 3: el precio unitario admite hasta 2 decimales",
			Fields: map[string]string{"items[1]": "la cantidad debe ser mayor a cero", "items[3]": "el precio unitario admite hasta 2 decimales"},
		})
	})

	w := doJSON(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := errBody(t, w)
	assert.Equal(t, apierror.CodeValidation, body.Code)
	assert.Len(t, body.Fields, 2)
	assert.Equal(t, "el precio unitario admite hasta 2 decimales", body.Fields["items[3]"])
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type stubVentaSvc struct {
	service.VentaService
	got    dto.VentaRequest
	motivo string
	err    error
}

func (s *stubVentaSvc) Registrar(_ context.Context, actor *service.Principal, req dto.VentaRequest) (*dto.VentaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = req
	return &dto.VentaResponse{ID: 1, NumeroRemito: 1001, Total: decimal.RequireFromString("71.11"), Estado: "COMPLETADA"}, nil
}

func (s *stubVentaSvc) Anular(_ context.Context, _ *service.Principal, _ int64, motivo string) error {
	s.motivo = motivo
	return s.err
}

func TestVentas_Registrar(t *testing.T) {
	svc := &stubVentaSvc{}
	h := NewVentasHandler(svc)
	r := gin.New()
	r.POST("/ventas", asAdmin, h.Registrar)

	w := doJSON(r, http.MethodPost, "/ventas", `{"items":[{"producto_id":3,"cantidad":"2","precio_unitario":"35.555"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"numero_remito":1001`)
	require.Len(t, svc.got.Items, 1)
	assert.Equal(t, "35.555", svc.got.Items[0].PrecioUnitario.String())

	w = doJSON(r, http.MethodPost, "/ventas", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeValidation, errBody(t, w).Code)

	svc.err = &service.Error{Kind: service.KindValidation, Msg: "Stock insuficiente para Caja Chica"}
	w = doJSON(r, http.MethodPost, "/ventas", `{"items":[{"producto_id":3,"cantidad":"200"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Stock insuficiente para Caja Chica", errBody(t, w).Detail)
}

func TestVentas_AnularSinCuerpo(t *testing.T) {
	svc := &stubVentaSvc{}
	r := gin.New()
	r.POST("/ventas/:id/anular", asAdmin, NewVentasHandler(svc).Anular)

	req := httptest.NewRequest(http.MethodPost, "/ventas/5/anular", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/ventas/5/anular", dto.MotivoRequest{Motivo: "error de carga"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error de carga", svc.motivo)

	w = doJSON(r, http.MethodPost, "/ventas/abc/anular", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Proveedores ──────────────────────────────────────────────────────────────

type stubProveedorSvc struct {
	service.ProveedorService
	soft bool
	err  error
}

func (s *stubProveedorSvc) Eliminar(_ context.Context, _ *service.Principal, _ int64, soft bool) error {
	s.soft = soft
	return s.err
}

func (s *stubProveedorSvc) Crear(_ context.Context, _ *service.Principal, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	return &dto.ProveedorResponse{ID: 1, CUIT: req.CUIT, Nombre: req.Nombre, Activo: true}, nil
}

func TestProveedores(t *testing.T) {
	svc := &stubProveedorSvc{}
	h := NewProveedoresHandler(svc)
	r := gin.New()
	r.POST("/proveedores", asAdmin, h.Crear)
	r.DELETE("/proveedores/:id", asAdmin, h.Eliminar)

	w := doJSON(r, http.MethodPost, "/proveedores", `{"cuit":"20-12345678-9","nombre":"X","email":"no-es-mail"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := errBody(t, w).Fields
	assert.Contains(t, fields, "nombre")
	assert.Contains(t, fields, "email")

	w = doJSON(r, http.MethodDelete, "/proveedores/4?soft=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, svc.soft)

	svc.err = &service.Error{Kind: service.KindInUse, Msg: "No se puede eliminar: el proveedor tiene compras asociadas"}
	w = doJSON(r, http.MethodDelete, "/proveedores/4", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeInUse, errBody(t, w).Code)
	assert.False(t, svc.soft)
}

// ── Reportes ─────────────────────────────────────────────────────────────────

type stubReporteSvc struct {
	service.ReporteService
	ids []int64
}

func (s *stubReporteSvc) PDF(_ context.Context, id int64) ([]byte, string, error) {
	if id != 7 {
		return nil, "", &service.Error{Kind: service.KindNotFound, Msg: "Reporte no encontrado"}
	}
	return []byte("%PDF-1.3"), "dn-ventas-000007.pdf", nil
}

func (s *stubReporteSvc) Eliminar(_ context.Context, _ *service.Principal, ids []int64) (int64, error) {
	s.ids = ids
	return int64(len(ids)), nil
}

func TestReportes(t *testing.T) {
	svc := &stubReporteSvc{}
	h := NewReportesHandler(svc)
	r := gin.New()
	r.GET("/reportes/:id/pdf", asAdmin, h.DescargarPDF)
	r.DELETE("/reportes", asAdmin, h.Eliminar)
	r.GET("/reportes/dashboard", asAdmin, h.Dashboard)

	w := doJSON(r, http.MethodGet, "/reportes/7/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dn-ventas-000007.pdf")

	w = doJSON(r, http.MethodGet, "/reportes/8/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/reportes", `{"ids":[1,2]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, svc.ids)

	w = doJSON(r, http.MethodDelete, "/reportes", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/reportes/dashboard?desde=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errBody(t, w).Fields, "hasta")
}
