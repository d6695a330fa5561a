package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/config"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: env, CORSOrigin: "*", SupabaseJWTSecret: "s"}
	return New(cfg, nil, nil, infra.NewIdentityClient("", "", "", nil))
}

func TestRoutesMountedOnBothPrefixes(t *testing.T) {
	r := newTestEngine("test")

	registered := map[string]bool{}
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	for _, route := range []string{
		"POST /auth/login",
		"GET /cuenta",
		"POST /compras/:id/recibir",
		"DELETE /proveedores/:id",
		"POST /stock/pesaje",
		"GET /stock/productos/:id/conciliacion",
		"POST /ventas/:id/anular",
		"GET /reportes/dashboard",
		"GET /reportes/:id/pdf",
		"GET /auditoria",
	} {
		method, path, _ := strings.Cut(route, " ")
		assert.True(t, registered[method+" /v1"+path], "missing /v1 %s", route)
		assert.True(t, registered[method+" /api"+path], "missing /api %s", route)
	}
	assert.True(t, registered["GET /health"])
	assert.True(t, registered["GET /swagger/*any"])
}

func TestSwaggerHiddenInProduction(t *testing.T) {
	r := newTestEngine("production")
	defer gin.SetMode(gin.TestMode)

	for _, ri := range r.Routes() {
		assert.NotEqual(t, "/swagger/*any", ri.Path)
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	r := newTestEngine("test")

	for _, path := range []string{"/v1/compras", "/api/ventas", "/v1/reportes", "/v1/auditoria"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Body.String(), "AUTH_REQUIRED")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}
