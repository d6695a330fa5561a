package router

import (
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/config"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/handler"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/middleware"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Role sets used by the route table.
var (
	rolesTodos = []string{
		model.RolAdmin, model.RolCompras, model.RolVentas, model.RolStock,
		model.RolOperador, model.RolSupervisor, model.RolConsulta,
	}
	rolesComprasEscritura     = []string{model.RolAdmin, model.RolCompras, model.RolSupervisor}
	rolesComprasLectura       = append(rolesComprasEscritura, model.RolConsulta)
	rolesProveedoresEscritura = []string{model.RolAdmin, model.RolCompras}
	rolesProveedoresLectura   = append(rolesProveedoresEscritura, model.RolSupervisor, model.RolConsulta)
	rolesPesaje               = []string{model.RolAdmin, model.RolStock, model.RolOperador}
	rolesProductosEscritura   = []string{model.RolAdmin, model.RolStock}
	rolesVentasEscritura      = []string{model.RolAdmin, model.RolVentas, model.RolSupervisor}
	rolesVentasLectura        = append(rolesVentasEscritura, model.RolConsulta)
	rolesReportes             = []string{model.RolAdmin, model.RolSupervisor, model.RolConsulta}
	rolesAuditoria            = []string{model.RolAdmin, model.RolSupervisor}
)

type handlers struct {
	auth        *handler.AuthHandler
	usuarios    *handler.UsuariosHandler
	compras     *handler.ComprasHandler
	proveedores *handler.ProveedoresHandler
	productos   *handler.ProductosHandler
	stock       *handler.StockHandler
	ventas      *handler.VentasHandler
	reportes    *handler.ReportesHandler
	auditoria   *handler.AuditoriaHandler
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, identity *infra.IdentityClient) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sessionCache := repository.NewSessionCache(rdb)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	stockRepo := repository.NewStockRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	auditSvc := service.NewAuditoriaService(auditoriaRepo, dispatcher)
	authSvc := service.NewAuthService(usuarioRepo, sessionCache, identity, auditSvc, cfg.SupabaseJWTSecret, cfg.AppBaseURL)
	usuarioSvc := service.NewUsuarioService(usuarioRepo, sessionCache, identity, auditSvc, cfg.AppBaseURL)
	productoSvc := service.NewProductoService(productoRepo, categoriaRepo, stockRepo, auditSvc)
	stockSvc := service.NewStockService(stockRepo, productoRepo, auditSvc)
	proveedorSvc := service.NewProveedorService(proveedorRepo, auditSvc)
	compraSvc := service.NewCompraService(compraRepo, productoRepo, proveedorRepo, stockRepo, auditSvc)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, stockRepo, auditSvc)
	reporteSvc := service.NewReporteService(reporteRepo, dispatcher, auditSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	h := handlers{
		auth:        handler.NewAuthHandler(authSvc),
		usuarios:    handler.NewUsuariosHandler(usuarioSvc),
		compras:     handler.NewComprasHandler(compraSvc),
		proveedores: handler.NewProveedoresHandler(proveedorSvc),
		productos:   handler.NewProductosHandler(productoSvc),
		stock:       handler.NewStockHandler(stockSvc),
		ventas:      handler.NewVentasHandler(ventaSvc),
		reportes:    handler.NewReportesHandler(reporteSvc),
		auditoria:   handler.NewAuditoriaHandler(auditSvc),
	}

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var identityCB *infra.CircuitBreaker
	if identity != nil {
		identityCB = identity.Breaker()
	}
	r.GET("/health", handler.Health(db, rdb, identityCB, worker.QueueAuditoria, worker.QueueEmail))

	bearer := middleware.BearerAuth(authSvc)
	loginLimiter := middleware.LoginRateLimiter()
	// /api is the legacy prefix the SPA still calls
	for _, prefix := range []string{"/v1", "/api"} {
		mount(r.Group(prefix), h, bearer, loginLimiter)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func mount(g *gin.RouterGroup, h handlers, bearer, loginLimiter gin.HandlerFunc) {
	role := middleware.RequireRole

	// Auth (public)
	auth := g.Group("/auth")
	{
		auth.POST("/login", loginLimiter, h.auth.Login)
		auth.POST("/password-reset", loginLimiter, h.auth.RecuperarPassword)
		auth.POST("/logout", bearer, h.auth.Logout)
		auth.GET("/me", bearer, h.auth.Me)
	}

	v := g.Group("", bearer)

	cuenta := v.Group("/cuenta")
	{
		cuenta.GET("", h.usuarios.Perfil)
		cuenta.PUT("", h.usuarios.ActualizarPerfil)
	}

	usuarios := v.Group("/usuarios", role(model.RolAdmin))
	{
		usuarios.GET("", h.usuarios.Listar)
		usuarios.POST("", h.usuarios.Crear)
		usuarios.PUT("/:id", h.usuarios.Actualizar)
		usuarios.DELETE("/:id", h.usuarios.Desactivar)
	}
	v.GET("/roles", role(model.RolAdmin), h.usuarios.ListarRoles)

	compras := v.Group("/compras")
	{
		lectura, escritura := role(rolesComprasLectura...), role(rolesComprasEscritura...)
		compras.GET("", lectura, h.compras.Listar)
		compras.GET("/productos", lectura, h.compras.ListarProductos)
		compras.GET("/proveedores", lectura, h.compras.ListarProveedores)
		compras.GET("/:id", lectura, h.compras.ObtenerPorID)
		compras.POST("", escritura, h.compras.Registrar)
		compras.PUT("/:id", escritura, h.compras.Modificar)
		compras.POST("/:id/recibir", escritura, h.compras.Recibir)
		compras.POST("/:id/anular", escritura, h.compras.Anular)
	}

	prov := v.Group("/proveedores")
	{
		lectura, escritura := role(rolesProveedoresLectura...), role(rolesProveedoresEscritura...)
		prov.GET("", lectura, h.proveedores.Listar)
		prov.GET("/:id", lectura, h.proveedores.ObtenerPorID)
		prov.POST("", escritura, h.proveedores.Crear)
		prov.PUT("/:id", escritura, h.proveedores.Actualizar)
		prov.DELETE("/:id", escritura, h.proveedores.Eliminar)
	}

	stock := v.Group("/stock")
	{
		lectura, productos := role(rolesTodos...), role(rolesProductosEscritura...)
		stock.GET("", lectura, h.stock.Listar)
		stock.GET("/movimientos", lectura, h.stock.Movimientos)
		stock.GET("/categorias", lectura, h.productos.ListarCategorias)
		stock.GET("/medidas", lectura, h.productos.ListarMedidas)
		stock.GET("/materiales", lectura, h.productos.ListarMateriales)
		stock.POST("/pesaje", role(rolesPesaje...), h.stock.Pesaje)

		stock.GET("/productos", lectura, h.productos.Listar)
		stock.GET("/productos/:id", lectura, h.productos.ObtenerPorID)
		stock.GET("/productos/:id/conciliacion", lectura, h.stock.Conciliar)
		stock.POST("/productos", productos, h.productos.Crear)
		stock.PUT("/productos/:id", productos, h.productos.Actualizar)
		stock.DELETE("/productos/:id", productos, h.productos.Desactivar)
		stock.PATCH("/productos/:id/reactivar", productos, h.productos.Reactivar)
	}

	ventas := v.Group("/ventas")
	{
		lectura, escritura := role(rolesVentasLectura...), role(rolesVentasEscritura...)
		ventas.GET("", lectura, h.ventas.Listar)
		ventas.GET("/:id", lectura, h.ventas.ObtenerPorID)
		ventas.POST("", escritura, h.ventas.Registrar)
		ventas.POST("/:id/anular", escritura, h.ventas.Anular)
	}

	reportes := v.Group("/reportes", role(rolesReportes...))
	{
		reportes.GET("", h.reportes.Listar)
		reportes.POST("", h.reportes.Crear)
		reportes.DELETE("", h.reportes.Eliminar)
		reportes.GET("/dashboard", h.reportes.Dashboard)
		reportes.GET("/productos", h.reportes.ProductosPorAlcance)
		reportes.GET("/:id", h.reportes.Obtener)
		reportes.GET("/:id/pdf", h.reportes.DescargarPDF)
		reportes.POST("/:id/enviar", h.reportes.Enviar)
	}

	v.GET("/auditoria", role(rolesAuditoria...), h.auditoria.Listar)
}
