package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Audit ────────────────────────────────────────────────────────────────────

type auditEntry struct {
	Modulo      string
	Evento      string
	Descripcion string
}

type stubAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *stubAudit) Registrar(_ context.Context, _ *int64, modulo, evento, descripcion string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{modulo, evento, descripcion})
}

func (a *stubAudit) Listar(_ context.Context, _ dto.AuditoriaFilter) (*dto.ListResponse[dto.AuditoriaResponse], error) {
	return &dto.ListResponse[dto.AuditoriaResponse]{}, nil
}

func (a *stubAudit) count(evento string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.entries {
		if e.Evento == evento {
			n++
		}
	}
	return n
}

var _ service.AuditoriaService = (*stubAudit)(nil)

// ── Productos ────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[int64]*model.Producto
	stock     *stubStockRepo
	seq       int64
}

func newStubProductoRepo(stock *stubStockRepo) *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[int64]*model.Producto), stock: stock}
}

// add registers an active product with the given stock.
func (r *stubProductoRepo) add(nombre string, tipo int64, precio string, cantidad string) *model.Producto {
	r.seq++
	p := &model.Producto{
		ID:             r.seq,
		Nombre:         nombre,
		TipoID:         tipo,
		PrecioUnitario: decimal.RequireFromString(precio),
		Activo:         true,
	}
	r.productos[p.ID] = p
	if r.stock != nil {
		r.stock.stock[p.ID] = decimal.RequireFromString(cantidad)
	}
	return p
}

func (r *stubProductoRepo) withStock(p model.Producto) model.Producto {
	if r.stock != nil {
		if c, ok := r.stock.stock[p.ID]; ok {
			p.Stock = &model.Stock{ProductoID: p.ID, Cantidad: c}
		}
	}
	return p
}

func (r *stubProductoRepo) FindByID(_ context.Context, id int64) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.withStock(*p)
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []int64) ([]model.Producto, error) {
	var out []model.Producto
	seen := map[int64]bool{}
	for _, id := range ids {
		if p, ok := r.productos[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, r.withStock(*p))
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if (!f.IncluirInactivos && !p.Activo) || (f.TipoID > 0 && p.TipoID != f.TipoID) {
			continue
		}
		out = append(out, r.withStock(*p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	r.seq++
	p.ID = r.seq
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id int64, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Categorias ───────────────────────────────────────────────────────────────

type stubCategoriaRepo struct {
	categorias []model.Categoria
	medidas    []model.Medida
}

func (r *stubCategoriaRepo) FindOrCreateTx(_ *gorm.DB, nombre string, tipoID int64) (*model.Categoria, error) {
	for i := range r.categorias {
		c := r.categorias[i]
		if strings.EqualFold(c.Nombre, nombre) && c.TipoID != nil && *c.TipoID == tipoID {
			return &r.categorias[i], nil
		}
	}
	c := model.Categoria{ID: int64(len(r.categorias) + 1), Nombre: nombre, TipoID: &tipoID}
	r.categorias = append(r.categorias, c)
	return &c, nil
}

func (r *stubCategoriaRepo) FindOrCreateMedidaTx(_ *gorm.DB, largo, ancho, alto float64) (*model.Medida, error) {
	for i := range r.medidas {
		m := r.medidas[i]
		if m.Largo == largo && m.Ancho == ancho && m.Alto == alto {
			return &m, nil
		}
	}
	m := model.Medida{ID: int64(len(r.medidas) + 1), Largo: largo, Ancho: ancho, Alto: alto}
	r.medidas = append(r.medidas, m)
	return &m, nil
}

func (r *stubCategoriaRepo) List(_ context.Context, tipoID int64) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.categorias {
		if tipoID == 0 || (c.TipoID != nil && *c.TipoID == tipoID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCategoriaRepo) ListMedidas(_ context.Context) ([]model.Medida, error) {
	return r.medidas, nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

// ── Stock ────────────────────────────────────────────────────────────────────

const (
	tipoEntradaID int64 = 1
	tipoSalidaID  int64 = 2
)

type stubStockRepo struct {
	stock       map[int64]decimal.Decimal
	movimientos []model.MovimientoStock
	sinTipos    bool
	// failOn makes AdjustTx fail for that product, to exercise rollbacks.
	failOn int64
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{stock: make(map[int64]decimal.Decimal)}
}

func (r *stubStockRepo) TipoMovimientoID(_ context.Context, nombre string) (int64, error) {
	if r.sinTipos {
		return 0, gorm.ErrRecordNotFound
	}
	if nombre == model.MovimientoEntrada {
		return tipoEntradaID, nil
	}
	return tipoSalidaID, nil
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, s *model.Stock) error {
	r.stock[s.ProductoID] = s.Cantidad
	return nil
}

func (r *stubStockRepo) LockTx(_ *gorm.DB, productoID int64) (*model.Stock, error) {
	c, ok := r.stock[productoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Stock{ProductoID: productoID, Cantidad: c}, nil
}

func (r *stubStockRepo) AdjustTx(_ *gorm.DB, productoID int64, delta decimal.Decimal, _ time.Time) error {
	if r.failOn == productoID {
		return gorm.ErrInvalidTransaction
	}
	r.stock[productoID] = r.stock[productoID].Add(delta)
	return nil
}

func (r *stubStockRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = int64(len(r.movimientos) + 1)
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubStockRepo) ListMovimientos(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

func (r *stubStockRepo) Balance(_ context.Context, productoID int64) (decimal.Decimal, decimal.Decimal, error) {
	entradas, salidas := decimal.Zero, decimal.Zero
	for _, m := range r.movimientos {
		if m.ProductoID != productoID {
			continue
		}
		if m.TipoMovimientoID == tipoEntradaID {
			entradas = entradas.Add(m.Cantidad)
		} else {
			salidas = salidas.Add(m.Cantidad)
		}
	}
	return entradas, salidas, nil
}

func (r *stubStockRepo) Find(_ context.Context, productoID int64) (*model.Stock, error) {
	c, ok := r.stock[productoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Stock{ProductoID: productoID, Cantidad: c}, nil
}

// movimientosDe returns the ledger entries of one product with the given tipo.
func (r *stubStockRepo) movimientosDe(productoID, tipoID int64) []model.MovimientoStock {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID && m.TipoMovimientoID == tipoID {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

// ── Proveedores ──────────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	proveedores map[int64]*model.Proveedor
	// referenced ids fail Delete like a FK violation would
	referenced map[int64]bool
	seq        int64
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[int64]*model.Proveedor), referenced: make(map[int64]bool)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	for _, existing := range r.proveedores {
		if existing.CUIT == p.CUIT {
			return repository.ErrDuplicate
		}
	}
	r.seq++
	p.ID = r.seq
	cp := *p
	r.proveedores[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id int64) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProveedorRepo) List(_ context.Context, f dto.ProveedorFilter) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.proveedores {
		if f.IncluirInactivos || p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	for id, existing := range r.proveedores {
		if id != p.ID && existing.CUIT == p.CUIT {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	r.proveedores[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.proveedores[id]; !ok {
		return repository.ErrNotFound
	}
	if r.referenced[id] {
		return repository.ErrReferenced
	}
	delete(r.proveedores, id)
	return nil
}

func (r *stubProveedorRepo) SetActivo(_ context.Context, id int64, activo bool) error {
	p, ok := r.proveedores[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Activo = activo
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

// ── Compras ──────────────────────────────────────────────────────────────────

var estadosCompra = map[string]int64{
	model.CompraPendiente: 1,
	model.CompraRecibida:  2,
	model.CompraAnulada:   3,
}

type stubCompraRepo struct {
	ordenes   map[int64]*model.OrdenCompra
	seq       int64
	detSeq    int64
	sinEstado string
}

func newStubCompraRepo() *stubCompraRepo {
	return &stubCompraRepo{ordenes: make(map[int64]*model.OrdenCompra)}
}

func (r *stubCompraRepo) EstadoID(_ context.Context, nombre string) (int64, error) {
	id, ok := estadosCompra[nombre]
	if !ok || nombre == r.sinEstado {
		return 0, gorm.ErrRecordNotFound
	}
	return id, nil
}

func estadoNombre(id int64) string {
	for n, v := range estadosCompra {
		if v == id {
			return n
		}
	}
	return ""
}

func (r *stubCompraRepo) assignDetalleIDs(o *model.OrdenCompra) {
	for i := range o.Detalles {
		r.detSeq++
		o.Detalles[i].ID = r.detSeq
		o.Detalles[i].OrdenCompraID = o.ID
	}
}

func (r *stubCompraRepo) CreateTx(_ *gorm.DB, o *model.OrdenCompra) error {
	r.seq++
	o.ID = r.seq
	r.assignDetalleIDs(o)
	cp := *o
	cp.Detalles = append([]model.DetalleCompra(nil), o.Detalles...)
	r.ordenes[o.ID] = &cp
	return nil
}

func (r *stubCompraRepo) FindByID(_ context.Context, id int64) (*model.OrdenCompra, error) {
	o, ok := r.ordenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Estado = &model.EstadoCompra{ID: o.EstadoID, Nombre: estadoNombre(o.EstadoID)}
	return &cp, nil
}

func (r *stubCompraRepo) LockTx(_ *gorm.DB, id int64) (*model.OrdenCompra, error) {
	o, err := r.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	o.Detalles = append([]model.DetalleCompra(nil), o.Detalles...)
	return o, nil
}

func (r *stubCompraRepo) UpdateHeaderTx(_ *gorm.DB, o *model.OrdenCompra) error {
	stored := r.ordenes[o.ID]
	stored.ProveedorID = o.ProveedorID
	stored.Fecha = o.Fecha
	stored.Total = o.Total
	stored.EstadoID = o.EstadoID
	stored.Observaciones = o.Observaciones
	return nil
}

func (r *stubCompraRepo) ReplaceDetallesTx(_ *gorm.DB, ordenID int64, detalles []model.DetalleCompra) error {
	o := r.ordenes[ordenID]
	o.Detalles = append([]model.DetalleCompra(nil), detalles...)
	r.assignDetalleIDs(o)
	return nil
}

func (r *stubCompraRepo) List(_ context.Context, _ repository.CompraFilter) ([]model.OrdenCompra, int64, error) {
	var out []model.OrdenCompra
	for _, o := range r.ordenes {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

var _ repository.CompraRepository = (*stubCompraRepo)(nil)

// ── Ventas ───────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas    map[int64]*model.Venta
	seq       int64
	remitoSeq int64
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[int64]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.seq++
	v.ID = r.seq
	cp := *v
	cp.Detalles = append([]model.DetalleVenta(nil), v.Detalles...)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id int64) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) LockTx(_ *gorm.DB, id int64) (*model.Venta, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id int64, estado string, obs *string) error {
	v := r.ventas[id]
	v.Estado = estado
	v.Observaciones = obs
	return nil
}

func (r *stubVentaRepo) NextRemitoNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.remitoSeq++
	return 1000 + r.remitoSeq, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ repository.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Usuarios / sesión / identidad ────────────────────────────────────────────

type stubUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[int64]*model.Usuario
	roles    []model.Rol
	seq      int64
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	roles := []model.Rol{
		{ID: 1, Nombre: model.RolAdmin},
		{ID: 2, Nombre: model.RolCompras},
		{ID: 3, Nombre: model.RolVentas},
		{ID: 4, Nombre: model.RolStock},
		{ID: 5, Nombre: model.RolOperador},
		{ID: 6, Nombre: model.RolSupervisor},
		{ID: 7, Nombre: model.RolConsulta},
	}
	return &stubUsuarioRepo{usuarios: make(map[int64]*model.Usuario), roles: roles}
}

func (r *stubUsuarioRepo) rol(id int64) *model.Rol {
	for i := range r.roles {
		if r.roles[i].ID == id {
			rol := r.roles[i]
			return &rol
		}
	}
	return nil
}

func (r *stubUsuarioRepo) add(mail, rol, estado string, authID *uuid.UUID) *model.Usuario {
	r.mu.Lock()
	defer r.mu.Unlock()
	rl, _ := r.findRol(rol)
	r.seq++
	u := &model.Usuario{ID: r.seq, Nombre: mail, Mail: mail, Estado: estado, RolID: rl.ID, AuthID: authID}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubUsuarioRepo) findRol(nombre string) (*model.Rol, error) {
	for i := range r.roles {
		if r.roles[i].Nombre == strings.ToUpper(nombre) {
			rol := r.roles[i]
			return &rol, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.usuarios {
		if existing.Mail == u.Mail {
			return repository.ErrDuplicate
		}
	}
	r.seq++
	u.ID = r.seq
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) CreateIfAbsent(_ context.Context, u *model.Usuario) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.usuarios {
		if existing.Mail == u.Mail {
			return false, nil
		}
	}
	r.seq++
	u.ID = r.seq
	cp := *u
	r.usuarios[u.ID] = &cp
	return true, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id int64) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Rol = r.rol(u.RolID)
	return &cp, nil
}

func (r *stubUsuarioRepo) FindForAuth(_ context.Context, authID uuid.UUID, mail string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var byMail *model.Usuario
	for _, u := range r.usuarios {
		if u.AuthID != nil && *u.AuthID == authID {
			cp := *u
			cp.Rol = r.rol(u.RolID)
			return &cp, nil
		}
		if strings.EqualFold(u.Mail, mail) {
			byMail = u
		}
	}
	if byMail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *byMail
	cp.Rol = r.rol(byMail.RolID)
	return &cp, nil
}

func (r *stubUsuarioRepo) LinkAuthID(_ context.Context, id int64, authID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.usuarios[id]; ok && u.AuthID == nil {
		u.AuthID = &authID
	}
	return nil
}

func (r *stubUsuarioRepo) List(_ context.Context, _ dto.UsuarioFilter) ([]model.Usuario, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.usuarios {
		cp := *u
		cp.Rol = r.rol(u.RolID)
		out = append(out, cp)
	}
	return out, int64(len(out)), nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.usuarios[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.DNI, stored.Nombre, stored.Estado, stored.RolID = u.DNI, u.Nombre, u.Estado, u.RolID
	return nil
}

func (r *stubUsuarioRepo) FindRolByNombre(_ context.Context, nombre string) (*model.Rol, error) {
	return r.findRol(nombre)
}

func (r *stubUsuarioRepo) ListRoles(_ context.Context) ([]model.Rol, error) {
	return r.roles, nil
}

func (r *stubUsuarioRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usuarios)
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

type stubSessionCache struct {
	mu          sync.Mutex
	revoked     map[string]time.Duration
	usuarios    map[uuid.UUID]*model.Usuario
	invalidated []uuid.UUID
}

func newStubSessionCache() *stubSessionCache {
	return &stubSessionCache{revoked: map[string]time.Duration{}, usuarios: map[uuid.UUID]*model.Usuario{}}
}

func (c *stubSessionCache) IsRevoked(_ context.Context, token string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.revoked[token]
	return ok, nil
}

func (c *stubSessionCache) Revoke(_ context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[token] = ttl
	return nil
}

func (c *stubSessionCache) GetUsuario(_ context.Context, sub uuid.UUID) (*model.Usuario, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.usuarios[sub]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (c *stubSessionCache) SetUsuario(_ context.Context, sub uuid.UUID, u *model.Usuario) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *u
	c.usuarios[sub] = &cp
	return nil
}

func (c *stubSessionCache) Invalidate(_ context.Context, sub uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.usuarios, sub)
	c.invalidated = append(c.invalidated, sub)
	return nil
}

var _ repository.SessionCache = (*stubSessionCache)(nil)

type stubIdentity struct {
	session    *infra.IdentitySession
	loginErr   error
	invited    []string
	recovered  []string
	loggedOut  []string
	inviteUser *infra.IdentityUser
}

func (i *stubIdentity) PasswordLogin(_ context.Context, _, _ string) (*infra.IdentitySession, error) {
	if i.loginErr != nil {
		return nil, i.loginErr
	}
	return i.session, nil
}

func (i *stubIdentity) Logout(_ context.Context, token string) error {
	i.loggedOut = append(i.loggedOut, token)
	return nil
}

func (i *stubIdentity) RecoverPassword(_ context.Context, email, _ string) error {
	i.recovered = append(i.recovered, email)
	return nil
}

func (i *stubIdentity) InviteUser(_ context.Context, email, _ string) (*infra.IdentityUser, error) {
	i.invited = append(i.invited, email)
	if i.inviteUser != nil {
		return i.inviteUser, nil
	}
	return &infra.IdentityUser{ID: uuid.New(), Email: email}, nil
}

var _ service.IdentityProvider = (*stubIdentity)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func admin() *service.Principal {
	return &service.Principal{UsuarioID: 1, Nombre: "Admin", Mail: "admin@donnildo.com", Rol: model.RolAdmin}
}
