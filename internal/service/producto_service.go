package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Box categories by volume (cm³).
const (
	CajaChica   = "Chica"
	CajaMediana = "Mediana"
	CajaGrande  = "Grande"

	volumenMaxChica   = 3000
	volumenMaxMediana = 10000
)

// ClasificarCaja maps a box volume to its category. Bounds are inclusive.
func ClasificarCaja(volumen float64) string {
	switch {
	case volumen <= volumenMaxChica:
		return CajaChica
	case volumen <= volumenMaxMediana:
		return CajaMediana
	default:
		return CajaGrande
	}
}

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, actor *Principal, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id int64) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error)
	Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, actor *Principal, id int64) error
	Reactivar(ctx context.Context, actor *Principal, id int64) error

	ListarCategorias(ctx context.Context, tipoID int64) ([]dto.CategoriaResponse, error)
	ListarMedidas(ctx context.Context) ([]dto.MedidaResponse, error)
	// ListarMateriales returns the active products of tipo Material, the ones weighed in pesaje.
	ListarMateriales(ctx context.Context) ([]dto.ProductoResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	categorias repository.CategoriaRepository
	stock      repository.StockRepository
	audit      AuditoriaService
}

func NewProductoService(
	repo repository.ProductoRepository,
	categorias repository.CategoriaRepository,
	stock repository.StockRepository,
	audit AuditoriaService,
) ProductoService {
	return &productoService{repo: repo, categorias: categorias, stock: stock, audit: audit}
}

func toProductoResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		TipoID:         p.TipoID,
		CategoriaID:    p.CategoriaID,
		PrecioUnitario: p.PrecioUnitario,
		Stock:          decimal.Zero,
		Activo:         p.Activo,
	}
	if p.Tipo != nil {
		resp.Tipo = p.Tipo.Nombre
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	if p.Medida != nil {
		m := toMedidaResponse(*p.Medida)
		resp.Medida = &m
	}
	if p.Stock != nil {
		resp.Stock = p.Stock.Cantidad
	}
	return resp
}

func toMedidaResponse(m model.Medida) dto.MedidaResponse {
	return dto.MedidaResponse{ID: m.ID, Largo: m.Largo, Ancho: m.Ancho, Alto: m.Alto, Volumen: m.Volumen()}
}

// validarPrecio allows zero: a product may not have a sale price yet.
func validarPrecio(d decimal.Decimal) error {
	if d.IsNegative() {
		return validation("el precio unitario no puede ser negativo")
	}
	if excedeDecimales(d, decimalesPrecio) {
		return validation("el precio unitario admite hasta %d decimales", decimalesPrecio)
	}
	return nil
}

// clasificacion is the categoria/medida a product request resolves to.
type clasificacion struct {
	categoria string
	medida    *model.Medida
}

// clasificar applies the per-tipo rules without touching the database.
func clasificar(req dto.ProductoRequest) (*clasificacion, error) {
	switch req.TipoID {
	case model.TipoCaja:
		if req.Largo == nil || req.Ancho == nil || req.Alto == nil {
			return nil, validation("una caja requiere largo, ancho y alto")
		}
		if *req.Largo <= 0 || *req.Ancho <= 0 || *req.Alto <= 0 {
			return nil, validation("largo, ancho y alto deben ser mayores a cero")
		}
		m := &model.Medida{Largo: *req.Largo, Ancho: *req.Ancho, Alto: *req.Alto}
		return &clasificacion{categoria: ClasificarCaja(m.Volumen()), medida: m}, nil
	case model.TipoMaterial:
		cat := strings.TrimSpace(req.Categoria)
		if cat == "" {
			return nil, validation("un material requiere categoría")
		}
		return &clasificacion{categoria: cat}, nil
	default:
		return nil, validation("tipo de producto inválido: %d", req.TipoID)
	}
}

// applyClasificacionTx resolves categoria and medida rows and sets them on p.
func (s *productoService) applyClasificacionTx(tx *gorm.DB, p *model.Producto, c *clasificacion) error {
	cat, err := s.categorias.FindOrCreateTx(tx, c.categoria, p.TipoID)
	if err != nil {
		return err
	}
	p.CategoriaID = cat.ID
	p.Categoria = cat
	p.MedidaID = nil
	p.Medida = nil
	if c.medida != nil {
		m, err := s.categorias.FindOrCreateMedidaTx(tx, c.medida.Largo, c.medida.Ancho, c.medida.Alto)
		if err != nil {
			return err
		}
		p.MedidaID = &m.ID
		p.Medida = m
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, actor *Principal, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	c, err := clasificar(req)
	if err != nil {
		return nil, err
	}
	if err := validarPrecio(req.PrecioUnitario); err != nil {
		return nil, err
	}
	inicial := decimal.Zero
	if req.CantidadInicial != nil {
		if req.CantidadInicial.IsNegative() {
			return nil, validation("la cantidad inicial no puede ser negativa")
		}
		if excedeDecimales(*req.CantidadInicial, decimalesCantidad) {
			return nil, validation("la cantidad inicial admite hasta %d decimales", decimalesCantidad)
		}
		inicial = *req.CantidadInicial
	}

	var l *ledger
	if inicial.IsPositive() {
		if l, err = newLedger(ctx, s.stock); err != nil {
			return nil, err
		}
	}

	p := &model.Producto{
		Nombre:         strings.TrimSpace(req.Nombre),
		Descripcion:    req.Descripcion,
		TipoID:         req.TipoID,
		PrecioUnitario: req.PrecioUnitario,
		Activo:         true,
	}
	now := time.Now()
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.applyClasificacionTx(tx, p, c); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		if err := s.stock.CreateTx(tx, &model.Stock{ProductoID: p.ID, Cantidad: decimal.Zero, FechaUltimaActualiza: now}); err != nil {
			return err
		}
		if l != nil {
			return l.entradaTx(tx, movimiento{
				productoID: p.ID,
				cantidad:   inicial,
				obs:        "Stock inicial",
				refTipo:    model.RefAlta,
				refID:      &p.ID,
				usuarioID:  actor.ActorID(),
			}, now)
		}
		return nil
	})
	if err != nil {
		return nil, internal("error al crear producto", err)
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloStock, "ALTA_PRODUCTO",
		fmt.Sprintf("Producto %d %s (%s)", p.ID, p.Nombre, c.categoria))
	return s.ObtenerPorID(ctx, p.ID)
}

func (s *productoService) ObtenerPorID(ctx context.Context, id int64) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error) {
	filter.Page, filter.Limit = dto.Pagination(filter.Page, filter.Limit, 500)
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal("error al listar productos", err)
	}
	resp := &dto.ListResponse[dto.ProductoResponse]{Data: make([]dto.ProductoResponse, len(list)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range list {
		resp.Data[i] = toProductoResponse(&list[i])
	}
	return resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, actor *Principal, id int64, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TipoID != p.TipoID {
		return nil, validation("no se puede cambiar el tipo de un producto")
	}
	c, err := clasificar(req)
	if err != nil {
		return nil, err
	}
	if err := validarPrecio(req.PrecioUnitario); err != nil {
		return nil, err
	}

	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Descripcion = req.Descripcion
	p.PrecioUnitario = req.PrecioUnitario
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.applyClasificacionTx(tx, p, c); err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, p)
	})
	if err != nil {
		return nil, internal("error al actualizar producto", err)
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloStock, "MODIFICACION_PRODUCTO",
		fmt.Sprintf("Producto %d %s actualizado (%s)", p.ID, p.Nombre, c.categoria))
	resp := toProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, actor *Principal, id int64) error {
	return s.setActivo(ctx, actor, id, false)
}

func (s *productoService) Reactivar(ctx context.Context, actor *Principal, id int64) error {
	return s.setActivo(ctx, actor, id, true)
}

func (s *productoService) setActivo(ctx context.Context, actor *Principal, id int64, activo bool) error {
	err := s.repo.SetActivo(ctx, id, activo)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Producto no encontrado")
	}
	if err != nil {
		return internal("error al actualizar producto", err)
	}
	evento := "BAJA_PRODUCTO"
	if activo {
		evento = "REACTIVACION_PRODUCTO"
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloStock, evento, fmt.Sprintf("Producto %d", id))
	return nil
}

func (s *productoService) ListarCategorias(ctx context.Context, tipoID int64) ([]dto.CategoriaResponse, error) {
	cats, err := s.categorias.List(ctx, tipoID)
	if err != nil {
		return nil, internal("error al listar categorías", err)
	}
	resp := make([]dto.CategoriaResponse, len(cats))
	for i, c := range cats {
		resp[i] = dto.CategoriaResponse{ID: c.ID, Nombre: c.Nombre, TipoID: c.TipoID}
	}
	return resp, nil
}

func (s *productoService) ListarMedidas(ctx context.Context) ([]dto.MedidaResponse, error) {
	medidas, err := s.categorias.ListMedidas(ctx)
	if err != nil {
		return nil, internal("error al listar medidas", err)
	}
	resp := make([]dto.MedidaResponse, len(medidas))
	for i, m := range medidas {
		resp[i] = toMedidaResponse(m)
	}
	return resp, nil
}

func (s *productoService) ListarMateriales(ctx context.Context) ([]dto.ProductoResponse, error) {
	list, _, err := s.repo.List(ctx, dto.ProductoFilter{TipoID: model.TipoMaterial, Limit: 500})
	if err != nil {
		return nil, internal("error al listar materiales", err)
	}
	resp := make([]dto.ProductoResponse, len(list))
	for i := range list {
		resp[i] = toProductoResponse(&list[i])
	}
	return resp, nil
}

func (s *productoService) find(ctx context.Context, id int64) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Producto no encontrado")
	}
	if err != nil {
		return nil, internal("error al leer producto", err)
	}
	return p, nil
}
