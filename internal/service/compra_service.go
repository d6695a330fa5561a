package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompraService registers purchases and keeps stock in step with them.
// A purchase moves stock only once it has been received; voiding a received
// purchase takes back exactly its detail lines.
type CompraService interface {
	Registrar(ctx context.Context, actor *Principal, req dto.CompraRequest) (*dto.CompraRegistradaResponse, error)
	Recibir(ctx context.Context, actor *Principal, id int64) (*dto.CompraRegistradaResponse, error)
	Modificar(ctx context.Context, actor *Principal, id int64, req dto.CompraRequest) (*dto.CompraRegistradaResponse, error)
	Anular(ctx context.Context, actor *Principal, id int64, motivo string) error

	Listar(ctx context.Context, filter dto.CompraFilter) (*dto.ListResponse[dto.CompraResponse], error)
	ObtenerPorID(ctx context.Context, id int64) (*dto.CompraResponse, error)
	ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error)
	ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error)
}

type compraService struct {
	repo        repository.CompraRepository
	productos   repository.ProductoRepository
	proveedores repository.ProveedorRepository
	stock       repository.StockRepository
	audit       AuditoriaService
}

func NewCompraService(
	repo repository.CompraRepository,
	productos repository.ProductoRepository,
	proveedores repository.ProveedorRepository,
	stock repository.StockRepository,
	audit AuditoriaService,
) CompraService {
	return &compraService{repo: repo, productos: productos, proveedores: proveedores, stock: stock, audit: audit}
}

// CalcularDetalles validates the items, reporting every offending line by its
// 1-indexed position, and returns the lines with subtotal = cantidad × precio
// plus the header total rounded to cents.
func CalcularDetalles(items []dto.CompraItem) ([]model.DetalleCompra, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, validation("la compra debe tener al menos un ítem")
	}
	var errs itemErrors
	detalles := make([]model.DetalleCompra, len(items))
	total := decimal.Zero
	for i, it := range items {
		n := i + 1
		if it.ProductoID <= 0 {
			errs.add(n, "producto inválido")
		}
		errs.add(n, checkCantidad(it.Cantidad))
		errs.add(n, checkPrecio(it.PrecioUnitario))

		subtotal := it.Cantidad.Mul(it.PrecioUnitario)
		detalles[i] = model.DetalleCompra{
			ProductoID:     it.ProductoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       subtotal,
		}
		total = total.Add(subtotal)
	}
	if err := errs.err(); err != nil {
		return nil, decimal.Zero, err
	}
	return detalles, total.Round(2), nil
}

// prepare validates everything a purchase write needs before opening a transaction.
func (s *compraService) prepare(ctx context.Context, req dto.CompraRequest) ([]model.DetalleCompra, decimal.Decimal, error) {
	detalles, total, err := CalcularDetalles(req.Items)
	if err != nil {
		return nil, decimal.Zero, err
	}

	prov, err := s.proveedores.FindByID(ctx, req.ProveedorID)
	if repository.IsNotFound(err) || (err == nil && !prov.Activo) {
		return nil, decimal.Zero, validation("proveedor %d inexistente o inactivo", req.ProveedorID)
	}
	if err != nil {
		return nil, decimal.Zero, internal("error al leer proveedor", err)
	}

	ids := make([]int64, 0, len(detalles))
	for _, d := range detalles {
		ids = append(ids, d.ProductoID)
	}
	productos, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, internal("error al leer productos", err)
	}
	activos := make(map[int64]bool, len(productos))
	for _, p := range productos {
		activos[p.ID] = p.Activo
	}
	var errs itemErrors
	for i, d := range detalles {
		if !activos[d.ProductoID] {
			errs.add(i+1, fmt.Sprintf("producto %d inexistente o inactivo", d.ProductoID))
		}
	}
	if err := errs.err(); err != nil {
		return nil, decimal.Zero, err
	}
	return detalles, total, nil
}

func (s *compraService) estadoID(ctx context.Context, nombre string) (int64, error) {
	id, err := s.repo.EstadoID(ctx, nombre)
	if err != nil {
		return 0, internal("configuración faltante: estado de compra "+nombre, err)
	}
	return id, nil
}

func (s *compraService) Registrar(ctx context.Context, actor *Principal, req dto.CompraRequest) (*dto.CompraRegistradaResponse, error) {
	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}
	detalles, total, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	estado := model.CompraPendiente
	var l *ledger
	if req.Recibir {
		estado = model.CompraRecibida
		if l, err = newLedger(ctx, s.stock); err != nil {
			return nil, err
		}
	}
	estadoID, err := s.estadoID(ctx, estado)
	if err != nil {
		return nil, err
	}

	o := &model.OrdenCompra{
		ProveedorID:   req.ProveedorID,
		Fecha:         fecha,
		Total:         total,
		EstadoID:      estadoID,
		Observaciones: trimPtr(req.Observaciones),
		UsuarioID:     actor.ActorID(),
		Detalles:      detalles,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, o); err != nil {
			return err
		}
		if l != nil {
			return s.entradas(tx, l, o, actor, time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "error al registrar la compra")
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloCompras, "REGISTRAR",
		fmt.Sprintf("Compra #%d al proveedor %d por $%s (%s)", o.ID, o.ProveedorID, total.StringFixed(2), estado))
	return &dto.CompraRegistradaResponse{ID: o.ID, Total: total, Estado: estado}, nil
}

func (s *compraService) Recibir(ctx context.Context, actor *Principal, id int64) (*dto.CompraRegistradaResponse, error) {
	recibidaID, err := s.estadoID(ctx, model.CompraRecibida)
	if err != nil {
		return nil, err
	}
	l, err := newLedger(ctx, s.stock)
	if err != nil {
		return nil, err
	}

	var o *model.OrdenCompra
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.lock(tx, id); err != nil {
			return err
		}
		if estado := o.EstadoNombre(); estado != model.CompraPendiente {
			return validation("solo se pueden recibir compras pendientes (estado actual: %s)", estado)
		}
		if err := s.entradas(tx, l, o, actor, time.Now()); err != nil {
			return err
		}
		o.EstadoID = recibidaID
		o.Estado = nil
		return s.repo.UpdateHeaderTx(tx, o)
	})
	if err != nil {
		return nil, txError(err, "error al recibir la compra")
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloCompras, "RECIBIR",
		fmt.Sprintf("Compra #%d recibida, %d ítems ingresados a stock", o.ID, len(o.Detalles)))
	return &dto.CompraRegistradaResponse{ID: o.ID, Total: o.Total, Estado: model.CompraRecibida}, nil
}

func (s *compraService) Modificar(ctx context.Context, actor *Principal, id int64, req dto.CompraRequest) (*dto.CompraRegistradaResponse, error) {
	detalles, total, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	var fecha *time.Time
	if req.Fecha != "" {
		f, err := parseFecha(req.Fecha)
		if err != nil {
			return nil, err
		}
		fecha = &f
	}
	l, err := newLedger(ctx, s.stock)
	if err != nil {
		return nil, err
	}

	var (
		o      *model.OrdenCompra
		estado string
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.lock(tx, id); err != nil {
			return err
		}
		estado = o.EstadoNombre()
		if estado == model.CompraAnulada {
			return validation("no se puede modificar una compra anulada")
		}
		now := time.Now()
		recibida := estado == model.CompraRecibida
		if recibida {
			for _, d := range o.Detalles {
				if err := l.salidaTx(tx, movimiento{
					productoID: d.ProductoID,
					cantidad:   d.Cantidad,
					obs:        fmt.Sprintf("Modificación compra #%d (reverso)", o.ID),
					refTipo:    model.RefCompra,
					refID:      &o.ID,
					usuarioID:  actor.ActorID(),
				}, now); err != nil {
					return err
				}
			}
		}
		if err := s.repo.ReplaceDetallesTx(tx, o.ID, detalles); err != nil {
			return err
		}
		o.Detalles = detalles
		if recibida {
			if err := s.entradas(tx, l, o, actor, now); err != nil {
				return err
			}
		}

		o.ProveedorID = req.ProveedorID
		if fecha != nil {
			o.Fecha = *fecha
		}
		o.Total = total
		o.Observaciones = trimPtr(req.Observaciones)
		o.Estado = nil
		return s.repo.UpdateHeaderTx(tx, o)
	})
	if err != nil {
		return nil, txError(err, "error al modificar la compra")
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloCompras, "MODIFICAR",
		fmt.Sprintf("Compra #%d modificada: %d ítems, total $%s", o.ID, len(detalles), total.StringFixed(2)))
	return &dto.CompraRegistradaResponse{ID: o.ID, Total: total, Estado: estado}, nil
}

func (s *compraService) Anular(ctx context.Context, actor *Principal, id int64, motivo string) error {
	anuladoID, err := s.estadoID(ctx, model.CompraAnulada)
	if err != nil {
		return err
	}
	l, err := newLedger(ctx, s.stock)
	if err != nil {
		return err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		motivo = "sin motivo"
	}

	var (
		o        *model.OrdenCompra
		revertir bool
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.lock(tx, id); err != nil {
			return err
		}
		switch o.EstadoNombre() {
		case model.CompraAnulada:
			return validation("La compra #%d ya está anulada", o.ID)
		case model.CompraRecibida:
			revertir = true
		}

		now := time.Now()
		if revertir {
			for _, d := range o.Detalles {
				if err := l.salidaTx(tx, movimiento{
					productoID: d.ProductoID,
					cantidad:   d.Cantidad,
					obs:        fmt.Sprintf("Anulación compra #%d", o.ID),
					refTipo:    model.RefCompra,
					refID:      &o.ID,
					usuarioID:  actor.ActorID(),
				}, now); err != nil {
					return err
				}
			}
		}

		nota := fmt.Sprintf(" | ANULADA: %s (%s)", motivo, now.Format("2006-01-02 15:04"))
		obs := nota
		if o.Observaciones != nil {
			obs = *o.Observaciones + nota
		}
		o.Observaciones = &obs
		o.EstadoID = anuladoID
		o.Estado = nil
		return s.repo.UpdateHeaderTx(tx, o)
	})
	if err != nil {
		return txError(err, "error al anular la compra")
	}

	desc := fmt.Sprintf("Compra #%d anulada: %s", o.ID, motivo)
	if revertir {
		desc += fmt.Sprintf(" (%d ítems descontados de stock)", len(o.Detalles))
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloCompras, "ANULAR", desc)
	return nil
}

func (s *compraService) lock(tx *gorm.DB, id int64) (*model.OrdenCompra, error) {
	o, err := s.repo.LockTx(tx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Compra no encontrada")
	}
	return o, err
}

func (s *compraService) entradas(tx *gorm.DB, l *ledger, o *model.OrdenCompra, actor *Principal, at time.Time) error {
	for _, d := range o.Detalles {
		if err := l.entradaTx(tx, movimiento{
			productoID: d.ProductoID,
			cantidad:   d.Cantidad,
			obs:        fmt.Sprintf("Compra #%d", o.ID),
			refTipo:    model.RefCompra,
			refID:      &o.ID,
			usuarioID:  actor.ActorID(),
		}, at); err != nil {
			return err
		}
	}
	return nil
}

func toCompraResponse(o *model.OrdenCompra) dto.CompraResponse {
	resp := dto.CompraResponse{
		ID:            o.ID,
		ProveedorID:   o.ProveedorID,
		Fecha:         fmtFecha(o.Fecha),
		Total:         o.Total,
		Estado:        o.EstadoNombre(),
		Observaciones: o.Observaciones,
		Detalles:      make([]dto.DetalleCompraResponse, len(o.Detalles)),
	}
	if o.Proveedor != nil {
		resp.Proveedor = o.Proveedor.Nombre
	}
	for i, d := range o.Detalles {
		item := dto.DetalleCompraResponse{
			ID:             d.ID,
			ProductoID:     d.ProductoID,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
		if d.Producto != nil {
			item.Producto = d.Producto.Nombre
		}
		resp.Detalles[i] = item
	}
	return resp
}

func (s *compraService) Listar(ctx context.Context, filter dto.CompraFilter) (*dto.ListResponse[dto.CompraResponse], error) {
	desde, hasta, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	page, limit := dto.Pagination(filter.Page, filter.Limit, 200)
	list, total, err := s.repo.List(ctx, repository.CompraFilter{
		ProveedorID: filter.ProveedorID,
		Estado:      strings.ToUpper(filter.Estado),
		Desde:       desde,
		Hasta:       hasta,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, internal("error al listar compras", err)
	}
	resp := &dto.ListResponse[dto.CompraResponse]{Data: make([]dto.CompraResponse, len(list)), Total: total, Page: page, Limit: limit}
	for i := range list {
		resp.Data[i] = toCompraResponse(&list[i])
	}
	return resp, nil
}

func (s *compraService) ObtenerPorID(ctx context.Context, id int64) (*dto.CompraResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Compra no encontrada")
	}
	if err != nil {
		return nil, internal("error al leer la compra", err)
	}
	resp := toCompraResponse(o)
	return &resp, nil
}

func (s *compraService) ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error) {
	list, _, err := s.productos.List(ctx, dto.ProductoFilter{Limit: 500})
	if err != nil {
		return nil, internal("error al listar productos", err)
	}
	resp := make([]dto.ProductoResponse, len(list))
	for i := range list {
		resp[i] = toProductoResponse(&list[i])
	}
	return resp, nil
}

func (s *compraService) ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error) {
	list, err := s.proveedores.List(ctx, dto.ProveedorFilter{})
	if err != nil {
		return nil, internal("error al listar proveedores", err)
	}
	resp := make([]dto.ProveedorResponse, len(list))
	for i := range list {
		resp[i] = toProveedorResponse(&list[i])
	}
	return resp, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
