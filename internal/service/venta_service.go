package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, actor *Principal, req dto.VentaRequest) (*dto.VentaResponse, error)
	Anular(ctx context.Context, actor *Principal, id int64, motivo string) error
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.ListResponse[dto.VentaResponse], error)
	ObtenerPorID(ctx context.Context, id int64) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo      repository.VentaRepository
	productos repository.ProductoRepository
	stock     repository.StockRepository
	audit     AuditoriaService
}

func NewVentaService(
	repo repository.VentaRepository,
	productos repository.ProductoRepository,
	stock repository.StockRepository,
	audit AuditoriaService,
) VentaService {
	return &ventaService{repo: repo, productos: productos, stock: stock, audit: audit}
}

// ── Registrar ────────────────────────────────────────────────────────────────
// 1. Validate items and resolve prices (outside the TX)
// 2. BEGIN TX: lock stock rows in producto_id order, check availability
// 3. nextval remito, insert venta + detalles, SALIDA per line
// 4. COMMIT, then audit

func (s *ventaService) Registrar(ctx context.Context, actor *Principal, req dto.VentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, validation("la venta debe tener al menos un ítem")
	}
	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}

	var errs itemErrors
	ids := make([]int64, 0, len(req.Items))
	for i, it := range req.Items {
		if it.ProductoID <= 0 {
			errs.add(i+1, "producto inválido")
		}
		errs.add(i+1, checkCantidad(it.Cantidad))
		if it.PrecioUnitario != nil {
			errs.add(i+1, checkPrecio(*it.PrecioUnitario))
		}
		ids = append(ids, it.ProductoID)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	productos, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internal("error al leer productos", err)
	}
	byID := make(map[int64]*model.Producto, len(productos))
	for i := range productos {
		byID[productos[i].ID] = &productos[i]
	}

	detalles := make([]model.DetalleVenta, len(req.Items))
	requerido := make(map[int64]decimal.Decimal, len(req.Items))
	total := decimal.Zero
	for i, it := range req.Items {
		p, ok := byID[it.ProductoID]
		if !ok || !p.Activo {
			return nil, validation("Ítem %d: producto %d inexistente o inactivo", i+1, it.ProductoID)
		}
		precio := p.PrecioUnitario
		if it.PrecioUnitario != nil {
			precio = *it.PrecioUnitario
		}
		if !precio.IsPositive() {
			return nil, validation("Ítem %d: %s no tiene precio de venta", i+1, p.Nombre)
		}
		subtotal := it.Cantidad.Mul(precio)
		detalles[i] = model.DetalleVenta{
			ProductoID:     it.ProductoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: precio,
			Subtotal:       subtotal,
		}
		requerido[it.ProductoID] = requerido[it.ProductoID].Add(it.Cantidad)
		total = total.Add(subtotal)
	}
	total = total.Round(2)

	l, err := newLedger(ctx, s.stock)
	if err != nil {
		return nil, err
	}

	venta := &model.Venta{
		Cliente:       trimPtr(req.Cliente),
		Fecha:         fecha,
		Total:         total,
		Estado:        model.VentaCompletada,
		Observaciones: trimPtr(req.Observaciones),
		UsuarioID:     actor.ActorID(),
		Detalles:      detalles,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orden := make([]int64, 0, len(requerido))
		for id := range requerido {
			orden = append(orden, id)
		}
		sort.Slice(orden, func(i, j int) bool { return orden[i] < orden[j] })
		for _, id := range orden {
			disponible := decimal.Zero
			st, err := s.stock.LockTx(tx, id)
			switch {
			case err == nil:
				disponible = st.Cantidad
			case !repository.IsNotFound(err):
				return err
			}
			if disponible.LessThan(requerido[id]) {
				return validation("Stock insuficiente para %s: disponible %s, solicitado %s",
					byID[id].Nombre, disponible.String(), requerido[id].String())
			}
		}

		num, err := s.repo.NextRemitoNumber(ctx, tx)
		if err != nil {
			return err
		}
		venta.NumeroRemito = num
		if err := s.repo.CreateTx(tx, venta); err != nil {
			return err
		}

		now := time.Now()
		for _, d := range venta.Detalles {
			if err := l.salidaTx(tx, movimiento{
				productoID: d.ProductoID,
				cantidad:   d.Cantidad,
				obs:        fmt.Sprintf("Venta remito #%d", num),
				refTipo:    model.RefVenta,
				refID:      &venta.ID,
				usuarioID:  actor.ActorID(),
			}, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "error al registrar la venta")
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloVentas, "REGISTRAR",
		fmt.Sprintf("Venta #%d remito %d por $%s", venta.ID, venta.NumeroRemito, total.StringFixed(2)))

	for i := range venta.Detalles {
		venta.Detalles[i].Producto = byID[venta.Detalles[i].ProductoID]
	}
	resp := toVentaResponse(venta)
	return &resp, nil
}

// ── Anular ───────────────────────────────────────────────────────────────────

func (s *ventaService) Anular(ctx context.Context, actor *Principal, id int64, motivo string) error {
	l, err := newLedger(ctx, s.stock)
	if err != nil {
		return err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		motivo = "sin motivo"
	}

	var v *model.Venta
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		v, err = s.repo.LockTx(tx, id)
		if repository.IsNotFound(err) {
			return notFound("Venta no encontrada")
		}
		if err != nil {
			return err
		}
		if v.Estado != model.VentaCompletada {
			return validation("La venta #%d ya está anulada", v.ID)
		}

		now := time.Now()
		for _, d := range v.Detalles {
			if err := l.entradaTx(tx, movimiento{
				productoID: d.ProductoID,
				cantidad:   d.Cantidad,
				obs:        fmt.Sprintf("Anulación venta remito #%d", v.NumeroRemito),
				refTipo:    model.RefVenta,
				refID:      &v.ID,
				usuarioID:  actor.ActorID(),
			}, now); err != nil {
				return err
			}
		}

		nota := fmt.Sprintf(" | ANULADA: %s (%s)", motivo, now.Format("2006-01-02 15:04"))
		obs := nota
		if v.Observaciones != nil {
			obs = *v.Observaciones + nota
		}
		return s.repo.UpdateEstadoTx(tx, v.ID, model.VentaAnulada, &obs)
	})
	if err != nil {
		return txError(err, "error al anular la venta")
	}

	s.audit.Registrar(ctx, actor.ActorID(), ModuloVentas, "ANULAR",
		fmt.Sprintf("Venta #%d remito %d anulada: %s", v.ID, v.NumeroRemito, motivo))
	return nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.ListResponse[dto.VentaResponse], error) {
	desde, hasta, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	page, limit := dto.Pagination(filter.Page, filter.Limit, 200)
	list, total, err := s.repo.List(ctx, repository.VentaFilter{
		Estado: strings.ToUpper(filter.Estado),
		Desde:  desde,
		Hasta:  hasta,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, internal("error al listar ventas", err)
	}
	resp := &dto.ListResponse[dto.VentaResponse]{Data: make([]dto.VentaResponse, len(list)), Total: total, Page: page, Limit: limit}
	for i := range list {
		resp.Data[i] = toVentaResponse(&list[i])
	}
	return resp, nil
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id int64) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Venta no encontrada")
	}
	if err != nil {
		return nil, internal("error al leer la venta", err)
	}
	resp := toVentaResponse(v)
	return &resp, nil
}

func toVentaResponse(v *model.Venta) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:            v.ID,
		NumeroRemito:  v.NumeroRemito,
		Cliente:       v.Cliente,
		Fecha:         fmtFecha(v.Fecha),
		Total:         v.Total,
		Estado:        v.Estado,
		Observaciones: v.Observaciones,
		Detalles:      make([]dto.DetalleVentaResponse, len(v.Detalles)),
	}
	for i, d := range v.Detalles {
		item := dto.DetalleVentaResponse{
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
