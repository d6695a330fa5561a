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

type StockService interface {
	// Pesaje records weighed material entering stock. All items are validated
	// before anything is written; the writes share one transaction.
	Pesaje(ctx context.Context, actor *Principal, req dto.PesajeRequest) (*dto.PesajeResponse, error)
	ListarStock(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.StockResponse], error)
	Movimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.ListResponse[dto.MovimientoResponse], error)
	Conciliar(ctx context.Context, productoID int64) (*dto.ConciliacionResponse, error)
}

type stockService struct {
	repo      repository.StockRepository
	productos repository.ProductoRepository
	audit     AuditoriaService
}

func NewStockService(repo repository.StockRepository, productos repository.ProductoRepository, audit AuditoriaService) StockService {
	return &stockService{repo: repo, productos: productos, audit: audit}
}

func toStockResponse(p *model.Producto) dto.StockResponse {
	r := dto.StockResponse{ProductoID: p.ID, Producto: p.Nombre, Cantidad: decimal.Zero}
	if p.Tipo != nil {
		r.Tipo = p.Tipo.Nombre
	}
	if p.Categoria != nil {
		r.Categoria = p.Categoria.Nombre
	}
	if p.Stock != nil {
		r.Cantidad = p.Stock.Cantidad
		r.FechaUltimaActualiza = fmtFechaHora(p.Stock.FechaUltimaActualiza)
	}
	return r
}

func (s *stockService) Pesaje(ctx context.Context, actor *Principal, req dto.PesajeRequest) (*dto.PesajeResponse, error) {
	if len(req.Items) == 0 {
		return nil, validation("el pesaje debe tener al menos un ítem")
	}

	// duplicates are summed, first appearance keeps its position
	orden := make([]int64, 0, len(req.Items))
	totales := make(map[int64]decimal.Decimal, len(req.Items))
	var errs itemErrors
	for i, it := range req.Items {
		if it.ProductoID <= 0 {
			errs.add(i+1, "producto inválido")
		}
		errs.add(i+1, checkCantidad(it.Cantidad))
		if _, ok := totales[it.ProductoID]; !ok {
			orden = append(orden, it.ProductoID)
		}
		totales[it.ProductoID] = totales[it.ProductoID].Add(it.Cantidad)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	productos, err := s.productos.FindByIDs(ctx, orden)
	if err != nil {
		return nil, internal("error al leer productos", err)
	}
	byID := make(map[int64]*model.Producto, len(productos))
	for i := range productos {
		byID[productos[i].ID] = &productos[i]
	}
	for _, id := range orden {
		p, ok := byID[id]
		if !ok || !p.Activo {
			return nil, validation("producto %d inexistente o inactivo", id)
		}
	}

	l, err := newLedger(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	obs := "Pesaje"
	if o := strings.TrimSpace(req.Observaciones); o != "" {
		obs += ": " + o
	}
	now := time.Now()
	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		for _, id := range orden {
			if err := l.entradaTx(tx, movimiento{
				productoID: id,
				cantidad:   totales[id],
				obs:        obs,
				refTipo:    model.RefPesaje,
				usuarioID:  actor.ActorID(),
			}, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, internal("error al registrar el pesaje", err)
	}

	partes := make([]string, len(orden))
	for i, id := range orden {
		partes[i] = fmt.Sprintf("%s +%s", byID[id].Nombre, totales[id].String())
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloStock, "PESAJE", strings.Join(partes, ", "))

	actualizados, err := s.productos.FindByIDs(ctx, orden)
	if err != nil {
		return nil, internal("error al leer stock", err)
	}
	resp := &dto.PesajeResponse{Items: make([]dto.StockResponse, 0, len(actualizados))}
	for i := range actualizados {
		resp.Items = append(resp.Items, toStockResponse(&actualizados[i]))
	}
	return resp, nil
}

func (s *stockService) ListarStock(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.StockResponse], error) {
	filter.Page, filter.Limit = dto.Pagination(filter.Page, filter.Limit, 500)
	list, total, err := s.productos.List(ctx, filter)
	if err != nil {
		return nil, internal("error al listar stock", err)
	}
	resp := &dto.ListResponse[dto.StockResponse]{Data: make([]dto.StockResponse, len(list)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range list {
		resp.Data[i] = toStockResponse(&list[i])
	}
	return resp, nil
}

func (s *stockService) Movimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.ListResponse[dto.MovimientoResponse], error) {
	tipo := strings.ToUpper(filter.Tipo)
	if tipo != "" && tipo != model.MovimientoEntrada && tipo != model.MovimientoSalida {
		return nil, validation("tipo de movimiento inválido: %s", filter.Tipo)
	}
	desde, hasta, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	page, limit := dto.Pagination(filter.Page, filter.Limit, 500)
	list, total, err := s.repo.ListMovimientos(ctx, repository.MovimientoStockFilter{
		ProductoID: filter.ProductoID,
		Tipo:       tipo,
		Desde:      desde,
		Hasta:      hasta,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, internal("error al listar movimientos", err)
	}
	resp := &dto.ListResponse[dto.MovimientoResponse]{Data: make([]dto.MovimientoResponse, len(list)), Total: total, Page: page, Limit: limit}
	for i, m := range list {
		item := dto.MovimientoResponse{
			ID:             m.ID,
			ProductoID:     m.ProductoID,
			Cantidad:       m.Cantidad,
			Fecha:          fmtFechaHora(m.Fecha),
			Observaciones:  m.Observaciones,
			ReferenciaTipo: m.ReferenciaTipo,
			ReferenciaID:   m.ReferenciaID,
		}
		if m.Producto != nil {
			item.Producto = m.Producto.Nombre
		}
		if m.TipoMovimiento != nil {
			item.Tipo = m.TipoMovimiento.Nombre
		}
		resp.Data[i] = item
	}
	return resp, nil
}

func (s *stockService) Conciliar(ctx context.Context, productoID int64) (*dto.ConciliacionResponse, error) {
	if _, err := s.productos.FindByID(ctx, productoID); err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("Producto no encontrado")
		}
		return nil, internal("error al leer producto", err)
	}
	actual := decimal.Zero
	st, err := s.repo.Find(ctx, productoID)
	switch {
	case err == nil:
		actual = st.Cantidad
	case !repository.IsNotFound(err):
		return nil, internal("error al leer stock", err)
	}
	entradas, salidas, err := s.repo.Balance(ctx, productoID)
	if err != nil {
		return nil, internal("error al leer movimientos", err)
	}
	dif := actual.Sub(entradas.Sub(salidas))
	return &dto.ConciliacionResponse{
		ProductoID: productoID,
		Stock:      actual,
		Entradas:   entradas,
		Salidas:    salidas,
		Diferencia: dif,
		Conciliado: dif.IsZero(),
	}, nil
}
