package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
)

const topProductosLimit = 10

// ReporteMailQueue hands a report to the email worker, which renders the PDF
// again when the job runs.
type ReporteMailQueue interface {
	EnqueueReporteEmail(ctx context.Context, reporteID int64, to string) error
}

type ReporteService interface {
	Dashboard(ctx context.Context, rango dto.RangoFechas) (*dto.DashboardResponse, error)
	Crear(ctx context.Context, actor *Principal, req dto.CrearReporteRequest) (*dto.ReporteResponse, error)
	Listar(ctx context.Context, filter dto.ReporteFilter) (*dto.ListResponse[dto.ReporteResponse], error)
	Obtener(ctx context.Context, id int64) (*dto.ReporteResponse, error)
	Eliminar(ctx context.Context, actor *Principal, ids []int64) (int64, error)
	// ProductosPorAlcance lists the products that appear in the sales or purchase history.
	ProductosPorAlcance(ctx context.Context, tipo string) ([]dto.ProductoResponse, error)
	// PDF renders the report; the second value is the suggested file name.
	PDF(ctx context.Context, id int64) ([]byte, string, error)
	Enviar(ctx context.Context, actor *Principal, id int64, email string) error
}

type reporteService struct {
	repo  repository.ReporteRepository
	mail  ReporteMailQueue
	audit AuditoriaService
}

func NewReporteService(repo repository.ReporteRepository, mail ReporteMailQueue, audit AuditoriaService) ReporteService {
	return &reporteService{repo: repo, mail: mail, audit: audit}
}

// rango parses mandatory inclusive bounds into the repository's half-open form.
func rango(desde, hasta string) (repository.Rango, error) {
	if desde == "" || hasta == "" {
		return repository.Rango{}, validation("los parámetros 'desde' y 'hasta' son obligatorios")
	}
	d, h, err := parseRango(desde, hasta)
	if err != nil {
		return repository.Rango{}, err
	}
	return repository.Rango{Desde: *d, Hasta: *h}, nil
}

func toSerie(rows []repository.Agregado) []dto.SerieItem {
	out := make([]dto.SerieItem, len(rows))
	for i, r := range rows {
		out[i] = dto.SerieItem{Clave: r.Clave, Cantidad: r.Cantidad, Monto: r.Monto.Round(2)}
	}
	return out
}

func (s *reporteService) Dashboard(ctx context.Context, rf dto.RangoFechas) (*dto.DashboardResponse, error) {
	r, err := rango(rf.Desde, rf.Hasta)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{Desde: rf.Desde, Hasta: rf.Hasta}
	if _, resp.TotalVentas, err = s.repo.Totales(ctx, model.ReporteVentas, nil, r); err != nil {
		return nil, internal("error al calcular ventas", err)
	}
	if _, resp.TotalCompras, err = s.repo.Totales(ctx, model.ReporteCompras, nil, r); err != nil {
		return nil, internal("error al calcular compras", err)
	}
	resp.TotalVentas = resp.TotalVentas.Round(2)
	resp.TotalCompras = resp.TotalCompras.Round(2)
	if resp.CantidadVentas, err = s.repo.ContarVentas(ctx, r); err != nil {
		return nil, internal("error al contar ventas", err)
	}

	series := []struct {
		dst *[]dto.SerieItem
		run func() ([]repository.Agregado, error)
	}{
		{&resp.VentasPorDia, func() ([]repository.Agregado, error) { return s.repo.PorDia(ctx, model.ReporteVentas, r) }},
		{&resp.ComprasPorDia, func() ([]repository.Agregado, error) { return s.repo.PorDia(ctx, model.ReporteCompras, r) }},
		{&resp.PorCategoria, func() ([]repository.Agregado, error) { return s.repo.PorCategoria(ctx, r) }},
		{&resp.PorMaterial, func() ([]repository.Agregado, error) { return s.repo.PorMaterial(ctx, r) }},
		{&resp.TopProductos, func() ([]repository.Agregado, error) { return s.repo.TopProductos(ctx, r, topProductosLimit) }},
	}
	for _, sr := range series {
		rows, err := sr.run()
		if err != nil {
			return nil, internal("error al calcular el tablero", err)
		}
		*sr.dst = toSerie(rows)
	}
	return resp, nil
}

func toReporteResponse(r *model.Reporte) dto.ReporteResponse {
	resp := dto.ReporteResponse{
		ID:            r.ID,
		Tipo:          r.Tipo,
		ProductoID:    r.ProductoID,
		Desde:         fmtFecha(r.FechaDesde),
		Hasta:         fmtFecha(r.FechaHasta),
		CantidadTotal: r.CantidadTotal,
		MontoTotal:    r.MontoTotal,
		CreatedAt:     fmtFechaHora(r.CreatedAt),
	}
	if r.Producto != nil {
		nombre := r.Producto.Nombre
		resp.Producto = &nombre
	}
	return resp
}

func (s *reporteService) Crear(ctx context.Context, actor *Principal, req dto.CrearReporteRequest) (*dto.ReporteResponse, error) {
	tipo := strings.ToUpper(req.Tipo)
	if tipo != model.ReporteVentas && tipo != model.ReporteCompras {
		return nil, validation("tipo de reporte inválido: %s", req.Tipo)
	}
	r, err := rango(req.Desde, req.Hasta)
	if err != nil {
		return nil, err
	}
	cantidad, monto, err := s.repo.Totales(ctx, tipo, req.ProductoID, r)
	if err != nil {
		return nil, internal("error al calcular el reporte", err)
	}

	rep := &model.Reporte{
		Tipo:          tipo,
		ProductoID:    req.ProductoID,
		FechaDesde:    r.Desde,
		FechaHasta:    r.Hasta.AddDate(0, 0, -1),
		CantidadTotal: cantidad,
		MontoTotal:    monto.Round(2),
		UsuarioID:     actor.ActorID(),
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, internal("error al guardar el reporte", err)
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloReportes, "CREAR",
		fmt.Sprintf("Reporte #%d de %s del %s al %s", rep.ID, strings.ToLower(tipo), req.Desde, req.Hasta))
	return s.Obtener(ctx, rep.ID)
}

func (s *reporteService) Listar(ctx context.Context, filter dto.ReporteFilter) (*dto.ListResponse[dto.ReporteResponse], error) {
	page, limit := dto.Pagination(filter.Page, filter.Limit, 200)
	list, total, err := s.repo.List(ctx, strings.ToUpper(filter.Tipo), page, limit)
	if err != nil {
		return nil, internal("error al listar reportes", err)
	}
	resp := &dto.ListResponse[dto.ReporteResponse]{Data: make([]dto.ReporteResponse, len(list)), Total: total, Page: page, Limit: limit}
	for i := range list {
		resp.Data[i] = toReporteResponse(&list[i])
	}
	return resp, nil
}

func (s *reporteService) Obtener(ctx context.Context, id int64) (*dto.ReporteResponse, error) {
	rep, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toReporteResponse(rep)
	return &resp, nil
}

func (s *reporteService) Eliminar(ctx context.Context, actor *Principal, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, validation("debe indicar al menos un reporte")
	}
	n, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, internal("error al eliminar reportes", err)
	}
	if n == 0 {
		return 0, notFound("Ningún reporte encontrado")
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloReportes, "ELIMINAR",
		fmt.Sprintf("%d reportes eliminados (ids %v)", n, ids))
	return n, nil
}

func (s *reporteService) ProductosPorAlcance(ctx context.Context, tipo string) ([]dto.ProductoResponse, error) {
	tipo = strings.ToUpper(tipo)
	if tipo != model.ReporteVentas && tipo != model.ReporteCompras {
		return nil, validation("alcance inválido: %s", tipo)
	}
	list, err := s.repo.ProductosConMovimiento(ctx, tipo)
	if err != nil {
		return nil, internal("error al listar productos", err)
	}
	resp := make([]dto.ProductoResponse, len(list))
	for i := range list {
		resp[i] = toProductoResponse(&list[i])
	}
	return resp, nil
}

func (s *reporteService) PDF(ctx context.Context, id int64) ([]byte, string, error) {
	rep, err := s.find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	r := repository.Rango{Desde: rep.FechaDesde, Hasta: rep.FechaHasta.AddDate(0, 0, 1)}
	rows, err := s.repo.Lineas(ctx, rep.Tipo, rep.ProductoID, r)
	if err != nil {
		return nil, "", internal("error al leer el detalle del reporte", err)
	}
	lineas := make([]infra.ReporteLinea, len(rows))
	for i, l := range rows {
		lineas[i] = infra.ReporteLinea{Fecha: l.Fecha, Producto: l.Producto, Cantidad: l.Cantidad, Monto: l.Monto}
	}
	nombre := ""
	if rep.Producto != nil {
		nombre = rep.Producto.Nombre
	}
	out, err := infra.GenerateReportePDF(rep, nombre, lineas)
	if err != nil {
		return nil, "", internal("error al generar el PDF", err)
	}
	return out, strings.ToLower(infra.ReferenciaReporte(rep)) + ".pdf", nil
}

func (s *reporteService) Enviar(ctx context.Context, actor *Principal, id int64, email string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if s.mail == nil {
		return internal("el envío de correo no está configurado", nil)
	}
	if err := s.mail.EnqueueReporteEmail(ctx, id, strings.TrimSpace(email)); err != nil {
		return internal("no se pudo encolar el envío", err)
	}
	s.audit.Registrar(ctx, actor.ActorID(), ModuloReportes, "ENVIAR", fmt.Sprintf("Reporte #%d enviado a %s", id, email))
	return nil
}

func (s *reporteService) find(ctx context.Context, id int64) (*model.Reporte, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, notFound("Reporte no encontrado")
	}
	if err != nil {
		return nil, internal("error al leer el reporte", err)
	}
	return rep, nil
}
