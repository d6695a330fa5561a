package infra

// pdf.go renders a persisted report as an A4 PDF in memory with go-pdf/fpdf:
// header with a Code128 barcode of the report reference, the parameters,
// a detail table and the stored totals.

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReporteLinea is one row of the report detail table.
type ReporteLinea struct {
	Fecha    time.Time
	Producto string
	Cantidad decimal.Decimal
	Monto    decimal.Decimal
}

// ReferenciaReporte is the text encoded in the report barcode.
func ReferenciaReporte(r *model.Reporte) string {
	return fmt.Sprintf("DN-%s-%06d", r.Tipo, r.ID)
}

// GenerateReportePDF returns the PDF bytes for r. productoNombre may be empty
// when the report spans every product.
func GenerateReportePDF(r *model.Reporte, productoNombre string, lineas []ReporteLinea) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW-60, 8, "Don Nildo", "", 0, "L", false, 0, "")

	ref := ReferenciaReporte(r)
	barcodePNG, err := code128PNG(ref, 240, 50)
	if err != nil {
		return nil, fmt.Errorf("pdf: barcode: %w", err)
	}
	opt := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(ref, opt, bytes.NewReader(barcodePNG))
	pdf.ImageOptions(ref, pageW-15-60, 12, 60, 12, false, opt, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Reporte de %s  ·  %s", tituloTipo(r.Tipo), ref)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// ── Parameters ───────────────────────────────────────────────────────────
	if productoNombre == "" {
		productoNombre = "Todos"
	}
	pdf.SetFont("Helvetica", "", 9)
	rows := [][2]string{
		{"Desde", r.FechaDesde.Format("02/01/2006")},
		{"Hasta", r.FechaHasta.Format("02/01/2006")},
		{"Producto", productoNombre},
		{"Generado", r.CreatedAt.Format("02/01/2006 15:04")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(30, 5, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-30, 5, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Detail table ─────────────────────────────────────────────────────────
	col := []float64{contentW * 0.18, contentW * 0.46, contentW * 0.16, contentW * 0.20}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Fecha", "Producto", "Cantidad", "Monto"} {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(col[i], 6, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range lineas {
		nombre := l.Producto
		if len([]rune(nombre)) > 48 {
			nombre = string([]rune(nombre)[:47]) + "…"
		}
		pdf.CellFormat(col[0], 5, l.Fecha.Format("02/01/2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col[1], 5, tr(nombre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col[2], 5, l.Cantidad.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(col[3], 5, "$"+l.Monto.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	if len(lineas) == 0 {
		pdf.CellFormat(contentW, 6, "Sin movimientos en el rango", "1", 1, "C", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col[0]+col[1], 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col[2], 6, r.CantidadTotal.StringFixed(3), "", 0, "R", false, 0, "")
	pdf.CellFormat(col[3], 6, "$"+r.MontoTotal.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

func code128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tituloTipo(tipo string) string {
	if tipo == model.ReporteCompras {
		return "compras"
	}
	return "ventas"
}
