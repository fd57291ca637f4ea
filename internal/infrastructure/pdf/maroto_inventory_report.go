// Package pdf genera el reporte PDF del inventario agrupado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de inventario + Tienda │ Fecha + Filtros   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CATEGORÍA (activa/inactiva, n variantes)                    │
//	│    PRODUCTO                                                  │
//	│    TABLA: Variante | Sucursal | Stock | Estado | Precio | Valor │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Variantes / Unidades / Valor / Ediciones pendientes│
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	inv "github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
)

var _ appinventory.ReportGenerator = (*MarotoInventoryReport)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorWarning = &props.Color{Red: 190, Green: 120, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoInventoryReport implementa inventory.ReportGenerator usando Maroto v2.
type MarotoInventoryReport struct {
	author string
}

// NewMarotoInventoryReport construye el generador; author aparece en los metadatos del PDF.
func NewMarotoInventoryReport(author string) *MarotoInventoryReport {
	return &MarotoInventoryReport{author: author}
}

// reportTotals acumulados del reporte (sobre el stock mostrado).
type reportTotals struct {
	variants int
	units    int
	value    decimal.Decimal
	pending  int
}

// GenerateInventoryReport genera el PDF y devuelve sus bytes.
func (g *MarotoInventoryReport) GenerateInventoryReport(ctx context.Context, r appinventory.InventoryReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario "+r.StoreID, true).
		WithAuthor(nonEmpty(g.author, "inventario-dashboard"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	totals := reportTotals{value: decimal.Zero}
	for _, cat := range r.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddRows(categoryRow(cat))
		for _, p := range cat.Products {
			m.AddRows(productRow(p))
			m.AddRows(tableHeaderRow())
			for _, v := range p.Variants {
				m.AddRows(variantRow(v, r.Edits, &totals))
			}
		}
		m.AddRows(line.NewRow(2))
	}
	if len(r.Groups) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin filas para los filtros aplicados.", props.Text{Size: 9, Top: 3, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(totals))
	if totals.pending > 0 {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("* Stock con edición pendiente de guardar; entre paréntesis el stock confirmado por el servidor.",
				props.Text{Size: 7, Color: colorGray, Top: 1}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + tienda (izq) y fecha + filtros (der).
func headerRow(r appinventory.InventoryReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REPORTE DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tienda: "+r.StoreID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(filterSummary(r.Filter), props.Text{
				Size: 7, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func categoryRow(cat inv.CategoryGroup) core.Row {
	status := "activa"
	if !cat.IsActive {
		status = "inactiva"
	}
	return row.New(9).Add(
		col.New(8).Add(text.New(nonEmpty(cat.CategoryName, "Sin categoría"), props.Text{
			Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New(fmt.Sprintf("%s · %d variantes", status, countVariants(cat)), props.Text{
			Size: 8, Align: align.Right, Top: 3, Color: colorGray,
		})),
	)
}

func productRow(p inv.ProductGroup) core.Row {
	name := p.ProductName
	if !p.IsActive {
		name += " (inactivo)"
	}
	return row.New(7).Add(col.New(12).Add(text.New(name, props.Text{
		Style: fontstyle.Bold, Size: 9, Top: 2, Left: 3,
	})))
}

// tableHeaderRow: cabecera de la tabla de variantes.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorGray, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(5).Add(
		h("Variante", 3, align.Left),
		h("Sucursal", 3, align.Left),
		h("Stock", 1, align.Right),
		h("Estado", 2, align.Center),
		h("Precio", 1, align.Right),
		h("Valor", 2, align.Right),
	)
}

// variantRow: una fila por variante; el stock es el mostrado (pendiente si existe).
func variantRow(v entity.InventoryRecord, edits inv.PendingEdits, totals *reportTotals) core.Row {
	stock := inv.DisplayStock(edits, v)
	stockLabel := strconv.Itoa(stock)
	if _, pending := edits[v.InventoryID]; pending {
		stockLabel = fmt.Sprintf("%d* (%d)", stock, v.Stock)
		totals.pending++
	}
	value := inv.StockValue(stock, v.VariantPrice)
	totals.variants++
	totals.units += stock
	totals.value = totals.value.Add(value)

	return row.New(5).Add(
		col.New(3).Add(text.New(nonEmpty(v.VariantName, "—"), props.Text{Size: 8, Left: 1})),
		col.New(3).Add(text.New(nonEmpty(v.BranchName, v.BranchID), props.Text{Size: 8, Left: 1})),
		col.New(1).Add(text.New(stockLabel, props.Text{Size: 8, Align: align.Right, Right: 1})),
		col.New(2).Add(text.New(statusLabel(v.StockStatus), props.Text{
			Size: 7, Align: align.Center, Color: statusColor(v.StockStatus),
		})),
		col.New(1).Add(text.New("$"+formatMoney(v.VariantPrice.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Right: 1})),
		col.New(2).Add(text.New("$"+formatMoney(value.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Right: 1})),
	)
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(t reportTotals) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(24).Add(
		col.New(6),
		col.New(3).Add(
			label("Variantes:", 1),
			label("Unidades:", 6),
			label("Valor del stock:", 11),
			label("Ediciones pendientes:", 16),
		),
		col.New(3).Add(
			value(strconv.Itoa(t.variants), 1),
			value(formatMoney(strconv.Itoa(t.units)), 6),
			value("$"+formatMoney(t.value.StringFixed(0)), 11),
			value(strconv.Itoa(t.pending), 16),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func countVariants(cat inv.CategoryGroup) int {
	n := 0
	for _, p := range cat.Products {
		n += len(p.Variants)
	}
	return n
}

func statusLabel(s entity.StockStatus) string {
	switch s {
	case entity.StockStatusOutOfStock:
		return "AGOTADO"
	case entity.StockStatusLowStock:
		return "STOCK BAJO"
	default:
		return "DISPONIBLE"
	}
}

func statusColor(s entity.StockStatus) *props.Color {
	switch s {
	case entity.StockStatusOutOfStock:
		return colorDanger
	case entity.StockStatusLowStock:
		return colorWarning
	default:
		return colorGray
	}
}

// filterSummary describe en una línea los filtros aplicados.
func filterSummary(f inv.FilterState) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Sucursal", f.BranchID)
	add("Categoría", f.CategoryID)
	add("Producto", f.ProductID)
	add("Variante", f.VariantID)
	add("Búsqueda", f.SearchTerm)
	if f.LowStockOnly {
		parts = append(parts, "solo stock bajo")
	}
	if f.OutOfStockOnly {
		parts = append(parts, "solo agotados")
	}
	if len(parts) == 0 {
		return "Sin filtros"
	}
	return strings.Join(parts, " · ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
