// Package pdf genera la remisión de traslado entre sucursales con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: REMISIÓN DE TRASLADO │  N° TR + Estado + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN (código, nombre, dir.) │ DESTINO (código, nombre)    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PRODUCTO: id | cantidad | costo unit. | valor               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KARDEX: SM- | tipo | antes | delta | después                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + firmas                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ ports.TransferPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.TransferPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador con separadores de miles en español.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateTransferPDF genera el PDF de la remisión y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTransferPDF(doc ports.TransferDocument) ([]byte, error) {
	if doc.Transfer == nil || doc.From == nil || doc.To == nil {
		return nil, fmt.Errorf("pdf: remisión incompleta")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión "+doc.Transfer.TransferNumber, true).
		WithAuthor(doc.From.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Transfer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(branchesRow(doc.From, doc.To))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(productHeaderRow())
	m.AddRows(g.productRow(doc.Transfer, doc.Source))

	if len(doc.Movements) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(movementHeaderRow())
		for _, r := range g.movementRows(doc.Movements) {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(t *entity.StockTransfer) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REMISIÓN DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Producto: "+t.ProductID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Estado: "+statusLabel(t.Status), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorPrimary,
			}),
			text.New("Creado: "+formatDate(&t.CreatedAt), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func branchesRow(from, to *entity.Branch) core.Row {
	side := func(title string, b *entity.Branch) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(b.Code+" · "+b.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(nonEmpty(b.Address, "—"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(side("SUCURSAL ORIGEN", from), side("SUCURSAL DESTINO", to))
}

func productHeaderRow() core.Row {
	return tableHeader([]headerCell{
		{"Producto", 5, align.Left},
		{"Cantidad", 2, align.Center},
		{"Costo unit.", 2, align.Right},
		{"Valor", 3, align.Right},
	})
}

func (g *MarotoPDFGenerator) productRow(t *entity.StockTransfer, src *entity.StockRecord) core.Row {
	cost, value := "—", "—"
	if src != nil {
		cost = g.money(src.CostPrice)
		value = g.money(src.CostPrice.Mul(decimal.NewFromInt(t.Quantity)))
	}
	return row.New(7).Add(
		col.New(5).Add(text.New(t.ProductID, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(g.printer.Sprintf("%d", t.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(cost, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(3).Add(text.New(value, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func movementHeaderRow() core.Row {
	return tableHeader([]headerCell{
		{"Movimiento", 3, align.Left},
		{"Tipo", 3, align.Left},
		{"Antes", 2, align.Right},
		{"Delta", 2, align.Right},
		{"Después", 2, align.Right},
	})
}

func (g *MarotoPDFGenerator) movementRows(movs []*entity.StockMovement) []core.Row {
	out := make([]core.Row, 0, len(movs))
	for _, m := range movs {
		out = append(out, row.New(6).Add(
			col.New(3).Add(text.New(m.MovementID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(string(m.Type), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(g.printer.Sprintf("%d", m.QuantityBefore), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(g.printer.Sprintf("%+d", m.QuantityDelta), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(g.printer.Sprintf("%d", m.QuantityAfter), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func footerRows(doc ports.TransferDocument) []core.Row {
	t := doc.Transfer
	signatures := fmt.Sprintf("Solicita: %s\nAprueba: %s   (%s)\nRecibe: %s   (%s)",
		t.InitiatedBy,
		nonEmpty(t.ApprovedBy, "—"), formatDate(t.ShippedAt),
		nonEmpty(t.ReceivedBy, "—"), formatDate(t.ReceivedAt),
	)
	if doc.VerifyText == "" {
		return []core.Row{row.New(20).Add(col.New(12).Add(
			text.New(signatures, props.Text{Size: 8, Top: 2, Color: colorGray}),
		))}
	}
	return []core.Row{row.New(45).Add(
		col.New(4).Add(code.NewQr(doc.VerifyText, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Escanea el código QR para verificar\nnúmero, producto, ruta y cantidad.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(signatures, props.Text{Size: 8, Top: 18, Left: 3}),
		),
	)}
}

// ── helpers ───────────────────────────────────────────────────────────────────

type headerCell struct {
	label string
	size  int
	align align.Type
}

func tableHeader(cells []headerCell) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary}))
	}
	return row.New(8).Add(cols...)
}

// money formatea con separador de miles y dos decimales: 1234.5 → "$1.234,50".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$%.2f", f)
}

func statusLabel(s entity.TransferStatus) string {
	switch s {
	case entity.TransferPending:
		return "Pendiente"
	case entity.TransferInTransit:
		return "En tránsito"
	case entity.TransferCompleted:
		return "Recibido"
	case entity.TransferCancelled:
		return "Cancelado"
	}
	return string(s)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
