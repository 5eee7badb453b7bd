// Package pdf genera el manifiesto de traslado que viaja con los repuestos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: MANIFIESTO DE TRASLADO  │  N° Traslado + Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: sucursal / ubicación   │  DESTINO: sucursal / ubic. │
//	│  FECHAS: creado / despachado / recibido                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | SKU | Descripción | Unidad | Cantidad            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: líneas / unidades                                  │
//	│  FOOTER: QR del traslado + firmas despacha / recibe          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
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

	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

var _ stock.TransferDocumentGenerator = (*ManifestGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ManifestGenerator implementa stock.TransferDocumentGenerator usando Maroto v2.
type ManifestGenerator struct{}

// NewManifestGenerator construye el generador.
func NewManifestGenerator() *ManifestGenerator { return &ManifestGenerator{} }

// TransferManifestPDF genera el PDF y devuelve sus bytes. from/to o repuestos ausentes
// se imprimen con su id.
func (g *ManifestGenerator) TransferManifestPDF(
	_ context.Context,
	t *entity.StockTransfer,
	from, to *entity.Location,
	parts map[string]*entity.Part,
) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("pdf: traslado nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Manifiesto de traslado "+t.TransferNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(endpointsRow(t, from, to))
	m.AddRows(datesRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(t, parts)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))
	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar manifiesto: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(t *entity.StockTransfer) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("MANIFIESTO DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Repuestos entre ubicaciones", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Estado: "+string(t.Status), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func endpointsRow(t *entity.StockTransfer, from, to *entity.Location) core.Row {
	block := func(title, branchID, locationID string, loc *entity.Location) core.Col {
		name := locationID
		if loc != nil {
			name = loc.Name
		}
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Sucursal: "+branchID, props.Text{Size: 7, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		block("ORIGEN", t.FromBranchID, t.FromLocationID, from),
		block("DESTINO", t.ToBranchID, t.ToLocationID, to),
	)
}

func datesRow(t *entity.StockTransfer) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Creado: %s   |   Despachado: %s   |   Recibido: %s",
			formatDate(&t.CreatedAt), formatDate(t.ShippedAt), formatDate(t.ReceivedAt),
		), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Unidad", 2, align.Center),
		h("Cantidad", 2, align.Right),
	)
}

func itemRows(t *entity.StockTransfer, parts map[string]*entity.Part) []core.Row {
	out := make([]core.Row, 0, len(t.Items))
	for i, it := range t.Items {
		sku, name, unit := it.PartID, "", ""
		if p, ok := parts[it.PartID]; ok && p != nil {
			sku, name, unit = p.SKU, p.Name, p.UnitMeasure
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(sku, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.Qty.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(t *entity.StockTransfer) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(4).Add(
			text.New("Líneas:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 1}),
			text.New("Unidades:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
		),
		col.New(2).Add(
			text.New(fmt.Sprint(len(t.Items)), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}),
			text.New(t.TotalQty().String(), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 5, Color: colorPrimary,
			}),
		),
	)
}

// footerRow QR con el id del traslado (para recibir escaneando) y espacios de firma.
func footerRow(t *entity.StockTransfer) core.Row {
	signature := func(label string) core.Component {
		return text.New("______________________________\n"+label, props.Text{
			Size: 8, Align: align.Center, Top: 18, Color: colorGray,
		})
	}
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(t.TransferNumber+"|"+t.ID, props.Rect{Percent: 90, Center: true})),
		col.New(4).Add(signature("Despacha")),
		col.New(4).Add(signature("Recibe")),
	)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}
