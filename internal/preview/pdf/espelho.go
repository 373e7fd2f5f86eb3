// Package pdf renders the espelho, a non-fiscal PDF mirror of the
// review summary for download before submission.
package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/emitia/nfse-backoffice/internal/preview"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the espelho PDF from a built summary.
func (r *Renderer) Render(ctx context.Context, resumo preview.Resumo) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Espelho da NFS-e (não possui valor fiscal)", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Prestador", props.Text{Style: fontstyle.Bold}),
			text.New(resumo.Emitente.RazaoSocial, props.Text{Top: 5}),
			text.New("CNPJ: "+resumo.Emitente.CNPJ, props.Text{Top: 9}),
			text.New("Serviço: "+resumo.Emitente.CodigoServico+"  CNAE: "+resumo.Emitente.CNAE, props.Text{Top: 13}),
		),
		col.New(6).Add(
			text.New("Tomador", props.Text{Style: fontstyle.Bold}),
			text.New(resumo.Tomador.Nome, props.Text{Top: 5}),
			text.New(resumo.Tomador.Documento, props.Text{Top: 9}),
			text.New("Competência: "+resumo.Competencia, props.Text{Top: 13}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Sócio", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Valor", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Participação", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, linha := range resumo.Linhas {
		m.AddRow(7,
			text.NewCol(6, linha.Nome, props.Text{Size: 9}),
			text.NewCol(3, linha.Valor, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, linha.Percentual, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Valor total", props.Text{Size: 9}),
		text.NewCol(3, resumo.ValorTotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Base de cálculo", props.Text{Size: 9}),
		text.NewCol(3, resumo.BaseCalculo, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "ISS ("+resumo.AliquotaISS+")", props.Text{Size: 9}),
		text.NewCol(3, resumo.ValorISS, props.Text{Size: 9, Align: align.Right}),
	)
	for _, retencao := range resumo.Retencoes {
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, "Retenção "+retencao.Nome, props.Text{Size: 9}),
			text.NewCol(3, retencao.Valor, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Valor líquido", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, resumo.ValorLiquido, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(12, "Discriminação dos serviços", props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}),
	)
	m.AddRow(40,
		text.NewCol(12, resumo.Discriminacao, props.Text{Size: 9}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
