// Package preview projects a draft into the review-step summary, the
// last thing the user sees before submitting. It is a pure projection:
// no network, no storage, and no mutation of the draft.
package preview

import (
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	wizarddomain "github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/emitia/nfse-backoffice/pkg/format"
	"github.com/shopspring/decimal"
)

// Emitente identifies the issuing company on the review screen.
type Emitente struct {
	RazaoSocial   string `json:"razao_social"`
	NomeFantasia  string `json:"nome_fantasia,omitempty"`
	CNPJ          string `json:"cnpj"`
	CodigoServico string `json:"codigo_servico"`
	CNAE          string `json:"cnae"`
}

// Tomador is the client block, filled from either variant.
type Tomador struct {
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Email     string `json:"email,omitempty"`
	Avulso    bool   `json:"avulso"`
}

// Linha is one partner's billing line.
type Linha struct {
	SocioID    string `json:"socio_id"`
	Nome       string `json:"nome"`
	CPF        string `json:"cpf"`
	Valor      string `json:"valor"`
	Percentual string `json:"percentual"`
}

// Retencao is one named federal retention with a non-zero amount.
type Retencao struct {
	Nome  string `json:"nome"`
	Valor string `json:"valor"`
}

// Resumo is the full review projection with display-ready labels.
type Resumo struct {
	Emitente Emitente `json:"emitente"`
	Tomador  Tomador  `json:"tomador"`
	Linhas   []Linha  `json:"linhas"`

	ValorTotal  string `json:"valor_total"`
	BaseCalculo string `json:"base_calculo"`
	AliquotaISS string `json:"aliquota_iss"`
	ValorISS    string `json:"valor_iss"`
	ISSRetido   bool   `json:"iss_retido"`

	Retencoes    []Retencao `json:"retencoes,omitempty"`
	TotalRetido  string     `json:"total_retido"`
	ValorLiquido string     `json:"valor_liquido"`

	Competencia   string `json:"competencia"`
	Discriminacao string `json:"discriminacao"`
}

// Build assembles the summary. The tomador argument is the registered
// client record and may be nil; in the ad-hoc mode the draft's own
// record wins.
func Build(draft *wizarddomain.Draft, empresa gatewaydomain.EmpresaDetalhes, tomador *gatewaydomain.Tomador) Resumo {
	valores := draft.ValoresNumericos()

	total := decimal.Zero
	for socioID, valor := range valores {
		if draft.SocioSelecionado(socioID) && valor.IsPositive() {
			total = total.Add(valor)
		}
	}

	linhas := make([]Linha, 0, len(draft.SociosSelecionados))
	for _, socio := range draft.SociosEscolhidos() {
		valor := valores[socio.ID]
		if !valor.IsPositive() {
			continue
		}
		percentual := decimal.Zero
		if total.IsPositive() {
			percentual = valor.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		linhas = append(linhas, Linha{
			SocioID:    socio.ID,
			Nome:       socio.NomeCompleto,
			CPF:        format.CPF(socio.CPF),
			Valor:      brl(valor),
			Percentual: format.TemplateAmount(percentual) + "%",
		})
	}

	base := total.Sub(draft.Deducoes).Sub(draft.Descontos)
	if base.IsNegative() {
		base = decimal.Zero
	}

	// The stored derivation is authoritative; fall back to the direct
	// formula when the draft predates it.
	iss := draft.ValorISS
	if iss.IsZero() && draft.AliquotaISS.IsPositive() {
		iss = base.Mul(draft.AliquotaISS).Div(decimal.NewFromInt(100)).Round(2)
	}

	retencoes, totalRetido := retencoesNaoNulas(draft)

	liquido := total.Sub(totalRetido)
	if draft.ISSRetido {
		liquido = liquido.Sub(iss)
	}

	return Resumo{
		Emitente: Emitente{
			RazaoSocial:   empresa.RazaoSocial,
			NomeFantasia:  empresa.NomeFantasia,
			CNPJ:          format.CNPJ(empresa.CNPJ),
			CodigoServico: draft.CodigoServico,
			CNAE:          draft.CNAE,
		},
		Tomador: tomadorResumo(draft, tomador),
		Linhas:  linhas,

		ValorTotal:  brl(total),
		BaseCalculo: brl(base),
		AliquotaISS: format.TemplateAmount(draft.AliquotaISS) + "%",
		ValorISS:    brl(iss),
		ISSRetido:   draft.ISSRetido,

		Retencoes:    retencoes,
		TotalRetido:  brl(totalRetido),
		ValorLiquido: brl(liquido),

		Competencia:   format.Competence(draft.MesCompetencia),
		Discriminacao: draft.Discriminacao,
	}
}

func tomadorResumo(draft *wizarddomain.Draft, tomador *gatewaydomain.Tomador) Tomador {
	if draft.ModoTomador == wizarddomain.ModoAvulso {
		return Tomador{
			Nome:      draft.Avulso.Nome,
			Documento: format.Document(draft.Avulso.Documento),
			Email:     draft.Avulso.Email,
			Avulso:    true,
		}
	}
	if tomador == nil {
		return Tomador{}
	}
	return Tomador{
		Nome:      tomador.Nome,
		Documento: format.Document(tomador.Documento),
		Email:     tomador.Email,
	}
}

func retencoesNaoNulas(draft *wizarddomain.Draft) ([]Retencao, decimal.Decimal) {
	campos := []struct {
		nome  string
		valor decimal.Decimal
	}{
		{"IRRF", draft.RetencaoIRRF},
		{"PIS", draft.RetencaoPIS},
		{"COFINS", draft.RetencaoCOFINS},
		{"CSLL", draft.RetencaoCSLL},
		{"INSS", draft.RetencaoINSS},
	}

	out := make([]Retencao, 0, len(campos))
	total := decimal.Zero
	for _, campo := range campos {
		if !campo.valor.IsPositive() {
			continue
		}
		out = append(out, Retencao{Nome: campo.nome, Valor: brl(campo.valor)})
		total = total.Add(campo.valor)
	}
	return out, total
}

func brl(d decimal.Decimal) string {
	return "R$ " + format.CurrencyBRL(d)
}
