package service

import (
	"strings"

	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/shopspring/decimal"
)

// notaBuilder accumulates the invoice payload. Optional fields go
// through the named inclusion predicates so the sparse-payload rule
// (omit, never send zero) stays auditable in one place.
type notaBuilder struct {
	fields map[string]any
}

func newNotaBuilder() *notaBuilder {
	return &notaBuilder{fields: map[string]any{}}
}

func (b *notaBuilder) set(key string, value any) {
	b.fields[key] = value
}

func (b *notaBuilder) setIfPositive(key string, value decimal.Decimal) {
	if value.IsPositive() {
		b.fields[key] = value.InexactFloat64()
	}
}

func (b *notaBuilder) setIfNonBlank(key, value string) {
	if strings.TrimSpace(value) != "" {
		b.fields[key] = value
	}
}

func (b *notaBuilder) setIfTrue(key string, value bool) {
	if value {
		b.fields[key] = true
	}
}

// notaPayload assembles the provider's invoice creation body. The
// template reference is the one field that is explicitly null when
// absent; every other optional field is simply omitted.
func notaPayload(draft *domain.Draft, tomadorID string, valores map[string]decimal.Decimal, total decimal.Decimal) map[string]any {
	b := newNotaBuilder()

	b.set("empresa_id", draft.EmpresaID)
	b.set("tomador_id", tomadorID)
	b.set("valor_total", total.InexactFloat64())
	b.set("mes_competencia", draft.MesCompetencia)
	b.set("discriminacao_final", draft.Discriminacao)
	b.set("codigo_servico", draft.CodigoServico)
	b.set("cnae", draft.CNAE)

	if draft.ModeloID != "" {
		b.set("modelo_discriminacao_id", draft.ModeloID)
	} else {
		b.set("modelo_discriminacao_id", nil)
	}

	socios := make([]map[string]any, 0, len(draft.SociosSelecionados))
	for _, socioID := range draft.SociosSelecionados {
		valor, ok := valores[socioID]
		if !ok {
			continue
		}
		percentual := valor.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		socios = append(socios, map[string]any{
			"pessoa_id":               socioID,
			"valor_prestado":          valor.InexactFloat64(),
			"percentual_participacao": percentual.InexactFloat64(),
		})
	}
	b.set("socios", socios)

	b.setIfPositive("aliquota_iss", draft.AliquotaISS)
	b.setIfPositive("base_calculo", draft.BaseCalculo)
	b.setIfPositive("valor_iss", draft.ValorISS)
	b.setIfPositive("deducoes", draft.Deducoes)
	b.setIfPositive("descontos", draft.Descontos)

	b.setIfTrue("iss_retido", draft.ISSRetido)
	b.setIfPositive("retencao_irrf", draft.RetencaoIRRF)
	b.setIfPositive("retencao_pis", draft.RetencaoPIS)
	b.setIfPositive("retencao_cofins", draft.RetencaoCOFINS)
	b.setIfPositive("retencao_csll", draft.RetencaoCSLL)
	b.setIfPositive("retencao_inss", draft.RetencaoINSS)

	if localPreenchido(draft) {
		local := map[string]any{}
		if draft.LocalMunicipio != "" {
			local["municipio"] = draft.LocalMunicipio
		}
		if draft.LocalUF != "" {
			local["uf"] = draft.LocalUF
		}
		if draft.LocalCEP != "" {
			local["cep"] = draft.LocalCEP
		}
		if draft.LocalEndereco != "" {
			local["endereco"] = draft.LocalEndereco
		}
		b.set("local_prestacao", local)
	}

	b.setIfNonBlank("rps_numero", draft.RPSNumero)
	b.setIfNonBlank("rps_serie", draft.RPSSerie)
	b.setIfNonBlank("rps_tipo", draft.RPSTipo)

	return b.fields
}

// localPreenchido gates the optional service-location block: it is
// sent only when the section was expanded and carries content.
func localPreenchido(draft *domain.Draft) bool {
	if !draft.LocalExpandido {
		return false
	}
	return draft.LocalMunicipio != "" || draft.LocalUF != "" ||
		draft.LocalCEP != "" || draft.LocalEndereco != ""
}
