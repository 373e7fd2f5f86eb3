package service

import (
	"context"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/discrimination"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// recompute refreshes the derived slices of the draft. It runs after
// every mutating event so the stored draft never carries stale
// discrimination text or totals.
func (s *Service) recompute(ctx context.Context, draft *domain.Draft) {
	s.recomputeDiscriminacao(ctx, draft)
	recomputeTotais(draft)
}

// recomputeDiscriminacao re-renders the template against the current
// partner, value and competence selections. Manual text without an
// active template is left alone.
func (s *Service) recomputeDiscriminacao(ctx context.Context, draft *domain.Draft) {
	if draft.ModeloID == "" || draft.ModeloTexto == "" {
		return
	}

	rendered, err := discrimination.Render(
		draft.ModeloTexto,
		sociosParaRender(draft.SociosEscolhidos()),
		draft.ValoresNumericos(),
		draft.MesCompetencia,
	)
	if err != nil {
		s.log.Warn("template render rejected",
			zap.String("draft_id", draft.ID.String()),
			zap.String("modelo_id", draft.ModeloID),
			zap.Error(err))
		return
	}

	draft.Discriminacao = rendered
	s.metrics.RecordTemplateRender(ctx)
}

// recomputeTotais derives the monetary aggregates. Only strictly
// positive values of currently selected partners count; the ISS base
// never goes below zero.
func recomputeTotais(draft *domain.Draft) {
	total := decimal.Zero
	for socioID, valor := range draft.ValoresNumericos() {
		if !draft.SocioSelecionado(socioID) {
			continue
		}
		if valor.IsPositive() {
			total = total.Add(valor)
		}
	}

	base := total.Sub(draft.Deducoes).Sub(draft.Descontos)
	if base.IsNegative() {
		base = decimal.Zero
	}

	draft.ValorTotal = total.Round(2)
	draft.BaseCalculo = base.Round(2)
	draft.ValorISS = base.Mul(draft.AliquotaISS).Div(decimal.NewFromInt(100)).Round(2)
}

// canProceed is the per-step completion predicate gating Advance.
func canProceed(draft *domain.Draft) error {
	switch draft.Step {
	case domain.StepEmpresa:
		if draft.EmpresaID == "" {
			return domain.ErrEmpresaObrigatoria
		}
	case domain.StepSocios:
		if len(draft.SociosSelecionados) == 0 {
			return domain.ErrSemSocios
		}
	case domain.StepTomador:
		if draft.ModoTomador == domain.ModoAvulso {
			if !draft.Avulso.Preenchido() {
				return domain.ErrAvulsoIncompleto
			}
		} else if draft.TomadorID == "" {
			return domain.ErrTomadorObrigatorio
		}
	case domain.StepModelo:
		if !temValorPositivo(draft) {
			return domain.ErrValorTotalInvalido
		}
		if strings.TrimSpace(draft.Discriminacao) == "" {
			return domain.ErrDiscriminacaoVazia
		}
		if strings.TrimSpace(draft.CodigoServico) == "" {
			return domain.ErrCodigoServicoVazio
		}
		if draft.ModoTomador == domain.ModoCadastrado && draft.ModeloID == "" {
			return domain.ErrModeloObrigatorio
		}
	case domain.StepRevisao:
		// Review is terminal; advancing past it is a no-op.
	}
	return nil
}

func temValorPositivo(draft *domain.Draft) bool {
	for socioID, valor := range draft.ValoresNumericos() {
		if draft.SocioSelecionado(socioID) && valor.IsPositive() {
			return true
		}
	}
	return false
}

func sociosParaRender(socios []gatewaydomain.Socio) []discrimination.Socio {
	out := make([]discrimination.Socio, 0, len(socios))
	for _, socio := range socios {
		out = append(out, discrimination.Socio{
			ID:            socio.ID,
			Nome:          socio.NomeCompleto,
			CPF:           socio.CPF,
			Registro:      socio.Registro,
			Especialidade: socio.Especialidade,
			Email:         socio.Email,
			Telefone:      socio.Telefone,
		})
	}
	return out
}
