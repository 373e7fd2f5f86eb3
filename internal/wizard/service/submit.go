package service

import (
	"context"
	"strings"

	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Submit issues the invoice from a draft sitting at the review step.
//
// The order is fixed: validate everything locally, persist the ad-hoc
// tomador if the draft uses one, then create the invoice. A failure at
// any point keeps the draft intact so the user can correct and retry;
// only AUTORIZADA and PROCESSANDO discard it.
func (s *Service) Submit(ctx context.Context, id string, version int64) (domain.SubmitResult, error) {
	draft, err := s.loadVersioned(ctx, id, version)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if draft.Step != domain.StepRevisao {
		return domain.SubmitResult{}, domain.ErrStepIncomplete
	}

	valores, total := valoresPositivos(draft)
	if err := validarParaEnvio(draft, total); err != nil {
		return domain.SubmitResult{}, err
	}

	tomadorID := draft.TomadorID
	if draft.ModoTomador == domain.ModoAvulso {
		tomadorID, err = s.criarTomadorAvulso(ctx, draft)
		if err != nil {
			return domain.SubmitResult{}, err
		}
	}

	resultado, err := s.gateway.CreateNota(ctx, notaPayload(draft, tomadorID, valores, total))
	if err != nil {
		return domain.SubmitResult{}, err
	}
	s.metrics.RecordSubmission(ctx, string(resultado.Status))

	switch resultado.Status {
	case gatewaydomain.NotaAutorizada, gatewaydomain.NotaProcessando:
		if err := s.repo.Delete(ctx, s.db, draft.ID); err != nil {
			s.log.Error("submitted draft not discarded",
				zap.String("draft_id", draft.ID.String()), zap.Error(err))
		}
		s.log.Info("invoice submitted",
			zap.String("draft_id", draft.ID.String()),
			zap.String("nota_id", resultado.ID),
			zap.String("status", string(resultado.Status)))
		return domain.SubmitResult{
			Status: string(resultado.Status),
			NotaID: resultado.ID,
		}, nil
	default:
		s.log.Warn("invoice rejected by provider",
			zap.String("draft_id", draft.ID.String()),
			zap.String("mensagem", resultado.Mensagem))
		return domain.SubmitResult{
			Status:    string(resultado.Status),
			Mensagem:  resultado.Mensagem,
			Sugestao:  resultado.Sugestao,
			DraftKept: true,
		}, nil
	}
}

// criarTomadorAvulso persists the ad-hoc client before the invoice is
// created. The document length decides the provider's person/company
// classification.
func (s *Service) criarTomadorAvulso(ctx context.Context, draft *domain.Draft) (string, error) {
	tipo := "juridica"
	if len(draft.Avulso.Documento) == 11 {
		tipo = "fisica"
	}

	tomador, err := s.gateway.CreateTomador(ctx, gatewaydomain.NovoTomador{
		Nome:      draft.Avulso.Nome,
		Documento: draft.Avulso.Documento,
		Tipo:      tipo,
		Email:     draft.Avulso.Email,
	})
	if err != nil {
		s.log.Warn("ad-hoc tomador creation failed",
			zap.String("draft_id", draft.ID.String()), zap.Error(err))
		return "", err
	}
	if tomador.ID == "" {
		return "", domain.ErrCriacaoTomadorFalhou
	}
	return tomador.ID, nil
}

// validarParaEnvio re-checks the full submission precondition. It is a
// superset of the step predicates so an edited-then-resubmitted draft
// can never slip through with stale derived state.
func validarParaEnvio(draft *domain.Draft, total decimal.Decimal) error {
	if draft.EmpresaID == "" {
		return domain.ErrEmpresaObrigatoria
	}
	if len(draft.SociosSelecionados) == 0 {
		return domain.ErrSemSocios
	}
	if draft.ModoTomador == domain.ModoAvulso {
		if !draft.Avulso.Preenchido() {
			return domain.ErrAvulsoIncompleto
		}
	} else {
		if draft.TomadorID == "" {
			return domain.ErrTomadorObrigatorio
		}
		if draft.ModeloID == "" {
			return domain.ErrModeloObrigatorio
		}
	}
	if strings.TrimSpace(draft.Discriminacao) == "" {
		return domain.ErrDiscriminacaoVazia
	}
	if strings.TrimSpace(draft.CodigoServico) == "" {
		return domain.ErrCodigoServicoVazio
	}
	if strings.TrimSpace(draft.CNAE) == "" {
		return domain.ErrCNAEVazio
	}
	if !total.IsPositive() {
		return domain.ErrValorTotalInvalido
	}
	return nil
}

// valoresPositivos filters the value map to strictly-positive entries
// of currently selected partners and returns their sum.
func valoresPositivos(draft *domain.Draft) (map[string]decimal.Decimal, decimal.Decimal) {
	out := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for socioID, valor := range draft.ValoresNumericos() {
		if !draft.SocioSelecionado(socioID) || !valor.IsPositive() {
			continue
		}
		out[socioID] = valor
		total = total.Add(valor)
	}
	return out, total
}
