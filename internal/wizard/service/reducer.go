package service

import (
	"context"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/emitia/nfse-backoffice/pkg/format"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// reduce applies one event to the draft. Transitions that depend on
// remote data load it synchronously; a failed load rejects the event
// and leaves the draft untouched in storage.
func (s *Service) reduce(ctx context.Context, draft *domain.Draft, event domain.Event) error {
	switch event.Type {
	case domain.EventSelecionarEmpresa:
		return s.selecionarEmpresa(ctx, draft, event.EmpresaID)
	case domain.EventAlternarSocio:
		return alternarSocio(draft, event.SocioID)
	case domain.EventDefinirModoTomador:
		return definirModoTomador(draft, event.Modo)
	case domain.EventSelecionarTomador:
		return s.selecionarTomador(ctx, draft, event.TomadorID)
	case domain.EventEditarAvulso:
		if event.Avulso == nil {
			return domain.ErrUnknownEvent
		}
		draft.Avulso = domain.TomadorAvulso{
			Nome:      strings.TrimSpace(event.Avulso.Nome),
			Documento: format.Digits(event.Avulso.Documento),
			Email:     strings.TrimSpace(event.Avulso.Email),
		}
		return nil
	case domain.EventSelecionarModelo:
		return selecionarModelo(draft, event.ModeloID)
	case domain.EventDefinirValor:
		return definirValor(draft, event.SocioID, event.Valor)
	case domain.EventEditarDiscrim:
		draft.Discriminacao = event.Discriminacao
		return nil
	case domain.EventDefinirCompetencia:
		if !format.ValidCompetence(event.Competencia) {
			return domain.ErrCompetenciaInvalida
		}
		draft.MesCompetencia = event.Competencia
		return nil
	case domain.EventDefinirServico:
		if event.Servico == nil {
			return domain.ErrUnknownEvent
		}
		draft.CodigoServico = strings.TrimSpace(event.Servico.CodigoServico)
		draft.CNAE = strings.TrimSpace(event.Servico.CNAE)
		return nil
	case domain.EventDefinirImpostos:
		if event.Impostos == nil {
			return domain.ErrUnknownEvent
		}
		draft.AliquotaISS = event.Impostos.AliquotaISS
		draft.Deducoes = event.Impostos.Deducoes
		draft.Descontos = event.Impostos.Descontos
		return nil
	case domain.EventDefinirRetencoes:
		if event.Retencoes == nil {
			return domain.ErrUnknownEvent
		}
		draft.ISSRetido = event.Retencoes.ISSRetido
		draft.RetencaoIRRF = event.Retencoes.IRRF
		draft.RetencaoPIS = event.Retencoes.PIS
		draft.RetencaoCOFINS = event.Retencoes.COFINS
		draft.RetencaoCSLL = event.Retencoes.CSLL
		draft.RetencaoINSS = event.Retencoes.INSS
		return nil
	case domain.EventDefinirLocal:
		if event.Local == nil {
			return domain.ErrUnknownEvent
		}
		draft.LocalExpandido = event.Local.Expandido
		draft.LocalMunicipio = strings.TrimSpace(event.Local.Municipio)
		draft.LocalUF = strings.ToUpper(strings.TrimSpace(event.Local.UF))
		draft.LocalCEP = format.Digits(event.Local.CEP)
		draft.LocalEndereco = strings.TrimSpace(event.Local.Endereco)
		return nil
	case domain.EventDefinirRPS:
		if event.RPS == nil {
			return domain.ErrUnknownEvent
		}
		draft.RPSNumero = strings.TrimSpace(event.RPS.Numero)
		draft.RPSSerie = strings.TrimSpace(event.RPS.Serie)
		draft.RPSTipo = strings.TrimSpace(event.RPS.Tipo)
		return nil
	default:
		return domain.ErrUnknownEvent
	}
}

// selecionarEmpresa switches the issuing company. A different company
// invalidates everything downstream, then the partner list and the
// extended company record are loaded as the new defaults.
func (s *Service) selecionarEmpresa(ctx context.Context, draft *domain.Draft, empresaID string) error {
	empresaID = strings.TrimSpace(empresaID)
	if empresaID == "" {
		return domain.ErrEmpresaObrigatoria
	}

	if empresaID != draft.EmpresaID {
		draft.SociosSelecionados = nil
		draft.TomadorID = ""
		draft.ModelosDisponiveis = nil
		draft.ModeloID = ""
		draft.ModeloTexto = ""
		draft.Discriminacao = ""
		draft.Valores = datatypes.JSONMap{}
	}

	detalhes, err := s.gateway.GetEmpresaDetalhes(ctx, empresaID)
	if err != nil {
		return err
	}
	socios, err := s.gateway.ListSocios(ctx, empresaID)
	if err != nil {
		return err
	}

	draft.EmpresaID = empresaID
	draft.CodigoServico = detalhes.CodigoServico
	draft.CNAE = detalhes.CNAE
	draft.AliquotaISS = detalhes.AliquotaISS
	draft.SociosDisponiveis = socios

	// Frequent codes are a convenience list; failing to load them
	// must not block company selection.
	if freq, err := s.gateway.GetCodigosFrequentes(ctx, empresaID); err != nil {
		s.log.Warn("frequent codes unavailable",
			zap.String("empresa_id", empresaID), zap.Error(err))
	} else {
		draft.CodigosServicoFrequentes = freq.CodigosServico
		draft.CNAEsFrequentes = freq.CNAEs
	}
	return nil
}

func alternarSocio(draft *domain.Draft, socioID string) error {
	known := false
	for _, socio := range draft.SociosDisponiveis {
		if socio.ID == socioID {
			known = true
			break
		}
	}
	if !known {
		return domain.ErrSocioDesconhecido
	}

	if draft.SocioSelecionado(socioID) {
		kept := make([]string, 0, len(draft.SociosSelecionados))
		for _, id := range draft.SociosSelecionados {
			if id != socioID {
				kept = append(kept, id)
			}
		}
		draft.SociosSelecionados = kept
		delete(draft.Valores, socioID)
		return nil
	}

	draft.SociosSelecionados = append(draft.SociosSelecionados, socioID)
	return nil
}

// definirModoTomador flips between the registered and ad-hoc client
// variants. Switching clears the dependent selections but keeps the
// already-loaded template list, so a template can still be picked for
// an ad-hoc client; the ad-hoc record itself persists independently.
func definirModoTomador(draft *domain.Draft, modo domain.ModoTomador) error {
	if modo != domain.ModoCadastrado && modo != domain.ModoAvulso {
		return domain.ErrModoInvalido
	}
	if modo == draft.ModoTomador {
		return nil
	}

	templateAtivo := draft.ModeloID != ""
	draft.ModoTomador = modo
	draft.TomadorID = ""
	draft.ModeloID = ""
	draft.ModeloTexto = ""
	draft.Valores = datatypes.JSONMap{}
	if templateAtivo {
		draft.Discriminacao = ""
	}
	return nil
}

// selecionarTomador picks a registered client and loads its templates.
func (s *Service) selecionarTomador(ctx context.Context, draft *domain.Draft, tomadorID string) error {
	if draft.ModoTomador != domain.ModoCadastrado {
		return domain.ErrModoInvalido
	}
	tomadorID = strings.TrimSpace(tomadorID)
	if tomadorID == "" {
		return domain.ErrTomadorObrigatorio
	}

	modelos, err := s.gateway.ListModelos(ctx, tomadorID)
	if err != nil {
		return err
	}

	templateAtivo := draft.ModeloID != ""
	draft.TomadorID = tomadorID
	draft.ModelosDisponiveis = modelos
	draft.ModeloID = ""
	draft.ModeloTexto = ""
	draft.Valores = datatypes.JSONMap{}
	if templateAtivo {
		draft.Discriminacao = ""
	}
	return nil
}

// selecionarModelo installs a template from the loaded list. In the
// ad-hoc client mode, already-typed discrimination text wins over the
// template and the selection is dropped rather than overwriting it.
func selecionarModelo(draft *domain.Draft, modeloID string) error {
	var texto string
	found := false
	for _, modelo := range draft.ModelosDisponiveis {
		if modelo.ID == modeloID {
			texto = modelo.Texto
			found = true
			break
		}
	}
	if !found {
		return domain.ErrModeloDesconhecido
	}

	if draft.ModoTomador == domain.ModoAvulso && strings.TrimSpace(draft.Discriminacao) != "" {
		return nil
	}

	draft.ModeloID = modeloID
	draft.ModeloTexto = texto
	return nil
}

func definirValor(draft *domain.Draft, socioID, valor string) error {
	if !draft.SocioSelecionado(socioID) {
		return domain.ErrSocioNaoSelecionado
	}
	if draft.Valores == nil {
		draft.Valores = datatypes.JSONMap{}
	}
	if strings.TrimSpace(valor) == "" {
		delete(draft.Valores, socioID)
		return nil
	}
	draft.Valores[socioID] = valor
	return nil
}
