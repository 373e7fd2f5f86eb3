package domain

import "errors"

var (
	ErrDraftNotFound   = errors.New("draft_not_found")
	ErrVersionConflict = errors.New("draft_version_conflict")
	ErrUnknownEvent    = errors.New("unknown_event")
	ErrStepIncomplete  = errors.New("step_incomplete")

	ErrSocioDesconhecido    = errors.New("socio_not_in_company")
	ErrSocioNaoSelecionado  = errors.New("socio_not_selected")
	ErrModoInvalido         = errors.New("invalid_tomador_mode")
	ErrModeloDesconhecido   = errors.New("modelo_not_available")
	ErrCompetenciaInvalida  = errors.New("invalid_competencia")
	ErrEmpresaObrigatoria   = errors.New("empresa_required")
	ErrTomadorObrigatorio   = errors.New("tomador_required")
	ErrModeloObrigatorio    = errors.New("modelo_required")
	ErrAvulsoIncompleto     = errors.New("tomador_avulso_incomplete")
	ErrSemSocios            = errors.New("no_socios_selected")
	ErrValorTotalInvalido   = errors.New("valor_total_not_positive")
	ErrDiscriminacaoVazia   = errors.New("discriminacao_blank")
	ErrCodigoServicoVazio   = errors.New("codigo_servico_blank")
	ErrCNAEVazio            = errors.New("cnae_blank")
	ErrCriacaoTomadorFalhou = errors.New("tomador_avulso_creation_failed")
)
