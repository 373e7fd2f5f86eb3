// Package company fronts the provider's company registry for the
// management screens. The provider owns the records; this layer only
// validates and normalizes input before it crosses the wire.
package company

import (
	"context"
	"errors"
	"strings"

	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/pkg/format"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrCNPJInvalido        = errors.New("cnpj_invalid")
	ErrRazaoSocialVazia    = errors.New("razao_social_blank")
	ErrAliquotaForaDaFaixa = errors.New("aliquota_out_of_range")
)

// Input is the create/update form payload.
type Input struct {
	CNPJ          string          `json:"cnpj"`
	RazaoSocial   string          `json:"razao_social"`
	NomeFantasia  string          `json:"nome_fantasia"`
	CodigoServico string          `json:"codigo_servico"`
	CNAE          string          `json:"cnae"`
	AliquotaISS   decimal.Decimal `json:"aliquota_iss"`
}

type Service interface {
	List(ctx context.Context) ([]gatewaydomain.Empresa, error)
	Get(ctx context.Context, id string) (gatewaydomain.EmpresaDetalhes, error)
	FrequentCodes(ctx context.Context, id string) (gatewaydomain.CodigosFrequentes, error)
	Create(ctx context.Context, input Input) (gatewaydomain.Empresa, error)
	Update(ctx context.Context, id string, input Input) (gatewaydomain.Empresa, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context, id string) (gatewaydomain.Empresa, error)
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Gateway gatewaydomain.Service
}

type service struct {
	log     *zap.Logger
	gateway gatewaydomain.Service
}

func NewService(p ServiceParam) Service {
	return &service{
		log:     p.Log.Named("company.service"),
		gateway: p.Gateway,
	}
}

func (s *service) List(ctx context.Context) ([]gatewaydomain.Empresa, error) {
	return s.gateway.ListEmpresas(ctx)
}

func (s *service) Get(ctx context.Context, id string) (gatewaydomain.EmpresaDetalhes, error) {
	return s.gateway.GetEmpresaDetalhes(ctx, id)
}

func (s *service) FrequentCodes(ctx context.Context, id string) (gatewaydomain.CodigosFrequentes, error) {
	return s.gateway.GetCodigosFrequentes(ctx, id)
}

func (s *service) Create(ctx context.Context, input Input) (gatewaydomain.Empresa, error) {
	empresa, err := empresaFromInput(input)
	if err != nil {
		return gatewaydomain.Empresa{}, err
	}
	return s.gateway.CreateEmpresa(ctx, empresa)
}

func (s *service) Update(ctx context.Context, id string, input Input) (gatewaydomain.Empresa, error) {
	empresa, err := empresaFromInput(input)
	if err != nil {
		return gatewaydomain.Empresa{}, err
	}
	empresa.ID = id
	return s.gateway.UpdateEmpresa(ctx, empresa)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.gateway.DeleteEmpresa(ctx, id)
}

func (s *service) Sync(ctx context.Context, id string) (gatewaydomain.Empresa, error) {
	empresa, err := s.gateway.SyncEmpresa(ctx, id)
	if err != nil {
		return gatewaydomain.Empresa{}, err
	}
	s.log.Info("company synced",
		zap.String("empresa_id", id), zap.String("sync_id", empresa.SyncID))
	return empresa, nil
}

func empresaFromInput(input Input) (gatewaydomain.Empresa, error) {
	cnpj := format.Digits(input.CNPJ)
	if !format.ValidCNPJ(cnpj) {
		return gatewaydomain.Empresa{}, ErrCNPJInvalido
	}

	razao := strings.TrimSpace(input.RazaoSocial)
	if razao == "" {
		return gatewaydomain.Empresa{}, ErrRazaoSocialVazia
	}

	if input.AliquotaISS.IsNegative() || input.AliquotaISS.GreaterThan(decimal.NewFromInt(100)) {
		return gatewaydomain.Empresa{}, ErrAliquotaForaDaFaixa
	}

	return gatewaydomain.Empresa{
		CNPJ:          cnpj,
		RazaoSocial:   razao,
		NomeFantasia:  strings.TrimSpace(input.NomeFantasia),
		CodigoServico: strings.TrimSpace(input.CodigoServico),
		CNAE:          strings.TrimSpace(input.CNAE),
		AliquotaISS:   input.AliquotaISS,
	}, nil
}
