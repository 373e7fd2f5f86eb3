// Package partner manages a company's sócio roster through the
// provider gateway.
package partner

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
	ErrCPFInvalido             = errors.New("cpf_invalid")
	ErrNomeVazio               = errors.New("nome_blank")
	ErrParticipacaoForaDaFaixa = errors.New("participacao_out_of_range")
)

// Input is the create/update form payload.
type Input struct {
	NomeCompleto  string          `json:"nome_completo"`
	CPF           string          `json:"cpf"`
	Registro      string          `json:"registro_profissional"`
	Especialidade string          `json:"especialidade"`
	Email         string          `json:"email"`
	Telefone      string          `json:"telefone"`
	Participacao  decimal.Decimal `json:"percentual_participacao"`
}

type Service interface {
	List(ctx context.Context, empresaID string) ([]gatewaydomain.Socio, error)
	Create(ctx context.Context, empresaID string, input Input) (gatewaydomain.Socio, error)
	Update(ctx context.Context, empresaID, socioID string, input Input) (gatewaydomain.Socio, error)
	Delete(ctx context.Context, empresaID, socioID string) error
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
		log:     p.Log.Named("partner.service"),
		gateway: p.Gateway,
	}
}

func (s *service) List(ctx context.Context, empresaID string) ([]gatewaydomain.Socio, error) {
	return s.gateway.ListSocios(ctx, empresaID)
}

func (s *service) Create(ctx context.Context, empresaID string, input Input) (gatewaydomain.Socio, error) {
	socio, err := socioFromInput(input)
	if err != nil {
		return gatewaydomain.Socio{}, err
	}
	return s.gateway.CreateSocio(ctx, empresaID, socio)
}

func (s *service) Update(ctx context.Context, empresaID, socioID string, input Input) (gatewaydomain.Socio, error) {
	socio, err := socioFromInput(input)
	if err != nil {
		return gatewaydomain.Socio{}, err
	}
	socio.ID = socioID
	return s.gateway.UpdateSocio(ctx, empresaID, socio)
}

func (s *service) Delete(ctx context.Context, empresaID, socioID string) error {
	return s.gateway.DeleteSocio(ctx, empresaID, socioID)
}

func socioFromInput(input Input) (gatewaydomain.Socio, error) {
	nome := strings.TrimSpace(input.NomeCompleto)
	if nome == "" {
		return gatewaydomain.Socio{}, ErrNomeVazio
	}

	cpf := format.Digits(input.CPF)
	if !format.ValidCPF(cpf) {
		return gatewaydomain.Socio{}, ErrCPFInvalido
	}

	if input.Participacao.IsNegative() || input.Participacao.GreaterThan(decimal.NewFromInt(100)) {
		return gatewaydomain.Socio{}, ErrParticipacaoForaDaFaixa
	}

	return gatewaydomain.Socio{
		NomeCompleto:  nome,
		CPF:           cpf,
		Registro:      strings.TrimSpace(input.Registro),
		Especialidade: strings.TrimSpace(input.Especialidade),
		Email:         strings.TrimSpace(input.Email),
		Telefone:      strings.TrimSpace(input.Telefone),
		Participacao:  input.Participacao,
	}, nil
}
