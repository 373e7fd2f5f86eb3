// Package tomador manages the registered service recipients. The
// person/company classification is derived from the document, never
// taken from the form.
package tomador

import (
	"context"
	"errors"
	"strings"

	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/pkg/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrDocumentoInvalido = errors.New("documento_invalid")
	ErrNomeVazio         = errors.New("nome_blank")
)

// Input is the create/update form payload.
type Input struct {
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Email     string `json:"email"`
}

type Service interface {
	List(ctx context.Context) ([]gatewaydomain.Tomador, error)
	ListBySocios(ctx context.Context, socioIDs []string) ([]gatewaydomain.Tomador, error)
	Create(ctx context.Context, input Input) (gatewaydomain.Tomador, error)
	Update(ctx context.Context, id string, input Input) (gatewaydomain.Tomador, error)
	Delete(ctx context.Context, id string) error
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
		log:     p.Log.Named("tomador.service"),
		gateway: p.Gateway,
	}
}

func (s *service) List(ctx context.Context) ([]gatewaydomain.Tomador, error) {
	return s.gateway.ListTomadores(ctx)
}

func (s *service) ListBySocios(ctx context.Context, socioIDs []string) ([]gatewaydomain.Tomador, error) {
	return s.gateway.ListTomadoresPorSocios(ctx, socioIDs)
}

func (s *service) Create(ctx context.Context, input Input) (gatewaydomain.Tomador, error) {
	nome, documento, tipo, err := normalize(input)
	if err != nil {
		return gatewaydomain.Tomador{}, err
	}
	return s.gateway.CreateTomador(ctx, gatewaydomain.NovoTomador{
		Nome:      nome,
		Documento: documento,
		Tipo:      tipo,
		Email:     strings.TrimSpace(input.Email),
	})
}

func (s *service) Update(ctx context.Context, id string, input Input) (gatewaydomain.Tomador, error) {
	nome, documento, tipo, err := normalize(input)
	if err != nil {
		return gatewaydomain.Tomador{}, err
	}
	return s.gateway.UpdateTomador(ctx, gatewaydomain.Tomador{
		ID:        id,
		Nome:      nome,
		Documento: documento,
		Tipo:      tipo,
		Email:     strings.TrimSpace(input.Email),
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.gateway.DeleteTomador(ctx, id)
}

func normalize(input Input) (nome, documento, tipo string, err error) {
	nome = strings.TrimSpace(input.Nome)
	if nome == "" {
		return "", "", "", ErrNomeVazio
	}

	documento = format.Digits(input.Documento)
	switch {
	case format.ValidCPF(documento):
		tipo = "fisica"
	case format.ValidCNPJ(documento):
		tipo = "juridica"
	default:
		return "", "", "", ErrDocumentoInvalido
	}
	return nome, documento, tipo, nil
}
