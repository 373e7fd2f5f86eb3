// Package modelo manages discrimination templates. Template text is
// validated against the engine's loop rules before it reaches the
// provider, so broken templates fail at authoring time instead of
// invoice time.
package modelo

import (
	"context"
	"errors"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/discrimination"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrTituloVazio = errors.New("titulo_blank")
	ErrTextoVazio  = errors.New("texto_blank")
)

// Input is the create/update form payload.
type Input struct {
	Titulo string `json:"titulo"`
	Texto  string `json:"texto"`
}

type Service interface {
	List(ctx context.Context, tomadorID string) ([]gatewaydomain.Modelo, error)
	Create(ctx context.Context, tomadorID string, input Input) (gatewaydomain.Modelo, error)
	Update(ctx context.Context, id, tomadorID string, input Input) (gatewaydomain.Modelo, error)
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
		log:     p.Log.Named("modelo.service"),
		gateway: p.Gateway,
	}
}

func (s *service) List(ctx context.Context, tomadorID string) ([]gatewaydomain.Modelo, error) {
	return s.gateway.ListModelos(ctx, tomadorID)
}

func (s *service) Create(ctx context.Context, tomadorID string, input Input) (gatewaydomain.Modelo, error) {
	titulo, texto, err := validate(input)
	if err != nil {
		return gatewaydomain.Modelo{}, err
	}
	return s.gateway.CreateModelo(ctx, gatewaydomain.NovoModelo{
		TomadorID: tomadorID,
		Titulo:    titulo,
		Slug:      slug.Make(titulo),
		Texto:     texto,
	})
}

func (s *service) Update(ctx context.Context, id, tomadorID string, input Input) (gatewaydomain.Modelo, error) {
	titulo, texto, err := validate(input)
	if err != nil {
		return gatewaydomain.Modelo{}, err
	}
	return s.gateway.UpdateModelo(ctx, gatewaydomain.Modelo{
		ID:        id,
		TomadorID: tomadorID,
		Titulo:    titulo,
		Slug:      slug.Make(titulo),
		Texto:     texto,
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.gateway.DeleteModelo(ctx, id)
}

func validate(input Input) (titulo, texto string, err error) {
	titulo = strings.TrimSpace(input.Titulo)
	if titulo == "" {
		return "", "", ErrTituloVazio
	}

	texto = input.Texto
	if strings.TrimSpace(texto) == "" {
		return "", "", ErrTextoVazio
	}

	// A dry-run render catches multiple loop regions up front.
	if _, err := discrimination.Render(texto, nil, nil, ""); err != nil {
		return "", "", err
	}
	return titulo, texto, nil
}
