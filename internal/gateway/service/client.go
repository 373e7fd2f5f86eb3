package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	Metrics     *metrics.Metrics `optional:"true"`
	Suggestions *config.SuggestionRuleHolder
}

// Client talks to the invoicing provider over HTTP. It never retries:
// the wizard's recovery policy is user-driven.
type Client struct {
	baseURL     string
	apiKey      string
	http        *http.Client
	log         *zap.Logger
	metrics     *metrics.Metrics
	suggestions *config.SuggestionRuleHolder
}

// New builds the gateway client.
func New(p Params) domain.Service {
	timeout := time.Duration(p.Config.ProviderTimeout) * time.Second
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(p.Config.ProviderBaseURL, "/"),
		apiKey:      p.Config.ProviderAPIKey,
		http:        &http.Client{Timeout: timeout},
		log:         p.Log.Named("gateway.client"),
		metrics:     p.Metrics,
		suggestions: p.Suggestions,
	}
}

func (c *Client) ListEmpresas(ctx context.Context) ([]domain.Empresa, error) {
	var out listResponse[domain.Empresa]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/empresas", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetEmpresaDetalhes(ctx context.Context, empresaID string) (domain.EmpresaDetalhes, error) {
	var out itemResponse[domain.EmpresaDetalhes]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/empresas/"+url.PathEscape(empresaID), nil, nil, &out); err != nil {
		return domain.EmpresaDetalhes{}, err
	}
	return out.Data, nil
}

func (c *Client) GetCodigosFrequentes(ctx context.Context, empresaID string) (domain.CodigosFrequentes, error) {
	var out itemResponse[domain.CodigosFrequentes]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/empresas/"+url.PathEscape(empresaID)+"/codigos-frequentes", nil, nil, &out); err != nil {
		return domain.CodigosFrequentes{}, err
	}
	return out.Data, nil
}

func (c *Client) CreateEmpresa(ctx context.Context, empresa domain.Empresa) (domain.Empresa, error) {
	var out itemResponse[domain.Empresa]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/empresas", nil, empresa, &out); err != nil {
		return domain.Empresa{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateEmpresa(ctx context.Context, empresa domain.Empresa) (domain.Empresa, error) {
	var out itemResponse[domain.Empresa]
	if err := c.doJSON(ctx, http.MethodPut, "/v1/empresas/"+url.PathEscape(empresa.ID), nil, empresa, &out); err != nil {
		return domain.Empresa{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteEmpresa(ctx context.Context, empresaID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/empresas/"+url.PathEscape(empresaID), nil, nil, nil)
}

func (c *Client) SyncEmpresa(ctx context.Context, empresaID string) (domain.Empresa, error) {
	var out itemResponse[domain.Empresa]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/empresas/"+url.PathEscape(empresaID)+"/sync", nil, nil, &out); err != nil {
		return domain.Empresa{}, err
	}
	return out.Data, nil
}

func (c *Client) ListSocios(ctx context.Context, empresaID string) ([]domain.Socio, error) {
	var out listResponse[domain.Socio]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/empresas/"+url.PathEscape(empresaID)+"/socios", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateSocio(ctx context.Context, empresaID string, socio domain.Socio) (domain.Socio, error) {
	var out itemResponse[domain.Socio]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/empresas/"+url.PathEscape(empresaID)+"/socios", nil, socio, &out); err != nil {
		return domain.Socio{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateSocio(ctx context.Context, empresaID string, socio domain.Socio) (domain.Socio, error) {
	var out itemResponse[domain.Socio]
	path := "/v1/empresas/" + url.PathEscape(empresaID) + "/socios/" + url.PathEscape(socio.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, socio, &out); err != nil {
		return domain.Socio{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteSocio(ctx context.Context, empresaID, socioID string) error {
	path := "/v1/empresas/" + url.PathEscape(empresaID) + "/socios/" + url.PathEscape(socioID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) ListTomadoresPorSocios(ctx context.Context, socioIDs []string) ([]domain.Tomador, error) {
	query := url.Values{}
	query.Set("socios", strings.Join(socioIDs, ","))
	var out listResponse[domain.Tomador]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tomadores", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListTomadores(ctx context.Context) ([]domain.Tomador, error) {
	var out listResponse[domain.Tomador]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tomadores", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateTomador(ctx context.Context, payload domain.NovoTomador) (domain.Tomador, error) {
	var out itemResponse[domain.Tomador]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tomadores", nil, payload, &out); err != nil {
		return domain.Tomador{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateTomador(ctx context.Context, tomador domain.Tomador) (domain.Tomador, error) {
	var out itemResponse[domain.Tomador]
	if err := c.doJSON(ctx, http.MethodPut, "/v1/tomadores/"+url.PathEscape(tomador.ID), nil, tomador, &out); err != nil {
		return domain.Tomador{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteTomador(ctx context.Context, tomadorID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/tomadores/"+url.PathEscape(tomadorID), nil, nil, nil)
}

func (c *Client) ListModelos(ctx context.Context, tomadorID string) ([]domain.Modelo, error) {
	var out listResponse[domain.Modelo]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tomadores/"+url.PathEscape(tomadorID)+"/modelos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateModelo(ctx context.Context, payload domain.NovoModelo) (domain.Modelo, error) {
	var out itemResponse[domain.Modelo]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/modelos", nil, payload, &out); err != nil {
		return domain.Modelo{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateModelo(ctx context.Context, modelo domain.Modelo) (domain.Modelo, error) {
	var out itemResponse[domain.Modelo]
	if err := c.doJSON(ctx, http.MethodPut, "/v1/modelos/"+url.PathEscape(modelo.ID), nil, modelo, &out); err != nil {
		return domain.Modelo{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteModelo(ctx context.Context, modeloID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/modelos/"+url.PathEscape(modeloID), nil, nil, nil)
}

func (c *Client) CreateNota(ctx context.Context, payload map[string]any) (domain.NotaResultado, error) {
	var out itemResponse[domain.NotaResultado]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/notas", nil, payload, &out); err != nil {
		return domain.NotaResultado{}, err
	}

	resultado := out.Data
	if resultado.Status == domain.NotaErro && resultado.Sugestao == "" && c.suggestions != nil {
		resultado.Sugestao = c.suggestions.Match(resultado.Mensagem)
	}
	return resultado, nil
}

// LookupCNPJ queries the registry through the provider.
func (c *Client) LookupCNPJ(ctx context.Context, cnpj string) (domain.RegistroCNPJ, error) {
	var out itemResponse[domain.RegistroCNPJ]
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cnpj/"+url.PathEscape(cnpj), nil, nil, &out); err != nil {
		return domain.RegistroCNPJ{}, err
	}
	return out.Data, nil
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type itemResponse[T any] struct {
	Data T `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(ctx, method, path, 0)
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	c.record(ctx, method, path, resp.StatusCode)

	if classified := domain.ClassifyStatus(resp.StatusCode); classified != nil {
		var provErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&provErr)
		if message := strings.TrimSpace(provErr.Error.Message); message != "" {
			c.log.Warn("provider request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("message", message),
			)
			return fmt.Errorf("%w: %s", classified, message)
		}
		return classified
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrProvider, err)
	}
	return nil
}

func (c *Client) record(ctx context.Context, method, path string, status int) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordGatewayRequest(ctx, method+" "+path, status)
}
