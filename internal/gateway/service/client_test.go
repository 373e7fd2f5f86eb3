package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (domain.Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	suggestions, err := config.NewSuggestionRuleHolder()
	require.NoError(t, err)

	client := New(Params{
		Config: config.Config{
			ProviderBaseURL: server.URL,
			ProviderAPIKey:  "test-key",
			ProviderTimeout: 2,
		},
		Log:         zap.NewNop(),
		Suggestions: suggestions,
	})
	return client, server
}

func TestClientAuthorizationHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))

	_, err := client.ListEmpresas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestClientStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrSessionExpired},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnprocessableEntity, domain.ErrInvalidPayload},
		{http.StatusInternalServerError, domain.ErrProvider},
		{http.StatusBadGateway, domain.ErrProvider},
	}

	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := client.ListEmpresas(context.Background())
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestClientConnectivityError(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.ListEmpresas(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnectivity)
}

func TestClientProviderMessageWrapped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": {"message": "tomador invalido"}}`))
	}))

	_, err := client.ListEmpresas(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Contains(t, err.Error(), "tomador invalido")
}

func TestCreateNotaDerivesSuggestion(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/notas", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {"status": "ERRO", "mensagem": "valor informado inconsistente"}}`))
	}))

	resultado, err := client.CreateNota(context.Background(), map[string]any{"empresa_id": "e1"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotaErro, resultado.Status)
	assert.NotEmpty(t, resultado.Sugestao)
}

func TestCreateNotaKeepsStructuredSuggestion(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"status": "ERRO", "mensagem": "x", "sugestao": "do y"}}`))
	}))

	resultado, err := client.CreateNota(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "do y", resultado.Sugestao)
}

func TestListTomadoresPorSociosQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("socios")
		_, _ = w.Write([]byte(`{"data": [{"id": "t1", "nome": "ACME", "documento": "11222333000181"}]}`))
	}))

	tomadores, err := client.ListTomadoresPorSocios(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, "s1,s2", gotQuery)
	require.Len(t, tomadores, 1)
	assert.Equal(t, "ACME", tomadores[0].Nome)
}

func TestMockLookupDeterministic(t *testing.T) {
	lookup := NewMockLookup()

	first, err := lookup.LookupCNPJ(context.Background(), "11.222.333/0001-81")
	require.NoError(t, err)
	second, err := lookup.LookupCNPJ(context.Background(), "11222333000181")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.RazaoSocial)
	assert.Len(t, first.Socios, 2)

	_, err = lookup.LookupCNPJ(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
