package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/emitia/nfse-backoffice/internal/wizard/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gatewayStub struct {
	mu sync.Mutex

	detalhes gatewaydomain.EmpresaDetalhes
	socios   []gatewaydomain.Socio
	modelos  []gatewaydomain.Modelo

	tomadorErr    error
	notaResultado gatewaydomain.NotaResultado
	notaErr       error

	tomadorCalls int
	notaCalls    int
	lastPayload  map[string]any
}

func (g *gatewayStub) ListEmpresas(context.Context) ([]gatewaydomain.Empresa, error) {
	return nil, nil
}

func (g *gatewayStub) GetEmpresaDetalhes(_ context.Context, empresaID string) (gatewaydomain.EmpresaDetalhes, error) {
	detalhes := g.detalhes
	detalhes.ID = empresaID
	return detalhes, nil
}

func (g *gatewayStub) GetCodigosFrequentes(context.Context, string) (gatewaydomain.CodigosFrequentes, error) {
	return gatewaydomain.CodigosFrequentes{CodigosServico: []string{"1.05"}}, nil
}

func (g *gatewayStub) CreateEmpresa(_ context.Context, e gatewaydomain.Empresa) (gatewaydomain.Empresa, error) {
	return e, nil
}

func (g *gatewayStub) UpdateEmpresa(_ context.Context, e gatewaydomain.Empresa) (gatewaydomain.Empresa, error) {
	return e, nil
}

func (g *gatewayStub) DeleteEmpresa(context.Context, string) error { return nil }

func (g *gatewayStub) SyncEmpresa(context.Context, string) (gatewaydomain.Empresa, error) {
	return gatewaydomain.Empresa{}, nil
}

func (g *gatewayStub) ListSocios(context.Context, string) ([]gatewaydomain.Socio, error) {
	return g.socios, nil
}

func (g *gatewayStub) CreateSocio(_ context.Context, _ string, s gatewaydomain.Socio) (gatewaydomain.Socio, error) {
	return s, nil
}

func (g *gatewayStub) UpdateSocio(_ context.Context, _ string, s gatewaydomain.Socio) (gatewaydomain.Socio, error) {
	return s, nil
}

func (g *gatewayStub) DeleteSocio(context.Context, string, string) error { return nil }

func (g *gatewayStub) ListTomadoresPorSocios(context.Context, []string) ([]gatewaydomain.Tomador, error) {
	return nil, nil
}

func (g *gatewayStub) ListTomadores(context.Context) ([]gatewaydomain.Tomador, error) {
	return nil, nil
}

func (g *gatewayStub) CreateTomador(_ context.Context, payload gatewaydomain.NovoTomador) (gatewaydomain.Tomador, error) {
	g.mu.Lock()
	g.tomadorCalls++
	g.mu.Unlock()
	if g.tomadorErr != nil {
		return gatewaydomain.Tomador{}, g.tomadorErr
	}
	return gatewaydomain.Tomador{
		ID:        "tom-avulso-1",
		Nome:      payload.Nome,
		Documento: payload.Documento,
		Tipo:      payload.Tipo,
	}, nil
}

func (g *gatewayStub) UpdateTomador(_ context.Context, t gatewaydomain.Tomador) (gatewaydomain.Tomador, error) {
	return t, nil
}

func (g *gatewayStub) DeleteTomador(context.Context, string) error { return nil }

func (g *gatewayStub) ListModelos(context.Context, string) ([]gatewaydomain.Modelo, error) {
	return g.modelos, nil
}

func (g *gatewayStub) CreateModelo(_ context.Context, p gatewaydomain.NovoModelo) (gatewaydomain.Modelo, error) {
	return gatewaydomain.Modelo{TomadorID: p.TomadorID, Titulo: p.Titulo, Texto: p.Texto}, nil
}

func (g *gatewayStub) UpdateModelo(_ context.Context, m gatewaydomain.Modelo) (gatewaydomain.Modelo, error) {
	return m, nil
}

func (g *gatewayStub) DeleteModelo(context.Context, string) error { return nil }

func (g *gatewayStub) CreateNota(_ context.Context, payload map[string]any) (gatewaydomain.NotaResultado, error) {
	g.mu.Lock()
	g.notaCalls++
	g.lastPayload = payload
	g.mu.Unlock()
	if g.notaErr != nil {
		return gatewaydomain.NotaResultado{}, g.notaErr
	}
	return g.notaResultado, nil
}

func (g *gatewayStub) NotaCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notaCalls
}

func (g *gatewayStub) TomadorCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tomadorCalls
}

func defaultStub() *gatewayStub {
	return &gatewayStub{
		detalhes: gatewaydomain.EmpresaDetalhes{
			Empresa: gatewaydomain.Empresa{
				CodigoServico: "1.05",
				CNAE:          "8630501",
				AliquotaISS:   decimal.NewFromInt(2),
			},
		},
		socios: []gatewaydomain.Socio{
			{ID: "s1", NomeCompleto: "Ana", CPF: "52998224725"},
			{ID: "s2", NomeCompleto: "Bruno", CPF: "11144477735"},
		},
		modelos: []gatewaydomain.Modelo{
			{ID: "m1", TomadorID: "t1", Titulo: "Plantões", Texto: "{{#socios}}{{socio.nome}}: R$ {{valor}}\n{{/socios}}"},
		},
		notaResultado: gatewaydomain.NotaResultado{Status: gatewaydomain.NotaAutorizada, ID: "nota-1"},
	}
}

func setupWizard(t *testing.T, stub *gatewayStub) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Draft{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Gateway: stub,
	})
	return svc, db
}

func apply(t *testing.T, svc domain.Service, draft domain.Draft, event domain.Event) domain.Draft {
	t.Helper()
	next, err := svc.Apply(context.Background(), draft.ID.String(), draft.Version, event)
	if err != nil {
		t.Fatalf("apply %s: %v", event.Type, err)
	}
	return next
}

// draftAtRevisao walks a draft through the happy path up to step 5.
func draftAtRevisao(t *testing.T, svc domain.Service) domain.Draft {
	t.Helper()
	ctx := context.Background()

	draft, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarTomador, TomadorID: "t1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarModelo, ModeloID: "m1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "100"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "250,50"})

	for draft.Step < domain.StepRevisao {
		draft, err = svc.Advance(ctx, draft.ID.String(), draft.Version)
		if err != nil {
			t.Fatalf("advance from step %d: %v", draft.Step, err)
		}
	}
	return draft
}

func TestSelecionarEmpresaCarregaPadroes(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, err := svc.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if draft.Step != domain.StepEmpresa {
		t.Fatalf("expected step 1, got %d", draft.Step)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	if draft.CodigoServico != "1.05" || draft.CNAE != "8630501" {
		t.Fatalf("company defaults not installed: %q %q", draft.CodigoServico, draft.CNAE)
	}
	if len(draft.SociosDisponiveis) != 2 {
		t.Fatalf("expected 2 socios loaded, got %d", len(draft.SociosDisponiveis))
	}
	if len(draft.CodigosServicoFrequentes) != 1 {
		t.Fatalf("expected frequent codes, got %v", draft.CodigosServicoFrequentes)
	}
}

func TestTrocaDeEmpresaLimpaSelecoes(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "50"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "50"})

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e2"})
	if len(draft.SociosSelecionados) != 0 {
		t.Fatalf("partner selection survived company change: %v", draft.SociosSelecionados)
	}
	if len(draft.Valores) != 0 {
		t.Fatalf("values survived company change: %v", draft.Valores)
	}
	if draft.TomadorID != "" || draft.ModeloID != "" {
		t.Fatalf("downstream selections survived company change")
	}
}

func TestTrocaDeModoLimpaTomadorModeloValores(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarTomador, TomadorID: "t1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarModelo, ModeloID: "m1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "80"})

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirModoTomador, Modo: domain.ModoAvulso})
	if draft.TomadorID != "" {
		t.Fatalf("tomador_id survived mode switch: %q", draft.TomadorID)
	}
	if draft.ModeloID != "" {
		t.Fatalf("modelo_id survived mode switch: %q", draft.ModeloID)
	}
	if len(draft.Valores) != 0 {
		t.Fatalf("valores survived mode switch: %v", draft.Valores)
	}
}

func TestTrocaDeModoMantemModelosCarregados(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarTomador, TomadorID: "t1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirModoTomador, Modo: domain.ModoAvulso})

	// No manual text yet, so the template from the kept list installs
	// and renders normally.
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarModelo, ModeloID: "m1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "100"})

	if draft.ModeloID != "m1" {
		t.Fatalf("template not installed after mode switch: %q", draft.ModeloID)
	}
	if draft.Discriminacao != "Ana: R$ 100,00\n" {
		t.Fatalf("rendered discrimination mismatch: %q", draft.Discriminacao)
	}
}

func TestRemoverSocioDescartaValorERecalcula(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "100"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "200"})

	if !draft.ValorTotal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected total 300, got %s", draft.ValorTotal)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	if _, ok := draft.Valores["s2"]; ok {
		t.Fatalf("value of removed socio kept: %v", draft.Valores)
	}
	if !draft.ValorTotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100 after removal, got %s", draft.ValorTotal)
	}
}

func TestSomaIgnoraEntradasInvalidas(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "150,25"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "abc"})

	if !draft.ValorTotal.Equal(decimal.RequireFromString("150.25")) {
		t.Fatalf("expected total 150.25, got %s", draft.ValorTotal)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "-10"})
	if !draft.ValorTotal.Equal(decimal.RequireFromString("150.25")) {
		t.Fatalf("negative entry leaked into total: %s", draft.ValorTotal)
	}
}

func TestAliquotaZeroForcaISSZero(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "1000"})

	if draft.ValorISS.IsZero() {
		t.Fatalf("expected non-zero ISS with aliquota 2, got %s", draft.ValorISS)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirImpostos, Impostos: &domain.ImpostoCampos{
		AliquotaISS: decimal.Zero,
	}})
	if !draft.ValorISS.IsZero() {
		t.Fatalf("expected ISS 0 with aliquota 0, got %s", draft.ValorISS)
	}
}

func TestSelecionarModeloRenderizaDiscriminacao(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s2"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarTomador, TomadorID: "t1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarModelo, ModeloID: "m1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "100"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "250,5"})

	want := "Ana: R$ 100,00\nBruno: R$ 250,50\n"
	if draft.Discriminacao != want {
		t.Fatalf("rendered discrimination mismatch:\nwant %q\ngot  %q", want, draft.Discriminacao)
	}
}

func TestModeloNaoSobrescreveTextoAvulso(t *testing.T) {
	stub := defaultStub()
	svc, _ := setupWizard(t, stub)

	draft, _ := svc.Open(context.Background())
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventAlternarSocio, SocioID: "s1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarTomador, TomadorID: "t1"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirModoTomador, Modo: domain.ModoAvulso})

	// The template list is still cached on the draft from the earlier
	// selection; typing manual text then picking a template must not
	// replace it.
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventEditarDiscrim, Discriminacao: "texto manual"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarModelo, ModeloID: "m1"})

	if draft.Discriminacao != "texto manual" {
		t.Fatalf("manual text overwritten: %q", draft.Discriminacao)
	}
	if draft.ModeloID != "" {
		t.Fatalf("template installed despite manual text: %q", draft.ModeloID)
	}
}

func TestAvancoBloqueadoSemPredicado(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())
	ctx := context.Background()

	draft, _ := svc.Open(ctx)
	if _, err := svc.Advance(ctx, draft.ID.String(), draft.Version); !errors.Is(err, domain.ErrEmpresaObrigatoria) {
		t.Fatalf("expected ErrEmpresaObrigatoria, got %v", err)
	}

	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})
	draft, err := svc.Advance(ctx, draft.ID.String(), draft.Version)
	if err != nil {
		t.Fatalf("advance to step 2: %v", err)
	}
	if _, err := svc.Advance(ctx, draft.ID.String(), draft.Version); !errors.Is(err, domain.ErrSemSocios) {
		t.Fatalf("expected ErrSemSocios, got %v", err)
	}
}

func TestRetornoPreservaDados(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	draft, err := svc.Retreat(ctx, draft.ID.String(), draft.Version)
	if err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if draft.Step != domain.StepModelo {
		t.Fatalf("expected step 4, got %d", draft.Step)
	}
	if len(draft.SociosSelecionados) != 2 || len(draft.Valores) != 2 {
		t.Fatalf("data cleared on retreat")
	}
}

func TestVersaoDefasadaRejeitada(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())

	draft, _ := svc.Open(context.Background())
	stale := draft.Version
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventSelecionarEmpresa, EmpresaID: "e1"})

	_, err := svc.Apply(context.Background(), draft.ID.String(), stale, domain.Event{
		Type: domain.EventSelecionarEmpresa, EmpresaID: "e2",
	})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestSubmissaoAutorizadaDescartaRascunho(t *testing.T) {
	stub := defaultStub()
	svc, db := setupWizard(t, stub)
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	result, err := svc.Submit(ctx, draft.ID.String(), draft.Version)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != string(gatewaydomain.NotaAutorizada) || result.DraftKept {
		t.Fatalf("unexpected result: %+v", result)
	}
	if stub.NotaCalls() != 1 {
		t.Fatalf("expected 1 invoice call, got %d", stub.NotaCalls())
	}

	var count int64
	if err := db.Model(&domain.Draft{}).Count(&count).Error; err != nil {
		t.Fatalf("count drafts: %v", err)
	}
	if count != 0 {
		t.Fatalf("draft survived authorized submission")
	}
}

func TestSubmissaoErroMantemRascunho(t *testing.T) {
	stub := defaultStub()
	stub.notaResultado = gatewaydomain.NotaResultado{
		Status:   gatewaydomain.NotaErro,
		Mensagem: "tomador sem inscricao municipal",
		Sugestao: "Verifique o cadastro do tomador.",
	}
	svc, db := setupWizard(t, stub)
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	result, err := svc.Submit(ctx, draft.ID.String(), draft.Version)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.DraftKept {
		t.Fatalf("draft not kept on provider error")
	}
	if result.Sugestao == "" {
		t.Fatalf("suggestion missing from result")
	}

	var count int64
	if err := db.Model(&domain.Draft{}).Count(&count).Error; err != nil {
		t.Fatalf("count drafts: %v", err)
	}
	if count != 1 {
		t.Fatalf("draft discarded on provider error")
	}
}

func TestSubmissaoTotalZeroNaoChamaRede(t *testing.T) {
	stub := defaultStub()
	svc, _ := setupWizard(t, stub)
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: ""})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s2", Valor: "0"})

	_, err := svc.Submit(ctx, draft.ID.String(), draft.Version)
	if !errors.Is(err, domain.ErrValorTotalInvalido) {
		t.Fatalf("expected ErrValorTotalInvalido, got %v", err)
	}
	if stub.NotaCalls() != 0 {
		t.Fatalf("invoice call made with zero total")
	}
}

func TestFalhaTomadorAvulsoAbortaSubmissao(t *testing.T) {
	stub := defaultStub()
	stub.tomadorErr = gatewaydomain.ErrInvalidPayload
	svc, _ := setupWizard(t, stub)
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirModoTomador, Modo: domain.ModoAvulso})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventEditarAvulso, Avulso: &domain.TomadorAvulso{
		Nome:      "Clinica Sul",
		Documento: "11.222.333/0001-81",
	}})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventDefinirValor, SocioID: "s1", Valor: "100"})
	draft = apply(t, svc, draft, domain.Event{Type: domain.EventEditarDiscrim, Discriminacao: "servicos prestados"})

	_, err := svc.Submit(ctx, draft.ID.String(), draft.Version)
	if !errors.Is(err, gatewaydomain.ErrInvalidPayload) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if stub.TomadorCalls() != 1 {
		t.Fatalf("expected 1 tomador call, got %d", stub.TomadorCalls())
	}
	if stub.NotaCalls() != 0 {
		t.Fatalf("invoice created after tomador failure")
	}

	kept, err := svc.Get(ctx, draft.ID.String())
	if err != nil {
		t.Fatalf("get after failed submit: %v", err)
	}
	if kept.Step != domain.StepRevisao {
		t.Fatalf("step changed after failed submit: %d", kept.Step)
	}
}

func TestPayloadEsparso(t *testing.T) {
	stub := defaultStub()
	svc, _ := setupWizard(t, stub)
	ctx := context.Background()

	draft := draftAtRevisao(t, svc)
	if _, err := svc.Submit(ctx, draft.ID.String(), draft.Version); err != nil {
		t.Fatalf("submit: %v", err)
	}

	payload := stub.lastPayload
	if payload["empresa_id"] != "e1" || payload["tomador_id"] != "t1" {
		t.Fatalf("payload identity fields wrong: %v", payload)
	}
	if payload["modelo_discriminacao_id"] != "m1" {
		t.Fatalf("template reference missing: %v", payload["modelo_discriminacao_id"])
	}
	if _, ok := payload["retencao_irrf"]; ok {
		t.Fatalf("zero retention included in payload")
	}
	if _, ok := payload["local_prestacao"]; ok {
		t.Fatalf("collapsed location block included in payload")
	}
	socios, ok := payload["socios"].([]map[string]any)
	if !ok || len(socios) != 2 {
		t.Fatalf("expected 2 partner lines, got %v", payload["socios"])
	}
}

func TestCancelamentoDescartaRascunho(t *testing.T) {
	svc, _ := setupWizard(t, defaultStub())
	ctx := context.Background()

	draft, _ := svc.Open(ctx)
	if err := svc.Cancel(ctx, draft.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Get(ctx, draft.ID.String()); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound after cancel, got %v", err)
	}
}
