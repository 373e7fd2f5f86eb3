package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	wizarddomain "github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/gin-gonic/gin"
)

type fakeWizardService struct {
	draft     wizarddomain.Draft
	applyErr  error
	submitErr error
}

func (f *fakeWizardService) Open(ctx context.Context) (wizarddomain.Draft, error) {
	return f.draft, nil
}

func (f *fakeWizardService) Get(ctx context.Context, id string) (wizarddomain.Draft, error) {
	if id != f.draft.ID.String() {
		return wizarddomain.Draft{}, wizarddomain.ErrDraftNotFound
	}
	return f.draft, nil
}

func (f *fakeWizardService) List(ctx context.Context) ([]wizarddomain.Draft, error) {
	return []wizarddomain.Draft{f.draft}, nil
}

func (f *fakeWizardService) Apply(ctx context.Context, id string, version int64, event wizarddomain.Event) (wizarddomain.Draft, error) {
	if f.applyErr != nil {
		return wizarddomain.Draft{}, f.applyErr
	}
	return f.draft, nil
}

func (f *fakeWizardService) Advance(ctx context.Context, id string, version int64) (wizarddomain.Draft, error) {
	return f.draft, nil
}

func (f *fakeWizardService) Retreat(ctx context.Context, id string, version int64) (wizarddomain.Draft, error) {
	return f.draft, nil
}

func (f *fakeWizardService) Submit(ctx context.Context, id string, version int64) (wizarddomain.SubmitResult, error) {
	if f.submitErr != nil {
		return wizarddomain.SubmitResult{}, f.submitErr
	}
	return wizarddomain.SubmitResult{Status: "AUTORIZADA", NotaID: "nota-1"}, nil
}

func (f *fakeWizardService) Cancel(ctx context.Context, id string) error {
	return nil
}

func newDraftTestServer(fake *fakeWizardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{engine: engine, wizardSvc: fake}
	srv.registerAPIRoutes()
	return engine
}

func TestOpenDraftRoute(t *testing.T) {
	fake := &fakeWizardService{draft: wizarddomain.Draft{ID: snowflake.ID(42), Step: wizarddomain.StepEmpresa}}
	engine := newDraftTestServer(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drafts", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data wizarddomain.Draft `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Step != wizarddomain.StepEmpresa {
		t.Fatalf("expected step 1, got %d", body.Data.Step)
	}
}

func TestApplyEventVersionConflictMapsTo409(t *testing.T) {
	fake := &fakeWizardService{
		draft:    wizarddomain.Draft{ID: snowflake.ID(42)},
		applyErr: wizarddomain.ErrVersionConflict,
	}
	engine := newDraftTestServer(fake)

	payload := bytes.NewBufferString(`{"version":0,"event":{"type":"selecionar_empresa","empresa_id":"e1"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drafts/42/events", payload)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestApplyEventValidationMapsTo400(t *testing.T) {
	fake := &fakeWizardService{
		draft:    wizarddomain.Draft{ID: snowflake.ID(42)},
		applyErr: wizarddomain.ErrCompetenciaInvalida,
	}
	engine := newDraftTestServer(fake)

	payload := bytes.NewBufferString(`{"version":0,"event":{"type":"definir_competencia","competencia":"13/2026"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drafts/42/events", payload)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
}

func TestGetDraftUnknownMapsTo404(t *testing.T) {
	fake := &fakeWizardService{draft: wizarddomain.Draft{ID: snowflake.ID(42)}}
	engine := newDraftTestServer(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/drafts/99", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
