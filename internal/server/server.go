package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/company"
	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/document"
	documentdomain "github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/emitia/nfse-backoffice/internal/gateway"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/modelo"
	"github.com/emitia/nfse-backoffice/internal/observability"
	obsmiddleware "github.com/emitia/nfse-backoffice/internal/observability/logger"
	obsmetrics "github.com/emitia/nfse-backoffice/internal/observability/metrics"
	obstracing "github.com/emitia/nfse-backoffice/internal/observability/tracing"
	"github.com/emitia/nfse-backoffice/internal/partner"
	previewpdf "github.com/emitia/nfse-backoffice/internal/preview/pdf"
	"github.com/emitia/nfse-backoffice/internal/tomador"
	"github.com/emitia/nfse-backoffice/internal/wizard"
	wizarddomain "github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	fx.Provide(previewpdf.NewRenderer),
	gateway.Module,
	wizard.Module,
	company.Module,
	partner.Module,
	tomador.Module,
	modelo.Module,
	document.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	wizardSvc   wizarddomain.Service
	gatewaySvc  gatewaydomain.Service
	lookupSvc   gatewaydomain.Lookup
	companySvc  company.Service
	partnerSvc  partner.Service
	tomadorSvc  tomador.Service
	modeloSvc   modelo.Service
	documentSvc documentdomain.Service
	pdfRenderer *previewpdf.Renderer
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	GenID *snowflake.Node

	WizardSvc   wizarddomain.Service
	GatewaySvc  gatewaydomain.Service
	LookupSvc   gatewaydomain.Lookup
	CompanySvc  company.Service
	PartnerSvc  partner.Service
	TomadorSvc  tomador.Service
	ModeloSvc   modelo.Service
	DocumentSvc documentdomain.Service
	PDFRenderer *previewpdf.Renderer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		genID:       p.GenID,
		wizardSvc:   p.WizardSvc,
		gatewaySvc:  p.GatewaySvc,
		lookupSvc:   p.LookupSvc,
		companySvc:  p.CompanySvc,
		partnerSvc:  p.PartnerSvc,
		tomadorSvc:  p.TomadorSvc,
		modeloSvc:   p.ModeloSvc,
		documentSvc: p.DocumentSvc,
		pdfRenderer: p.PDFRenderer,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	drafts := v1.Group("/drafts")
	drafts.POST("", s.OpenDraft)
	drafts.GET("", s.ListDrafts)
	drafts.GET("/:id", s.GetDraft)
	drafts.POST("/:id/events", s.ApplyDraftEvent)
	drafts.POST("/:id/advance", s.AdvanceDraft)
	drafts.POST("/:id/retreat", s.RetreatDraft)
	drafts.GET("/:id/preview", s.PreviewDraft)
	drafts.GET("/:id/preview.pdf", s.PreviewDraftPDF)
	drafts.POST("/:id/submit", s.SubmitDraft)
	drafts.DELETE("/:id", s.CancelDraft)

	companies := v1.Group("/companies")
	companies.GET("", s.ListCompanies)
	companies.POST("", s.CreateCompany)
	companies.GET("/:id", s.GetCompany)
	companies.PUT("/:id", s.UpdateCompany)
	companies.DELETE("/:id", s.DeleteCompany)
	companies.GET("/:id/frequent-codes", s.GetFrequentCodes)
	companies.POST("/:id/sync", s.SyncCompany)

	companies.GET("/:id/partners", s.ListPartners)
	companies.POST("/:id/partners", s.CreatePartner)
	companies.PUT("/:id/partners/:partnerID", s.UpdatePartner)
	companies.DELETE("/:id/partners/:partnerID", s.DeletePartner)

	companies.POST("/:id/documents", s.UploadDocument)
	companies.GET("/:id/documents", s.ListDocuments)

	tomadores := v1.Group("/tomadores")
	tomadores.GET("", s.ListTomadores)
	tomadores.POST("", s.CreateTomador)
	tomadores.PUT("/:id", s.UpdateTomador)
	tomadores.DELETE("/:id", s.DeleteTomador)
	tomadores.GET("/:id/modelos", s.ListModelos)
	tomadores.POST("/:id/modelos", s.CreateModelo)

	modelos := v1.Group("/modelos")
	modelos.PUT("/:id", s.UpdateModelo)
	modelos.DELETE("/:id", s.DeleteModelo)

	documents := v1.Group("/documents")
	documents.GET("/:id/download", s.DownloadDocument)
	documents.DELETE("/:id", s.DeleteDocument)

	v1.GET("/cnpj/:cnpj", s.LookupCNPJ)
}
