package server

import (
	"net/http"
	"strings"

	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/preview"
	wizarddomain "github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/gin-gonic/gin"
)

type draftEventRequest struct {
	Version int64              `json:"version"`
	Event   wizarddomain.Event `json:"event"`
}

type draftVersionRequest struct {
	Version int64 `json:"version"`
}

func (s *Server) OpenDraft(c *gin.Context) {
	draft, err := s.wizardSvc.Open(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": draft})
}

func (s *Server) ListDrafts(c *gin.Context) {
	drafts, err := s.wizardSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drafts})
}

func (s *Server) GetDraft(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	draft, err := s.wizardSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) ApplyDraftEvent(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req draftEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	draft, err := s.wizardSvc.Apply(c.Request.Context(), id, req.Version, req.Event)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) AdvanceDraft(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req draftVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	draft, err := s.wizardSvc.Advance(c.Request.Context(), id, req.Version)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) RetreatDraft(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req draftVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	draft, err := s.wizardSvc.Retreat(c.Request.Context(), id, req.Version)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) PreviewDraft(c *gin.Context) {
	resumo, err := s.buildPreview(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resumo})
}

func (s *Server) PreviewDraftPDF(c *gin.Context) {
	resumo, err := s.buildPreview(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := s.pdfRenderer.Render(c.Request.Context(), resumo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="espelho.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", pdf, nil)
}

func (s *Server) SubmitDraft(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req draftVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.wizardSvc.Submit(c.Request.Context(), id, req.Version)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) CancelDraft(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.wizardSvc.Cancel(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// buildPreview projects the draft plus the company record (and the
// registered tomador, when one is selected) into the review summary.
func (s *Server) buildPreview(c *gin.Context) (preview.Resumo, error) {
	id := strings.TrimSpace(c.Param("id"))
	ctx := c.Request.Context()

	draft, err := s.wizardSvc.Get(ctx, id)
	if err != nil {
		return preview.Resumo{}, err
	}

	var empresa gatewaydomain.EmpresaDetalhes
	if draft.EmpresaID != "" {
		empresa, err = s.gatewaySvc.GetEmpresaDetalhes(ctx, draft.EmpresaID)
		if err != nil {
			return preview.Resumo{}, err
		}
	}

	var selecionado *gatewaydomain.Tomador
	if draft.ModoTomador == wizarddomain.ModoCadastrado && draft.TomadorID != "" {
		tomadores, err := s.gatewaySvc.ListTomadores(ctx)
		if err != nil {
			return preview.Resumo{}, err
		}
		for i := range tomadores {
			if tomadores[i].ID == draft.TomadorID {
				selecionado = &tomadores[i]
				break
			}
		}
	}

	return preview.Build(&draft, empresa, selecionado), nil
}
