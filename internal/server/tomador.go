package server

import (
	"net/http"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/tomador"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListTomadores(c *gin.Context) {
	ctx := c.Request.Context()

	// ?socios=a,b filters to clients already billed by those partners,
	// which is how the wizard narrows its step 3 list.
	if raw := strings.TrimSpace(c.Query("socios")); raw != "" {
		tomadores, err := s.tomadorSvc.ListBySocios(ctx, strings.Split(raw, ","))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": tomadores})
		return
	}

	tomadores, err := s.tomadorSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tomadores})
}

func (s *Server) CreateTomador(c *gin.Context) {
	var req tomador.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.tomadorSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) UpdateTomador(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req tomador.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.tomadorSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteTomador(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.tomadorSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
