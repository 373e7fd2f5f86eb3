package server

import (
	"net/http"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/company"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCompanies(c *gin.Context) {
	empresas, err := s.companySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": empresas})
}

func (s *Server) GetCompany(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	detalhes, err := s.companySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detalhes})
}

func (s *Server) GetFrequentCodes(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	codes, err := s.companySvc.FrequentCodes(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": codes})
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req company.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	empresa, err := s.companySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": empresa})
}

func (s *Server) UpdateCompany(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req company.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	empresa, err := s.companySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": empresa})
}

func (s *Server) DeleteCompany(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.companySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) SyncCompany(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	empresa, err := s.companySvc.Sync(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": empresa})
}
