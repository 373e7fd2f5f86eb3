package server

import (
	"net/http"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/partner"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListPartners(c *gin.Context) {
	empresaID := strings.TrimSpace(c.Param("id"))

	socios, err := s.partnerSvc.List(c.Request.Context(), empresaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": socios})
}

func (s *Server) CreatePartner(c *gin.Context) {
	empresaID := strings.TrimSpace(c.Param("id"))

	var req partner.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	socio, err := s.partnerSvc.Create(c.Request.Context(), empresaID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": socio})
}

func (s *Server) UpdatePartner(c *gin.Context) {
	empresaID := strings.TrimSpace(c.Param("id"))
	socioID := strings.TrimSpace(c.Param("partnerID"))

	var req partner.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	socio, err := s.partnerSvc.Update(c.Request.Context(), empresaID, socioID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": socio})
}

func (s *Server) DeletePartner(c *gin.Context) {
	empresaID := strings.TrimSpace(c.Param("id"))
	socioID := strings.TrimSpace(c.Param("partnerID"))

	if err := s.partnerSvc.Delete(c.Request.Context(), empresaID, socioID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
