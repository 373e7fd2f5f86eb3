package server

import (
	"net/http"
	"strings"

	"github.com/emitia/nfse-backoffice/pkg/format"
	"github.com/gin-gonic/gin"
)

// LookupCNPJ answers the registry lookup used by the company form's
// "consultar" button. Obviously invalid input is rejected before any
// network call.
func (s *Server) LookupCNPJ(c *gin.Context) {
	cnpj := format.Digits(strings.TrimSpace(c.Param("cnpj")))
	if !format.ValidCNPJ(cnpj) {
		AbortWithError(c, newValidationError("cnpj", "cnpj_invalid", "CNPJ check digits do not match"))
		return
	}

	registro, err := s.lookupSvc.LookupCNPJ(c.Request.Context(), cnpj)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": registro})
}
