package server

import (
	"net/http"
	"strings"

	"github.com/emitia/nfse-backoffice/internal/modelo"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListModelos(c *gin.Context) {
	tomadorID := strings.TrimSpace(c.Param("id"))

	modelos, err := s.modeloSvc.List(c.Request.Context(), tomadorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": modelos})
}

func (s *Server) CreateModelo(c *gin.Context) {
	tomadorID := strings.TrimSpace(c.Param("id"))

	var req modelo.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.modeloSvc.Create(c.Request.Context(), tomadorID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

type updateModeloRequest struct {
	TomadorID string `json:"tomador_id"`
	modelo.Input
}

func (s *Server) UpdateModelo(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateModeloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.modeloSvc.Update(c.Request.Context(), id, strings.TrimSpace(req.TomadorID), req.Input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteModelo(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.modeloSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
