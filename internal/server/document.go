package server

import (
	"net/http"
	"strings"

	documentdomain "github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) UploadDocument(c *gin.Context) {
	empresaID := strings.TrimSpace(c.Param("id"))

	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "file_missing", "multipart file field is required"))
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	doc, err := s.documentSvc.Upload(
		c.Request.Context(),
		empresaID,
		file.Filename,
		file.Header.Get("Content-Type"),
		file.Size,
		src,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) ListDocuments(c *gin.Context) {
	var req documentdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EmpresaID = strings.TrimSpace(c.Param("id"))

	page, err := s.documentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      page.Documents,
		"page_info": page.PageInfo,
	})
}

func (s *Server) DownloadDocument(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	doc, rc, err := s.documentSvc.Open(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.Nome+`"`)
	c.DataFromReader(http.StatusOK, doc.Tamanho, doc.MIMEType, rc, nil)
}

func (s *Server) DeleteDocument(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.documentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
