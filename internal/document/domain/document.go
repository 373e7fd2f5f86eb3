// Package domain holds the company-document records. Documents are
// the one locally-owned resource: metadata lives in the database and
// the bytes in a filesystem object store.
package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document_not_found")
	ErrDocumentTooLarge = errors.New("document_too_large")
	ErrDocumentType     = errors.New("document_type_not_allowed")
)

// Document is the stored metadata row; ObjectKey locates the bytes.
type Document struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	EmpresaID string       `gorm:"index;not null" json:"empresa_id"`
	Nome      string       `gorm:"not null" json:"nome"`
	MIMEType  string       `gorm:"not null" json:"mime_type"`
	Tamanho   int64        `gorm:"not null" json:"tamanho"`
	ObjectKey string       `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "company_documents" }

// ListRequest pages documents of one company.
type ListRequest struct {
	EmpresaID string
	pagination.Pagination
}

// ListResponse carries one page plus the cursor metadata.
type ListResponse struct {
	Documents []Document           `json:"documents"`
	PageInfo  *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Upload(ctx context.Context, empresaID, nome, mimeType string, size int64, r io.Reader) (Document, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Open(ctx context.Context, id string) (Document, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	ListByEmpresa(ctx context.Context, db *gorm.DB, empresaID string, cursor *pagination.Cursor, limit int) ([]*Document, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

// Store is the byte-level object store.
type Store interface {
	Put(key string, r io.Reader, maxBytes int64) (written int64, err error)
	Get(key string) (io.ReadCloser, error)
	Remove(key string) error
}
