package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/emitia/nfse-backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

// Provide builds the document metadata repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Create(doc).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repo) ListByEmpresa(ctx context.Context, db *gorm.DB, empresaID string, cursor *pagination.Cursor, limit int) ([]*domain.Document, error) {
	q := db.WithContext(ctx).
		Where("empresa_id = ?", empresaID).
		Order("id desc").
		Limit(limit + 1)
	if cursor != nil && cursor.ID != "" {
		q = q.Where("id < ?", cursor.ID)
	}

	var docs []*domain.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}
