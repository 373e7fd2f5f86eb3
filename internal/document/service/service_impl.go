package service

import (
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/emitia/nfse-backoffice/pkg/db/pagination"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allowedMIMETypes are the document kinds the back office accepts:
// scans and spreadsheets of fiscal paperwork.
var allowedMIMETypes = map[string]bool{
	"application/pdf":    true,
	"image/png":          true,
	"image/jpeg":         true,
	"text/csv":           true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

type ServiceParam struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Store  domain.Store
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	store domain.Store
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("document.service"),
		genID: p.GenID,
		repo:  p.Repo,
		store: p.Store,
	}
}

// Upload streams the body into the object store, then records the
// metadata. A failed insert removes the orphaned object.
func (s *Service) Upload(ctx context.Context, empresaID, nome, mimeType string, size int64, r io.Reader) (domain.Document, error) {
	if !allowedMIMETypes[normalizeMIME(mimeType)] {
		return domain.Document{}, domain.ErrDocumentType
	}
	if size > s.cfg.DocumentMaxBytes {
		return domain.Document{}, domain.ErrDocumentTooLarge
	}

	key := uuid.NewString()
	written, err := s.store.Put(key, r, s.cfg.DocumentMaxBytes)
	if err != nil {
		return domain.Document{}, err
	}

	doc := domain.Document{
		ID:        s.genID.Generate(),
		EmpresaID: empresaID,
		Nome:      strings.TrimSpace(nome),
		MIMEType:  normalizeMIME(mimeType),
		Tamanho:   written,
		ObjectKey: key,
	}
	if err := s.repo.Insert(ctx, s.db, &doc); err != nil {
		if removeErr := s.store.Remove(key); removeErr != nil {
			s.log.Error("orphaned object not removed",
				zap.String("object_key", key), zap.Error(removeErr))
		}
		return domain.Document{}, err
	}

	s.log.Info("document uploaded",
		zap.String("empresa_id", empresaID),
		zap.String("document_id", doc.ID.String()),
		zap.Int64("bytes", written))
	return doc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	var cursor *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, err
		}
		cursor = decoded
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 50
	}

	docs, err := s.repo.ListByEmpresa(ctx, s.db, req.EmpresaID, cursor, limit)
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(docs, limit, func(d *domain.Document) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: d.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	if len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return domain.ListResponse{Documents: out, PageInfo: pageInfo}, nil
}

func (s *Service) Open(ctx context.Context, id string) (domain.Document, io.ReadCloser, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return domain.Document{}, nil, err
	}
	rc, err := s.store.Get(doc.ObjectKey)
	if err != nil {
		return domain.Document{}, nil, err
	}
	return *doc, rc, nil
}

// Delete removes the row first so a half-deleted document is at worst
// an unreferenced object, never a dangling row.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, doc.ID); err != nil {
		return err
	}
	if err := s.store.Remove(doc.ObjectKey); err != nil {
		s.log.Error("document object not removed",
			zap.String("object_key", doc.ObjectKey), zap.Error(err))
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Document, error) {
	docID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrDocumentNotFound
	}
	return s.repo.FindByID(ctx, s.db, docID)
}

func normalizeMIME(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
