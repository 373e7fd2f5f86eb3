package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/emitia/nfse-backoffice/internal/document/repository"
	"github.com/emitia/nfse-backoffice/internal/document/store"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDocuments(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	cfg := config.Config{DocumentDir: t.TempDir(), DocumentMaxBytes: 64}
	diskStore, err := store.NewDiskStore(cfg)
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	return NewService(ServiceParam{
		Config: cfg,
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Store:  diskStore,
	})
}

func TestUploadEDownload(t *testing.T) {
	svc := setupDocuments(t)
	ctx := context.Background()

	body := "conteudo do contrato"
	doc, err := svc.Upload(ctx, "e1", "contrato.pdf", "application/pdf", int64(len(body)), strings.NewReader(body))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.Tamanho != int64(len(body)) {
		t.Fatalf("expected %d bytes, got %d", len(body), doc.Tamanho)
	}

	got, rc, err := svc.Open(ctx, doc.ID.String())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != body {
		t.Fatalf("content mismatch: %q", data)
	}
	if got.Nome != "contrato.pdf" {
		t.Fatalf("name mismatch: %q", got.Nome)
	}
}

func TestUploadRejeitaTipoEExcesso(t *testing.T) {
	svc := setupDocuments(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "e1", "script.sh", "application/x-sh", 4, strings.NewReader("oops"))
	if !errors.Is(err, domain.ErrDocumentType) {
		t.Fatalf("expected ErrDocumentType, got %v", err)
	}

	big := strings.Repeat("x", 65)
	_, err = svc.Upload(ctx, "e1", "grande.pdf", "application/pdf", int64(len(big)), strings.NewReader(big))
	if !errors.Is(err, domain.ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestListagemPaginada(t *testing.T) {
	svc := setupDocuments(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("doc-%d.pdf", i)
		if _, err := svc.Upload(ctx, "e1", name, "application/pdf", 1, strings.NewReader("x")); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
	}
	if _, err := svc.Upload(ctx, "e2", "outro.pdf", "application/pdf", 1, strings.NewReader("x")); err != nil {
		t.Fatalf("upload other company: %v", err)
	}

	req := domain.ListRequest{EmpresaID: "e1"}
	req.PageSize = 2
	page, err := svc.List(ctx, req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Documents) != 2 || !page.PageInfo.HasMore {
		t.Fatalf("expected first page of 2 with more, got %d more=%v", len(page.Documents), page.PageInfo.HasMore)
	}

	req.PageToken = page.PageInfo.NextPageToken
	rest, err := svc.List(ctx, req)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(rest.Documents) != 1 || rest.PageInfo.HasMore {
		t.Fatalf("expected final page of 1, got %d more=%v", len(rest.Documents), rest.PageInfo.HasMore)
	}
}

func TestDeleteRemoveLinhaEObjeto(t *testing.T) {
	svc := setupDocuments(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "e1", "contrato.pdf", "application/pdf", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Delete(ctx, doc.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.Open(ctx, doc.ID.String()); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
