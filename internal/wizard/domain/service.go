package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SubmitResult is the outcome the review screen branches on. The draft
// survives (DraftKept) exactly when the provider answered ERRO, so the
// user can correct and resubmit.
type SubmitResult struct {
	Status    string `json:"status"`
	NotaID    string `json:"nota_id,omitempty"`
	Mensagem  string `json:"mensagem,omitempty"`
	Sugestao  string `json:"sugestao,omitempty"`
	DraftKept bool   `json:"draft_kept"`
}

// Service drives the five-step issuance wizard.
type Service interface {
	Open(ctx context.Context) (Draft, error)
	Get(ctx context.Context, id string) (Draft, error)
	List(ctx context.Context) ([]Draft, error)

	// Apply runs one event through the reducer. The caller's version
	// must match the stored draft; a mismatch means a superseding
	// change already landed and the event is rejected.
	Apply(ctx context.Context, id string, version int64, event Event) (Draft, error)

	Advance(ctx context.Context, id string, version int64) (Draft, error)
	Retreat(ctx context.Context, id string, version int64) (Draft, error)

	Submit(ctx context.Context, id string, version int64) (SubmitResult, error)
	Cancel(ctx context.Context, id string) error
}

// Repository persists drafts. The db handle is passed per call so the
// service controls transaction scope.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, draft *Draft) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Draft, error)
	List(ctx context.Context, db *gorm.DB) ([]*Draft, error)
	// Update writes the draft guarded by expectedVersion; it returns
	// ErrVersionConflict when another write won.
	Update(ctx context.Context, db *gorm.DB, draft *Draft, expectedVersion int64) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
