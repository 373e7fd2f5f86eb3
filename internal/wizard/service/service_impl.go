package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/observability/metrics"
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Gateway gatewaydomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	repo    domain.Repository
	gateway gatewaydomain.Service
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("wizard.service"),
		genID: p.GenID,

		repo:    p.Repo,
		gateway: p.Gateway,
		metrics: p.Metrics,
	}
}

// Open creates a fresh draft at step 1 with the current month as the
// default competence.
func (s *Service) Open(ctx context.Context) (domain.Draft, error) {
	draft := domain.Draft{
		ID:             s.genID.Generate(),
		Version:        0,
		Step:           domain.StepEmpresa,
		ModoTomador:    domain.ModoCadastrado,
		Valores:        datatypes.JSONMap{},
		MesCompetencia: time.Now().Format("2006-01"),
	}
	if err := s.repo.Insert(ctx, s.db, &draft); err != nil {
		return domain.Draft{}, err
	}

	s.metrics.RecordDraftOpened(ctx)
	s.log.Info("draft opened", zap.String("draft_id", draft.ID.String()))
	return draft, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Draft, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return domain.Draft{}, err
	}
	draft, err := s.repo.FindByID(ctx, s.db, draftID)
	if err != nil {
		return domain.Draft{}, err
	}
	return *draft, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Draft, error) {
	drafts, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, *d)
	}
	return out, nil
}

// Apply runs one event through the reducer and persists the result
// guarded by the caller's version.
func (s *Service) Apply(ctx context.Context, id string, version int64, event domain.Event) (domain.Draft, error) {
	draft, err := s.loadVersioned(ctx, id, version)
	if err != nil {
		return domain.Draft{}, err
	}

	if err := s.reduce(ctx, draft, event); err != nil {
		return domain.Draft{}, err
	}
	s.recompute(ctx, draft)

	if err := s.persist(ctx, draft, version); err != nil {
		return domain.Draft{}, err
	}

	s.metrics.RecordDraftEvent(ctx, string(event.Type))
	return *draft, nil
}

// Advance moves one step forward when the current step's completion
// predicate holds.
func (s *Service) Advance(ctx context.Context, id string, version int64) (domain.Draft, error) {
	draft, err := s.loadVersioned(ctx, id, version)
	if err != nil {
		return domain.Draft{}, err
	}

	if err := canProceed(draft); err != nil {
		return domain.Draft{}, err
	}
	if draft.Step < domain.StepRevisao {
		draft.Step++
	}

	if err := s.persist(ctx, draft, version); err != nil {
		return domain.Draft{}, err
	}
	return *draft, nil
}

// Retreat moves one step back without clearing already-entered data.
func (s *Service) Retreat(ctx context.Context, id string, version int64) (domain.Draft, error) {
	draft, err := s.loadVersioned(ctx, id, version)
	if err != nil {
		return domain.Draft{}, err
	}

	if draft.Step > domain.StepEmpresa {
		draft.Step--
	}

	if err := s.persist(ctx, draft, version); err != nil {
		return domain.Draft{}, err
	}
	return *draft, nil
}

func (s *Service) Cancel(ctx context.Context, id string) error {
	draftID, err := parseDraftID(id)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, s.db, draftID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, draftID)
}

func (s *Service) loadVersioned(ctx context.Context, id string, version int64) (*domain.Draft, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return nil, err
	}
	draft, err := s.repo.FindByID(ctx, s.db, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Version != version {
		return nil, domain.ErrVersionConflict
	}
	return draft, nil
}

func (s *Service) persist(ctx context.Context, draft *domain.Draft, expectedVersion int64) error {
	draft.Version = expectedVersion + 1
	return s.repo.Update(ctx, s.db, draft, expectedVersion)
}

func parseDraftID(id string) (snowflake.ID, error) {
	draftID, err := snowflake.ParseString(id)
	if err != nil {
		return 0, domain.ErrDraftNotFound
	}
	return draftID, nil
}
