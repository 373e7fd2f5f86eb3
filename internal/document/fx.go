package document

import (
	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/document/domain"
	"github.com/emitia/nfse-backoffice/internal/document/repository"
	"github.com/emitia/nfse-backoffice/internal/document/service"
	"github.com/emitia/nfse-backoffice/internal/document/store"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("document",
	fx.Provide(repository.Provide),
	fx.Provide(provideStore),
	fx.Provide(service.NewService),
	fx.Invoke(migrate),
)

func provideStore(cfg config.Config) (domain.Store, error) {
	return store.NewDiskStore(cfg)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Document{})
}
