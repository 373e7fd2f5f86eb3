package wizard

import (
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/emitia/nfse-backoffice/internal/wizard/repository"
	"github.com/emitia/nfse-backoffice/internal/wizard/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("wizard",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Invoke(migrate),
)

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Draft{})
}
