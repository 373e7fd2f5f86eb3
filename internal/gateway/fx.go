package gateway

import (
	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/gateway/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway",
	fx.Provide(service.New),
	fx.Provide(provideLookup),
)

// provideLookup selects the registry implementation: the provider-backed
// client or the deterministic local mock.
func provideLookup(cfg config.Config, svc domain.Service) domain.Lookup {
	if cfg.CNPJLookupMode == "provider" {
		if lookup, ok := svc.(domain.Lookup); ok {
			return lookup
		}
	}
	return service.NewMockLookup()
}
