package domain

import "context"

// Service is the remote data gateway: every network interaction with
// the invoicing provider goes through it. Implementations must not
// retry on their own; recovery is the caller's policy.
type Service interface {
	// Companies.
	ListEmpresas(ctx context.Context) ([]Empresa, error)
	GetEmpresaDetalhes(ctx context.Context, empresaID string) (EmpresaDetalhes, error)
	GetCodigosFrequentes(ctx context.Context, empresaID string) (CodigosFrequentes, error)
	CreateEmpresa(ctx context.Context, empresa Empresa) (Empresa, error)
	UpdateEmpresa(ctx context.Context, empresa Empresa) (Empresa, error)
	DeleteEmpresa(ctx context.Context, empresaID string) error
	SyncEmpresa(ctx context.Context, empresaID string) (Empresa, error)

	// Partners, scoped by company.
	ListSocios(ctx context.Context, empresaID string) ([]Socio, error)
	CreateSocio(ctx context.Context, empresaID string, socio Socio) (Socio, error)
	UpdateSocio(ctx context.Context, empresaID string, socio Socio) (Socio, error)
	DeleteSocio(ctx context.Context, empresaID, socioID string) error

	// Tomadores.
	ListTomadoresPorSocios(ctx context.Context, socioIDs []string) ([]Tomador, error)
	ListTomadores(ctx context.Context) ([]Tomador, error)
	CreateTomador(ctx context.Context, payload NovoTomador) (Tomador, error)
	UpdateTomador(ctx context.Context, tomador Tomador) (Tomador, error)
	DeleteTomador(ctx context.Context, tomadorID string) error

	// Discrimination templates, scoped by tomador.
	ListModelos(ctx context.Context, tomadorID string) ([]Modelo, error)
	CreateModelo(ctx context.Context, payload NovoModelo) (Modelo, error)
	UpdateModelo(ctx context.Context, modelo Modelo) (Modelo, error)
	DeleteModelo(ctx context.Context, modeloID string) error

	// Invoice submission. The payload is sparse: optional fields are
	// omitted, never null.
	CreateNota(ctx context.Context, payload map[string]any) (NotaResultado, error)
}

// Lookup answers CNPJ registry queries. The real implementation calls
// the provider; the mock answers locally.
type Lookup interface {
	LookupCNPJ(ctx context.Context, cnpj string) (RegistroCNPJ, error)
}
