// Package domain defines the contract with the third-party NFS-e
// issuing provider. The provider owns the lifecycle of companies,
// partners, tomadores and discrimination templates; this side only
// holds snapshots.
package domain

import "github.com/shopspring/decimal"

// Empresa is the issuing company as registered on the provider.
type Empresa struct {
	ID           string `json:"id"`
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	// SyncID links the local registration to the provider's record.
	SyncID string `json:"sync_id,omitempty"`

	CodigoServico string          `json:"codigo_servico,omitempty"`
	CNAE          string          `json:"cnae,omitempty"`
	AliquotaISS   decimal.Decimal `json:"aliquota_iss"`
}

// EmpresaDetalhes is the extended company record fetched when the
// wizard selects a company; its fields seed the draft's defaults.
type EmpresaDetalhes struct {
	Empresa
	InscricaoMunicipal string `json:"inscricao_municipal,omitempty"`
	RegimeTributario   string `json:"regime_tributario,omitempty"`
}

// Socio is a partner/shareholder of an issuing company.
type Socio struct {
	ID            string          `json:"id"`
	NomeCompleto  string          `json:"nome_completo"`
	CPF           string          `json:"cpf"`
	Registro      string          `json:"registro_profissional,omitempty"`
	Especialidade string          `json:"especialidade,omitempty"`
	Email         string          `json:"email,omitempty"`
	Telefone      string          `json:"telefone,omitempty"`
	Participacao  decimal.Decimal `json:"percentual_participacao"`
}

// Tomador is the invoice's service recipient.
type Tomador struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	// Tipo is "fisica" or "juridica", derived from the document kind.
	Tipo  string `json:"tipo,omitempty"`
	Email string `json:"email,omitempty"`
}

// NovoTomador is the creation payload; used both by the tomador CRUD
// screens and by the wizard when persisting an ad-hoc tomador at
// submission time.
type NovoTomador struct {
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Tipo      string `json:"tipo"`
	Email     string `json:"email,omitempty"`
}

// Modelo is a discrimination template scoped to a tomador.
type Modelo struct {
	ID        string `json:"id"`
	TomadorID string `json:"tomador_id"`
	Titulo    string `json:"titulo"`
	Slug      string `json:"slug,omitempty"`
	Texto     string `json:"texto"`
}

// NovoModelo is the template creation/update payload.
type NovoModelo struct {
	TomadorID string `json:"tomador_id"`
	Titulo    string `json:"titulo"`
	Slug      string `json:"slug,omitempty"`
	Texto     string `json:"texto"`
}

// CodigosFrequentes are the service codes and CNAEs the company has
// issued with most often, surfaced as defaults.
type CodigosFrequentes struct {
	CodigosServico []string `json:"codigos_servico"`
	CNAEs          []string `json:"cnaes"`
}

// NotaStatus is the provider's answer to a submission.
type NotaStatus string

const (
	NotaAutorizada  NotaStatus = "AUTORIZADA"
	NotaProcessando NotaStatus = "PROCESSANDO"
	NotaErro        NotaStatus = "ERRO"
)

// NotaResultado is the submission result. Mensagem and Sugestao are
// only populated when Status is ERRO.
type NotaResultado struct {
	Status   NotaStatus `json:"status"`
	ID       string     `json:"id,omitempty"`
	Mensagem string     `json:"mensagem,omitempty"`
	Sugestao string     `json:"sugestao,omitempty"`
}

// QuadroSocio is a partner entry in the CNPJ registry record.
type QuadroSocio struct {
	Nome         string `json:"nome"`
	Qualificacao string `json:"qualificacao"`
}

// RegistroCNPJ is the fixed record shape returned by the registry lookup.
type RegistroCNPJ struct {
	CNPJ         string        `json:"cnpj"`
	RazaoSocial  string        `json:"razao_social"`
	NomeFantasia string        `json:"nome_fantasia"`
	Logradouro   string        `json:"logradouro"`
	Numero       string        `json:"numero"`
	Bairro       string        `json:"bairro"`
	Municipio    string        `json:"municipio"`
	UF           string        `json:"uf"`
	CEP          string        `json:"cep"`
	Socios       []QuadroSocio `json:"socios,omitempty"`
}
