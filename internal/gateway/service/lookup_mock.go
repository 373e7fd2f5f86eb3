package service

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/pkg/format"
)

// MockLookup answers registry queries locally with deterministic
// records derived from the queried CNPJ. Used in development and in
// environments without registry access.
type MockLookup struct{}

// NewMockLookup builds the mock registry.
func NewMockLookup() domain.Lookup {
	return &MockLookup{}
}

var (
	mockRamos = []string{
		"Serviços Médicos",
		"Consultoria Contábil",
		"Engenharia e Projetos",
		"Tecnologia da Informação",
		"Assessoria Jurídica",
	}
	mockMunicipios = []struct {
		nome string
		uf   string
	}{
		{"São Paulo", "SP"},
		{"Porto Alegre", "RS"},
		{"Belo Horizonte", "MG"},
		{"Curitiba", "PR"},
		{"Rio de Janeiro", "RJ"},
	}
)

func (m *MockLookup) LookupCNPJ(ctx context.Context, cnpj string) (domain.RegistroCNPJ, error) {
	_ = ctx

	digits := format.Digits(cnpj)
	if len(digits) != 14 {
		return domain.RegistroCNPJ{}, domain.ErrNotFound
	}

	seed := fnv.New32a()
	_, _ = seed.Write([]byte(digits))
	n := seed.Sum32()

	ramo := mockRamos[n%uint32(len(mockRamos))]
	municipio := mockMunicipios[(n/7)%uint32(len(mockMunicipios))]

	return domain.RegistroCNPJ{
		CNPJ:         digits,
		RazaoSocial:  fmt.Sprintf("%s %s LTDA", ramo, digits[:8]),
		NomeFantasia: ramo,
		Logradouro:   fmt.Sprintf("Rua %d", n%900+100),
		Numero:       fmt.Sprintf("%d", n%2000+1),
		Bairro:       "Centro",
		Municipio:    municipio.nome,
		UF:           municipio.uf,
		CEP:          fmt.Sprintf("%08d", n%100000000),
		Socios: []domain.QuadroSocio{
			{Nome: fmt.Sprintf("Sócio Administrador %d", n%90+10), Qualificacao: "Sócio-Administrador"},
			{Nome: fmt.Sprintf("Sócio %d", (n/3)%90+10), Qualificacao: "Sócio"},
		},
	}, nil
}
