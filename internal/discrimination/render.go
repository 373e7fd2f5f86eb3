// Package discrimination renders NFS-e service-discrimination text from
// a template, the selected partners and their billed values.
//
// Templates carry scalar placeholders ({{valor_total}}, {{competencia}},
// {{mes_competencia}}) and at most one repeated block delimited by
// {{#socios}} ... {{/socios}}, cloned once per partner in list order.
package discrimination

import (
	"errors"
	"strings"

	"github.com/emitia/nfse-backoffice/pkg/format"
	"github.com/shopspring/decimal"
)

const (
	loopOpen  = "{{#socios}}"
	loopClose = "{{/socios}}"
)

// ErrMultipleLoopRegions rejects templates with more than one repeated
// block; repeating the same rendering in several positions is almost
// always an authoring mistake.
var ErrMultipleLoopRegions = errors.New("template has more than one {{#socios}} block")

// Socio is the partner projection the engine substitutes from.
type Socio struct {
	ID            string
	Nome          string
	CPF           string
	Registro      string
	Especialidade string
	Email         string
	Telefone      string
}

// Render substitutes placeholders in tpl. It is pure: identical inputs
// always produce identical output, and unknown placeholders are left
// verbatim rather than erased.
func Render(tpl string, socios []Socio, valores map[string]decimal.Decimal, competencia string) (string, error) {
	openIdx := strings.Index(tpl, loopOpen)
	if openIdx < 0 {
		return substituteGlobals(tpl, socios, valores, competencia), nil
	}

	rest := tpl[openIdx+len(loopOpen):]
	closeIdx := strings.Index(rest, loopClose)
	if closeIdx < 0 {
		// Unmatched open tag: not a loop region, leave it verbatim.
		return substituteGlobals(tpl, socios, valores, competencia), nil
	}

	after := rest[closeIdx+len(loopClose):]
	block := rest[:closeIdx]
	if strings.Contains(after, loopOpen) || strings.Contains(block, loopOpen) {
		return "", ErrMultipleLoopRegions
	}

	var repetitions strings.Builder
	for _, socio := range socios {
		repetitions.WriteString(substituteSocio(block, socio, valores[socio.ID]))
	}

	out := tpl[:openIdx] + repetitions.String() + after
	return substituteGlobals(out, socios, valores, competencia), nil
}

// HasLoopRegion reports whether tpl carries a complete repeated block.
func HasLoopRegion(tpl string) bool {
	openIdx := strings.Index(tpl, loopOpen)
	if openIdx < 0 {
		return false
	}
	return strings.Contains(tpl[openIdx+len(loopOpen):], loopClose)
}

func substituteSocio(block string, socio Socio, valor decimal.Decimal) string {
	out := block
	out = strings.ReplaceAll(out, "{{socio.nome}}", socio.Nome)
	out = strings.ReplaceAll(out, "{{socio.cpf}}", format.CPF(socio.CPF))
	out = strings.ReplaceAll(out, "{{socio.registro}}", socio.Registro)
	// Legacy alias kept for templates authored before the rename.
	out = strings.ReplaceAll(out, "{{socio.crm}}", socio.Registro)
	out = strings.ReplaceAll(out, "{{socio.especialidade}}", socio.Especialidade)
	out = strings.ReplaceAll(out, "{{socio.email}}", socio.Email)
	out = strings.ReplaceAll(out, "{{socio.telefone}}", socio.Telefone)
	out = strings.ReplaceAll(out, "{{valor}}", format.TemplateAmount(valor))
	return out
}

func substituteGlobals(tpl string, socios []Socio, valores map[string]decimal.Decimal, competencia string) string {
	out := tpl
	out = strings.ReplaceAll(out, "{{valor_total}}", format.TemplateAmount(Total(socios, valores)))
	out = strings.ReplaceAll(out, "{{competencia}}", format.Competence(competencia))
	out = strings.ReplaceAll(out, "{{mes_competencia}}", competencia)
	return out
}

// Total sums the strictly-positive values of the given partners. Zero,
// negative or absent entries do not contribute.
func Total(socios []Socio, valores map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, socio := range socios {
		if valor, ok := valores[socio.ID]; ok && valor.IsPositive() {
			total = total.Add(valor)
		}
	}
	return total
}
