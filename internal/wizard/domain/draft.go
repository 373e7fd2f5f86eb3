// Package domain holds the invoice-issuance wizard's working state.
//
// A Draft is created fresh when the wizard opens, mutated only through
// events (see events.go), and destroyed on successful submission or
// cancellation. Remote entities are cached on the draft as snapshots
// for the duration of a step; the provider remains their owner.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Step is the wizard's position, linear from 1 to 5 with no skipping.
type Step int

const (
	StepEmpresa Step = 1
	StepSocios  Step = 2
	StepTomador Step = 3
	StepModelo  Step = 4
	StepRevisao Step = 5
)

// ModoTomador discriminates the client variant: a registered tomador
// referenced by id, or an ad-hoc one built for a single invoice.
type ModoTomador string

const (
	ModoCadastrado ModoTomador = "cadastrado"
	ModoAvulso     ModoTomador = "avulsa"
)

// TomadorAvulso is the ad-hoc client record. It lives on the draft and
// is only persisted to the provider at submission time.
type TomadorAvulso struct {
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Email     string `json:"email"`
}

// Preenchido reports whether the ad-hoc record satisfies step 3.
func (t TomadorAvulso) Preenchido() bool {
	return t.Nome != "" && t.Documento != ""
}

// Draft is the wizard's accumulated state.
type Draft struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	Version int64        `gorm:"not null;default:0" json:"version"`
	Step    Step         `gorm:"not null;default:1" json:"step"`

	// Step 1: company.
	EmpresaID     string          `gorm:"index" json:"empresa_id"`
	CodigoServico string          `json:"codigo_servico"`
	CNAE          string          `json:"cnae"`
	AliquotaISS   decimal.Decimal `gorm:"type:decimal(8,4)" json:"aliquota_iss"`

	CodigosServicoFrequentes datatypes.JSONSlice[string] `json:"codigos_servico_frequentes"`
	CNAEsFrequentes          datatypes.JSONSlice[string] `json:"cnaes_frequentes"`

	// Step 2: partners. Disponiveis is the fetched snapshot,
	// Selecionados the chosen subset, by partner id.
	SociosDisponiveis  datatypes.JSONSlice[gatewaydomain.Socio] `json:"socios_disponiveis"`
	SociosSelecionados datatypes.JSONSlice[string]              `json:"socios_selecionados"`

	// Step 3: client. Exactly one mode is active; switching modes
	// clears the dependent selections.
	ModoTomador ModoTomador   `gorm:"not null;default:'cadastrado'" json:"modo_tomador"`
	TomadorID   string        `json:"tomador_id"`
	Avulso      TomadorAvulso `gorm:"embedded;embeddedPrefix:avulso_" json:"tomador_avulso"`

	// Step 4: template and values.
	ModelosDisponiveis datatypes.JSONSlice[gatewaydomain.Modelo] `json:"modelos_disponiveis"`
	ModeloID           string                                    `json:"modelo_id"`
	ModeloTexto        string                                    `json:"-"`
	Discriminacao      string                                    `json:"discriminacao"`
	MesCompetencia     string                                    `json:"mes_competencia"`

	// Valores maps partner id to the raw entered amount. Entries may
	// be non-numeric; only strictly-positive numeric entries count
	// toward the total.
	Valores datatypes.JSONMap `json:"valores"`

	// Derived fields, recomputed after every mutating event.
	ValorTotal  decimal.Decimal `gorm:"type:decimal(14,2)" json:"valor_total"`
	BaseCalculo decimal.Decimal `gorm:"type:decimal(14,2)" json:"base_calculo"`
	ValorISS    decimal.Decimal `gorm:"type:decimal(14,2)" json:"valor_iss"`

	Deducoes  decimal.Decimal `gorm:"type:decimal(14,2)" json:"deducoes"`
	Descontos decimal.Decimal `gorm:"type:decimal(14,2)" json:"descontos"`

	ISSRetido      bool            `json:"iss_retido"`
	RetencaoIRRF   decimal.Decimal `gorm:"type:decimal(14,2)" json:"retencao_irrf"`
	RetencaoPIS    decimal.Decimal `gorm:"type:decimal(14,2)" json:"retencao_pis"`
	RetencaoCOFINS decimal.Decimal `gorm:"type:decimal(14,2)" json:"retencao_cofins"`
	RetencaoCSLL   decimal.Decimal `gorm:"type:decimal(14,2)" json:"retencao_csll"`
	RetencaoINSS   decimal.Decimal `gorm:"type:decimal(14,2)" json:"retencao_inss"`

	// Optional service-location block, included in the payload only
	// when the section was expanded and carries content.
	LocalExpandido bool   `json:"local_expandido"`
	LocalMunicipio string `json:"local_municipio"`
	LocalUF        string `json:"local_uf"`
	LocalCEP       string `json:"local_cep"`
	LocalEndereco  string `json:"local_endereco"`

	RPSNumero string `json:"rps_numero"`
	RPSSerie  string `json:"rps_serie"`
	RPSTipo   string `json:"rps_tipo"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Draft) TableName() string { return "invoice_drafts" }

// SocioSelecionado reports membership in the current selection.
func (d *Draft) SocioSelecionado(socioID string) bool {
	for _, id := range d.SociosSelecionados {
		if id == socioID {
			return true
		}
	}
	return false
}

// SociosEscolhidos returns the snapshot records of the selected
// partners, in selection order.
func (d *Draft) SociosEscolhidos() []gatewaydomain.Socio {
	out := make([]gatewaydomain.Socio, 0, len(d.SociosSelecionados))
	for _, id := range d.SociosSelecionados {
		for _, socio := range d.SociosDisponiveis {
			if socio.ID == id {
				out = append(out, socio)
				break
			}
		}
	}
	return out
}

// ValoresNumericos parses the raw value map, keeping only entries that
// are numeric. Zero and negative entries are kept here and filtered by
// the strictly-positive rules downstream.
func (d *Draft) ValoresNumericos() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(d.Valores))
	for socioID, raw := range d.Valores {
		valor, ok := parseValor(raw)
		if !ok {
			continue
		}
		out[socioID] = valor
	}
	return out
}

func parseValor(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		normalized := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if normalized == "" {
			return decimal.Decimal{}, false
		}
		parsed, err := decimal.NewFromString(normalized)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return parsed, true
	default:
		return decimal.Decimal{}, false
	}
}
