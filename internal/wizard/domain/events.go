package domain

import "github.com/shopspring/decimal"

// EventType names every state transition the wizard accepts. The draft
// is only ever mutated by applying one of these through the reducer.
type EventType string

const (
	EventSelecionarEmpresa  EventType = "selecionar_empresa"
	EventAlternarSocio      EventType = "alternar_socio"
	EventDefinirModoTomador EventType = "definir_modo_tomador"
	EventSelecionarTomador  EventType = "selecionar_tomador"
	EventEditarAvulso       EventType = "editar_tomador_avulso"
	EventSelecionarModelo   EventType = "selecionar_modelo"
	EventDefinirValor       EventType = "definir_valor"
	EventEditarDiscrim      EventType = "editar_discriminacao"
	EventDefinirCompetencia EventType = "definir_competencia"
	EventDefinirServico     EventType = "definir_servico"
	EventDefinirImpostos    EventType = "definir_impostos"
	EventDefinirRetencoes   EventType = "definir_retencoes"
	EventDefinirLocal       EventType = "definir_local"
	EventDefinirRPS         EventType = "definir_rps"
)

// ServicoCampos carries the municipal service code and CNAE.
type ServicoCampos struct {
	CodigoServico string `json:"codigo_servico"`
	CNAE          string `json:"cnae"`
}

// ImpostoCampos carries the ISS inputs the tax derivation depends on.
type ImpostoCampos struct {
	AliquotaISS decimal.Decimal `json:"aliquota_iss"`
	Deducoes    decimal.Decimal `json:"deducoes"`
	Descontos   decimal.Decimal `json:"descontos"`
}

// RetencaoCampos carries the federal retention amounts.
type RetencaoCampos struct {
	ISSRetido bool            `json:"iss_retido"`
	IRRF      decimal.Decimal `json:"irrf"`
	PIS       decimal.Decimal `json:"pis"`
	COFINS    decimal.Decimal `json:"cofins"`
	CSLL      decimal.Decimal `json:"csll"`
	INSS      decimal.Decimal `json:"inss"`
}

// LocalCampos carries the optional service-location block.
type LocalCampos struct {
	Expandido bool   `json:"expandido"`
	Municipio string `json:"municipio"`
	UF        string `json:"uf"`
	CEP       string `json:"cep"`
	Endereco  string `json:"endereco"`
}

// RPSCampos carries the provisional receipt identification.
type RPSCampos struct {
	Numero string `json:"numero"`
	Serie  string `json:"serie"`
	Tipo   string `json:"tipo"`
}

// Event is the wizard's transition envelope. Only the fields relevant
// to Type are read; the rest stay zero.
type Event struct {
	Type EventType `json:"type"`

	EmpresaID     string          `json:"empresa_id,omitempty"`
	SocioID       string          `json:"socio_id,omitempty"`
	Modo          ModoTomador     `json:"modo,omitempty"`
	TomadorID     string          `json:"tomador_id,omitempty"`
	Avulso        *TomadorAvulso  `json:"avulso,omitempty"`
	ModeloID      string          `json:"modelo_id,omitempty"`
	Valor         string          `json:"valor,omitempty"`
	Discriminacao string          `json:"discriminacao,omitempty"`
	Competencia   string          `json:"competencia,omitempty"`
	Servico       *ServicoCampos  `json:"servico,omitempty"`
	Impostos      *ImpostoCampos  `json:"impostos,omitempty"`
	Retencoes     *RetencaoCampos `json:"retencoes,omitempty"`
	Local         *LocalCampos    `json:"local,omitempty"`
	RPS           *RPSCampos      `json:"rps,omitempty"`
}
