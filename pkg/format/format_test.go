package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDocumentMasks(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-95", CNPJ("12345678000195"))
	assert.Equal(t, "12.345.678/0001-95", CNPJ("12.345.678/0001-95"))
	assert.Equal(t, "123.456.789-09", CPF("12345678909"))

	// wrong digit counts pass through
	assert.Equal(t, "123", CNPJ("123"))
	assert.Equal(t, "123", CPF("123"))

	assert.Equal(t, "123.456.789-09", Document("12345678909"))
	assert.Equal(t, "12.345.678/0001-95", Document("12345678000195"))
}

func TestCheckDigits(t *testing.T) {
	assert.True(t, ValidCNPJ("11.222.333/0001-81"))
	assert.False(t, ValidCNPJ("11.222.333/0001-82"))
	assert.False(t, ValidCNPJ("00000000000000"))
	assert.False(t, ValidCNPJ("123"))

	assert.True(t, ValidCPF("529.982.247-25"))
	assert.False(t, ValidCPF("529.982.247-24"))
	assert.False(t, ValidCPF("11111111111"))
}

func TestCurrencyBRL(t *testing.T) {
	assert.Equal(t, "1.234,56", CurrencyBRL(decimal.NewFromFloat(1234.56)))
	assert.Equal(t, "0,00", CurrencyBRL(decimal.Zero))
	assert.Equal(t, "1.000.000,00", CurrencyBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-12,30", CurrencyBRL(decimal.NewFromFloat(-12.3)))
	assert.Equal(t, "100,00", CurrencyBRL(decimal.NewFromInt(100)))
}

func TestTemplateAmount(t *testing.T) {
	assert.Equal(t, "1234,56", TemplateAmount(decimal.NewFromFloat(1234.56)))
	assert.Equal(t, "100,00", TemplateAmount(decimal.NewFromInt(100)))
	assert.Equal(t, "250,50", TemplateAmount(decimal.NewFromFloat(250.5)))
}

func TestCompetence(t *testing.T) {
	assert.True(t, ValidCompetence("2024-07"))
	assert.False(t, ValidCompetence("2024-13"))
	assert.False(t, ValidCompetence("07/2024"))

	assert.Equal(t, "07/2024", Competence("2024-07"))
	assert.Equal(t, "nope", Competence("nope"))
}

func TestDateBR(t *testing.T) {
	assert.Equal(t, "31/01/2024", DateBR(time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)))
}
