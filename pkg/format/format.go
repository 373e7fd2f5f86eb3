// Package format holds pure string-formatting helpers for Brazilian
// fiscal documents, currency and competence periods.
package format

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonDigitRe   = regexp.MustCompile(`\D`)
	competenceRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

// Digits strips everything but 0-9 from s.
func Digits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// CNPJ masks a 14-digit company tax id as 12.345.678/0001-90.
// Inputs with any other digit count are returned unchanged.
func CNPJ(s string) string {
	d := Digits(s)
	if len(d) != 14 {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// CPF masks an 11-digit individual tax id as 123.456.789-01.
// Inputs with any other digit count are returned unchanged.
func CPF(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// Document masks either document kind based on digit count.
func Document(s string) string {
	switch len(Digits(s)) {
	case 11:
		return CPF(s)
	case 14:
		return CNPJ(s)
	default:
		return s
	}
}

// ValidCNPJ verifies the mod-11 check digits of a CNPJ.
func ValidCNPJ(s string) bool {
	d := Digits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	first := checkDigit(d[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	second := checkDigit(d[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return int(d[12]-'0') == first && int(d[13]-'0') == second
}

// ValidCPF verifies the mod-11 check digits of a CPF.
func ValidCPF(s string) bool {
	d := Digits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	first := checkDigit(d[:9], []int{10, 9, 8, 7, 6, 5, 4, 3, 2})
	second := checkDigit(d[:10], []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})
	return int(d[9]-'0') == first && int(d[10]-'0') == second
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// CurrencyBRL renders a display-layer amount: two decimals, comma
// decimal separator, dot thousands separators (1.234,56).
func CurrencyBRL(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// TemplateAmount renders a template-substitution amount: two decimals,
// comma decimal separator, no thousands separator (1234,56).
func TemplateAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// ValidCompetence reports whether s is a YYYY-MM competence month.
func ValidCompetence(s string) bool {
	return competenceRe.MatchString(s)
}

// Competence converts a YYYY-MM competence month to MM/YYYY.
// Invalid inputs pass through unchanged.
func Competence(s string) string {
	if !ValidCompetence(s) {
		return s
	}
	return s[5:7] + "/" + s[0:4]
}

// DateBR renders a time in the dd/mm/yyyy convention.
func DateBR(t time.Time) string {
	return t.Format("02/01/2006")
}
