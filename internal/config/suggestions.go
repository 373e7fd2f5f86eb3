package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SuggestionRule maps a substring of a provider diagnostic to a
// user-facing correction suggestion. Rules are matched in order and
// the first hit wins.
type SuggestionRule struct {
	Contains   string `mapstructure:"contains" json:"contains"`
	Suggestion string `mapstructure:"suggestion" json:"suggestion"`
}

// DefaultSuggestionRules covers the diagnostics the provider is known
// to return without structured details.
func DefaultSuggestionRules() []SuggestionRule {
	return []SuggestionRule{
		{Contains: "api key", Suggestion: "Verifique a chave de API configurada para o emissor."},
		{Contains: "empresa", Suggestion: "Confira o cadastro da empresa e a sincronização com o provedor."},
		{Contains: "tomador", Suggestion: "Confira os dados do tomador (CNPJ/CPF e razão social)."},
		{Contains: "valor", Suggestion: "Revise os valores informados por sócio; o total deve ser maior que zero."},
		{Contains: "servico", Suggestion: "Confira o código de serviço municipal e o CNAE da empresa."},
	}
}

// SuggestionRuleHolder exposes the current rule set and hot-reloads it
// when the backing file changes.
type SuggestionRuleHolder struct {
	current atomic.Value // holds []SuggestionRule
}

// NewSuggestionRuleHolder loads suggestion rules from suggestions.yml,
// falling back to the built-in table when no file is present.
func NewSuggestionRuleHolder() (*SuggestionRuleHolder, error) {
	v := viper.New()

	v.SetConfigName("suggestions")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/nfse-backoffice")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NFSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &SuggestionRuleHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultSuggestionRules())
		return holder, nil
	}

	rules, err := unmarshalRules(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(rules)

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded, err := unmarshalRules(v)
		if err != nil {
			log.Printf("suggestions reload failed (%s): %v", e.Name, err)
			return
		}
		holder.current.Store(reloaded)
	})
	v.WatchConfig()

	return holder, nil
}

// Rules returns the currently loaded rule set.
func (h *SuggestionRuleHolder) Rules() []SuggestionRule {
	if rules, ok := h.current.Load().([]SuggestionRule); ok {
		return rules
	}
	return DefaultSuggestionRules()
}

// Match returns the suggestion for the first rule whose substring occurs
// in the diagnostic, case-insensitively. Empty when nothing matches.
func (h *SuggestionRuleHolder) Match(diagnostic string) string {
	needle := strings.ToLower(diagnostic)
	for _, rule := range h.Rules() {
		if rule.Contains == "" {
			continue
		}
		if strings.Contains(needle, strings.ToLower(rule.Contains)) {
			return rule.Suggestion
		}
	}
	return ""
}

func unmarshalRules(v *viper.Viper) ([]SuggestionRule, error) {
	var rules []SuggestionRule
	if err := v.UnmarshalKey("suggestions", &rules); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = DefaultSuggestionRules()
	}
	return rules, nil
}
