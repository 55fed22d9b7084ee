package config

import (
	_ "embed"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Provider kinds understood by the gateway wiring.
const (
	KindOpenAI = "openai"
	KindGemini = "gemini"
)

//go:embed providers.yaml
var defaultProviders []byte

// ProviderConfig describes one model vendor and the model identifiers it
// serves.
type ProviderConfig struct {
	Name         string   `yaml:"name" json:"name"`
	Kind         string   `yaml:"kind" json:"-"`
	Prefixes     []string `yaml:"prefixes" json:"prefixes"`
	BaseURL      string   `yaml:"base_url" json:"-"`
	APIKeySecret string   `yaml:"api_key_secret" json:"-"`
	Models       []string `yaml:"models" json:"models"`
}

type providersFile struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// LoadProviders parses the provider catalog at path, or the built-in catalog
// when path is empty.
func LoadProviders(path string) ([]ProviderConfig, error) {
	data := defaultProviders
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read providers file %s", path)
		}
	}

	var f providersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse providers file %s", path)
	}
	if len(f.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}

	seen := make(map[string]bool)
	for _, p := range f.Providers {
		if p.Name == "" {
			return nil, errors.New("provider without a name")
		}
		if seen[p.Name] {
			return nil, errors.Newf("provider %s is declared twice", p.Name)
		}
		seen[p.Name] = true
		if p.Kind != KindOpenAI && p.Kind != KindGemini {
			return nil, errors.Newf("provider %s has unknown kind %q", p.Name, p.Kind)
		}
		if len(p.Prefixes) == 0 {
			return nil, errors.Newf("provider %s claims no model prefix", p.Name)
		}
	}
	return f.Providers, nil
}
