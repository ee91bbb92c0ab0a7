// Package textgenutils is the textgen utility package
package textgenutils

import (
	"fmt"
	"time"

	"github.com/wayfarerhq/wayfarer/pkg/textgen"
	"github.com/wayfarerhq/wayfarer/pkg/textgen/ollama"
	"github.com/wayfarerhq/wayfarer/pkg/textgen/openai"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Timeout      time.Duration
}

func NewGenerator(o *NewGeneratorOpts) (textgen.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	case "openai":
		return openai.NewGenerator(openai.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			APIKey:  o.APIKey,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", o.ProviderType)
	}
}
