// Package tools holds the default tool catalogue offered to the model in
// Phase A and the best-effort cleanup of the arguments it returns.
package tools

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

var (
	loadOnce  sync.Once
	catalogue []model.ToolSchema
	loadErr   error
)

// Load parses a tool catalogue. Every tool must have a name and an object
// parameter block; required parameters must be declared.
func Load(b []byte) ([]model.ToolSchema, error) {
	var out []model.ToolSchema
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse tool catalogue: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for i := range out {
		t := &out[i]
		if t.Name == "" {
			return nil, fmt.Errorf("tool catalogue: entry %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("tool catalogue: duplicate tool %q", t.Name)
		}
		seen[t.Name] = true
		if t.Parameters.Type == "" {
			t.Parameters.Type = "object"
		}
		if t.Parameters.Properties == nil {
			t.Parameters.Properties = map[string]model.ToolParameter{}
		}
		if t.Parameters.Required == nil {
			t.Parameters.Required = []string{}
		}
		for _, r := range t.Parameters.Required {
			if _, ok := t.Parameters.Properties[r]; !ok {
				return nil, fmt.Errorf("tool catalogue: %s requires undeclared parameter %q", t.Name, r)
			}
		}
	}
	return out, nil
}

// Default returns a copy of the embedded catalogue. The embedded file is
// validated by tests, so a parse failure here is a build defect.
func Default() []model.ToolSchema {
	loadOnce.Do(func() {
		catalogue, loadErr = Load(catalogueYAML)
	})
	if loadErr != nil {
		panic(loadErr)
	}
	out := make([]model.ToolSchema, len(catalogue))
	copy(out, catalogue)
	return out
}

// Names lists the tool names of a catalogue in order.
func Names(schemas []model.ToolSchema) []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Name)
	}
	return names
}
