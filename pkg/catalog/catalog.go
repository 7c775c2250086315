// Package catalog provides the result catalog: display text for result keys.
//
// The default table is embedded from results.yaml. Operators can load a
// replacement or an override file in the same format:
//
//	grade-1:
//	  message: Grade I Diastolic Dysfunction
//	  class: result-impaired
//	  description: Impaired relaxation with NORMAL Filling Pressures.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/diastole/pkg/domain"
)

//go:embed results.yaml
var defaultResults []byte

// Catalog is an immutable result table. It is safe for concurrent reads.
type Catalog struct {
	entries map[domain.ResultKey]domain.Outcome
}

// Default returns the shared diastolic function result table.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultResults))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded results are invalid: %v", err))
	}
	return c
}

// Load parses a YAML result table.
func Load(r io.Reader) (*Catalog, error) {
	var raw map[string]domain.Outcome
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode result catalog: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("result catalog is empty")
	}

	validate := validator.New()
	entries := make(map[domain.ResultKey]domain.Outcome, len(raw))
	for key, out := range raw {
		if err := validate.Struct(out); err != nil {
			return nil, fmt.Errorf("result %q: %w", key, err)
		}
		out.Key = domain.ResultKey(key)
		entries[out.Key] = out
	}
	return &Catalog{entries: entries}, nil
}

// LoadFile parses a YAML result table from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Lookup returns the outcome for key.
func (c *Catalog) Lookup(key domain.ResultKey) (domain.Outcome, bool) {
	out, ok := c.entries[key]
	return out, ok
}

// Keys returns the known keys in sorted order.
func (c *Catalog) Keys() []domain.ResultKey {
	return slices.Sorted(maps.Keys(c.entries))
}

// Merge returns a new catalog where entries from overrides replace or extend c.
func (c *Catalog) Merge(overrides *Catalog) *Catalog {
	merged := maps.Clone(c.entries)
	maps.Copy(merged, overrides.entries)
	return &Catalog{entries: merged}
}
