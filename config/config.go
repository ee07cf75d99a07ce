// Package config loads benchmark run plans.
//
// A plan is a JSON document validated against an embedded schema before it
// is decoded:
//
//	{
//	  "files": ["bench_n1e3.bin"],
//	  "runs": 5,
//	  "variants": [{"name": "ref", "maxLevel": 5, "seed": 1}],
//	  "dumpNodes": 0
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const planSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["files", "variants"],
  "properties": {
    "files": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "runs": {"type": "integer", "minimum": 1},
    "dumpNodes": {"type": "integer", "minimum": 0},
    "variants": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "maxLevel"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "maxLevel": {"type": "integer", "minimum": 1, "maximum": 64},
          "seed": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// Variant is one list configuration to benchmark.
type Variant struct {
	Name     string `json:"name"`
	MaxLevel int    `json:"maxLevel"`
	Seed     uint64 `json:"seed"`
}

// Plan describes a benchmark run.
type Plan struct {
	Files     []string  `json:"files"`
	Runs      int       `json:"runs"`
	Variants  []Variant `json:"variants"`
	DumpNodes int       `json:"dumpNodes"`
}

const defaultRuns = 5

var schema = jsonschema.MustCompileString("plan.schema.json", planSchema)

// Decode validates and decodes a plan.
func Decode(r io.Reader) (*Plan, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if p.Runs == 0 {
		p.Runs = defaultRuns
	}
	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if seen[v.Name] {
			return nil, fmt.Errorf("invalid plan: duplicate variant %q", v.Name)
		}
		seen[v.Name] = true
	}
	return &p, nil
}

// Load reads a plan from path.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseVariants turns "ref:5,tall:32" into variants sharing seed.
// A bare number is used as both name and max level.
func ParseVariants(s string, seed uint64) ([]Variant, error) {
	var out []Variant
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvl, ok := strings.Cut(part, ":")
		if !ok {
			lvl = name
		}
		n, err := strconv.Atoi(lvl)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad variant %q: max level must be a positive integer", part)
		}
		out = append(out, Variant{Name: name, MaxLevel: n, Seed: seed})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no variants in %q", s)
	}
	return out, nil
}
