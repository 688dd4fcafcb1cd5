// Package demo carries the built-in demo definition used when the CLI
// starts without a definition file.
package demo

import (
	_ "embed"

	"github.com/vango-dev/fieldset/pkg/formdef"
)

// Source is the raw YAML of the demo definition.
//
//go:embed demo.yaml
var Source []byte

// Definition parses the embedded demo definition.
func Definition() (*formdef.Definition, error) {
	return formdef.Parse(Source)
}
