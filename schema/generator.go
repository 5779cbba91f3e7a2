/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas for configuration files.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Generator wraps jsonschema.Reflector with the defaults used for
// configuration files.
type Generator struct {
	reflector jsonschema.Reflector
	id        jsonschema.ID
	title     string
}

// Option configures a Generator.
type Option func(*Generator)

// WithID sets the $id of generated schemas.
func WithID(id string) Option {
	return func(g *Generator) {
		g.id = jsonschema.ID(id)
	}
}

// WithTitle sets the title of generated schemas.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// NewGenerator constructs a generator. Unknown properties are rejected,
// mirroring the strict decoding of configuration files.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  false,
			DoNotReference:             true,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	s := g.reflector.Reflect(v)
	if g.id != "" {
		s.ID = g.id
	}
	if g.title != "" {
		s.Title = g.title
	}
	return s
}

// Marshal returns the indented JSON encoding of the schema for v.
func (g *Generator) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(g.Reflect(v), "", "  ")
}

// Reflect derives the JSON schema for the provided value using a default generator.
func Reflect(v any) *jsonschema.Schema {
	return NewGenerator().Reflect(v)
}

// ReflectType allocates a zero value of T and reflects it to a schema.
func ReflectType[T any](opts ...Option) *jsonschema.Schema {
	var zero T
	return NewGenerator(opts...).Reflect(&zero)
}
