package formdef

import (
	"context"
	"fmt"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI builds a Definition from a named object schema in an
// OpenAPI 3 document. String constraints map to minLength, maxLength
// and pattern, numeric bounds to min and max, and membership in the
// schema's required list to required. Title and description become the
// field's label and help text, default becomes its initial value.
//
// OpenAPI carries no per-constraint messages, so violations surface
// with the form's default messages. Non-scalar properties (objects,
// arrays) are skipped. Fields are ordered by property name, since the
// document's own ordering does not survive parsing.
func FromOpenAPI(ctx context.Context, data []byte, schemaName string) (*Definition, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("formdef: load openapi document: %w", err)
	}
	return fromDocument(doc, schemaName)
}

// FromOpenAPIFile builds a Definition from a schema in an OpenAPI 3
// document on disk. Relative $ref targets resolve against the file's
// directory.
func FromOpenAPIFile(ctx context.Context, path, schemaName string) (*Definition, error) {
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: true}
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdef: load openapi document %s: %w", path, err)
	}
	return fromDocument(doc, schemaName)
}

func fromDocument(doc *openapi3.T, schemaName string) (*Definition, error) {
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, &SchemaError{Schema: schemaName, Err: ErrSchemaNotFound}
	}
	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return nil, &SchemaError{Schema: schemaName, Err: ErrSchemaNotFound}
	}

	schema := ref.Value
	if t := schemaType(schema.Type); t != "" && t != "object" {
		return nil, &SchemaError{Schema: schemaName, Err: ErrSchemaNotObject}
	}
	if len(schema.Properties) == 0 {
		return nil, &SchemaError{Schema: schemaName, Err: ErrSchemaNotObject}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	def := &Definition{Form: schemaName}
	for _, name := range names {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		fd, ok := fieldFromSchema(name, prop.Value, schema.Required)
		if !ok {
			continue
		}
		def.Fields = append(def.Fields, fd)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// fieldFromSchema converts one scalar property. The second return is
// false for property types that have no field rendition.
func fieldFromSchema(name string, prop *openapi3.Schema, required []string) (FieldDef, bool) {
	fd := FieldDef{
		Name:    name,
		Label:   prop.Title,
		Help:    prop.Description,
		Initial: prop.Default,
	}

	switch schemaType(prop.Type) {
	case "string":
		fd.Kind = "text"
		if prop.Format == "password" {
			fd.Kind = "password"
		}
	case "integer", "number":
		fd.Kind = "number"
		fd.Coerce = "number"
	default:
		return FieldDef{}, false
	}

	if slices.Contains(required, name) {
		fd.Required = &Constraint{}
	}
	if prop.MinLength != 0 {
		fd.MinLength = &Constraint{Value: int(prop.MinLength)}
	}
	if prop.MaxLength != nil {
		fd.MaxLength = &Constraint{Value: int(*prop.MaxLength)}
	}
	if prop.Pattern != "" {
		fd.Pattern = &Constraint{Value: prop.Pattern}
	}
	if prop.Min != nil {
		fd.Min = &Constraint{Value: *prop.Min}
	}
	if prop.Max != nil {
		fd.Max = &Constraint{Value: *prop.Max}
	}

	return fd, true
}

// schemaType returns the first declared type of a schema, or "".
func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
