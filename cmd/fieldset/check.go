package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fieldset/pkg/formdef"
)

func checkCmd() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "check <definition>",
		Short: "Validate a definition file",
		Long: `Validate a definition file and print its fields.

Checks the document shape, field name uniqueness, pattern syntax,
and constraint values. A definition that passes here will load in
serve and prompt.

Examples:
  fieldset check signup.yaml
  fieldset check api.yaml --schema=Signup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], schema)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema name when the definition is an OpenAPI document")

	return cmd
}

func runCheck(path, schema string) error {
	def, _, err := loadDefinition(path, schema)
	if err != nil {
		errorMsg("%s is not a valid definition", path)
		return err
	}

	success("%s is valid", path)
	info("form: %s (%d fields)", def.Form, len(def.Fields))
	for i := range def.Fields {
		fd := &def.Fields[i]
		kind := fd.Kind
		if kind == "" {
			kind = "text"
		}
		info("%-16s %-9s %s", fd.Name, kind, constraintSummary(fd))
	}
	return nil
}

// constraintSummary renders a field's constraints on one line.
func constraintSummary(fd *formdef.FieldDef) string {
	var parts []string
	if fd.Required != nil {
		parts = append(parts, "required")
	}
	if fd.MinLength != nil {
		parts = append(parts, fmt.Sprintf("minLength=%v", fd.MinLength.Value))
	}
	if fd.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("maxLength=%v", fd.MaxLength.Value))
	}
	if fd.Min != nil {
		parts = append(parts, fmt.Sprintf("min=%v", fd.Min.Value))
	}
	if fd.Max != nil {
		parts = append(parts, fmt.Sprintf("max=%v", fd.Max.Value))
	}
	if fd.Pattern != nil {
		parts = append(parts, "pattern")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
