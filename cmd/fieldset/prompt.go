package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fieldset/pkg/prompt"
)

func promptCmd() *cobra.Command {
	var (
		defPath   string
		schema    string
		backend   string
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "prompt [definition.yaml]",
		Short: "Fill a form definition interactively in the terminal",
		Long: `Walk a form definition as an interactive terminal session.

Each field is asked in order with the same constraints the web
form enforces; a violation re-asks the field with its message.
Collected values are printed as JSON. Without a definition file
the built-in demo is used.

Examples:
  fieldset prompt
  fieldset prompt signup.yaml
  fieldset prompt signup.yaml --store=redis`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				defPath = args[0]
			}
			return runPrompt(defPath, schema, backend, redisAddr)
		},
	}

	cmd.Flags().StringVarP(&defPath, "definition", "d", "", "Path to the definition file")
	cmd.Flags().StringVar(&schema, "schema", "", "Schema name when the definition is an OpenAPI document")
	cmd.Flags().StringVarP(&backend, "store", "s", "", "Persist the submission (redis)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address (defaults to REDIS_ADDR or localhost:6379)")

	return cmd
}

func runPrompt(defPath, schema, backend, redisAddr string) error {
	def, isDemo, err := loadDefinition(defPath, schema)
	if err != nil {
		return err
	}

	opts := []prompt.Option{}
	if backend != "" {
		st, err := buildStore(backend, redisAddr)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, prompt.WithStore(st))
	}

	runner, err := prompt.New(def, opts...)
	if err != nil {
		return err
	}

	printBanner()
	fmt.Println()
	if isDemo {
		info("running the built-in demo (pass a definition file to run your own)")
	}
	info("form: %s (%d fields)", def.Form, len(def.Fields))
	fmt.Println()

	values, err := runner.Run(context.Background())
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Println()
		warn("Aborted")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	success("collected %d values", len(values))
	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
