package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┬┌─┐┬  ┌┬┐┌─┐┌─┐┌┬┐
  ╠╣ │├┤ │   ││└─┐├┤  │
  ╚  ┴└─┘┴─┘─┴┘└─┘└─┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldset",
		Short: "Server-driven forms with live validation",
		Long: `Fieldset runs form definitions as live, server-validated forms.

Describe a form once in YAML (or point at an OpenAPI schema) and
fieldset hosts it: values, errors, and focus are managed on the
server and pushed to the page over WebSocket. Features include:

  • Declarative field constraints with custom messages
  • Silent value tracking, reactive error state
  • Pluggable submission stores (memory, Redis, S3)
  • Interactive terminal mode for the same definition
  • Hot reload of the definition file in dev mode`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		serveCmd(),
		promptCmd(),
		checkCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the fieldset ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
