// Command claudebridge serves the HTTP bridge over the Claude Code CLI
// and manages its API keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	claudebridge "github.com/streamweld/claude-bridge"
)

var rootCmd = &cobra.Command{
	Use:           "claudebridge",
	Short:         "HTTP bridge over the Claude Code CLI",
	Version:       claudebridge.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
