package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

const defaultEnv = "default"

var version = "0.1.0"

type rootOptions struct {
	env string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ai-simplified",
		Short: "Prompt refinement service",
		Long: `Turns rough prompts into clear, structured prompts using a text-generation
provider, falling back to a deterministic local pipeline when the provider is
slow or unavailable. Also serves the prompt library API.

Run without a subcommand to start the HTTP server.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, &serveOptions{})
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&opts.env, "env", envOrDefault(), "configuration name, loads <env>.yaml (default: $APP_ENV or default)",
	)

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newRefineCmd(opts))
	return rootCmd
}

func envOrDefault() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return defaultEnv
}

// ExecuteContext runs the command line with ctx as the root context.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
