package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
	"github.com/MamunCrafts/ai-simplified-by-mamun/utils"
)

type refineOptions struct {
	preset   string
	maxWords int
	local    bool
	json     bool
}

func newRefineCmd(rootOpts *rootOptions) *cobra.Command {
	opts := &refineOptions{}

	refineCmd := &cobra.Command{
		Use:   "refine [text]",
		Short: "Refine a prompt from the command line",
		Long: `Refine a prompt and print the result. The text is taken from the arguments,
or read from stdin when no arguments are given.

Presets: concise, developer, teacher, analyst, product

Examples:
  ai-simplified refine "write a func that parses dates"
  echo "explain tides to kids" | ai-simplified refine --preset teacher
  ai-simplified refine --local --max-words 50 "summarize churn data"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(cmd, rootOpts, opts, args)
		},
	}

	refineCmd.Flags().StringVar(&opts.preset, "preset", string(models.DefaultPreset), "refinement preset")
	refineCmd.Flags().IntVar(&opts.maxWords, "max-words", models.DefaultMaxWords, "word budget for the result")
	refineCmd.Flags().BoolVar(&opts.local, "local", false, "skip the provider and use the local pipeline only")
	refineCmd.Flags().BoolVar(&opts.json, "json", false, "print the response as JSON")
	return refineCmd
}

func runRefine(cmd *cobra.Command, rootOpts *rootOptions, opts *refineOptions, args []string) error {
	raw := strings.Join(args, " ")
	if len(args) == 0 {
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(input)
	}

	cfg, err := config.LoadConfig(rootOpts.env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	payload := models.RefinePromptPayload{Raw: raw, Preset: &opts.preset, MaxWords: &opts.maxWords}

	var response *models.RefinePromptResponse
	if opts.local {
		response, err = refiner.NewService(nil, refiner.WithLogger(logger)).RefineLocally(payload)
	} else {
		generator, genErr := newGenerator(cfg)
		if genErr != nil {
			return genErr
		}
		if !generator.Configured() {
			logger.Warn("provider has no credential, using the local pipeline", "provider", generator.Name())
		}
		service := refiner.NewService(generator, refiner.WithTimeout(cfg.Refine.Timeout), refiner.WithLogger(logger))
		response, err = service.Refine(cmd.Context(), payload)
	}
	if err != nil {
		var validationErr *refiner.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("invalid input:\n  %s", strings.Join(validationErr.Details, "\n  "))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		_, err = fmt.Fprintln(out, utils.ToJSONString(response))
		return err
	}
	_, err = fmt.Fprintln(out, response.Refined)
	logger.Debug("refined prompt printed", "words", utils.CountWords(response.Refined))
	return err
}
