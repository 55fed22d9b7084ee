package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/ioc"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newRunCmd(withApp appRunner) *cobra.Command {
	var model, prompt string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark one model on a prompt and record the result",
		Example: `  benchctl run --model gpt-4o --prompt "What is Generative AI?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *ioc.App) error {
				res, err := app.Orchestrator.RunBenchmark(ctx, entity.BenchmarkRequest{ModelName: model, Prompt: prompt})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model identifier, e.g. gpt-4o")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt text")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newCompareCmd(withApp appRunner) *cobra.Command {
	var (
		models []string
		prompt string
	)

	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Run the same prompt against several models",
		Example: `  benchctl compare --models gpt-4o,claude-3-haiku-20240307 --prompt "Summarize RAG"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *ioc.App) error {
				results, err := app.Orchestrator.CompareModels(ctx, entity.CompareRequest{Models: models, Prompt: prompt})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), results)
			})
		},
	}
	cmd.Flags().StringSliceVar(&models, "models", nil, "comma-separated list of model identifiers")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt text")
	_ = cmd.MarkFlagRequired("models")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newRecentCmd(withApp appRunner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recent benchmark records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *ioc.App) error {
				n := limit
				if n == 0 {
					n = app.Config.RecentLimit
				}
				records, err := app.Orchestrator.RecentResults(ctx, n)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No past results found")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records (default RECENT_LIMIT)")
	return cmd
}

func newFeedbackCmd(withApp appRunner) *cobra.Command {
	var (
		model, prompt, file string
		score               int
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record user feedback on benchmarked responses",
		Long: `Sets user_feedback on every record of a prompt produced by a model.
Either pass --model, --prompt and --score for a single entry, or --file with a
JSON list of {"model_name", "prompt", "user_feedback"} entries. A batch stops at
the first failing entry; entries before it stay applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := feedbackEntries(cmd, file, model, prompt, score)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *ioc.App) error {
				n, err := app.Orchestrator.ApplyFeedbackBatch(ctx, entries)
				fmt.Fprintf(cmd.OutOrStdout(), "updated %d of %d entries\n", n, len(entries))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model identifier")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt text")
	cmd.Flags().IntVarP(&score, "score", "s", 0, "feedback score")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with a list of feedback entries")
	cmd.MarkFlagsMutuallyExclusive("file", "model")
	cmd.MarkFlagsMutuallyExclusive("file", "prompt")
	cmd.MarkFlagsMutuallyExclusive("file", "score")
	return cmd
}

func feedbackEntries(cmd *cobra.Command, file, model, prompt string, score int) ([]entity.FeedbackEntry, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read feedback file %s", file)
		}
		var entries []entity.FeedbackEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, errors.Wrapf(err, "feedback file %s must hold a list of feedback entries", file)
		}
		return entries, nil
	}

	if !cmd.Flags().Changed("score") {
		return nil, errors.New("either --file or --model, --prompt and --score are required")
	}
	return []entity.FeedbackEntry{{ModelName: model, Prompt: prompt, UserFeedback: &score}}, nil
}

func newModelsCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured providers and their known models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *ioc.App) error {
				out := cmd.OutOrStdout()
				for _, p := range app.Catalog {
					fmt.Fprintf(out, "%s (%s)\n", p.Name, strings.Join(p.Prefixes, ", "))
					for _, m := range p.Models {
						fmt.Fprintf(out, "- %s\n", m)
					}
				}
				return nil
			})
		},
	}
}
