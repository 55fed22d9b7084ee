package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"llm-benchmark/internal/config"
	"llm-benchmark/internal/infra"
	"llm-benchmark/internal/ioc"

	"github.com/spf13/cobra"
)

// AppFactory builds the application the commands run against.
type AppFactory func(ctx context.Context, envFile string) (*ioc.App, error)

func defaultFactory(ctx context.Context, envFile string) (*ioc.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(os.Stderr, cfg.Env, infra.ParseLogLevel(cfg.LogLevel))
	return ioc.InitApp(ctx, cfg, logger)
}

// NewRootCmd assembles benchctl. Every subcommand opens the app through
// factory and closes it when done.
func NewRootCmd(factory AppFactory) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "benchctl",
		Short:         "Run and inspect LLM benchmarks from the command line",
		Long:          `benchctl talks to the same providers and result bucket as the HTTP service, using the same environment configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env.dev", "dotenv file to load before reading the environment")

	withApp := func(cmd *cobra.Command, fn func(ctx context.Context, app *ioc.App) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app, err := factory(ctx, envFile)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, app)
	}

	root.AddCommand(
		newRunCmd(withApp),
		newCompareCmd(withApp),
		newRecentCmd(withApp),
		newFeedbackCmd(withApp),
		newModelsCmd(withApp),
	)
	return root
}

// Execute runs benchctl with the process arguments.
func Execute() error {
	return NewRootCmd(defaultFactory).Execute()
}

type appRunner func(cmd *cobra.Command, fn func(ctx context.Context, app *ioc.App) error) error

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
