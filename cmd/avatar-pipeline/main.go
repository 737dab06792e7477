// Command avatar-pipeline builds the portfolio dataset: harvest pulls
// repository documentation from GitHub, classify enriches it with structured
// tags and aggregates the metadata file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"avatar-agent/internal/agent"
	"avatar-agent/internal/classify"
	"avatar-agent/internal/config"
	"avatar-agent/internal/harvest"
	"avatar-agent/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "avatar-pipeline",
		Short:         "Build and classify the portfolio dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(newHarvestCmd(&configPath))
	root.AddCommand(newClassifyCmd(&configPath))
	return root
}

// loadAll resolves secrets and config and initializes logging, shared by both
// subcommands.
func loadAll(configPath string) (*config.Config, *config.Secrets, error) {
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, nil, err
	}

	return cfg, secrets, nil
}

func newHarvestCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Download README documentation for every repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, secrets, err := loadAll(*configPath)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Pipeline.HarvestCSV
			}

			h, err := harvest.New(cmd.Context(), secrets.GitHubToken, cfg.Pipeline.ReadmeMaxChars)
			if err != nil {
				return err
			}

			_, err = h.Run(cmd.Context(), output)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default from config)")
	return cmd
}

func newClassifyCmd(configPath *string) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify harvested repositories and build portfolio metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, secrets, err := loadAll(*configPath)
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Pipeline.HarvestCSV
			}
			if output == "" {
				output = cfg.Portfolio.ProjectsCSV
			}

			chatModel, err := agent.NewChatModel(cmd.Context(), cfg.Pipeline.Classifier, secrets)
			if err != nil {
				return err
			}

			classifier, err := classify.New(chatModel, cfg.Pipeline.DocMaxChars)
			if err != nil {
				return err
			}

			runner := classify.NewRunner(classifier, classify.RunnerConfig{
				InputCSV:     input,
				OutputCSV:    output,
				MetadataJSON: cfg.Portfolio.MetadataJSON,
				SaveEvery:    cfg.Pipeline.SaveEvery,
				RequestPause: cfg.Pipeline.RequestPause,
			})
			return runner.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV path (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default from config)")
	return cmd
}
