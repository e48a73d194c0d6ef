// Package cli wires configuration, logging and the answering engine into
// the hybridqa command line.
package cli

import (
	"context"
	"fmt"

	"github.com/compozy/hybridqa/pkg/config"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/compozy/hybridqa/pkg/version"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "hybridqa.yaml"

type sourcesKey struct{}

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hybridqa",
		Short: "Answer retail analytics questions from documents and a SQL dataset",
		Long: `hybridqa routes each question to document retrieval, SQL generation over the
Northwind dataset, or both, repairs failing queries and returns a typed answer
with citations.`,
		Version:           version.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: setupCommand,
	}
	addGlobalFlags(root)
	root.AddCommand(
		RunCmd(),
		AskCmd(),
		ServeCmd(),
		ConfigCmd(),
		VersionCmd(),
	)
	return root
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to configuration file")
	flags.String("env-file", ".env", "Path to environment file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Emit logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("provider", "", "LLM provider (ollama, openai, anthropic, google, groq, mock)")
	flags.String("model", "", "LLM model name")
	flags.String("api-url", "", "LLM provider base URL")
	flags.String("dataset", "", "Path to the Northwind SQLite database")
	flags.String("docs", "", "Directory of markdown documents")
	flags.Int("max-retries", 0, "Maximum SQL repair attempts (0-2)")
	flags.Int("top-k", 0, "Number of document chunks to retrieve")
}

// setupCommand loads the env file and configuration, installs the logger
// and stores both on the command context.
func setupCommand(cmd *cobra.Command, _ []string) error {
	level, asJSON, source, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	bootLog := logger.SetupLogger(level, asJSON, source)
	envPath, err := loadEnvFile(cmd)
	if err != nil {
		return err
	}
	bootLog.Debug("Environment file resolved", "path", envPath)
	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = context.WithValue(ctx, sourcesKey{}, sources)
	cmd.SetContext(ctx)
	log.Debug("Configuration loaded", "environment", cfg.Runtime.Environment, "provider", cfg.LLM.Provider)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, map[string]config.SourceType, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	sources := make([]config.Source, 0, 2)
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)
	if len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}
	service := config.NewService()
	cfg, err := service.Load(cmd.Context(), sources...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, service.GetSources(), nil
}

func sourcesFromContext(ctx context.Context) map[string]config.SourceType {
	sources, ok := ctx.Value(sourcesKey{}).(map[string]config.SourceType)
	if !ok {
		return nil
	}
	return sources
}

// appConfig returns the configuration loaded by setupCommand.
func appConfig(cmd *cobra.Command) *config.Config {
	return config.FromContext(cmd.Context())
}
