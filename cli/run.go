package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/compozy/hybridqa/engine/batch"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/spf13/cobra"
)

// RunCmd answers a JSONL batch of questions.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer every question of a JSONL batch file",
		Example: `  hybridqa run --batch questions.jsonl --out outputs.jsonl
  hybridqa run --batch questions.jsonl --out outputs.jsonl --provider openai --model gpt-4o-mini`,
		Args: cobra.NoArgs,
		RunE: runBatch,
	}
	cmd.Flags().String("batch", "", "Path to input JSONL file")
	cmd.Flags().String("out", "", "Path to output JSONL file")
	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig(cmd)
	if cfg.Batch.Input == "" {
		return errors.New("batch input is required (--batch)")
	}
	if cfg.Batch.Output == "" {
		return errors.New("batch output is required (--out)")
	}
	log := logger.FromContext(ctx)
	log.Info("Starting batch run", "input", cfg.Batch.Input, "output", cfg.Batch.Output)
	engine, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	summary, err := batch.NewRunner(engine).Run(ctx, cfg.Batch.Input, cfg.Batch.Output)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(
		cmd.OutOrStdout(),
		"Answered %d questions (%d failed, %d lines skipped) in %s. Results saved to %s\n",
		summary.Processed,
		summary.Failed,
		summary.Skipped,
		summary.Duration.Round(time.Millisecond),
		cfg.Batch.Output,
	)
	return err
}
