package cli

import (
	"strings"

	"github.com/compozy/hybridqa/engine/qa"
	"github.com/spf13/cobra"
)

// AskCmd answers a single question and prints its record.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Example: `  hybridqa ask "What is the return window (days) for unopened Beverages?" --format-hint int
  hybridqa ask "Top 3 products by total revenue all-time." --format-hint "list[{product:str, revenue:float}]"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
	cmd.Flags().String("format-hint", "", "Expected answer type, e.g. int, float, {category:str}")
	cmd.Flags().String("id", "ask", "Identifier echoed in the answer record")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	hint, err := cmd.Flags().GetString("format-hint")
	if err != nil {
		return err
	}
	engine, cleanup, err := buildEngine(ctx, appConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()
	answer, err := engine.Answer(ctx, qa.Question{
		ID:         id,
		Text:       strings.Join(args, " "),
		FormatHint: hint,
	})
	if err != nil {
		return err
	}
	answer.ID = id
	return writeJSON(cmd.OutOrStdout(), answer)
}
