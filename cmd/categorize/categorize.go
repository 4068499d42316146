// Package categorize handles transaction categorization commands
package categorize

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-categorizer/cmd/common"
	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/termui"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Options are the inputs of one categorization run.
type Options struct {
	Input  string
	Output string
	// Description switches to single-description mode.
	Description string
	Amount      string
	MCC         int
	// AI escalates unresolved merchants to the configured lookup.
	AI   bool
	Show bool
}

var flags Options

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transactions of a working CSV",
	Long: `Categorize transactions using merchant rules, MCC codes, keywords and patterns.
With --ai, merchants that stay unresolved are looked up with the configured AI provider.
With --description a single description is categorized and printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		opts := flags
		opts.Input = root.SharedFlags.Input
		opts.Output = root.SharedFlags.Output
		if opts.Description != "" {
			return RunSingle(app, opts, cmd.OutOrStdout())
		}
		return Run(cmd.Context(), app, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Description, "description", "d", "", "Categorize a single transaction description")
	Cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "Transaction amount (single-description mode)")
	Cmd.Flags().IntVarP(&flags.MCC, "mcc", "m", 0, "Merchant category code (single-description mode)")
	Cmd.Flags().BoolVar(&flags.AI, "ai", false, "Look up unresolved merchants with the AI provider")
	Cmd.Flags().BoolVar(&flags.Show, "show", false, "Print the categorized transactions")
}

// RunSingle categorizes opts.Description and prints the result.
func RunSingle(app *container.Container, opts Options, out io.Writer) error {
	tx := models.Transaction{Description: opts.Description, MCC: opts.MCC, Amount: decimal.Zero}
	if strings.TrimSpace(opts.Amount) != "" {
		amount, err := models.ParseAmount(opts.Amount)
		if err != nil {
			return err
		}
		tx.Amount = amount
		tx.Type = models.TypeFromAmount(amount)
	}

	res := app.GetCategorizer().Categorize(opts.Description, tx, app.GetState().Rules())
	line := fmt.Sprintf("%s (confidence %.2f, source %s)", res.Category, res.Confidence, res.Source)
	if res.NeedsReview {
		fmt.Fprintln(out, termui.FormatWarning(line+", needs review"))
		return nil
	}
	fmt.Fprintln(out, termui.FormatSuccess(line))
	return nil
}

// Run categorizes the working CSV at opts.Input and writes the result to
// opts.Output, or next to the input when no output is given. Progress of
// the AI escalation goes to progressOut.
func Run(ctx context.Context, app *container.Container, opts Options, out, progressOut io.Writer) error {
	txs, err := common.LoadTransactions(app, opts.Input)
	if err != nil {
		return err
	}

	state := app.GetState()
	state.SetTransactions(txs)
	txs = state.Recategorize()

	if opts.AI {
		escalator := app.GetEscalator()
		if !escalator.Enabled() {
			fmt.Fprintln(out, termui.FormatWarning("AI categorization not configured, skipping lookups"))
		} else {
			bar := termui.NewProgress(progressOut, "Looking up merchants")
			escalator.OnProgress(bar.Update)
			res := escalator.Escalate(ctx, txs)
			bar.Finish()
			escalator.OnProgress(nil)

			txs = res.Transactions
			state.SetTransactions(txs)
			fmt.Fprintf(out, "AI lookups: %d resolved, %d failed, %d left for a later run\n",
				res.Resolved, res.Failed, res.Remaining)
		}
	}

	output := common.DerivedPath(opts.Input, opts.Output, "_categorized.csv")
	if err := common.SaveTransactions(app, output, txs, out); err != nil {
		return err
	}

	if opts.Show {
		fmt.Fprintln(out, termui.TransactionsTable(txs))
	}
	fmt.Fprintln(out, termui.FormatSuccess("Categorized transactions written to "+output))
	fmt.Fprintln(out, termui.StatsLine(models.ComputeStats(txs)))
	return nil
}
