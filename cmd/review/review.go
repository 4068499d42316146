// Package review lists transactions flagged for review and records the
// user's decisions.
package review

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-categorizer/cmd/common"
	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/termui"

	"github.com/spf13/cobra"
)

// Options are the inputs of one review invocation.
type Options struct {
	Input  string
	Output string
	// Approve is a transaction id, or a unique prefix of one.
	Approve  string
	Category string
	Remember bool
}

var flags Options

// Cmd represents the review command
var Cmd = &cobra.Command{
	Use:   "review",
	Short: "Review transactions flagged for manual categorization",
	Long: `Without --approve, list the transactions of a categorized working CSV that need review.
With --approve and --category, set the category of one transaction; --remember also
adds a merchant rule so future statements get the same category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		opts := flags
		opts.Input = root.SharedFlags.Input
		opts.Output = root.SharedFlags.Output
		return Run(app, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Approve, "approve", "", "ID (or ID prefix) of the transaction to approve")
	Cmd.Flags().StringVar(&flags.Category, "category", "", "Category to assign with --approve")
	Cmd.Flags().BoolVar(&flags.Remember, "remember", false, "Remember the merchant with this category")
}

// Run lists the review queue or approves one transaction.
func Run(app *container.Container, opts Options, out io.Writer) error {
	txs, err := common.LoadTransactions(app, opts.Input)
	if err != nil {
		return err
	}
	state := app.GetState()
	state.SetTransactions(txs)

	if opts.Approve == "" {
		queue := state.ReviewQueue()
		if len(queue) == 0 {
			fmt.Fprintln(out, termui.FormatSuccess("Nothing to review"))
			return nil
		}
		fmt.Fprintln(out, termui.FormatTitle(fmt.Sprintf("%d transactions need review", len(queue))))
		fmt.Fprintln(out, termui.TransactionsTable(queue))
		return nil
	}

	if strings.TrimSpace(opts.Category) == "" {
		return &parsererror.ValidationError{Reason: "--category is required with --approve"}
	}
	id, err := resolveID(txs, opts.Approve)
	if err != nil {
		return err
	}
	tx, err := state.Approve(id, opts.Category, opts.Remember)
	if err != nil {
		return err
	}

	output := opts.Output
	if output == "" {
		output = opts.Input
	}
	if err := common.SaveTransactions(app, output, state.Transactions(), out); err != nil {
		return err
	}

	msg := fmt.Sprintf("%s categorized as %s", tx.Description, tx.Category)
	if opts.Remember {
		msg += " (rule saved)"
	}
	fmt.Fprintln(out, termui.FormatSuccess(msg))
	fmt.Fprintf(out, "%d transactions still need review\n", len(state.ReviewQueue()))
	return nil
}

// resolveID expands prefix to the single transaction id it starts.
func resolveID(txs []models.Transaction, prefix string) (string, error) {
	var match string
	for _, tx := range txs {
		if tx.ID == prefix {
			return tx.ID, nil
		}
		if strings.HasPrefix(tx.ID, prefix) {
			if match != "" {
				return "", &parsererror.ValidationError{Reason: fmt.Sprintf("transaction id prefix %q is ambiguous", prefix)}
			}
			match = tx.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", parsererror.ErrTransactionNotFound, prefix)
	}
	return match, nil
}
