// Package convert handles the statement conversion command
package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/statement-categorizer/cmd/common"
	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/termui"

	"github.com/spf13/cobra"
)

// Options are the inputs of one conversion.
type Options struct {
	Input      string
	Output     string
	Format     string
	Categorize bool
}

var flags Options

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bank statement into the working CSV",
	Long: `Convert a PDF, CSV, CAMT.053 or OFX statement into the working CSV.
The format is detected from the file extension and content unless --format is given.
With --categorize the merchant rules and built-in categories are applied right away.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		opts := flags
		opts.Input = root.SharedFlags.Input
		opts.Output = root.SharedFlags.Output
		return Run(cmd.Context(), app, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Format, "format", "f", "", "Statement format: pdf, csv, camt or ofx (default: detect)")
	Cmd.Flags().BoolVarP(&flags.Categorize, "categorize", "c", false, "Categorize transactions after conversion")
}

// Run converts opts.Input and writes the working CSV to opts.Output, or next
// to the input when no output is given.
func Run(ctx context.Context, app *container.Container, opts Options, out io.Writer) error {
	if strings.TrimSpace(opts.Input) == "" {
		return fmt.Errorf("an input file is required (--input)")
	}
	logger := app.GetLogger().WithField(logging.FieldFile, opts.Input)

	file, err := os.Open(opts.Input) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error opening statement: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := bufio.NewReader(file)
	pt := factory.ParserType(strings.ToLower(strings.TrimSpace(opts.Format)))
	if pt == "" {
		head, _ := reader.Peek(512)
		if pt, err = factory.DetectFormat(opts.Input, head); err != nil {
			return err
		}
	}

	p, err := app.GetParser(pt)
	if err != nil {
		return err
	}
	logger.Info("Converting statement", logging.F("format", p.Format()))

	stmt, err := p.Parse(ctx, reader)
	if err != nil {
		return fmt.Errorf("error converting %s: %w", opts.Input, err)
	}

	txs := stmt.Transactions
	if opts.Categorize {
		state := app.GetState()
		state.SetTransactions(txs)
		txs = state.Recategorize()
	}

	output := common.DerivedPath(opts.Input, opts.Output, "_transactions.csv")
	if err := common.SaveTransactions(app, output, txs, out); err != nil {
		return err
	}

	fmt.Fprintln(out, termui.FormatSuccess(fmt.Sprintf("Converted %d transactions to %s", len(txs), output)))
	if stmt.Metadata.Bank != "" {
		fmt.Fprintln(out, termui.SubtleStyle.Render("Bank: "+stmt.Metadata.Bank))
	}
	if opts.Categorize {
		fmt.Fprintln(out, termui.StatsLine(models.ComputeStats(txs)))
	}
	return nil
}
