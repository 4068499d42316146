// Package report builds the corporate expense report from a categorized
// working CSV.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/statement-categorizer/cmd/common"
	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/export"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/report"
	"fjacquet/statement-categorizer/internal/termui"
	"fjacquet/statement-categorizer/internal/validation"

	"github.com/spf13/cobra"
)

// FormatSheets exports to Google Sheets instead of a file.
const FormatSheets = "sheets"

// Options are the inputs of one report run.
type Options struct {
	Input                string
	Output               string
	Format               string
	FiscalYearStartMonth int
	PeriodStart          string
	PeriodEnd            string
	Title                string
}

var flags Options

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate categorized transactions into a corporate report",
	Long: `Group the transactions of a categorized working CSV by category, compute revenue,
expenses and net income, and export the report as csv, xlsx, json or to Google Sheets.`,
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
	Cmd.Flags().StringVarP(&flags.Format, "format", "f", "xlsx", "Export format: csv, xlsx, json or sheets")
	Cmd.Flags().IntVar(&flags.FiscalYearStartMonth, "fiscal-start", 0, "First month of the fiscal year, 1-12 (default from config)")
	Cmd.Flags().StringVar(&flags.PeriodStart, "from", "", "Report period start (default: earliest transaction)")
	Cmd.Flags().StringVar(&flags.PeriodEnd, "to", "", "Report period end (default: latest transaction)")
	Cmd.Flags().StringVar(&flags.Title, "title", "", "Report title")
}

// Run aggregates opts.Input and exports the report.
func Run(ctx context.Context, app *container.Container, opts Options, out io.Writer) error {
	if m := opts.FiscalYearStartMonth; m != 0 && (m < 1 || m > 12) {
		return &parsererror.ValidationError{Reason: "fiscal year start month must be between 1 and 12"}
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if err := validation.IsValidOutputFormat(format); err != nil {
		return &parsererror.ValidationError{Reason: err.Error()}
	}
	txs, err := common.LoadTransactions(app, opts.Input)
	if err != nil {
		return err
	}

	rep := report.Aggregate(txs, opts.PeriodStart, opts.PeriodEnd)
	rep.Title = opts.Title
	exportOpts := app.ExportOptions()
	if opts.FiscalYearStartMonth != 0 {
		exportOpts.FiscalYearStartMonth = opts.FiscalYearStartMonth
	}
	rep.FiscalYearStartMonth = exportOpts.FiscalYearStartMonth

	if format == FormatSheets {
		if err := exportSheets(ctx, app, rep, out); err != nil {
			return err
		}
	} else if err := exportFile(app, rep, format, exportOpts, opts, out); err != nil {
		return err
	}

	fmt.Fprintln(out, termui.ReportSummary(rep))
	return nil
}

func exportFile(app *container.Container, rep *models.CorporateReport, format string, exportOpts export.Options, opts Options, out io.Writer) error {
	writer, err := export.NewFileWriter(format, exportOpts, app.GetLogger())
	if err != nil {
		return err
	}
	output := common.DerivedPath(opts.Input, opts.Output, "_report"+writer.Extension())

	file, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, models.PermissionReportFile) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	if err := writer.Write(file, rep); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing report file: %w", err)
	}

	app.GetLogger().Info("Report written",
		logging.F(logging.FieldFile, output),
		logging.F(logging.FieldCount, len(rep.Categories)))
	fmt.Fprintln(out, termui.FormatSuccess("Report written to "+output))
	return nil
}

func exportSheets(ctx context.Context, app *container.Container, rep *models.CorporateReport, out io.Writer) error {
	cfg := app.SheetsConfig()
	api, err := export.NewGoogleSheets(ctx, cfg)
	if err != nil {
		return err
	}
	id, err := export.NewSheetsWriter(api, cfg, app.GetLogger()).Write(ctx, rep)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, termui.FormatSuccess("Report exported to https://docs.google.com/spreadsheets/d/"+id))
	return nil
}
