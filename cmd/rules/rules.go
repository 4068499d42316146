// Package rules manages the remembered merchant rules.
package rules

import (
	"fmt"
	"io"
	"os"

	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/termui"

	"github.com/spf13/cobra"
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "List, add or remove merchant rules",
	Long:  `Merchant rules map a normalized merchant name to a category and win over every other categorization strategy.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List merchant rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		return List(app, cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:   "add <merchant> <category>",
	Short: "Add or replace a merchant rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		return Add(app, args[0], args[1], cmd.OutOrStdout())
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <merchant>",
	Aliases: []string{"rm"},
	Short:   "Remove a merchant rule",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		return Remove(app, args[0], cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write the merchant rules to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		return Export(app, args[0], cmd.OutOrStdout())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the merchant rules with those of a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		return Import(app, args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, addCmd, removeCmd, exportCmd, importCmd)
}

// List prints the rules in insertion order.
func List(app *container.Container, out io.Writer) error {
	rules := app.GetState().Rules()
	if len(rules) == 0 {
		fmt.Fprintln(out, termui.FormatWarning("No merchant rules yet"))
		return nil
	}
	fmt.Fprintln(out, termui.RulesTable(rules))
	return nil
}

// Add upserts a rule; the rule store is written when the command ends.
func Add(app *container.Container, merchant, category string, out io.Writer) error {
	rule, err := app.GetState().AddMerchantRule(merchant, category)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, termui.FormatSuccess(fmt.Sprintf("%s -> %s", rule.MerchantName, rule.Category)))
	return nil
}

// Remove deletes the rule for merchant.
func Remove(app *container.Container, merchant string, out io.Writer) error {
	if !app.GetState().RemoveMerchantRule(merchant) {
		return fmt.Errorf("no rule for merchant %q", merchant)
	}
	fmt.Fprintln(out, termui.FormatSuccess("Removed rule for "+merchant))
	return nil
}

// Export writes the rules document to path.
func Export(app *container.Container, path string, out io.Writer) error {
	data, err := app.GetState().MarshalRules()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing rules file: %w", err)
	}
	fmt.Fprintln(out, termui.FormatSuccess(fmt.Sprintf("Exported %d rules to %s", len(app.GetState().Rules()), path)))
	return nil
}

// Import replaces the rules with the document at path.
func Import(app *container.Container, path string, out io.Writer) error {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error reading rules file: %w", err)
	}
	state := app.GetState()
	if err := state.UnmarshalRules(data); err != nil {
		return err
	}
	fmt.Fprintln(out, termui.FormatSuccess(fmt.Sprintf("Imported %d rules", len(state.Rules()))))
	return nil
}
