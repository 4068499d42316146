// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/statement-categorizer/internal/config"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
}

var (
	// Log is the shared logger instance for commands. It is replaced by the
	// configured logger once the container is built.
	Log = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "stmtcat",
		Short: "Categorize bank statement transactions and build expense reports.",
		Long: `stmtcat converts bank statements (PDF, CSV, CAMT.053, OFX) into a working CSV,
categorizes every transaction with merchant rules, MCC codes, keywords and
optional AI lookups, and aggregates the result into a corporate report.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to stmtcat!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(Log)
			cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			c, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			app = c
			Log = c.GetLogger()
			return nil
		},
		// Persist merchant rules when any command finishes.
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app == nil {
				return
			}
			if err := app.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close application resources")
			}
			app = nil
		},
	}

	// SharedFlags holds the common flags accessible to all commands
	SharedFlags = CommonFlags{}

	app *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.stmtcat, .stmtcat and .)")
}

// App returns the container built for the running command.
func App() (*container.Container, error) {
	if app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

// SetApp installs c as the running container. Commands executed outside the
// root pre-run hook, such as tests, use it.
func SetApp(c *container.Container) {
	app = c
}
