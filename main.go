package main

import (
	"fmt"
	"os"

	"fjacquet/statement-categorizer/cmd/categorize"
	"fjacquet/statement-categorizer/cmd/convert"
	"fjacquet/statement-categorizer/cmd/report"
	"fjacquet/statement-categorizer/cmd/review"
	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/cmd/rules"
	"fjacquet/statement-categorizer/cmd/serve"
	"fjacquet/statement-categorizer/internal/config"
	"fjacquet/statement-categorizer/internal/logging"
)

func init() {
	// The .env file may set the log level, so it is loaded before any logger
	// writes. The configured logger replaces this one once the container
	// is built.
	config.LoadEnv(logging.NewLogrusAdapter("error", "text"))
	root.Log = logging.NewLogrusAdapter(envOr("STMTCAT_LOG_LEVEL", "info"), envOr("STMTCAT_LOG_FORMAT", "text"))

	root.Init()

	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(review.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
