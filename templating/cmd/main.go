// Command tcrender renders TC templates from the command
// line. It builds a data context from stamp info files,
// JSON/YAML locals files and PATH=VALUE assignments, and
// renders either a template file (render, watch) or a view
// from a views directory (view).
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd(viper.New()).Execute()
}
