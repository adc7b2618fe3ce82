package main

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byte4ever/tcframework/digester"
	"github.com/byte4ever/tcframework/views"
)

var errTemplateRequired = errors.New("watch needs --template")

func newWatchCmd(a *app) *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render a template file and re-render it on change",
		Long: `Render like the render command, then re-render whenever the
template, a locals file, a stamp info file or an imported partial changes.
Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rf.template == "" {
				return errTemplateRequired
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM,
			)
			defer stop()

			logger := a.engine.Logger

			expand := func() {
				if err := a.engine.Expand(
					rf.template,
					rf.output,
					rf.vars,
					rf.imports,
					rf.executable,
				); err != nil {
					logger.Error("render failed", "error", err)
					return
				}

				logger.Info(
					"rendered",
					"template", rf.template,
					"output", rf.output,
				)
			}

			files := watchedFiles(a.cfg, rf)

			last, err := digester.CalculateDigests(files)
			if err != nil {
				return err
			}

			expand()

			return views.WatchFiles(
				ctx,
				files,
				a.cfg.Debounce,
				logger,
				func(changed []string) {
					digest, err := digester.CalculateDigests(files)
					if err != nil {
						logger.Warn("digesting inputs", "error", err)
					} else if digest == last {
						logger.Debug("inputs unchanged", "paths", changed)
						return
					}

					last = digest

					logger.Info("change detected", "paths", changed)
					expand()
				},
			)
		},
	}

	rf.register(cmd)
	cmd.Flags().Duration(
		"debounce", views.DefaultDebounce,
		"quiet period before re-rendering",
	)

	mustBind(a.v, keyDebounce, cmd.Flags().Lookup("debounce"))

	return cmd
}

// watchedFiles lists every input of a render.
func watchedFiles(cfg config, rf renderFlags) []string {
	files := []string{rf.template}
	files = append(files, cfg.LocalsFiles...)
	files = append(files, cfg.StampInfoFiles...)

	for _, im := range rf.imports {
		if _, file, ok := strings.Cut(im, "="); ok {
			files = append(files, file)
		}
	}

	return files
}
