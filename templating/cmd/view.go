package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byte4ever/tcframework/views"
)

func newViewCmd(a *app) *cobra.Command {
	var (
		output  string
		vars    []string
		imports []string
	)

	cmd := &cobra.Command{
		Use:   "view NAME",
		Short: "Render a view from the views directory",
		Long: `Render the view NAME from the views directory. Only the base name of
NAME is used, so views cannot be read from outside the directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			const errCtx = "rendering view"

			ctx, err := a.engine.Context(vars, imports)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			reg := views.NewRegistry(a.cfg.ViewsDir, a.engine.Logger)

			out, err := reg.Render(args[0], ctx)
			if err != nil {
				return err
			}

			return a.engine.Write(output, out, false)
		},
	}

	fs := cmd.Flags()
	fs.String("views-dir", views.DefaultDir, "directory holding the views")
	fs.StringVarP(
		&output, "output", "o", "",
		"output file, replaced atomically (stdout if empty)",
	)
	fs.StringArrayVar(
		&vars, "set", nil,
		"PATH=VALUE or PATH:=JSON assignment (repeatable)",
	)
	fs.StringArrayVar(
		&imports, "import", nil,
		"NAME=filename partial exposed at /imports/NAME (repeatable)",
	)

	mustBind(a.v, keyViewsDir, fs.Lookup("views-dir"))

	return cmd
}
