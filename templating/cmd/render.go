package main

import (
	"github.com/spf13/cobra"
)

// renderFlags are shared by render and watch.
type renderFlags struct {
	template   string
	output     string
	vars       []string
	imports    []string
	executable bool
}

func (rf *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(
		&rf.template, "template", "t", "",
		"template file (stdin if empty)",
	)
	fs.StringVarP(
		&rf.output, "output", "o", "",
		"output file, replaced atomically (stdout if empty)",
	)
	fs.StringArrayVar(
		&rf.vars, "set", nil,
		"PATH=VALUE or PATH:=JSON assignment (repeatable)",
	)
	fs.StringArrayVar(
		&rf.imports, "import", nil,
		"NAME=filename partial exposed at /imports/NAME (repeatable)",
	)
	fs.BoolVar(
		&rf.executable, "executable", false,
		"set the executable bit on the output file",
	)
}

func newRenderCmd(a *app) *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template file",
		Example: `  tcrender render -t page.tc --locals site.yaml --set /title=Home -o page.html
  echo '[=/who]' | tcrender render --set who=world`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.engine.Expand(
				rf.template,
				rf.output,
				rf.vars,
				rf.imports,
				rf.executable,
			)
		},
	}

	rf.register(cmd)

	return cmd
}
