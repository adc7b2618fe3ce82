package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/byte4ever/tcframework/templating"
)

// app carries state shared by the subcommands once the
// root command has loaded the configuration.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config
	engine  *templating.Engine
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:   "tcrender",
		Short: "Render TC templates",
		Long: `tcrender renders TC templates against a data context built from
stamp info files, JSON/YAML locals files and PATH=VALUE assignments.

Configuration is read from --config, TCRENDER_CONFIG_FILE or .tcrender.yaml,
and every key can be overridden with a TCRENDER_<KEY> environment variable.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(
		&a.cfgFile, "config", "",
		"config file (default .tcrender.yaml, or TCRENDER_CONFIG_FILE)",
	)
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.StringSlice(
		"stamp-info-file", nil,
		"stamp info file with KEY VALUE lines (repeatable)",
	)
	pf.StringSlice(
		"locals", nil,
		"JSON or YAML locals file, merged in order (repeatable)",
	)

	mustBind(v, keyLogLevel, pf.Lookup("log-level"))
	mustBind(v, keyStampInfoFiles, pf.Lookup("stamp-info-file"))
	mustBind(v, keyLocalsFiles, pf.Lookup("locals"))

	root.AddCommand(
		newRenderCmd(a),
		newViewCmd(a),
		newWatchCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.engine = &templating.Engine{
		StampInfoFiles: cfg.StampInfoFiles,
		LocalsFiles:    cfg.LocalsFiles,
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
		Logger:         logger,
	}

	logger.Debug(
		"configuration loaded",
		"config_file", a.v.ConfigFileUsed(),
		"stamp_info_files", cfg.StampInfoFiles,
		"locals_files", cfg.LocalsFiles,
	)

	return nil
}

// mustBind binds a flag to a viper key. Both names are
// constants, so a failure is a programming error.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}
