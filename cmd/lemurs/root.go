package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var configPath, variablesPath, xsessionsDir, wlsessionsDir string
	var preview, noLog bool

	root := &cobra.Command{
		Use:           "lemurs",
		Short:         "A minimal, terminal-based login manager",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "/etc/lemurs.toml", "path to the engine TOML config")
	root.PersistentFlags().StringVar(&variablesPath, "variables", "", "path to a $name substitution TOML file")
	root.PersistentFlags().StringVar(&xsessionsDir, "xsessions", "", "override the configured xsessions directory")
	root.PersistentFlags().StringVar(&wlsessionsDir, "wlsessions", "", "override the configured wayland-sessions directory")
	root.PersistentFlags().BoolVar(&preview, "preview", false, "run the UI without touching PAM, UTMPX, VT, or X")
	root.PersistentFlags().BoolVar(&noLog, "no-log", false, "log to stderr instead of the configured log files")

	v := viper.New()
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("variables", root.PersistentFlags().Lookup("variables"))
	_ = v.BindPFlag("xsessions", root.PersistentFlags().Lookup("xsessions"))
	_ = v.BindPFlag("wlsessions", root.PersistentFlags().Lookup("wlsessions"))
	_ = v.BindPFlag("preview", root.PersistentFlags().Lookup("preview"))
	_ = v.BindPFlag("no-log", root.PersistentFlags().Lookup("no-log"))
	_ = v.BindEnv("config", "LEMURS_CONFIG")
	_ = v.BindEnv("variables", "LEMURS_VARIABLES")

	// Reading back through v, rather than the flag vars directly, gives
	// --config/--variables the flag > env > default precedence viper's
	// BindPFlag/BindEnv promise: a set flag always wins, otherwise
	// LEMURS_CONFIG/LEMURS_VARIABLES are consulted before the default.
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runEngine(cmd.Context(), runOptions{
			ConfigPath:    v.GetString("config"),
			VariablesPath: v.GetString("variables"),
			XsessionsDir:  v.GetString("xsessions"),
			WlsessionsDir: v.GetString("wlsessions"),
			Preview:       v.GetBool("preview"),
			NoLog:         v.GetBool("no-log"),
		})
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newPreviewCmd())

	return root
}
