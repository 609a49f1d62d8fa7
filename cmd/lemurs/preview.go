package main

import (
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var configPath, variablesPath string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Run the UI without touching PAM, UTMPX, VT, or X",
		RunE: func(cmd *cobra.Command, args []string) error {
			// --xsessions/--wlsessions are not redefined here; they come
			// from root's persistent flags, inherited onto this command.
			xsessionsDir, _ := cmd.Flags().GetString("xsessions")
			wlsessionsDir, _ := cmd.Flags().GetString("wlsessions")
			return runEngine(cmd.Context(), runOptions{
				ConfigPath:    configPath,
				VariablesPath: variablesPath,
				XsessionsDir:  xsessionsDir,
				WlsessionsDir: wlsessionsDir,
				Preview:       true,
				NoLog:         true,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "/etc/lemurs.toml", "path to the engine TOML config")
	cmd.Flags().StringVar(&variablesPath, "variables", "", "path to a $name substitution TOML file")

	return cmd
}
