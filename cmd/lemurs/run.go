package main

import (
	"context"
	"fmt"

	"go.lemurs.sh/lemurs/config"
	"go.lemurs.sh/lemurs/engine"
	"go.lemurs.sh/lemurs/logging"
	"go.lemurs.sh/lemurs/protocol"
	"go.lemurs.sh/lemurs/ui"
	"go.lemurs.sh/lemurs/vt"

	"pkt.systems/pslog"
)

// runOptions carries everything runEngine needs, resolved from whatever
// combination of flags, environment variables, and defaults the caller
// used (root.go's RunE consults viper for this; preview.go reads its own
// local flags directly).
type runOptions struct {
	ConfigPath    string
	VariablesPath string
	XsessionsDir  string // non-empty overrides the config file's value
	WlsessionsDir string // non-empty overrides the config file's value
	Preview       bool
	NoLog         bool
}

func runEngine(ctx context.Context, opts runOptions) error {
	log := pslog.Ctx(ctx)

	vars, err := config.LoadVariables(opts.VariablesPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath, vars, log)
	if err != nil {
		return err
	}
	cfg.Preview = cfg.Preview || opts.Preview
	if opts.XsessionsDir != "" {
		cfg.XsessionsDir = opts.XsessionsDir
	}
	if opts.WlsessionsDir != "" {
		cfg.WlsessionsDir = opts.WlsessionsDir
	}

	logDir := cfg.LogDir
	if opts.NoLog {
		logDir = ""
	}
	sinks, err := logging.Open(logDir)
	if err != nil {
		return err
	}
	defer sinks.Close()

	vtNum, err := vt.CurrentVT()
	if err != nil {
		if !cfg.Preview {
			return err
		}
		vtNum = 0
	}
	tty := fmt.Sprintf("tty%d", vtNum)

	ch := protocol.NewChannels(4)
	e := engine.New(cfg, ch, sinks, tty, vtNum)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	if err := ui.Run(ctx, ch, cfg); err != nil {
		return err
	}
	return <-errCh
}
