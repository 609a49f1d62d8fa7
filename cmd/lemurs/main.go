package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"
	"pkt.systems/pslog"
)

// version is set via -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	os.Exit(submain())
}

func submain() int {
	logger := pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).Error("lemurs command failed", "err", err.Error())
		if err == pflag.ErrHelp {
			return 0
		}
		if isMisuse(err) {
			return 2
		}
		return 1
	}
	return 0
}

// isMisuse reports whether err came from cobra/pflag's own argument
// parsing rather than from the engine itself, matching the exit code
// split in §6: 2 for misuse, 1 for everything else unrecoverable.
func isMisuse(err error) bool {
	switch {
	case err == nil:
		return false
	case pflagMisuse(err.Error()):
		return true
	default:
		return false
	}
}

func pflagMisuse(msg string) bool {
	for _, prefix := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "invalid argument"} {
		if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
