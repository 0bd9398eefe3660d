package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/five82/streamtail/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	flag.StringVar(&opts.ConfigPath, "config", "", "override config path (optional)")
	flag.StringVar(&opts.PrefsPath, "prefs", "", "override viewer preferences path (optional)")
	flag.StringVarP(&opts.Addr, "addr", "a", "", "dashboard host:port or URL (defaults to 127.0.0.1:6185)")
	flag.StringVar(&opts.Token, "token", "", "dashboard bearer token")
	flag.StringVar(&opts.Reconnect, "reconnect", "", `reopen a failed stream after this long, e.g. "5s" ("0" disables)`)
	flag.StringVar(&opts.LogFile, "log-file", "", `diagnostic log path ("-" for stderr; only when stderr is redirected)`)
	flag.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn, or error")
	flag.Parse()

	if token := os.Getenv("STREAMTAIL_TOKEN"); token != "" && opts.Token == "" {
		opts.Token = token
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "streamtail: %v\n", err)
		return 1
	}
	return 0
}
