//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"simplenp/app"
	"simplenp/hal"
)

func main() {
	var (
		cfg    hal.HeadlessConfig
		host   hal.HostConfig
		appCfg app.Config
		script string
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 1000, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&script, "script", "", `Headless switch script, e.g. "10+6,40-6".`)
	flag.StringVar(&host.CDCAddr, "cdc", "", "Serve the CDC channel on this TCP address (e.g. 127.0.0.1:7878).")
	flag.BoolVar(&appCfg.Welcome, "welcome", false, "Play the welcome screen before the numpad.")
	flag.BoolVar(&appCfg.Worker, "worker", false, "Present the console from a worker goroutine.")
	flag.Parse()

	newApp := func(h hal.HAL) func() error { return app.NewWithConfig(h, appCfg) }

	if cfg.Enabled {
		steps, err := hal.ParseScript(script)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg.Script = steps

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg, host); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, host); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
