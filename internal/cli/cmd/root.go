// Package cmd provides the Cobra commands of npctl.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"simplenp/internal/buildinfo"
	"simplenp/internal/cli"
	"simplenp/internal/config"
)

var (
	app        *cli.App
	configFile string
	portFlag   string
	logLevel   string
	jsonOut    bool

	rootCmd = &cobra.Command{
		Use:   "npctl",
		Short: "Configure and monitor a SimpleNP keypad",
		Long: `npctl talks to a SimpleNP keypad over its CDC ACM configuration channel.

It programs the five user function keys, watches key traffic live, keeps a
local log of key events and reboots the keypad into its bootloader.

The port is a serial device such as /dev/ttyACM0, or tcp://host:port for
the host simulator started with -cdc.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "ports", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp(cmd.Context(), cli.Options{
				ConfigFile: configFile,
				LogLevel:   logLevel,
				Stderr:     cmd.ErrOrStderr(),
				Bind: func(m *config.Manager) error {
					return m.Viper().BindPFlag("device.port", cmd.Root().PersistentFlags().Lookup("port"))
				},
			})
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			closeApp()
		},
	}
)

func init() {
	rootCmd.Version = buildinfo.Short()
	rootCmd.SetVersionTemplate("npctl " + buildinfo.Long() + "\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/npctl/npctl.yaml)")
	pf.StringVarP(&portFlag, "port", "p", "", "serial device or tcp://host:port")
	pf.StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error")
	pf.BoolVar(&jsonOut, "json", false, "output as JSON")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func closeApp() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		app.Log.Debug().Err(err).Msg("close")
	}
	app = nil
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}
