package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"simplenp/internal/acm"
	"simplenp/internal/config"
)

var applyWatch bool

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Program the keymap from the config file",
	Long: `Program every user function key listed under keymap in the config file.

With --watch, npctl stays running and programs the keymap again each time
the file is saved. Edits that fail validation are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVarP(&applyWatch, "watch", "w", false, "reapply when the config file changes")
}

func runApply(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	conn, err := app.Conn()
	if err != nil {
		return err
	}

	n, err := applyKeymap(app.Ctx(), conn, app.Log, app.Config.Get().Keymap)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d user function keys\n", n)
	if !applyWatch {
		return nil
	}

	if app.Config.File() == "" {
		return errors.New("apply --watch: no config file to watch")
	}
	app.Config.OnConfigChange(func(cfg *config.Config) {
		n, err := applyKeymap(app.Ctx(), conn, app.Log, cfg.Keymap)
		if err != nil {
			app.Log.Error().Err(err).Msg("reapply failed")
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d user function keys\n", n)
	})
	app.Config.Watch(func(err error) {
		app.Log.Warn().Err(err).Msg("config change ignored")
	})
	app.Log.Info().Str("file", app.Config.File()).Msg("watching")

	select {
	case <-app.Ctx().Done():
		return nil
	case <-conn.Done():
		return conn.Err()
	}
}

func applyKeymap(ctx context.Context, conn *acm.Conn, log zerolog.Logger, keymap []config.UFNConfig) (int, error) {
	if len(keymap) == 0 {
		log.Warn().Msg("keymap is empty")
		return 0, nil
	}
	for _, u := range keymap {
		req, err := u.Request()
		if err != nil {
			return 0, err
		}
		if _, err := conn.SetUFN(ctx, req); err != nil {
			return 0, fmt.Errorf("set ufn %d: %w", u.UFN, err)
		}
		log.Debug().Int("ufn", u.UFN).Str("key", u.Key).Strs("mods", u.Mods).Str("mode", u.Mode).Msg("programmed")
	}
	return len(keymap), nil
}
