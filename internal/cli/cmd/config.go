package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"simplenp/internal/config"
)

var schemaDir string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := GetApp()
		data, err := json.MarshalIndent(app.Config.Get(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		if f := app.Config.File(); f != "" {
			app.Log.Debug().Str("file", f).Msg("config file")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Long: `Print the JSON schema of the config file, or write npctl.schema.json into
--dir for editors that validate YAML against a schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaDir != "" {
			path, err := config.WriteSchemaFile(schemaDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}
		data, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSchemaCmd)
	configSchemaCmd.Flags().StringVar(&schemaDir, "dir", "", "write npctl.schema.json into this directory")
}
