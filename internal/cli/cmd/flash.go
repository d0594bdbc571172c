package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Reboot the keypad into its bootloader",
	Long: `Ask the keypad to reboot into its UF2 bootloader so new firmware can be
copied to the drive it mounts. The serial port goes away afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := GetApp()
		conn, err := app.Conn()
		if err != nil {
			return err
		}
		if err := conn.FlashMode(app.Ctx()); err != nil {
			return fmt.Errorf("flash mode: %w", err)
		}
		if jsonOut {
			return newJSONObject().set("flash", true).write(cmd.OutOrStdout())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "keypad is rebooting into its bootloader")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flashCmd)
}
