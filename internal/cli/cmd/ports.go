package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"simplenp/internal/acm"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports that may be a keypad",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ports := acm.Ports()
		out := cmd.OutOrStdout()
		if jsonOut {
			doc := newJSONArray()
			for i, p := range ports {
				doc.set(strconv.Itoa(i), p)
			}
			return doc.write(out)
		}
		if len(ports) == 0 {
			fmt.Fprintln(out, "no serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
