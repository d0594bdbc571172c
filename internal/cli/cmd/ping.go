package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the keypad answers",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 1, "number of pings")
}

func runPing(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	conn, err := app.Conn()
	if err != nil {
		return err
	}
	port := app.Config.Get().Device.Port
	out := cmd.OutOrStdout()
	doc := newJSONObject().set("port", port)

	for i := 0; i < pingCount; i++ {
		rtt, err := conn.Ping(app.Ctx())
		if err != nil {
			return fmt.Errorf("ping %s: %w", port, err)
		}
		if jsonOut {
			doc.set(fmt.Sprintf("replies.%d.seq", i), i+1).
				set(fmt.Sprintf("replies.%d.rtt_us", i), rtt.Microseconds())
			continue
		}
		fmt.Fprintf(out, "reply from %s: seq=%d time=%s\n", port, i+1, rtt.Round(time.Microsecond))
	}
	if jsonOut {
		return doc.write(out)
	}
	return nil
}
