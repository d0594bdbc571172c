package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"simplenp/npos/kbd"
)

var (
	historyLimit int
	historyStats bool
	historyPrune time.Duration
)

const defaultHistoryLimit = 20

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded key events",
	Long: `Show the key events recorded by monitor, newest first.

With --stats, count presses per key instead. With --prune, delete events
older than the given age first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	f := historyCmd.Flags()
	f.IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "maximum events to show")
	f.BoolVar(&historyStats, "stats", false, "presses per key")
	f.DurationVar(&historyPrune, "prune", 0, "delete events older than this first")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	st, err := app.Store()
	if err != nil {
		return err
	}
	ctx := app.Ctx()

	if historyPrune > 0 {
		n, err := st.Prune(ctx, time.Now().Add(-historyPrune))
		if err != nil {
			return err
		}
		app.Log.Info().Int64("deleted", n).Msg("pruned")
	}

	out := cmd.OutOrStdout()
	if historyStats {
		counts, err := st.Presses(ctx, uint8(kbd.Rising))
		if err != nil {
			return err
		}
		if jsonOut {
			doc := newJSONArray()
			for i, c := range counts {
				p := strconv.Itoa(i)
				doc.set(p+".key", kbd.Key(c.Key).String()).set(p+".presses", c.Presses)
			}
			return doc.write(out)
		}
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{kbd.Key(c.Key).String(), strconv.Itoa(c.Presses)})
		}
		return renderTable(out, app.Theme, []string{"KEY", "PRESSES"}, rows)
	}

	events, err := st.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if jsonOut {
		doc := newJSONArray()
		for i, ev := range events {
			p := strconv.Itoa(i)
			doc.set(p+".id", ev.ID).
				set(p+".at", ev.At.Format(time.RFC3339Nano)).
				set(p+".key", kbd.Key(ev.Key).String()).
				set(p+".state", kbd.LevelState(ev.State).String())
		}
		return doc.write(out)
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "no key events recorded")
		return nil
	}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			ev.At.Format(time.DateTime),
			kbd.Key(ev.Key).String(),
			kbd.LevelState(ev.State).String(),
		})
	}
	return renderTable(out, app.Theme, []string{"TIME", "KEY", "STATE"}, rows)
}
