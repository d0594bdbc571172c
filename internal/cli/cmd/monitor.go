package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"simplenp/internal/acm"
	"simplenp/internal/store"
	"simplenp/internal/tui"
	"simplenp/npos/kbd"
	"simplenp/npos/proto"
)

var (
	monitorTUI     bool
	monitorNoStore bool
	monitorFor     time.Duration
)

var errMonitorQuit = errors.New("monitor: quit")

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch key events live",
	Long: `Print every key transition the keypad reports and record it in the
event log. With --tui, show the keypad and a scrolling log instead.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	f := monitorCmd.Flags()
	f.BoolVarP(&monitorTUI, "tui", "t", false, "interactive view")
	f.BoolVar(&monitorNoStore, "no-store", false, "don't record events")
	f.DurationVar(&monitorFor, "duration", 0, "stop after this long (0 runs until interrupted)")
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	conn, err := app.Conn()
	if err != nil {
		return err
	}
	var st *store.Store
	if !monitorNoStore {
		if st, err = app.Store(); err != nil {
			return err
		}
	}

	ctx := app.Ctx()
	if monitorFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, monitorFor)
		defer cancel()
	}
	g, ctx := errgroup.WithContext(ctx)

	var fwd chan proto.KeyEvent
	if monitorTUI {
		fwd = make(chan proto.KeyEvent, 64)
		g.Go(func() error {
			m := tui.NewMonitorModel("SimpleNP "+app.Config.Get().Device.Port, fwd, app.Theme)
			p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return errMonitorQuit
		})
	}
	g.Go(func() error {
		if fwd != nil {
			defer close(fwd)
		}
		return pumpEvents(ctx, conn, st, fwd, cmd.OutOrStdout())
	})

	err = g.Wait()
	if d := conn.Dropped(); d > 0 {
		app.Log.Warn().Uint64("dropped", d).Msg("key events dropped")
	}
	if errors.Is(err, errMonitorQuit) {
		return nil
	}
	return err
}

func pumpEvents(ctx context.Context, conn *acm.Conn, st *store.Store, fwd chan<- proto.KeyEvent, out io.Writer) error {
	for {
		var ev proto.KeyEvent
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-conn.Events():
			if !ok {
				return fmt.Errorf("device disconnected: %w", conn.Err())
			}
			ev = e
		}

		at := time.Now()
		if st != nil {
			if _, err := st.Add(ctx, store.Event{At: at, Key: ev.Key, State: ev.State}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
		if fwd != nil {
			select {
			case fwd <- ev:
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if err := printEvent(out, at, ev); err != nil {
			return err
		}
	}
}

func printEvent(out io.Writer, at time.Time, ev proto.KeyEvent) error {
	key, state := kbd.Key(ev.Key), kbd.LevelState(ev.State)
	if jsonOut {
		return newJSONObject().
			set("at", at.Format(time.RFC3339Nano)).
			set("key", key.String()).
			set("code", ev.Key).
			set("state", state.String()).
			write(out)
	}
	_, err := fmt.Fprintf(out, "%s %-7s %s\n", at.Format("15:04:05.000"), key, state)
	return err
}
