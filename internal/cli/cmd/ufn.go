package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"simplenp/internal/config"
	"simplenp/npos/kbd"
	"simplenp/npos/proto"
)

var (
	ufnMods string
	ufnMode string
)

var ufnCmd = &cobra.Command{
	Use:   "ufn",
	Short: "Read and program the user function keys",
	Long: `The five user function keys UFN1 to UFN5 send a programmable key code
with optional modifiers. A key can also latch (toggle) or apply its
modifiers to the next key only (oneshot).`,
}

var ufnGetCmd = &cobra.Command{
	Use:   "get [n]",
	Short: "Show one or all user function keys",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUFNGet,
}

var ufnSetCmd = &cobra.Command{
	Use:   "set <n> <key>",
	Short: "Program a user function key",
	Long: `Program user function key n (1-5) to send key.

Keys are letters, digits, F1-F24, KP0-KP9, names such as ENTER, ESC, HOME,
VOLUP or KP_PLUS, or a raw HID usage code such as 0x68.

Examples:
  npctl ufn set 1 F13
  npctl ufn set 2 c --mods ctrl,shift
  npctl ufn set 5 LSHIFT --mode oneshot`,
	Args: cobra.ExactArgs(2),
	RunE: runUFNSet,
}

var ufnResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default user function keys",
	Args:  cobra.NoArgs,
	RunE:  runUFNReset,
}

func init() {
	rootCmd.AddCommand(ufnCmd)
	ufnCmd.AddCommand(ufnGetCmd, ufnSetCmd, ufnResetCmd)

	ufnSetCmd.Flags().StringVar(&ufnMods, "mods", "", "comma separated modifiers (ctrl, shift, alt, gui, rctrl...)")
	ufnSetCmd.Flags().StringVar(&ufnMode, "mode", "none", "none, toggle or oneshot")
}

func parseUFN(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(kbd.UserFnKeys) {
		return 0, fmt.Errorf("ufn %q: want 1-%d", s, len(kbd.UserFnKeys))
	}
	return n, nil
}

func runUFNGet(cmd *cobra.Command, args []string) error {
	app := GetApp()
	first, last := 1, len(kbd.UserFnKeys)
	if len(args) == 1 {
		n, err := parseUFN(args[0])
		if err != nil {
			return err
		}
		first, last = n, n
	}
	conn, err := app.Conn()
	if err != nil {
		return err
	}

	var replies []proto.UFNReply
	for n := first; n <= last; n++ {
		r, err := conn.GetUFN(app.Ctx(), uint8(n-1))
		if err != nil {
			return fmt.Errorf("get ufn %d: %w", n, err)
		}
		replies = append(replies, r)
	}
	return printUFNs(cmd, replies)
}

func runUFNSet(cmd *cobra.Command, args []string) error {
	app := GetApp()
	n, err := parseUFN(args[0])
	if err != nil {
		return err
	}
	entry := config.UFNConfig{UFN: n, Key: args[1], Mode: ufnMode}
	if ufnMods != "" {
		entry.Mods = strings.Split(ufnMods, ",")
	}
	req, err := entry.Request()
	if err != nil {
		return err
	}

	conn, err := app.Conn()
	if err != nil {
		return err
	}
	r, err := conn.SetUFN(app.Ctx(), req)
	if err != nil {
		return fmt.Errorf("set ufn %d: %w", n, err)
	}
	app.Log.Info().Int("ufn", n).Str("key", config.KeyName(r.Code)).Msg("user function key programmed")
	return printUFNs(cmd, []proto.UFNReply{r})
}

func runUFNReset(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	conn, err := app.Conn()
	if err != nil {
		return err
	}
	if err := conn.ResetUFN(app.Ctx()); err != nil {
		return fmt.Errorf("reset ufn: %w", err)
	}
	if jsonOut {
		return newJSONObject().set("reset", true).write(cmd.OutOrStdout())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "user function keys restored to defaults")
	return nil
}

func printUFNs(cmd *cobra.Command, replies []proto.UFNReply) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		doc := newJSONArray()
		for i, r := range replies {
			mods := config.ModNames(r.Mod)
			if mods == nil {
				mods = []string{}
			}
			p := strconv.Itoa(i)
			doc.set(p+".ufn", int(r.UFN)+1).
				set(p+".key", config.KeyName(r.Code)).
				set(p+".code", r.Code).
				set(p+".mods", mods).
				set(p+".mode", kbd.ToggleMode(r.Toggle).String())
		}
		return doc.write(out)
	}

	rows := make([][]string, 0, len(replies))
	for _, r := range replies {
		rows = append(rows, []string{
			fmt.Sprintf("UFN%d", int(r.UFN)+1),
			config.KeyName(r.Code),
			orNone(config.ModNames(r.Mod)),
			kbd.ToggleMode(r.Toggle).String(),
		})
	}
	return renderTable(out, GetApp().Theme, []string{"KEY", "SENDS", "MODS", "MODE"}, rows)
}
