package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"simplenp/internal/acm/acmtest"
	"simplenp/npos/kbd"
)

func resetCommands(c *cobra.Command, ctx context.Context) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		resetCommands(sub, ctx)
	}
}

func execute(ctx context.Context, args ...string) (string, error) {
	resetCommands(rootCmd, ctx)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	closeApp()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(context.Background(), args...)
	require.NoError(t, err, out)
	return out
}

type fixture struct {
	dev    *acmtest.Device
	dir    string
	config string
}

func setup(t *testing.T, extra string) fixture {
	t.Helper()
	dev, err := acmtest.Start()
	require.NoError(t, err)
	t.Cleanup(dev.Close)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	f := fixture{dev: dev, dir: dir, config: filepath.Join(dir, "npctl.yaml")}
	f.write(t, dev.Addr(), extra)
	return f
}

func (f fixture) write(t *testing.T, port, extra string) {
	t.Helper()
	body := fmt.Sprintf(`device:
  port: %s
  timeout: 2s
logging:
  level: warn
store:
  path: %s
%s`, port, filepath.Join(f.dir, "events.db"), extra)
	require.NoError(t, os.WriteFile(f.config, []byte(body), 0o600))
}

func TestPingJSON(t *testing.T) {
	f := setup(t, "")
	out := run(t, "--config", f.config, "--json", "ping", "-c", "2")

	assert.Equal(t, f.dev.Addr(), gjson.Get(out, "port").String())
	assert.Equal(t, int64(2), gjson.Get(out, "replies.#").Int())
	assert.Equal(t, int64(2), gjson.Get(out, "replies.1.seq").Int())
}

func TestPortFlagOverridesConfig(t *testing.T) {
	f := setup(t, "")
	f.write(t, "tcp://127.0.0.1:1", "")

	_, err := execute(context.Background(), "--config", f.config, "ping")
	require.Error(t, err)

	out := run(t, "--config", f.config, "-p", f.dev.Addr(), "ping")
	assert.Contains(t, out, "reply from "+f.dev.Addr())
}

func TestUFNSetThenGet(t *testing.T) {
	f := setup(t, "")
	run(t, "--config", f.config, "ufn", "set", "2", "c", "--mods", "ctrl,shift", "--mode", "toggle")

	ch, mode := f.dev.UFN(1)
	assert.Equal(t, uint8(kbd.KeyCodeA+2), ch.Code)
	assert.Equal(t, kbd.ModLeftCtrl|kbd.ModLeftShift, ch.Mod)
	assert.Equal(t, kbd.ToggleToggle, mode)

	out := run(t, "--config", f.config, "--json", "ufn", "get", "2")
	assert.Equal(t, int64(2), gjson.Get(out, "0.ufn").Int())
	assert.Equal(t, "C", gjson.Get(out, "0.key").String())
	assert.Equal(t, `["lctrl","lshift"]`, gjson.Get(out, "0.mods").Raw)
	assert.Equal(t, "toggle", gjson.Get(out, "0.mode").String())
}

func TestUFNGetAllAndReset(t *testing.T) {
	f := setup(t, "")
	run(t, "--config", f.config, "ufn", "set", "5", "F13")

	out := run(t, "--config", f.config, "ufn", "get")
	for _, name := range []string{"UFN1", "UFN2", "UFN3", "UFN4", "UFN5", "F13"} {
		assert.Contains(t, out, name)
	}

	out = run(t, "--config", f.config, "ufn", "reset")
	assert.Contains(t, out, "restored")
	ch, _ := f.dev.UFN(4)
	assert.NotEqual(t, uint8(0x68), ch.Code)
}

func TestUFNSetRejects(t *testing.T) {
	f := setup(t, "")
	_, err := execute(context.Background(), "--config", f.config, "ufn", "set", "2", "NOPE")
	assert.ErrorContains(t, err, "unknown key")

	_, err = execute(context.Background(), "--config", f.config, "ufn", "set", "6", "A")
	assert.ErrorContains(t, err, "want 1-5")

	_, err = execute(context.Background(), "--config", f.config, "ufn", "set", "1", "A", "--mode", "sticky")
	assert.ErrorContains(t, err, "unknown mode")
}

const keymap = `keymap:
  - ufn: 1
    key: F13
    mods: [ctrl]
  - ufn: 3
    key: KP_PLUS
    mode: oneshot
`

func TestApplyKeymap(t *testing.T) {
	f := setup(t, keymap)
	out := run(t, "--config", f.config, "apply")
	assert.Contains(t, out, "applied 2 user function keys")

	ch, _ := f.dev.UFN(0)
	assert.Equal(t, uint8(0x68), ch.Code)
	assert.Equal(t, kbd.ModLeftCtrl, ch.Mod)
	ch, mode := f.dev.UFN(2)
	assert.Equal(t, kbd.KeyCodeKPAdd, ch.Code)
	assert.Equal(t, kbd.ToggleOneShot, mode)
}

func TestApplyWatchReapplies(t *testing.T) {
	f := setup(t, keymap)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "--config", f.config, "apply", "--watch")
		done <- err
	}()

	require.Eventually(t, func() bool {
		ch, _ := f.dev.UFN(0)
		return ch.Code == 0x68
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		f.write(t, f.dev.Addr(), "keymap:\n  - ufn: 1\n    key: F14\n")
		ch, _ := f.dev.UFN(0)
		return ch.Code == 0x69
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("apply --watch did not stop")
	}
}

func TestMonitorRecordsHistory(t *testing.T) {
	f := setup(t, "")

	var out string
	done := make(chan error, 1)
	go func() {
		var err error
		out, err = execute(context.Background(), "--config", f.config, "--json", "monitor", "--duration", "1s")
		done <- err
	}()

	require.Eventually(t, f.dev.Connected, 2*time.Second, time.Millisecond)
	f.dev.Press(kbd.KeyNum5, true)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.Contains(t, out, `"key":"5"`)
	assert.Contains(t, out, `"state":"rising"`)

	hist := run(t, "--config", f.config, "--json", "history")
	assert.GreaterOrEqual(t, gjson.Get(hist, "#").Int(), int64(1))
	assert.Contains(t, gjson.Get(hist, "#.key").Raw, `"5"`)

	stats := run(t, "--config", f.config, "--json", "history", "--stats")
	assert.Equal(t, "5", gjson.Get(stats, "0.key").String())
	assert.Equal(t, int64(1), gjson.Get(stats, "0.presses").Int())
}

func TestHistoryEmpty(t *testing.T) {
	f := setup(t, "")
	out := run(t, "--config", f.config, "history")
	assert.Contains(t, out, "no key events recorded")
}

func TestFlash(t *testing.T) {
	f := setup(t, "")
	out := run(t, "--config", f.config, "flash")
	assert.Contains(t, out, "bootloader")
	assert.Eventually(t, func() bool { return f.dev.Boots() == 1 }, time.Second, time.Millisecond)
}

func TestConfigSchemaAndShow(t *testing.T) {
	out := run(t, "config", "schema")
	assert.Equal(t, "npctl configuration", gjson.Get(out, "title").String())

	dir := t.TempDir()
	out = run(t, "config", "schema", "--dir", dir)
	assert.FileExists(t, filepath.Join(dir, "npctl.schema.json"))
	assert.Contains(t, out, "npctl.schema.json")

	f := setup(t, keymap)
	out = run(t, "--config", f.config, "config", "show")
	assert.Equal(t, f.dev.Addr(), gjson.Get(out, "device.port").String())
	assert.Equal(t, "KP_PLUS", gjson.Get(out, "keymap.1.key").String())
}
