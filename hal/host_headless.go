//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled    bool
	Hz         int
	Ticks      uint64
	StepBudget int
	// Script closes and opens matrix switches at given steps.
	Script []ScriptStep
}

// ScriptStep closes (Closed) or opens switch Index once the runner reaches
// step At.
type ScriptStep struct {
	At     uint64
	Index  int
	Closed bool
}

// ParseScript parses "at+index" and "at-index" entries separated by commas,
// e.g. "10+6,40-6" holds switch 6 from step 10 to step 40.
func ParseScript(s string) ([]ScriptStep, error) {
	var steps []ScriptStep
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i := strings.IndexAny(f, "+-")
		if i <= 0 || i == len(f)-1 {
			return nil, fmt.Errorf("script entry %q: want <step>+<switch> or <step>-<switch>", f)
		}
		at, err := strconv.ParseUint(f[:i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("script entry %q: %w", f, err)
		}
		idx, err := strconv.Atoi(f[i+1:])
		if err != nil || idx < 0 || idx >= MatrixRows*MatrixCols {
			return nil, fmt.Errorf("script entry %q: bad switch index", f)
		}
		steps = append(steps, ScriptStep{At: at, Index: idx, Closed: f[i] == '+'})
	}
	sort.SliceStable(steps, func(a, b int) bool { return steps[a].At < steps[b].At })
	return steps, nil
}

// RunHeadless runs the firmware without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig, host HostConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}

	h, err := newHost(host)
	if err != nil {
		return err
	}
	defer h.close()
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	script := cfg.Script
	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for len(script) > 0 && script[0].At <= tick {
				h.matrix.Set(script[0].Index, script[0].Closed)
				script = script[1:]
			}
			h.t.advance(d)
			for i := 0; i < cfg.StepBudget && step != nil; i++ {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
