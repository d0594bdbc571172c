package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tidwall/sjson"

	"simplenp/internal/tui"
)

// jsonDoc builds JSON output with sjson so commands don't need a struct
// per shape.
type jsonDoc struct {
	raw string
	err error
}

func newJSONArray() *jsonDoc  { return &jsonDoc{raw: "[]"} }
func newJSONObject() *jsonDoc { return &jsonDoc{raw: "{}"} }

func (d *jsonDoc) set(path string, v any) *jsonDoc {
	if d.err == nil {
		d.raw, d.err = sjson.Set(d.raw, path, v)
	}
	return d
}

func (d *jsonDoc) write(w io.Writer) error {
	if d.err != nil {
		return fmt.Errorf("build json: %w", d.err)
	}
	_, err := fmt.Fprintln(w, d.raw)
	return err
}

func renderTable(w io.Writer, theme *tui.Theme, headers []string, rows [][]string) error {
	if theme == nil {
		theme = tui.DefaultTheme()
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Header
			}
			return theme.Cell
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func orNone(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, "+")
}
