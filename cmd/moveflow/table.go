package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type table struct {
	title   string
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// render writes the table with columns padded to their widest cell. Widths
// are measured in terminal cells so non-ASCII place names stay aligned.
// Styling is applied only when color is set.
func (t *table) render(w io.Writer, color bool) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var b strings.Builder
	if t.title != "" {
		if color {
			b.WriteString(titleStyle.Render(t.title))
		} else {
			b.WriteString(t.title)
		}
		b.WriteByte('\n')
	}
	writeRow := func(cells []string, style *lipgloss.Style) {
		b.WriteString("  ")
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			last := i == len(widths)-1 || i == len(cells)-1
			text := cell
			if !last {
				text = runewidth.FillRight(cell, widths[i])
			}
			if style != nil {
				text = style.Render(text)
			}
			b.WriteString(text)
			if !last {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	if color {
		writeRow(t.headers, &headerStyle)
	} else {
		writeRow(t.headers, nil)
	}
	for _, row := range t.rows {
		writeRow(row, nil)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
