package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"moveflow/internal/driver"
	"moveflow/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = map[string]uiMode{
	"":     uiModeAuto,
	"auto": uiModeAuto,
	"on":   uiModeOn,
	"off":  uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

func shouldUseTUI(mode uiMode, w io.Writer) bool {
	if mode == uiModeAuto {
		return isTerminal(w)
	}
	return mode == uiModeOn
}

// runAnalyzeWithUI runs the driver while a progress view renders to w.
// A UI failure wins over the analysis error.
func runAnalyzeWithUI(ctx context.Context, w io.Writer, title string, files []string, baseDir string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Progress = driver.ChannelSink{Ch: events}

	var (
		g   errgroup.Group
		res *driver.Result
	)
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = driver.AnalyzeFiles(ctx, baseDir, files, opts)
		return err
	})

	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(w), tea.WithInput(nil))
	_, uiErr := program.Run()
	// модель могла выйти раньше времени: дочитываем, чтобы воркеры не встали
	for range events {
	}
	runErr := g.Wait()
	return res, cmp.Or(uiErr, runErr)
}
