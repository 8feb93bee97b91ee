package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"moveflow/internal/driver"
)

// stageInfo: подпись стадии и доля работы, выполненной к её началу.
type stageInfo struct {
	verb   string
	weight float64
}

var stages = map[driver.Stage]stageInfo{
	driver.StageLoad:     {"loading", 0.05},
	driver.StageParse:    {"parsing", 0.2},
	driver.StageValidate: {"validating", 0.4},
	driver.StageGather:   {"gathering", 0.6},
	driver.StageReport:   {"reporting", 0.9},
}

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	styleIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleBusy   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

const statusColumn = 12

type fileItem struct {
	path   string
	status string // "queued", a stage verb, "done" or "error"
	stage  driver.Stage
	final  bool
}

func (it fileItem) style() lipgloss.Style {
	switch {
	case it.status == "error":
		return styleFailed
	case it.status == "done":
		return styleDone
	case it.status == "queued" || it.status == "":
		return styleIdle
	default:
		return styleBusy
	}
}

type progressModel struct {
	title      string
	events     <-chan driver.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string // run-level stage, from events without a file
	width      int
	done       bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per file and an
// overall bar. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleBusy))
	prog := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   make([]fileItem, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.items[i] = fileItem{path: f, status: "queued"}
		m.index[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	finished := 0
	for _, it := range m.items {
		if it.final {
			finished++
		}
	}
	header = fmt.Sprintf("%s %d/%d", header, finished, len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusColumn-4, 20)
	for _, it := range m.items {
		status := it.style().Render(fmt.Sprintf("%*s", statusColumn, it.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(it.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

// applyEvent updates one row, or the run-level label when ev has no file,
// and animates the bar to the new overall fraction.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok || label == "" {
		return nil
	}
	it := &m.items[idx]
	it.status, it.stage = label, ev.Stage
	it.final = ev.Status == driver.StatusDone || ev.Status == driver.StatusError

	total := 0.0
	for _, it := range m.items {
		if it.final {
			total++
		} else {
			total += progressFromStage(it.stage)
		}
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func progressFromStage(stage driver.Stage) float64 {
	return stages[stage].weight
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued, driver.StatusDone, driver.StatusError:
		return string(status)
	case driver.StatusWorking:
		return stages[stage].verb
	}
	return ""
}

// truncate shortens value to less than width cells, marking the cut with
// "..."; widths of 3 or less cut without a marker.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
