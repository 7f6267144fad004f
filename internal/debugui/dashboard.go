// Package debugui renders a live Bubble Tea dashboard over a running
// VM, grounded on the teacher's internal/ui progress model: a spinner
// plus a progress bar driven by an event channel, re-purposed here from
// "files moving through the build pipeline" to "instructions moving
// through the interpreter." Unlike internal/debugger, this package
// never pauses the VM — StepHook sends are best-effort so a hot loop
// never slows down to the dashboard's frame rate. Coordinating the
// interpreter goroutine against the UI goroutine (quitting the
// dashboard once the interpreter returns) is the caller's job, via
// errgroup — see cmd/shellvm/watch.go.
package debugui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"shellvm/internal/interp"
)

// sampleInterval is how often the dashboard re-measures instruction
// throughput for the gauge.
const sampleInterval = 200 * time.Millisecond

// StepEvent is a snapshot taken after one dispatched instruction.
type StepEvent struct {
	InstrCount int64
	Offset     int64
	Op         string
	StackDepth int
	HeapLive   int // Allocator.Stats().Live
	HeapOwned  int // Allocator.Stats().Allocs, cumulative over the run
}

// Attach installs a StepHook on vm that publishes a StepEvent per
// instruction to the returned channel. Sends never block: a dashboard
// frame that can't keep up simply drops events rather than throttling
// execution.
func Attach(vm *interp.VM) <-chan StepEvent {
	ch := make(chan StepEvent, 256)
	var count int64
	vm.StepHook = func(_ *interp.Frame, offset int64, op byte) {
		count++
		stats := vm.Env.Allocator.Stats()
		ev := StepEvent{
			InstrCount: count,
			Offset:     offset,
			Op:         interp.OpcodeName(op),
			StackDepth: vm.Env.Stack.Len(),
			HeapLive:   stats.Live,
			HeapOwned:  stats.Allocs,
		}
		select {
		case ch <- ev:
		default:
		}
	}
	return ch
}

type doneMsg struct{}
type eventMsg StepEvent
type tickMsg time.Time

type model struct {
	title string
	events <-chan StepEvent

	spinner  spinner.Model
	rateBar  progress.Model
	last     StepEvent
	maxDepth int
	maxRate  float64
	rate     float64

	lastSampleAt    time.Time
	lastSampleCount int64
	done            bool
}

// NewDashboard returns a Bubble Tea model reading from events until the
// channel closes (the run finished).
func NewDashboard(title string, events <-chan StepEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 60

	return &model{title: title, events: events, spinner: sp, rateBar: bar}
}

func (m *model) Init() tea.Cmd {
	m.lastSampleAt = time.Now()
	return tea.Batch(m.spinner.Tick, m.listen(), tickEvery())
}

func tickEvery() tea.Cmd {
	return tea.Tick(sampleInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.last = StepEvent(msg)
		if m.last.StackDepth > m.maxDepth {
			m.maxDepth = m.last.StackDepth
		}
		return m, m.listen()
	case tickMsg:
		if m.done {
			return m, nil
		}
		now := time.Time(msg)
		elapsed := now.Sub(m.lastSampleAt).Seconds()
		if elapsed > 0 {
			m.rate = float64(m.last.InstrCount-m.lastSampleCount) / elapsed
		}
		if m.rate > m.maxRate {
			m.maxRate = m.rate
		}
		m.lastSampleAt = now
		m.lastSampleCount = m.last.InstrCount
		pct := 0.0
		if m.maxRate > 0 {
			pct = m.rate / m.maxRate
		}
		return m, tea.Batch(m.rateBar.SetPercent(pct), tickEvery())
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
	case progress.FrameMsg:
		bar, cmd := m.rateBar.Update(msg)
		m.rateBar = bar.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  last op      : %s @ %06d\n", m.last.Op, m.last.Offset)
	fmt.Fprintf(&b, "  instr/sec    : %s\n", formatRate(m.rate))
	b.WriteString("  ")
	b.WriteString(m.rateBar.View())
	b.WriteString("\n\n")
	b.WriteString(m.statTable())
	b.WriteString("\n")
	return b.String()
}

// statTable right-aligns the stack/heap counters in a fixed column
// width, recomputed with go-runewidth so digit-width changes (e.g. a
// heap count crossing from 4 to 5 digits) never shift the column.
func (m *model) statTable() string {
	rows := [][2]string{
		{"total instructions", fmt.Sprintf("%d", m.last.InstrCount)},
		{"stack depth", fmt.Sprintf("%d (max %d)", m.last.StackDepth, m.maxDepth)},
		{"heap live", fmt.Sprintf("%d", m.last.HeapLive)},
		{"heap allocated", fmt.Sprintf("%d", m.last.HeapOwned)},
	}
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[1]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, r := range rows {
		pad := width - runewidth.StringWidth(r[1])
		fmt.Fprintf(&b, "  %-20s %s%s\n", r[0], strings.Repeat(" ", pad), r[1])
	}
	return b.String()
}

func formatRate(r float64) string {
	if r <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.0f", r)
}

func (m *model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}
