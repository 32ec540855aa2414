package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/distcalc/internal/format"
	"github.com/agbru/distcalc/internal/sysmon"
	"github.com/agbru/distcalc/internal/ui"
)

const (
	// maxRankBars is the largest rank count drawn with one bar per rank.
	// Above it only the overall bar is shown.
	maxRankBars = 8
	// historySize is the number of CPU and memory samples kept for the
	// sparklines.
	historySize = 40

	tickInterval    = 500 * time.Millisecond
	defaultBarWidth = 40
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	Rank    int
	Value   float64
	Average float64
	ETA     time.Duration
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// TickMsg triggers a system sample.
type TickMsg time.Time

// SysStatsMsg carries one system-wide sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// Dashboard is the bubbletea model behind -tui: one bar per rank, the
// overall fraction with its ETA, and CPU and memory sparklines.
type Dashboard struct {
	title   string
	pairs   int
	ranks   []float64
	overall float64
	eta     time.Duration

	bar    progress.Model
	cpu    *RingBuffer
	mem    *RingBuffer
	keymap KeyMap
	styles ui.Styles
	cancel func()

	start     time.Time
	elapsed   time.Duration
	paused    bool
	done      bool
	cancelled bool
}

// NewDashboard creates a dashboard for numRanks ranks. cancel is called
// when the user aborts the run and may be nil.
func NewDashboard(title string, pairs, numRanks int, cancel func()) Dashboard {
	return Dashboard{
		title:  title,
		pairs:  pairs,
		ranks:  make([]float64, max(numRanks, 1)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
		cpu:    NewRingBuffer(historySize),
		mem:    NewRingBuffer(historySize),
		keymap: DefaultKeyMap(),
		styles: ui.CurrentStyles(),
		cancel: cancel,
		start:  time.Now(),
	}
}

// Init starts the sampling tick.
func (m Dashboard) Init() tea.Cmd {
	return tickCmd()
}

// Update handles incoming messages.
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Pause):
			m.paused = !m.paused
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-24, 10), 60)
		return m, nil

	case ProgressMsg:
		if msg.Rank >= 0 && msg.Rank < len(m.ranks) {
			m.ranks[msg.Rank] = msg.Value
		}
		m.overall = msg.Average
		m.eta = msg.ETA
		return m, nil

	case ProgressDoneMsg:
		m.done = true
		m.elapsed = time.Since(m.start)
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.cpu.Push(msg.CPUPercent)
		m.mem.Push(msg.MemPercent)
		return m, nil
	}
	return m, nil
}

// View renders the dashboard.
func (m Dashboard) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("  %s pairs, %d ranks",
		format.FormatNumberString(fmt.Sprint(m.pairs)), len(m.ranks))))
	b.WriteString("\n\n")

	if len(m.ranks) > 1 && len(m.ranks) <= maxRankBars {
		for i, v := range m.ranks {
			fmt.Fprintf(&b, "%s %s\n", m.styles.Label.Render(fmt.Sprintf("rank %-3d", i)), m.bar.ViewAs(v))
		}
	}
	fmt.Fprintf(&b, "%s %s", m.styles.Label.Render("overall "), m.bar.ViewAs(m.overall))
	switch {
	case m.done:
		fmt.Fprintf(&b, "  %s\n", m.styles.Success.Render("done in "+format.FormatExecutionDuration(m.elapsed)))
	case m.cancelled:
		fmt.Fprintf(&b, "  %s\n", m.styles.Warning.Render("aborting"))
	default:
		fmt.Fprintf(&b, "  %s\n", m.styles.Value.Render("ETA "+format.FormatETA(m.eta)))
	}

	if m.cpu.Len() > 0 {
		fmt.Fprintf(&b, "\n%s %s %5.1f%%   %s %s %5.1f%%\n",
			m.styles.Label.Render("cpu"), RenderSparkline(m.cpu.Slice()), m.cpu.Last(),
			m.styles.Label.Render("mem"), RenderSparkline(m.mem.Slice()), m.mem.Last())
	}

	help := fmt.Sprintf("%s %s  %s %s",
		m.keymap.Quit.Help().Key, m.keymap.Quit.Help().Desc,
		m.keymap.Pause.Help().Key, m.keymap.Pause.Help().Desc)
	if m.paused {
		help += "  (frozen)"
	}
	b.WriteString("\n" + m.styles.Label.Render(help) + "\n")
	return b.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}
