package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dnbseq/audio"
	"dnbseq/pattern"
	"dnbseq/sequencer"
	"dnbseq/theme"
	"dnbseq/widgets"
)

// probStep is the probability change per keypress.
const probStep = 0.1

// Refresh rate for the grid playhead.
const fps = 30

type tickMsg time.Time

type Model struct {
	Eng    *sequencer.Engine
	Source *audio.Source // nil when an external clock drives the engine
	Theme  *theme.Theme

	probBar  progress.Model
	quitting bool
}

func NewModel(eng *sequencer.Engine, src *audio.Source, th *theme.Theme) Model {
	bar := progress.New(
		progress.WithSolidFill(string(th.Accent())),
		progress.WithoutPercentage(),
	)
	bar.Width = 16
	return Model{
		Eng:     eng,
		Source:  src,
		Theme:   th,
		probBar: bar,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.Eng.SelectPattern(int(key[0] - '0'))

		case "v":
			m.Eng.Vary(sequencer.StrategyToggle)
		case ".":
			m.Eng.NudgeSeed(1)
		case ",":
			m.Eng.NudgeSeed(-1)
		case "c":
			m.Eng.Vary(sequencer.StrategyCopyTrack)
		case "l":
			m.Eng.Vary(sequencer.StrategySlide)
		case "x":
			m.Eng.Vary(sequencer.StrategyRemove)
		case "w":
			m.Eng.Vary(sequencer.StrategySwap)
		case "r":
			m.Eng.ResetToDefault()

		case "a":
			m.nudgeProb(pattern.Kick, -probStep)
		case "A":
			m.nudgeProb(pattern.Kick, probStep)
		case "s":
			m.nudgeProb(pattern.Snare, -probStep)
		case "S":
			m.nudgeProb(pattern.Snare, probStep)
		case "d":
			m.nudgeProb(pattern.Ghost, -probStep)
		case "D":
			m.nudgeProb(pattern.Ghost, probStep)

		case "[":
			if m.Source != nil {
				m.Source.SetBPM(m.Source.BPM() - 2)
			}
		case "]":
			if m.Source != nil {
				m.Source.SetBPM(m.Source.BPM() + 2)
			}
		case "enter":
			if m.Source != nil {
				m.Source.RequestReset()
			}
		}

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

func (m *Model) nudgeProb(t pattern.Track, delta float32) {
	m.Eng.SetProbability(t, m.Eng.Probability(t)+delta)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Eng.Snapshot()
	var b strings.Builder

	// Header: pattern name, position, pending switch, seed
	title := lipgloss.NewStyle().Foreground(m.Theme.Success()).Bold(true)
	muted := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	header := fmt.Sprintf("%s  %s", title.Render("dnbseq"),
		fmt.Sprintf("%d %s  step %d/%d  seed %d",
			snap.PatternID, snap.PatternName, snap.Step+1, snap.StepCount, snap.Seed))
	if snap.PendingID >= 0 {
		header += muted.Render(fmt.Sprintf("  (next: %s)", pattern.Lookup(snap.PendingID).Name))
	}
	if m.Source != nil {
		header += muted.Render(fmt.Sprintf("  %d bpm", m.Source.BPM()))
	} else {
		header += muted.Render("  ext clock")
	}
	b.WriteString(header + "\n\n")

	b.WriteString(m.renderGrid(snap))
	b.WriteString("\n")
	b.WriteString(m.renderProbabilities(snap))
	b.WriteString("\n")

	b.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "0-9", Desc: "queue pattern (applies at loop start)"},
			{Key: "v", Desc: "vary: random toggle"},
			{Key: ". / ,", Desc: "seeded variation (seed +1 / -1)"},
			{Key: "c l x w", Desc: "vary: copy / slide / remove / swap"},
			{Key: "r", Desc: "restore base pattern"},
			{Key: "a/A s/S d/D", Desc: "kick / snare / ghost probability"},
			{Key: "[ / ]", Desc: "tempo down/up"},
			{Key: "enter", Desc: "reset position"},
			{Key: "q", Desc: "quit"},
		}},
	}))

	return b.String()
}

func (m Model) renderGrid(snap sequencer.Snapshot) string {
	sym := m.Theme.Symbols
	active := lipgloss.NewStyle().Foreground(m.Theme.Active())
	playhead := lipgloss.NewStyle().Foreground(m.Theme.Success())
	empty := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var b strings.Builder
	for t := 0; t < pattern.NumTracks; t++ {
		b.WriteString(fmt.Sprintf("%-6s ", pattern.Track(t).String()))
		for s := 0; s < snap.StepCount; s++ {
			onPlayhead := s == snap.Step
			hit := snap.Hits[t][s]

			var cell string
			switch {
			case onPlayhead && hit:
				cell = playhead.Render(string(sym.PlayheadHit))
			case onPlayhead:
				cell = playhead.Render(string(sym.StepPlayhead))
			case hit:
				cell = active.Render(string(sym.StepActive))
			default:
				cell = empty.Render(string(sym.StepEmpty))
			}
			b.WriteString(cell)
			if s%4 == 3 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderProbabilities(snap sequencer.Snapshot) string {
	var b strings.Builder
	for _, t := range []pattern.Track{pattern.Kick, pattern.Snare, pattern.Ghost} {
		p := snap.Probability[t]
		b.WriteString(fmt.Sprintf("%-6s %s %3.0f%%\n",
			t.String(), m.probBar.ViewAs(float64(p)), p*100))
	}
	return b.String()
}

// Run starts the TUI (blocking until quit).
func Run(eng *sequencer.Engine, src *audio.Source, th *theme.Theme) error {
	m := NewModel(eng, src, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
