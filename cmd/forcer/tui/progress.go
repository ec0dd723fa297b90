package tui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/forcer/pkg/forcer/estimate"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// ProgressMsg is sent when run progress is updated.
type ProgressMsg types.Progress

// CompleteMsg is sent when the run has returned.
type CompleteMsg struct {
	Err error
}

// RunModel is the live display of a generation run.
type RunModel struct {
	progress   types.Progress
	spinner    spinner.Model
	startTime  time.Time
	width      int
	height     int
	lengths    types.LengthRange
	alphabet   int
	total      *big.Int
	stopping   bool
	done       bool
	err        error
	cancelFunc func()
}

// NewRunModel creates a model for a run over lengths with an alphabet of
// alphabetSize symbols. cancel is called when the user asks to stop.
func NewRunModel(lengths types.LengthRange, alphabetSize int, cancel func()) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return RunModel{
		spinner:    s,
		startTime:  time.Now(),
		width:      80,
		height:     24,
		lengths:    lengths,
		alphabet:   alphabetSize,
		total:      estimate.TotalCharacters(lengths.Min, lengths.Max, alphabetSize),
		cancelFunc: cancel,
	}
}

// Init initializes the model.
func (m RunModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// The display quits once the run reports completion. A second
			// stop request quits without waiting for it.
			if m.stopping {
				return m, tea.Quit
			}
			if m.cancelFunc != nil {
				m.cancelFunc()
			}
			m.stopping = true
		}
		return m, nil

	case ProgressMsg:
		m.progress = types.Progress(msg)
		return m, nil

	case CompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the model.
func (m RunModel) View() string {
	var b strings.Builder

	contentWidth := max(m.width-4, 40)

	b.WriteString("\n")
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Stopped: %v", m.err)))
	case m.done:
		b.WriteString(successTextStyle.Render("  Generation complete!"))
	case m.stopping:
		b.WriteString(warningTextStyle.Render(fmt.Sprintf("  %s Stopping workers...", m.spinner.View())))
	default:
		b.WriteString(fmt.Sprintf("  %s Generating lengths %s over %d symbols",
			m.spinner.View(), m.lengths, m.alphabet))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")

	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	content := b.String()
	contentLines := strings.Count(content, "\n") + 1
	if available := m.height - 2; available > contentLines {
		content += strings.Repeat("\n", available-contentLines)
	}

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the title line.
func (m RunModel) renderHeader(width int) string {
	title := titleStyle.Render("  forcer")
	hint := mutedTextStyle.Render("[Ctrl+C to stop]")

	spacing := max(width-lipgloss.Width(title)-lipgloss.Width(hint), 1)
	return title + strings.Repeat(" ", spacing) + hint
}

// renderProgressBar renders characters written against the run total.
func (m RunModel) renderProgressBar(width int) string {
	label := fmt.Sprintf(" %5.1f%%", m.Fraction()*100)
	barWidth := max(width-4-len(label), 10)
	filled := int(m.Fraction() * float64(barWidth))

	var bar strings.Builder
	bar.WriteString("  ")
	bar.WriteString(progressFillStyle.Render(strings.Repeat("█", filled)))
	bar.WriteString(progressEmptyStyle.Render(strings.Repeat("░", barWidth-filled)))
	bar.WriteString(mutedTextStyle.Render(label))
	return bar.String()
}

// renderStats renders the statistics boxes.
func (m RunModel) renderStats(totalWidth int) string {
	boxWidth := max((totalWidth-12)/5, 10)

	elapsed := time.Since(m.startTime)
	var rate string
	if secs := elapsed.Seconds(); secs > 0 {
		rate = types.FormatRate(float64(m.progress.Combinations)/secs, false)
	} else {
		rate = "-"
	}

	lengthsVal := fmt.Sprintf("%d/%d", m.progress.LengthsDone, m.lengths.Len())

	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ",
		m.renderStatBox("Chars", types.FormatCount(m.progress.Combinations), boxWidth), " ",
		m.renderStatBox("Lines", types.FormatCount(m.progress.Lines), boxWidth), " ",
		m.renderStatBox("Lengths", lengthsVal, boxWidth), " ",
		m.renderStatBox("Rate", rate, boxWidth), " ",
		m.renderStatBox("Time", formatDuration(elapsed), boxWidth))
}

// renderStatBox renders a single stat box.
func (m RunModel) renderStatBox(label, value string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		center(statsLabelStyle.Render(label), width-4),
		center(statsValueStyle.Render(value), width-4))

	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// Fraction returns the share of the run's characters written, in [0, 1].
func (m RunModel) Fraction() float64 {
	if m.total == nil || m.total.Sign() <= 0 {
		return 0
	}
	done := new(big.Float).SetInt64(m.progress.Combinations)
	f, _ := done.Quo(done, new(big.Float).SetInt(m.total)).Float64()
	return min(max(f, 0), 1)
}

// BenchmarkFrame returns a renderer that draws the live display for a
// benchmark of one length, at a standard terminal size.
func BenchmarkFrame(alphabetSize int) func(length int, p types.Progress) string {
	return func(length int, p types.Progress) string {
		m := NewRunModel(types.LengthRange{Min: length, Max: length}, alphabetSize, nil)
		m.width, m.height = 80, 24
		m.SetProgress(p)
		return m.View()
	}
}

// SetProgress updates the progress.
func (m *RunModel) SetProgress(p types.Progress) {
	m.progress = p
}

// IsDone returns true once the run has completed.
func (m RunModel) IsDone() bool {
	return m.done
}

// Error returns the error the run completed with.
func (m RunModel) Error() error {
	return m.err
}
