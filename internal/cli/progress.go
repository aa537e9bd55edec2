package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/lucasvnasc/paginas-semelhantes/internal/client"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// jobUpdateMsg carries the next job snapshot from the watch stream.
// ok is false once the stream has closed.
type jobUpdateMsg struct {
	job service.Job
	ok  bool
}

// progressModel is the bubbletea model for job progress.
type progressModel struct {
	updates  <-chan service.Job
	job      service.Job
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(job service.Job, updates <-chan service.Job) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		updates:  updates,
		job:      job,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start reading the stream).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForUpdate(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case jobUpdateMsg:
		if !msg.ok {
			// Stream closed. The last snapshot we hold decides the outcome.
			m.done = true
			if m.job.Status == service.JobStatusFailed {
				m.err = fmt.Errorf("%s", m.job.Error)
			} else if !m.job.Status.Terminal() {
				m.err = fmt.Errorf("connection to server lost")
			}
			return m, tea.Quit
		}

		m.job = msg.job

		switch m.job.Status {
		case service.JobStatusCompleted:
			m.done = true
			return m, tea.Quit
		case service.JobStatusFailed:
			m.done = true
			m.err = fmt.Errorf("%s", m.job.Error)
			return m, tea.Quit
		}

		return m, m.waitForUpdate()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var pct float64
	if m.job.Total > 0 {
		pct = float64(m.job.Progress) / float64(m.job.Total)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d pages", m.job.Progress, m.job.Total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJob %s continues on the server.\nUse 'paginas jobs %s' to check status.\n",
			m.job.ID, m.job.ID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Analysis failed: %s\n", m.err))
	}

	if r := m.job.Result; r != nil {
		var output string
		output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Rows kept:    %d of %d\n", r.RowsKept, r.RowsRead)
		output += fmt.Sprintf("  Pages:        %d\n", r.Pages)
		output += fmt.Sprintf("  Queries:      %d\n", r.Keywords)
		output += fmt.Sprintf("  Groups found: %d\n", len(r.Groups))
		output += fmt.Sprintf("  Took:         %s\n", time.Duration(r.DurationMs)*time.Millisecond)
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// waitForUpdate blocks on the watch stream in a command goroutine so
// Update() itself never blocks.
func (m progressModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		job, ok := <-m.updates
		return jobUpdateMsg{job: job, ok: ok}
	}
}

// RunJobProgress streams a server job's progress interactively until it
// reaches a terminal state. Returns nil on success or Ctrl+C (the job keeps
// running server-side), and the job's error on failure.
func RunJobProgress(ctx context.Context, c *client.Client, job service.Job) error {
	updates, err := c.Watch(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("watch job %s: %w", job.ID, err)
	}

	model := newProgressModel(job, updates)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
