package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomlemeuch/grandpy/internal/output"
)

// TUIRenderer shows import progress with bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *importModel
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer writing to cfg.Output.
func NewTUIRenderer(cfg Config) *TUIRenderer {
	model := newImportModel(cfg.Title)
	if cfg.NoColor || output.DetectNoColor() {
		model.styles = NoColorStyles()
	}
	return &TUIRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.program = tea.NewProgram(r.model,
		tea.WithOutput(r.cfg.Output),
		tea.WithContext(ctx),
	)

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.send(progressUpdateMsg(event))
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.send(errorMsg(event))
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.send(completeMsg(stats))
}

func (r *TUIRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(msg)
	}
}

// Stop implements Renderer. It waits for the final frame, at most two
// seconds.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program == nil {
		return nil
	}

	program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	r.cancel()
	return nil
}

// Message types for bubbletea
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats

// importModel is the bubbletea model for import progress.
type importModel struct {
	title       string
	event       ProgressEvent
	errors      []ErrorEvent
	stats       CompletionStats
	complete    bool
	quitting    bool
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
}

func newImportModel(title string) *importModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &importModel{
		title:   title,
		spinner: s,
		progressBar: progress.New(
			progress.WithSolidFill(ColorLime),
			progress.WithWidth(40),
		),
		styles: DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m *importModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *importModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progressBar.Width = max(20, msg.Width-20)

	case progressUpdateMsg:
		m.event = ProgressEvent(msg)

	case errorMsg:
		m.errors = append(m.errors, ErrorEvent(msg))

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *importModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.styles.Stage.Render("● " + m.event.Stage.String()))
	b.WriteString("\n\n")

	percent := 0.0
	if m.event.Total > 0 {
		percent = float64(m.event.Current) / float64(m.event.Total)
	}
	b.WriteString(m.progressBar.ViewAs(percent))
	fmt.Fprintf(&b, " %d/%d\n", m.event.Current, m.event.Total)

	if m.event.Category != "" {
		fmt.Fprintf(&b, "%s %s %s\n",
			m.spinner.View(),
			m.styles.Active.Render(m.event.Category),
			m.styles.Label.Render(m.event.Path))
	}
	for _, e := range m.errors {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("✗ %s: %v", e.Category, e.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *importModel) renderComplete() string {
	line := fmt.Sprintf("✓ %d words in %d categories (%s)",
		m.stats.Words, m.stats.Categories, m.stats.Duration.Round(time.Millisecond))
	if m.stats.Errors > 0 {
		return m.styles.Error.Render(fmt.Sprintf("%s, %d errors", line, m.stats.Errors)) + "\n"
	}
	return m.styles.Success.Render(line) + "\n"
}
