// Package application is the terminal UI for importing a product CSV.
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/session"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Messages produced by the model's commands.
type (
	DoneMsg     string
	ErrMsg      struct{ Err error }
	progressMsg time.Time
)

const (
	previewPageSize = 12
	progressTick    = 100 * time.Millisecond
)

// Model renders a session. All import state lives in the session; the model
// only keeps view concerns.
type Model struct {
	ctx      context.Context
	sess     *session.Session
	input    textinput.Model
	progress progress.Model
	offset   int
	width    int
	readFile func(string) (string, error)
}

// New returns a model at the upload step. A non-empty path is pre-filled.
func New(ctx context.Context, sess *session.Session, path string) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/products.csv"
	ti.Prompt = "File: "
	ti.CharLimit = 1024
	ti.Width = 60
	ti.SetValue(path)
	ti.Focus()

	return Model{
		ctx:      ctx,
		sess:     sess,
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		width:    80,
		readFile: core.ReadImportFile,
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, sess *session.Session, path string) error {
	_, err := tea.NewProgram(New(ctx, sess, path), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-10, 10), 80)
		return m, nil

	case DoneMsg, ErrMsg:
		// The session already holds the outcome; just re-render.
		m.offset = 0
		return m, nil

	case progressMsg:
		if m.sess.Snapshot().Step == session.StepImporting {
			return m, tickProgress()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.sess.Snapshot().Step == session.StepUpload {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.Snapshot()

	if st.Step == session.StepUpload {
		switch msg.Type {
		case tea.KeyEnter:
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			return m, m.loadFile(path)
		case tea.KeyEsc:
			m.sess.DismissError()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "x":
		m.sess.DismissError()
	case "q":
		if st.Step != session.StepImporting {
			return m, tea.Quit
		}
	}

	switch st.Step {
	case session.StepPreview:
		switch msg.String() {
		case "d":
			next := core.DuplicateUpdate
			if st.DuplicateAction == core.DuplicateUpdate {
				next = core.DuplicateSkip
			}
			m.sess.SetDuplicateAction(next)
		case "enter":
			if m.sess.CanCommit() {
				return m, tea.Batch(m.commit(), tickProgress())
			}
		case "esc":
			m.sess.Reset()
			m.input.Reset()
		case "down", "j":
			if m.offset+previewPageSize < len(st.Results) {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		}

	case session.StepComplete:
		if msg.String() == "n" {
			m.sess.Reset()
			m.input.Reset()
			m.offset = 0
		}
	}
	return m, nil
}

func (m Model) loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		text, err := m.readFile(path)
		if err != nil {
			m.sess.ReportError(err)
			return ErrMsg{Err: err}
		}
		if err := m.sess.LoadFile(m.ctx, path, text); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("loaded")
	}
}

func (m Model) commit() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.sess.Commit(m.ctx); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("Import Complete!")
	}
}

func tickProgress() tea.Cmd {
	return tea.Tick(progressTick, func(t time.Time) tea.Msg { return progressMsg(t) })
}

func (m Model) View() string {
	st := m.sess.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Import Products"))
	b.WriteString("\n")

	if st.Err != nil {
		b.WriteString(bannerStyle.Render("Error: " + st.Err.Error()))
		b.WriteString("\n")
	}

	switch st.Step {
	case session.StepUpload:
		b.WriteString(m.viewUpload())
	case session.StepPreview:
		b.WriteString(m.viewPreview(st))
	case session.StepImporting:
		b.WriteString(m.viewImporting(st))
	case session.StepComplete:
		b.WriteString(m.viewComplete(st))
	}
	return b.String()
}

func (m Model) viewUpload() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle.Render("Choose a CSV file. Download a template with `zander-import template`."),
		"",
		m.input.View(),
		hintStyle.Render("enter: validate  esc: dismiss error  ctrl+c: quit"),
	)
}

func (m Model) viewPreview(st session.State) string {
	s := st.Summary
	summary := fmt.Sprintf("%s  %d rows  %s %d  %s %d  %s %d  %s %d",
		mutedStyle.Render(st.FileName), s.Total,
		okBadge.Render("Valid"), s.Valid,
		errorBadge.Render("Errors"), s.Invalid,
		duplicateBadge.Render("Duplicates"), s.Duplicates,
		warningBadge.Render("Warnings"), s.HasWarnings,
	)

	policy := "Duplicates: skip existing products"
	if st.DuplicateAction == core.DuplicateUpdate {
		policy = "Duplicates: update existing products"
	}

	commitHint := "enter: import"
	if !m.sess.CanCommit() {
		commitHint = "nothing to import (no valid rows)"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		summary,
		"",
		m.previewTable(st.Results),
		"",
		policy,
		hintStyle.Render(commitHint+"  d: toggle duplicates  up/down: scroll  esc: cancel  x: dismiss error  q: quit"),
	)
}

func (m Model) previewTable(results []core.ValidationResult) string {
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Width(5).Render("Row"),
		headerStyle.Width(28).Render("Name"),
		headerStyle.Width(16).Render("SKU"),
		headerStyle.Render("Status"),
	)}

	end := min(m.offset+previewPageSize, len(results))
	for _, r := range results[m.offset:end] {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(5).Render(fmt.Sprint(r.Row)),
			cellStyle.Width(28).Render(truncate(r.Data.Name(), 26)),
			cellStyle.Width(16).Render(truncate(r.Data.SKU(), 14)),
			rowStatus(r),
		))
	}
	if len(results) > previewPageSize {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("rows %d-%d of %d", m.offset+1, end, len(results))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func rowStatus(r core.ValidationResult) string {
	var parts []string
	switch {
	case r.HasErrors():
		parts = append(parts, errorBadge.Render("Error"), strings.Join(r.Errors, "; "))
	case len(r.Warnings) > 0:
		parts = append(parts, warningBadge.Render("Warning"), strings.Join(r.Warnings, "; "))
	default:
		parts = append(parts, okBadge.Render("OK"))
	}
	if r.IsDuplicate {
		parts = append(parts, duplicateBadge.Render("Duplicate"))
	}
	return strings.Join(parts, " ")
}

func (m Model) viewImporting(st session.State) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Importing %d rows from %s...", st.Summary.Total, st.FileName),
		"",
		m.progress.ViewAs(float64(st.Progress)/100),
	)
}

func (m Model) viewComplete(st session.State) string {
	res := st.Result
	lines := []string{
		m.progress.ViewAs(1),
		"",
		fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
			okBadge.Render("Imported"), res.Imported,
			duplicateBadge.Render("Updated"), res.Updated,
			warningBadge.Render("Skipped"), res.Skipped,
			errorBadge.Render("Errors"), res.Errors,
		),
		"",
	}
	for _, d := range res.Details {
		if d.Status == core.StatusImported || d.Status == core.StatusUpdated {
			continue
		}
		lines = append(lines, fmt.Sprintf("row %d  %-28s %s  %s", d.Row, truncate(d.Name, 26), d.Status, d.Message))
	}
	lines = append(lines, hintStyle.Render("n: import more  q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
