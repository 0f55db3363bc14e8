package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/zander/internal/client"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

type stubAPI struct {
	action core.DuplicateAction
}

func (s *stubAPI) Validate(_ context.Context, rows []core.ImportRow, _ []int) (*client.ValidateResponse, error) {
	results := []core.ValidationResult{
		{Row: 2, Data: rows[0], IsDuplicate: true, ExistingProductID: "p-1"},
		{Row: 3, Data: rows[1], Errors: []string{"Invalid type 'GIZMO'"}},
	}
	return &client.ValidateResponse{
		Data:    results,
		Summary: core.ValidationSummary{Total: 2, Valid: 1, Invalid: 1, Duplicates: 1},
	}, nil
}

func (s *stubAPI) Import(_ context.Context, rows []core.ImportRow, _ []int, action core.DuplicateAction) (*core.ImportResult, error) {
	s.action = action
	return &core.ImportResult{
		Updated: 1,
		Errors:  1,
		Details: []core.ImportDetail{
			{Row: 2, Name: "Widget", Status: core.StatusUpdated},
			{Row: 3, Name: "Gadget", Status: core.StatusError, Message: "Invalid type 'GIZMO'"},
		},
	}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the first command it returns, feeding the
// resulting message back into the model.
func press(t *testing.T, m tea.Model, k string) tea.Model {
	t.Helper()
	m, cmd := m.Update(key(k))
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		msg = batch[0]()
	}
	m, _ = m.Update(msg)
	return m
}

func TestModel_ImportFlow(t *testing.T) {
	api := &stubAPI{}
	sess := session.New(api)
	m := New(context.Background(), sess, "products.csv")
	m.readFile = func(string) (string, error) {
		return "name,sku,type\nWidget,W-1,PHYSICAL\nGadget,G-1,GIZMO\n", nil
	}

	var model tea.Model = m
	model = press(t, model, "enter")
	if got := sess.Snapshot().Step; got != session.StepPreview {
		t.Fatalf("step = %s, want preview", got)
	}

	view := model.View()
	for _, want := range []string{"Widget", "Duplicate", "Error", "Invalid type 'GIZMO'", "skip existing"} {
		if !strings.Contains(view, want) {
			t.Errorf("preview missing %q", want)
		}
	}

	model = press(t, model, "d")
	if !strings.Contains(model.View(), "update existing") {
		t.Errorf("expected policy toggle to update")
	}

	model = press(t, model, "enter")
	if got := sess.Snapshot().Step; got != session.StepComplete {
		t.Fatalf("step = %s, want complete", got)
	}
	if api.action != core.DuplicateUpdate {
		t.Errorf("import sent action %q, want update", api.action)
	}
	view = model.View()
	if !strings.Contains(view, "Updated") || !strings.Contains(view, "Gadget") {
		t.Errorf("complete view missing results:\n%s", view)
	}

	model = press(t, model, "n")
	if got := sess.Snapshot().Step; got != session.StepUpload {
		t.Fatalf("step = %s, want upload after import more", got)
	}
}

func TestModel_ReadErrorShowsBanner(t *testing.T) {
	sess := session.New(&stubAPI{})
	m := New(context.Background(), sess, "missing.csv")
	m.readFile = func(string) (string, error) {
		return "", errors.New("open missing.csv: no such file or directory")
	}

	var model tea.Model = m
	model = press(t, model, "enter")

	if !strings.Contains(model.View(), "no such file") {
		t.Fatalf("expected banner with read error")
	}

	model = press(t, model, "esc")
	if strings.Contains(model.View(), "no such file") {
		t.Fatalf("expected banner dismissed")
	}
	if got := sess.Snapshot().Step; got != session.StepUpload {
		t.Fatalf("step = %s, want upload", got)
	}
}

func TestModel_CommitDisabledWithoutValidRows(t *testing.T) {
	sess := session.New(&allInvalidAPI{})
	m := New(context.Background(), sess, "p.csv")
	m.readFile = func(string) (string, error) { return "name\nA\n", nil }

	var model tea.Model = m
	model = press(t, model, "enter")
	model = press(t, model, "enter")

	if got := sess.Snapshot().Step; got != session.StepPreview {
		t.Fatalf("step = %s, want preview", got)
	}
	if !strings.Contains(model.View(), "nothing to import") {
		t.Errorf("expected disabled commit hint")
	}
}

type allInvalidAPI struct{ stubAPI }

func (a *allInvalidAPI) Validate(_ context.Context, rows []core.ImportRow, _ []int) (*client.ValidateResponse, error) {
	return &client.ValidateResponse{
		Data:    []core.ValidationResult{{Row: 2, Data: rows[0], Errors: []string{"Name is required"}}},
		Summary: core.ValidationSummary{Total: 1, Invalid: 1},
	}, nil
}

func TestRowStatus_ListsEveryMessage(t *testing.T) {
	tests := []struct {
		name  string
		in    core.ValidationResult
		wants []string
	}{
		{
			name:  "all errors",
			in:    core.ValidationResult{Errors: []string{"Name is required", "Invalid type 'X'"}},
			wants: []string{"Error", "Name is required; Invalid type 'X'"},
		},
		{
			name:  "all warnings",
			in:    core.ValidationResult{Warnings: []string{"No SKU provided", "No base price provided"}},
			wants: []string{"Warning", "No SKU provided; No base price provided"},
		},
		{
			name:  "errors hide warnings",
			in:    core.ValidationResult{Errors: []string{"bad"}, Warnings: []string{"meh"}, IsDuplicate: true},
			wants: []string{"Error", "bad", "Duplicate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowStatus(tt.in)
			for _, want := range tt.wants {
				if !strings.Contains(got, want) {
					t.Errorf("rowStatus() = %q, missing %q", got, want)
				}
			}
			if tt.in.HasErrors() && strings.Contains(got, "meh") {
				t.Errorf("rowStatus() = %q, warnings shown on an errored row", got)
			}
		})
	}
}
