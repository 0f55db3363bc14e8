// Package session drives one user's import from file selection to result.
//
// The flow is a small state machine:
//
//	upload -> preview -> importing -> complete
//	           ^   |        |            |
//	           |   +--------+ (failure)  |
//	upload <---+---------- Reset --------+
//
// All validation happens on the server; the session only parses the file,
// forwards rows and keeps what the server said.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/zander/internal/client"
	"github.com/JonMunkholm/zander/internal/core"
)

// Step is the current screen of an import.
type Step string

const (
	StepUpload    Step = "upload"
	StepPreview   Step = "preview"
	StepImporting Step = "importing"
	StepComplete  Step = "complete"
)

const (
	// ProgressCap is the highest cosmetic progress shown before the import returns.
	ProgressCap = 90

	progressStep        = 10
	defaultProgressTick = 300 * time.Millisecond
)

var (
	// ErrStepTransition is returned when an action is not allowed in the current step.
	ErrStepTransition = errors.New("invalid step transition")

	// ErrNotCSV is returned for files without a .csv extension.
	ErrNotCSV = errors.New("only .csv files are accepted")
)

// API is the backend the session talks to. *client.Client implements it.
type API interface {
	Validate(ctx context.Context, rows []core.ImportRow, lines []int) (*client.ValidateResponse, error)
	Import(ctx context.Context, rows []core.ImportRow, lines []int, action core.DuplicateAction) (*core.ImportResult, error)
}

// State is a point-in-time copy of the session. Slices are shared and must
// be treated as read-only.
type State struct {
	Step            Step
	FileName        string
	Rows            []core.ImportRow
	Lines           []int
	Results         []core.ValidationResult
	Summary         core.ValidationSummary
	DuplicateAction core.DuplicateAction
	Progress        int
	Result          *core.ImportResult
	Err             error
}

// Session is safe for concurrent use. Only one user action runs at a time;
// Snapshot may be called while an action is in flight.
type Session struct {
	api  API
	tick time.Duration

	mu   sync.RWMutex
	st   State
	busy bool
}

// Option configures a Session.
type Option func(*Session)

// WithProgressTick sets how often the cosmetic progress advances.
func WithProgressTick(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// New returns a session at the upload step.
func New(api API, opts ...Option) *Session {
	s := &Session{api: api, tick: defaultProgressTick}
	for _, opt := range opts {
		opt(s)
	}
	s.st = initialState()
	return s
}

func initialState() State {
	return State{Step: StepUpload, DuplicateAction: core.DuplicateSkip}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// begin claims the single action slot if the session is in one of steps.
func (s *Session) begin(action string, steps ...Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return fmt.Errorf("%w: %s while another action is running", ErrStepTransition, action)
	}
	for _, st := range steps {
		if s.st.Step == st {
			s.busy = true
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s from %s", ErrStepTransition, action, s.st.Step)
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// LoadFile parses text and asks the server to validate it. On success the
// session moves to preview. Any failure leaves it at upload with the error
// shown and nothing retained from the attempt.
func (s *Session) LoadFile(ctx context.Context, name, text string) error {
	if err := s.begin("load file", StepUpload); err != nil {
		return err
	}
	defer s.end()

	fail := func(err error) error {
		s.mu.Lock()
		s.st = initialState()
		s.st.Err = err
		s.mu.Unlock()
		return err
	}

	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return fail(fmt.Errorf("%w: %s", ErrNotCSV, filepath.Base(name)))
	}

	rows, lines, err := core.ParseImportFileLines(text)
	if err != nil {
		return fail(err)
	}

	resp, err := s.api.Validate(ctx, rows, lines)
	if err != nil {
		return fail(err)
	}

	s.mu.Lock()
	s.st = State{
		Step:            StepPreview,
		FileName:        filepath.Base(name),
		Rows:            rows,
		Lines:           lines,
		Results:         resp.Data,
		Summary:         resp.Summary,
		DuplicateAction: core.DuplicateSkip,
	}
	s.mu.Unlock()
	return nil
}

// SetDuplicateAction chooses the policy for every duplicate row.
func (s *Session) SetDuplicateAction(action core.DuplicateAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidDuplicateAction, action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || s.st.Step != StepPreview {
		return fmt.Errorf("%w: duplicate policy can only change in preview", ErrStepTransition)
	}
	s.st.DuplicateAction = action
	return nil
}

// CanCommit reports whether Commit would be accepted.
func (s *Session) CanCommit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return canCommit(s.st) && !s.busy
}

func canCommit(st State) bool {
	return st.Step == StepPreview && st.Summary.Valid > 0
}

// Commit sends the rows for import. It blocks until the server answers;
// meanwhile Snapshot reports a progress value that climbs to ProgressCap.
// On failure the session returns to preview with its results intact.
func (s *Session) Commit(ctx context.Context) (*core.ImportResult, error) {
	if err := s.begin("commit", StepPreview); err != nil {
		return nil, err
	}
	defer s.end()

	s.mu.Lock()
	if !canCommit(s.st) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: no valid rows to import", ErrStepTransition)
	}
	s.st.Step = StepImporting
	s.st.Progress = 0
	s.st.Err = nil
	rows, lines, action := s.st.Rows, s.st.Lines, s.st.DuplicateAction
	s.mu.Unlock()

	stop := s.runProgress()
	result, err := s.api.Import(ctx, rows, lines, action)
	stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.st.Step = StepPreview
		s.st.Progress = 0
		s.st.Err = err
		return nil, err
	}

	s.st.Step = StepComplete
	s.st.Progress = 100
	s.st.Result = result
	return result, nil
}

// runProgress advances the cosmetic progress until the returned func is called.
func (s *Session) runProgress() (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.st.Step == StepImporting {
					s.st.Progress = min(s.st.Progress+progressStep, ProgressCap)
				}
				s.mu.Unlock()
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// Reset abandons a preview (cancel) or a finished import (import more).
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return fmt.Errorf("%w: cannot reset while an action is running", ErrStepTransition)
	}
	switch s.st.Step {
	case StepPreview, StepComplete, StepUpload:
		s.st = initialState()
		return nil
	default:
		return fmt.Errorf("%w: cannot reset from %s", ErrStepTransition, s.st.Step)
	}
}

// ReportError shows err in the banner without changing step. Callers use it
// for failures that happen before the session is involved, such as reading
// the file from disk.
func (s *Session) ReportError(err error) {
	s.mu.Lock()
	s.st.Err = err
	s.mu.Unlock()
}

// DismissError clears the error banner. The step is unchanged.
func (s *Session) DismissError() {
	s.mu.Lock()
	s.st.Err = nil
	s.mu.Unlock()
}
