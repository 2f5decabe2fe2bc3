// Package progress shows fetch activity on the terminal. The navigator
// publishes state changes on the event bus; Watch turns the fetching states
// into a spinner on stderr.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/state"
)

// Reporter is the interface for reporting fetch activity.
type Reporter interface {
	Start(description string)
	Stop()
}

// Spinner implements Reporter with an indeterminate progress bar.
type Spinner struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Start shows the spinner with description, replacing any running one.
func (s *Spinner) Start(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Describe(description)
		return
	}
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(constants.SpinnerRefreshInterval),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}
	_ = s.bar.Finish()
	_ = s.bar.Clear()
	s.bar = nil
}

// Active reports whether the spinner is shown.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bar != nil
}

// NoOpProgress is a reporter that does nothing (pipes, --quiet).
type NoOpProgress struct{}

// Start does nothing.
func (NoOpProgress) Start(string) {}

// Stop does nothing.
func (NoOpProgress) Stop() {}

// ForTerminal returns a Spinner on stderr when stderr is a terminal and a
// NoOpProgress otherwise.
func ForTerminal() Reporter {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return NewSpinner(os.Stderr)
	}
	return NoOpProgress{}
}

// Describe returns the spinner text for a fetching state.
func Describe(s state.NavState, path string) string {
	switch s {
	case state.FetchingObj:
		return fmt.Sprintf("Opening %s", path)
	case state.FetchingObjs:
		return fmt.Sprintf("Listing %s", path)
	case state.FetchingMore:
		return fmt.Sprintf("Loading more of %s", path)
	default:
		return path
	}
}

// Watch drives r from navigator state changes until ctx is done. The
// returned channel is closed once the watcher has stopped.
func Watch(ctx context.Context, bus *events.EventBus, r Reporter) <-chan struct{} {
	return bus.Listen(ctx, func(ev events.Event) {
		changed, ok := ev.(*state.NavStateChangedEvent)
		if !ok {
			return
		}
		if changed.New.IsFetching() {
			r.Start(Describe(changed.New, changed.Path))
		} else {
			r.Stop()
		}
	}, state.EventNavStateChanged)
}
