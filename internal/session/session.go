// Package session runs a form state machine against a Predictor for callers
// that are not themselves an event loop: the web server and the command line.
//
// A Session serialises every transition behind a mutex and runs the
// prediction request in its own goroutine, feeding the result back in as a
// Settled event. Observers are notified of every new state in order.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/predict"
)

// Observer receives each new state. It runs while the session lock is held,
// so it must not call back into the Session.
type Observer func(form.State)

// Session is one applicant's form.
type Session struct {
	ID     string
	Source string

	predictor predict.Predictor
	observer  Observer

	mu      sync.Mutex
	state   form.State
	lastErr error
	wg      sync.WaitGroup
}

// New creates an empty session. source labels log lines ("web", "api", "cli").
func New(source string, predictor predict.Predictor, observer Observer) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Source:    source,
		predictor: predictor,
		observer:  observer,
		state:     form.NewState(),
	}
	logging.LogSessionEvent(s.ID, "opened", zap.String("source", source))
	return s
}

// State returns the current snapshot.
func (s *Session) State() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error from the most recent prediction request, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Dispatch applies ev and returns the resulting state. A Submit that passes
// validation starts the request in the background; ctx bounds that request.
func (s *Session) Dispatch(ctx context.Context, ev form.Event) form.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, payload := form.Reduce(s.state, ev)
	s.state = next

	if _, ok := ev.(form.Submit); ok {
		logging.LogSubmission(s.Source, s.ID, fieldErrorCount(next.Errors), payload != nil)
	}

	if payload != nil {
		s.lastErr = nil
		s.wg.Add(1)
		go s.run(ctx, *payload)
	}

	if s.observer != nil {
		s.observer(next)
	}
	return next
}

// Fill sets every field from values without validating, as if typed.
func (s *Session) Fill(ctx context.Context, values form.Fields) form.State {
	var st form.State
	for _, f := range form.AllFields {
		st = s.Dispatch(ctx, form.Change{Field: f, Value: values.Get(f)})
	}
	return st
}

// Submit dispatches a Submit and waits for any request it starts to settle.
func (s *Session) Submit(ctx context.Context) form.State {
	s.Dispatch(ctx, form.Submit{})
	return s.Wait()
}

// Wait blocks until no request is in flight and returns the state.
func (s *Session) Wait() form.State {
	s.wg.Wait()
	return s.State()
}

// Close waits for any in-flight request and logs the end of the session.
func (s *Session) Close() {
	s.wg.Wait()
	logging.LogSessionEvent(s.ID, "closed")
}

func (s *Session) run(ctx context.Context, payload form.Payload) {
	defer s.wg.Done()

	result, err := s.predictor.Predict(ctx, payload)
	outcome := predict.Settle(result, err)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.Dispatch(ctx, form.Settled{Outcome: outcome})
}

func fieldErrorCount(errs form.Errors) int {
	n := 0
	for k := range errs {
		if k != form.GeneralKey {
			n++
		}
	}
	return n
}
