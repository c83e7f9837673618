package usecase

import (
	"context"
	"sync"
)

type txScopeKey struct{}

// txScope is a business transaction shared by engine calls made through
// RunInTransaction. Hooks run once the transaction has ended and its locks
// are released.
type txScope struct {
	tx Transaction

	mu       sync.Mutex
	onCommit []func()
	onEnd    []func()
}

func withScope(ctx context.Context, s *txScope) context.Context {
	return context.WithValue(ctx, txScopeKey{}, s)
}

func scopeFrom(ctx context.Context) *txScope {
	s, _ := ctx.Value(txScopeKey{}).(*txScope)
	return s
}

// afterCommit registers fn to run only if the scope commits.
func (s *txScope) afterCommit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

// afterEnd registers fn to run when the scope ends, committed or not.
func (s *txScope) afterEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

func (s *txScope) finish(committed bool) {
	s.mu.Lock()
	onCommit, onEnd := s.onCommit, s.onEnd
	s.onCommit, s.onEnd = nil, nil
	s.mu.Unlock()

	for _, fn := range onEnd {
		fn()
	}

	if !committed {
		return
	}

	for _, fn := range onCommit {
		fn()
	}
}

// InTransaction reports whether ctx carries a business transaction.
func InTransaction(ctx context.Context) bool {
	return scopeFrom(ctx) != nil
}
