package autodiff

import (
	"context"

	"github.com/born-ml/fncas/internal/observability"
)

// Session is the exclusive right to record a new graph into a Store.
//
// Opening a session resets the store: every NodeRef, Term and recorded
// function issued earlier by that store becomes stale.
type Session struct {
	store *Store
	gen   uint64
	x     []Term
}

// Record opens a recording session for a function of dim input variables.
//
// Returns ErrConcurrentRecording if another session is already open on the
// store. The caller may retry once that session is closed.
func (s *Store) Record(dim int) (*Session, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	if s.session != nil {
		observability.LogSessionRejected(s.logger, s.id.String())
		return nil, ErrConcurrentRecording
	}

	s.reset()
	s.dim = dim
	sess := &Session{store: s, gen: s.generation, x: make([]Term, dim)}
	s.session = sess

	for k := 0; k < dim; k++ {
		sess.x[k] = Term{store: s, gen: s.generation, ref: s.Variable(k)}
	}

	s.metrics.RecordSession(context.Background(), dim)
	observability.LogSessionOpen(s.logger, s.id.String(), s.generation, dim)
	return sess, nil
}

// X returns the input variables x[0..dim-1].
// The slice is a copy; rebinding its elements does not affect the session.
func (sess *Session) X() []Term {
	out := make([]Term, len(sess.x))
	copy(out, sess.x)
	return out
}

// Dimension returns the number of input variables.
func (sess *Session) Dimension() int {
	return len(sess.x)
}

// Store returns the store being recorded into.
func (sess *Session) Store() *Store {
	return sess.store
}

// Const returns a constant term in the session's store.
func (sess *Session) Const(v float64) Term {
	sess.store.checkGeneration(sess.gen)
	return Term{store: sess.store, gen: sess.gen, ref: sess.store.Constant(v)}
}

// Active reports whether the session still holds its store.
func (sess *Session) Active() bool {
	return sess.store.session == sess
}

// Close releases the store. It is idempotent and only releases the claim if
// this session still holds it, so a stale Close never clobbers a newer session.
//
// Nodes stay addressable after Close: terms and recorded functions remain
// usable until the next Record on the same store.
func (sess *Session) Close() {
	s := sess.store
	if s.session != sess {
		return
	}
	s.session = nil
	observability.LogSessionClose(s.logger, s.id.String(), s.generation, len(s.nodes))
}

func (s *Store) checkGeneration(gen uint64) {
	if gen != s.generation {
		panic(malformed(NoRef, "stale handle from generation %d used with store generation %d", gen, s.generation))
	}
}
