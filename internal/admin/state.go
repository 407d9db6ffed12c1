package admin

import "sync"

// State is the position of one administrator in the broadcast-composition
// dialog.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingText State = "awaiting_text"
	StateConfirming   State = "confirming"
	// StateSending is transient: it is entered when a broadcast is handed
	// to the runner and immediately collapses back to idle.
	StateSending State = "sending"
)

// Audience selects the recipients of a broadcast.
type Audience string

const (
	AudienceAdmins   Audience = "admins"
	AudienceAllUsers Audience = "all_users"
)

// Context is the per-administrator dialog state. One exists per
// administrator at most; a second concurrent composition overwrites the
// first (last command wins).
type Context struct {
	State    State
	Text     string
	Audience Audience
}

// stateStore maps administrator ids to their dialog contexts. The Manager
// owns exactly one instance; get returns copies so callers never hold the
// map's pointers.
type stateStore struct {
	mu       sync.RWMutex
	contexts map[int64]*Context
}

func newStateStore() *stateStore {
	return &stateStore{contexts: make(map[int64]*Context)}
}

// get returns a copy of the administrator's context; idle when absent.
func (s *stateStore) get(adminID int64) Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ctx, ok := s.contexts[adminID]; ok {
		return *ctx
	}
	return Context{State: StateIdle}
}

// set replaces the administrator's context.
func (s *stateStore) set(adminID int64, ctx Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[adminID] = &ctx
}

// saveText stores the composed text and advances to confirming, keeping
// the previously chosen audience.
func (s *stateStore) saveText(adminID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[adminID]
	if !ok {
		ctx = &Context{}
		s.contexts[adminID] = ctx
	}
	ctx.Text = text
	ctx.State = StateConfirming
}

// reset drops the administrator's context entirely.
func (s *stateStore) reset(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, adminID)
}
