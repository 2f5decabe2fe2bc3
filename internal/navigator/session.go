package navigator

// Session owns the caches that outlive a single navigation. One Session
// per logged-in server connection; independent sessions share nothing.
type Session struct {
	Kinds   *PathKindCache
	History *HistoryStore
}

// NewSession creates a session whose history keeps at most historySize
// folder views.
func NewSession(historySize int) *Session {
	return &Session{
		Kinds:   NewPathKindCache(),
		History: NewHistoryStore(historySize),
	}
}

// Reset invalidates both caches, e.g. after switching user.
func (s *Session) Reset() {
	s.Kinds.Reset()
	s.History.Purge()
}
