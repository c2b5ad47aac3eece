package bot

import "sync"

// yesNoState is the state of the yes/no draw flow within a session.
type yesNoState int

const (
	stateIdle yesNoState = iota
	stateWaitingQuestion
	stateWaitingReveal
)

// Session is the transient per-conversation state. It does not survive a
// restart and never outlives the in-flight question or edit prompt.
type Session struct {
	// Yes/no draw flow
	State    yesNoState
	Question string
	CardID   int
	Day      string // YYYY-MM-DD the card was selected for

	// Personal area: profile field awaiting text input ("name" or "age")
	AwaitingField string

	// Last personal area panel message, for in-place refreshes
	PanelChatID    int64
	PanelMessageID int
}

type sessionKey struct {
	ChatID int64
	UserID int64
}

// Sessions is a mutex-guarded session store keyed by (chat id, user id).
// The hosting bot runtime serializes interactions per chat, so the lock only
// protects the map itself.
type Sessions struct {
	mu sync.RWMutex
	m  map[sessionKey]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[sessionKey]*Session)}
}

// Get returns the session for the conversation, if any.
func (s *Sessions) Get(chatID, userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.m[sessionKey{ChatID: chatID, UserID: userID}]
	return session, ok
}

// GetOrCreate returns the session for the conversation, creating it on first
// interaction.
func (s *Sessions) GetOrCreate(chatID, userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{ChatID: chatID, UserID: userID}
	session, ok := s.m[key]
	if !ok {
		session = &Session{}
		s.m[key] = session
	}
	return session
}

// Clear drops the session for the conversation.
func (s *Sessions) Clear(chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionKey{ChatID: chatID, UserID: userID})
}
