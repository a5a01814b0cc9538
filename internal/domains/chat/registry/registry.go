package registry

//go:generate go run go.uber.org/mock/mockgen -source=./registry.go -destination=../mocks/registry_mock.go -package=mocks

import (
	"sync"
	"time"

	"tavolo/internal/domains/chat/model/dto"
)

// Session is one live websocket connection to a chat room. The same
// user may hold several sessions at once (one per device); each gets
// its own outbound queue.
type Session struct {
	ID        string
	BookingID string
	UserID    string
	Username  string
	Role      string
	JoinedAt  time.Time

	// Send is drained by the session's write pump. The coordinator
	// never blocks on it; a full queue disconnects the session.
	Send chan dto.Event
}

// Registry is the shared index of active chat sessions. All methods
// are safe for concurrent use.
type Registry interface {
	Add(session *Session)
	Remove(sessionID string) (*Session, bool)
	Get(sessionID string) (*Session, bool)
	ListByBooking(bookingID string) []*Session
	CountByBooking(bookingID string) int
}

type registryImpl struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	byBooking map[string]map[string]*Session
}

func New() Registry {
	return &registryImpl{
		sessions:  map[string]*Session{},
		byBooking: map[string]map[string]*Session{},
	}
}

func (r *registryImpl) Add(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session

	bookingSessions, found := r.byBooking[session.BookingID]
	if !found {
		bookingSessions = map[string]*Session{}
		r.byBooking[session.BookingID] = bookingSessions
	}

	bookingSessions[session.ID] = session
}

func (r *registryImpl) Remove(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, found := r.sessions[sessionID]
	if !found {
		return nil, false
	}

	delete(r.sessions, sessionID)

	bookingSessions := r.byBooking[session.BookingID]

	delete(bookingSessions, sessionID)

	if len(bookingSessions) == 0 {
		delete(r.byBooking, session.BookingID)
	}

	return session, true
}

func (r *registryImpl) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, found := r.sessions[sessionID]

	return session, found
}

func (r *registryImpl) ListByBooking(bookingID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookingSessions := r.byBooking[bookingID]

	sessions := make([]*Session, 0, len(bookingSessions))
	for _, session := range bookingSessions {
		sessions = append(sessions, session)
	}

	return sessions
}

func (r *registryImpl) CountByBooking(bookingID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byBooking[bookingID])
}
