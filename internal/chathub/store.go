package chathub

import (
	"time"

	"github.com/google/uuid"

	"salarythief/backend/internal/models"
)

// SessionStore owns all live session state: the identity registry, the
// waiting slot, the room table with its user index, and the pending grace
// timers. It is not safe for concurrent use; every mutation happens on the
// hub's event loop, which is the single writer.
type SessionStore struct {
	// clients binds a logical user id to its currently active connection.
	// A later registration for the same id supersedes the previous binding.
	clients map[string]Client

	// waitingID is the single waiting-slot occupant, "" when empty.
	waitingID string

	// rooms and userRoom are kept as mutual inverses: every live room has
	// both of its participants in userRoom, and nothing else is in userRoom.
	rooms    map[string]*models.ChatRoom
	userRoom map[string]string

	// grace holds the pending teardown timer for each user whose connection
	// dropped while they still owned a room.
	grace map[string]*graceTimer
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		clients:  make(map[string]Client),
		rooms:    make(map[string]*models.ChatRoom),
		userRoom: make(map[string]string),
		grace:    make(map[string]*graceTimer),
	}
}

// ClientFor returns the connection currently bound to userID, or nil.
func (s *SessionStore) ClientFor(userID string) Client {
	return s.clients[userID]
}

// Bind associates userID with c and returns the superseded connection,
// if any.
func (s *SessionStore) Bind(userID string, c Client) Client {
	prev := s.clients[userID]
	s.clients[userID] = c
	if prev == c {
		return nil
	}
	return prev
}

// Unbind removes the identity binding for userID, but only if it still
// points at c. Reports whether the binding was removed.
func (s *SessionStore) Unbind(userID string, c Client) bool {
	if s.clients[userID] != c {
		return false
	}
	delete(s.clients, userID)
	return true
}

// WaitingID returns the current waiting-slot occupant, "" when empty.
func (s *SessionStore) WaitingID() string {
	return s.waitingID
}

// SetWaiting places userID in the waiting slot, replacing any occupant.
func (s *SessionStore) SetWaiting(userID string) {
	s.waitingID = userID
}

// ClearWaiting empties the slot if userID is its occupant.
func (s *SessionStore) ClearWaiting(userID string) {
	if s.waitingID == userID {
		s.waitingID = ""
	}
}

// CreateRoom pairs two distinct users into a fresh room and indexes both
// participants. The caller guarantees user1 != user2 and that neither is
// already in a room.
func (s *SessionStore) CreateRoom(user1ID, user2ID string) *models.ChatRoom {
	room := &models.ChatRoom{
		RoomID:    uuid.New().String(),
		User1ID:   user1ID,
		User2ID:   user2ID,
		StartedAt: time.Now(),
	}
	s.rooms[room.RoomID] = room
	s.userRoom[user1ID] = room.RoomID
	s.userRoom[user2ID] = room.RoomID
	return room
}

// RoomFor resolves userID's live room via the index, or nil.
func (s *SessionStore) RoomFor(userID string) *models.ChatRoom {
	roomID, ok := s.userRoom[userID]
	if !ok {
		return nil
	}
	return s.rooms[roomID]
}

// DeleteRoom removes the room and both of its index entries.
func (s *SessionStore) DeleteRoom(room *models.ChatRoom) {
	delete(s.rooms, room.RoomID)
	delete(s.userRoom, room.User1ID)
	delete(s.userRoom, room.User2ID)
}

// RoomCount returns the number of live rooms.
func (s *SessionStore) RoomCount() int {
	return len(s.rooms)
}

// GraceFor returns the pending grace timer for userID, or nil.
func (s *SessionStore) GraceFor(userID string) *graceTimer {
	return s.grace[userID]
}

// PutGrace records a pending grace timer for userID.
func (s *SessionStore) PutGrace(t *graceTimer) {
	s.grace[t.userID] = t
}

// TakeGrace removes and returns the pending grace timer for userID, or nil.
func (s *SessionStore) TakeGrace(userID string) *graceTimer {
	t := s.grace[userID]
	if t != nil {
		delete(s.grace, userID)
	}
	return t
}
