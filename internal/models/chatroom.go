package models

import "time"

// ChatRoom represents a 1-on-1 chat session between two users.
// It holds the participants and the in-memory message history; the history
// lives only as long as the room and exists to be replayed to a participant
// who reconnects within the grace window.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string
	// User1ID is the anonymous ID of the first user in the room.
	User1ID string
	// User2ID is the anonymous ID of the second user in the room.
	User2ID string
	// Messages is the ordered history of the conversation.
	Messages []Message
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time
	// EndedAt is the timestamp when the chat room was closed.
	EndedAt time.Time
}

// Has reports whether userID is one of the room's two participants.
func (r *ChatRoom) Has(userID string) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// PartnerOf returns the other participant's ID, or "" if userID is not
// in the room.
func (r *ChatRoom) PartnerOf(userID string) string {
	switch userID {
	case r.User1ID:
		return r.User2ID
	case r.User2ID:
		return r.User1ID
	}
	return ""
}

// Append records a message in the room's history.
func (r *ChatRoom) Append(msg Message) {
	r.Messages = append(r.Messages, msg)
}

// History returns a copy of the room's message history, safe to hand to a
// write pump after the room itself is gone.
func (r *ChatRoom) History() []Message {
	out := make([]Message, len(r.Messages))
	copy(out, r.Messages)
	return out
}
