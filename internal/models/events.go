package models

// ClientEventKind identifies an inbound event read from a client connection.
// The set is closed: the dispatcher switches exhaustively over these values
// and drops anything it does not recognize.
type ClientEventKind string

const (
	EventRegister    ClientEventKind = "register"
	EventFindPartner ClientEventKind = "find_partner"
	EventSendMessage ClientEventKind = "send_message"
	EventTyping      ClientEventKind = "typing"
	EventStopTyping  ClientEventKind = "stop_typing"
	EventLeaveChat   ClientEventKind = "leave_chat"
)

// Valid reports whether k is one of the known inbound event kinds.
func (k ClientEventKind) Valid() bool {
	switch k {
	case EventRegister, EventFindPartner, EventSendMessage,
		EventTyping, EventStopTyping, EventLeaveChat:
		return true
	}
	return false
}

// ClientEvent is the JSON envelope a client writes on its websocket.
// UserID is only meaningful for "register", Text only for "send_message".
type ClientEvent struct {
	Kind   ClientEventKind `json:"event"`
	UserID string          `json:"user_id,omitempty"`
	Text   string          `json:"text,omitempty"`
}

// ServerEventKind identifies an outbound event pushed to a client connection.
type ServerEventKind string

const (
	EventReconnectSuccess  ServerEventKind = "reconnect_success"
	EventChatStart         ServerEventKind = "chat_start"
	EventReceiveMessage    ServerEventKind = "receive_message"
	EventPartnerTyping     ServerEventKind = "partner_typing"
	EventPartnerStopTyping ServerEventKind = "partner_stop_typing"
	EventPartnerLeft       ServerEventKind = "partner_left"
)

// ServerEvent is the JSON envelope the hub pushes to a client.
// Message is set for "receive_message", History for "reconnect_success".
type ServerEvent struct {
	Kind    ServerEventKind `json:"event"`
	Message *Message        `json:"message,omitempty"`
	History []Message       `json:"history,omitempty"`
}

// Message is a single chat line as relayed between partners and replayed
// to a reconnecting participant.
type Message struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}
