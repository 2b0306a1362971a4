package chathub

import (
	"log"
	"time"

	"salarythief/backend/internal/models"
)

// HubService is the session dispatcher. It reads inbound events and
// disconnect notifications from its channels and applies them to the
// SessionStore on a single goroutine, so every state mutation — identity
// binding, pairing, messaging, teardown — is serialized. Outbound delivery
// is a non-blocking push to the target client's send channel and never
// holds up the loop.
type HubService struct {
	Store *SessionStore

	// EventCh carries decoded client events from the transport pumps.
	EventCh chan InboundEvent
	// UnregisterCh carries connections whose read pump has terminated.
	UnregisterCh chan Client

	graceCh     chan *graceTimer
	graceWindow time.Duration
	scheduler   Scheduler

	quit chan struct{}
}

// NewHubService creates a hub with the given reconnection grace window.
func NewHubService(graceWindow time.Duration, scheduler Scheduler) *HubService {
	return &HubService{
		Store:        NewSessionStore(),
		EventCh:      make(chan InboundEvent),
		UnregisterCh: make(chan Client),
		graceCh:      make(chan *graceTimer),
		graceWindow:  graceWindow,
		scheduler:    scheduler,
		quit:         make(chan struct{}),
	}
}

// Run is the hub's event loop. It owns all session state; run it on exactly
// one goroutine.
func (h *HubService) Run() {
	log.Println("Hub Service started.")

	for {
		select {
		case ev := <-h.EventCh:
			h.dispatch(ev.Client, ev.Event)
		case c := <-h.UnregisterCh:
			h.handleDisconnect(c)
		case t := <-h.graceCh:
			h.handleGraceExpiry(t)
		case <-h.quit:
			return
		}
	}
}

// Stop terminates the event loop. Pending grace timers may still fire their
// callbacks, but nothing will consume them.
func (h *HubService) Stop() {
	close(h.quit)
}

func (h *HubService) dispatch(c Client, ev models.ClientEvent) {
	switch ev.Kind {
	case models.EventRegister:
		h.handleRegister(c, ev.UserID)
	case models.EventFindPartner:
		h.handleFindPartner(c)
	case models.EventSendMessage:
		h.handleSendMessage(c, ev.Text)
	case models.EventTyping:
		h.forwardToPartner(c, models.EventPartnerTyping)
	case models.EventStopTyping:
		h.forwardToPartner(c, models.EventPartnerStopTyping)
	case models.EventLeaveChat:
		h.handleLeave(c)
	default:
		log.Printf("Dropping unknown event %q from client", ev.Kind)
	}
}

// handleRegister binds userID to c, superseding any previous connection for
// that identity. If the user still owns a room, the pending grace timer is
// canceled first and the room's history is replayed on the new connection.
func (h *HubService) handleRegister(c Client, userID string) {
	if userID == "" {
		log.Println("Ignoring register event with empty user id")
		return
	}

	// A connection that re-registers under a new identity abandons its old
	// binding; the old identity simply stops being addressable.
	if old := c.GetUserID(); old != "" && old != userID {
		h.Store.Unbind(old, c)
		h.Store.ClearWaiting(old)
	}

	c.SetUserID(userID)
	if prev := h.Store.Bind(userID, c); prev != nil {
		// The stale connection keeps running until the transport notices it
		// is gone; it just no longer owns the identity.
		log.Printf("User %s re-registered, superseding previous connection", userID)
	}

	if t := h.Store.TakeGrace(userID); t != nil {
		t.cancel()
		log.Printf("User %s reconnected within grace window", userID)
	}

	if room := h.Store.RoomFor(userID); room != nil {
		h.push(c, models.ServerEvent{
			Kind:    models.EventReconnectSuccess,
			History: room.History(),
		})
	}
}

// handleFindPartner implements the single waiting slot: the first seeker
// occupies it, the next distinct seeker completes the pair. A repeat call
// from the occupant just re-occupies the slot instead of pairing the user
// with themselves.
func (h *HubService) handleFindPartner(c Client) {
	userID := c.GetUserID()
	if userID == "" {
		return
	}
	if h.Store.RoomFor(userID) != nil {
		// Already paired; a waiting slot entry would violate the
		// one-session-per-user rule.
		return
	}

	waiting := h.Store.WaitingID()
	if waiting == "" || waiting == userID {
		h.Store.SetWaiting(userID)
		log.Printf("User %s is waiting for a partner", userID)
		return
	}

	h.Store.SetWaiting("")
	room := h.Store.CreateRoom(waiting, userID)
	log.Printf("Match found: %s and %s in room %s", waiting, userID, room.RoomID)

	start := models.ServerEvent{Kind: models.EventChatStart}
	h.pushToUser(room.User1ID, start)
	h.pushToUser(room.User2ID, start)
}

// handleSendMessage appends the message to the room history and forwards it
// to the other participant only; the sender renders its own copy locally.
func (h *HubService) handleSendMessage(c Client, text string) {
	userID := c.GetUserID()
	if userID == "" {
		return
	}
	room := h.Store.RoomFor(userID)
	if room == nil {
		// Kept silent on the wire; the client is expected not to send
		// before chat_start.
		log.Printf("Dropping message from %s: no active room", userID)
		return
	}

	msg := models.Message{SenderID: userID, Text: text}
	room.Append(msg)
	h.pushToUser(room.PartnerOf(userID), models.ServerEvent{
		Kind:    models.EventReceiveMessage,
		Message: &msg,
	})
}

// forwardToPartner relays a transient signal (typing state) to the other
// participant without recording it.
func (h *HubService) forwardToPartner(c Client, kind models.ServerEventKind) {
	userID := c.GetUserID()
	if userID == "" {
		return
	}
	room := h.Store.RoomFor(userID)
	if room == nil {
		return
	}
	h.pushToUser(room.PartnerOf(userID), models.ServerEvent{Kind: kind})
}

// handleLeave dissolves the user's room immediately. Calling it without a
// room is a no-op.
func (h *HubService) handleLeave(c Client) {
	userID := c.GetUserID()
	if userID == "" {
		return
	}
	room := h.Store.RoomFor(userID)
	if room == nil {
		return
	}
	log.Printf("User %s left room %s", userID, room.RoomID)
	h.teardownRoom(room)
}

// handleDisconnect processes a terminated connection. A user who was only
// waiting is removed from the slot; a user who owns a room enters the grace
// window instead of losing the room outright.
func (h *HubService) handleDisconnect(c Client) {
	c.Close()

	userID := c.GetUserID()
	if userID == "" {
		return
	}
	if !h.Store.Unbind(userID, c) {
		// A newer connection already owns this identity.
		return
	}

	h.Store.ClearWaiting(userID)

	if h.Store.RoomFor(userID) == nil {
		return
	}

	t := &graceTimer{userID: userID}
	t.cancel = h.scheduler.Schedule(h.graceWindow, func() {
		select {
		case h.graceCh <- t:
		case <-h.quit:
		}
	})
	h.Store.PutGrace(t)
	log.Printf("User %s disconnected, grace window of %s started", userID, h.graceWindow)
}

// handleGraceExpiry tears down the room of a user whose grace window ran
// out. Only the timer currently on record counts: an expiry that raced a
// reconnect (which cancels and removes the timer) is discarded here, so a
// registration processed first always wins.
func (h *HubService) handleGraceExpiry(t *graceTimer) {
	if h.Store.GraceFor(t.userID) != t {
		return
	}
	h.Store.TakeGrace(t.userID)

	room := h.Store.RoomFor(t.userID)
	if room == nil {
		return
	}
	log.Printf("Grace window for %s expired, closing room %s", t.userID, room.RoomID)
	h.teardownRoom(room)
}

// teardownRoom is the single dissolution path used by explicit leave and by
// grace expiry: both participants' grace timers are canceled, both index
// entries and the room are removed, and partner_left goes to whoever is
// still connected.
func (h *HubService) teardownRoom(room *models.ChatRoom) {
	room.EndedAt = time.Now()
	for _, userID := range []string{room.User1ID, room.User2ID} {
		if t := h.Store.TakeGrace(userID); t != nil {
			t.cancel()
		}
	}
	h.Store.DeleteRoom(room)

	left := models.ServerEvent{Kind: models.EventPartnerLeft}
	h.pushToUser(room.User1ID, left)
	h.pushToUser(room.User2ID, left)
}

// pushToUser delivers an event to the connection currently bound to userID,
// if there is one.
func (h *HubService) pushToUser(userID string, ev models.ServerEvent) {
	c := h.Store.ClientFor(userID)
	if c == nil {
		return
	}
	h.push(c, ev)
}

// push hands an event to the client's write pump without blocking the event
// loop. A client whose buffer is full is closed; its read pump will report
// the disconnect through the usual path.
func (h *HubService) push(c Client, ev models.ServerEvent) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("Send buffer full for user %q, closing connection", c.GetUserID())
		c.Close()
	}
}
