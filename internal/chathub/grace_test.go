package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarythief/backend/internal/models"
)

func TestDisconnect_WhileWaitingClearsSlot(t *testing.T) {
	hub, sched := startHub(t)
	c := newMockClient()

	register(hub, c, "u1")
	emit(hub, c, models.EventFindPartner)
	time.Sleep(settle)
	require.Equal(t, "u1", hub.Store.WaitingID())

	hub.UnregisterCh <- c
	time.Sleep(settle)

	assert.Empty(t, hub.Store.WaitingID())
	assert.Zero(t, sched.pending(), "no grace timer without a room")
	assert.Nil(t, hub.Store.ClientFor("u1"))
}

func TestDisconnect_WithRoomStartsGraceWindow(t *testing.T) {
	hub, sched := startHub(t)
	c1 := newMockClient()
	c2 := newMockClient()
	pair(t, hub, c1, c2, "u1", "u2")

	hub.UnregisterCh <- c1
	time.Sleep(settle)

	assert.Equal(t, 1, sched.pending(), "a grace timer must be scheduled")
	assert.NotNil(t, hub.Store.RoomFor("u1"), "the room survives the disconnect")
	assert.NotNil(t, hub.Store.GraceFor("u1"))
	assert.Empty(t, c2.drain(), "the partner is not told about a graced disconnect")
}

func TestDisconnect_StaleConnectionDoesNotStartGrace(t *testing.T) {
	hub, sched := startHub(t)
	stale := newMockClient()
	fresh := newMockClient()
	partner := newMockClient()
	pair(t, hub, stale, partner, "u1", "u2")

	register(hub, fresh, "u1")
	time.Sleep(settle)
	fresh.drain()

	// The transport reports the old connection after it was superseded.
	hub.UnregisterCh <- stale
	time.Sleep(settle)

	assert.Zero(t, sched.pending())
	assert.Same(t, fresh, hub.Store.ClientFor("u1").(*mockClient))
	assert.NotNil(t, hub.Store.RoomFor("u1"))
}

func TestReconnect_WithinGraceRestoresRoomAndHistory(t *testing.T) {
	hub, sched := startHub(t)
	c1 := newMockClient()
	c2 := newMockClient()
	pair(t, hub, c1, c2, "u1", "u2")

	sendText(hub, c1, "hello")
	c2.receive(recvTimeout)

	hub.UnregisterCh <- c1
	time.Sleep(settle)
	require.Equal(t, 1, sched.pending())

	reconnected := newMockClient()
	register(hub, reconnected, "u1")

	ev, ok := reconnected.receive(recvTimeout)
	require.True(t, ok, "reconnecting within the window replays the room")
	assert.Equal(t, models.EventReconnectSuccess, ev.Kind)
	assert.Equal(t, []models.Message{{SenderID: "u1", Text: "hello"}}, ev.History)

	time.Sleep(settle)
	assert.Nil(t, hub.Store.GraceFor("u1"), "the timer is gone after reconnect")
	assert.NotNil(t, hub.Store.RoomFor("u2"), "the room stays intact for the partner")
	assert.Empty(t, c2.drain(), "the partner sees nothing during a graced reconnect")

	// A canceled timer never fires.
	sched.fireLive(0)
	time.Sleep(settle)
	assert.Equal(t, 1, hub.Store.RoomCount())
}

func TestGraceExpiry_TearsDownRoom(t *testing.T) {
	hub, sched := startHub(t)
	c1 := newMockClient()
	c2 := newMockClient()
	pair(t, hub, c1, c2, "u1", "u2")

	hub.UnregisterCh <- c1
	time.Sleep(settle)
	require.Equal(t, 1, sched.pending())

	sched.fire(0)
	time.Sleep(settle)

	events := c2.drain()
	require.Len(t, events, 1, "the remaining participant gets exactly one notification")
	assert.Equal(t, models.EventPartnerLeft, events[0].Kind)

	assert.Nil(t, hub.Store.RoomFor("u1"))
	assert.Nil(t, hub.Store.RoomFor("u2"))
	assert.Zero(t, hub.Store.RoomCount())
	assert.Nil(t, hub.Store.GraceFor("u1"))
}

func TestGraceExpiry_AfterReconnectIsIgnored(t *testing.T) {
	hub, sched := startHub(t)
	c1 := newMockClient()
	c2 := newMockClient()
	pair(t, hub, c1, c2, "u1", "u2")

	hub.UnregisterCh <- c1
	time.Sleep(settle)

	reconnected := newMockClient()
	register(hub, reconnected, "u1")
	time.Sleep(settle)
	reconnected.drain()

	// Simulate a timer that was already in flight when the reconnect
	// canceled it: the expiry still reaches the loop, but the timer on
	// record no longer matches, so nothing happens.
	sched.fire(0)
	time.Sleep(settle)

	assert.Equal(t, 1, hub.Store.RoomCount(), "reconnect wins over a late expiry")
	assert.Empty(t, c2.drain())
}

func TestGraceExpiry_AfterLeaveIsIgnored(t *testing.T) {
	hub, sched := startHub(t)
	c1 := newMockClient()
	c2 := newMockClient()
	pair(t, hub, c1, c2, "u1", "u2")

	hub.UnregisterCh <- c1
	time.Sleep(settle)

	emit(hub, c2, models.EventLeaveChat)
	time.Sleep(settle)
	c2.drain()

	sched.fire(0)
	time.Sleep(settle)

	assert.Zero(t, hub.Store.RoomCount())
	assert.Empty(t, c2.drain(), "no second partner_left after the room is gone")
}

// TestScenario_FullLifecycle walks the end-to-end flow: pair, chat, drop,
// resume within the window, then an explicit leave, after which the user
// starts a fresh wait.
func TestScenario_FullLifecycle(t *testing.T) {
	hub, _ := startHub(t)
	a := newMockClient()
	b := newMockClient()
	pair(t, hub, a, b, "u1", "u2")

	sendText(hub, a, "hello")
	ev, ok := b.receive(recvTimeout)
	require.True(t, ok)
	require.Equal(t, models.EventReceiveMessage, ev.Kind)
	assert.Equal(t, &models.Message{SenderID: "u1", Text: "hello"}, ev.Message)

	room := hub.Store.RoomFor("u1")
	require.NotNil(t, room)
	assert.Equal(t, []models.Message{{SenderID: "u1", Text: "hello"}}, room.Messages)

	// A's connection drops and comes back within the window.
	hub.UnregisterCh <- a
	time.Sleep(settle)

	a2 := newMockClient()
	register(hub, a2, "u1")
	ev, ok = a2.receive(recvTimeout)
	require.True(t, ok)
	assert.Equal(t, models.EventReconnectSuccess, ev.Kind)
	assert.Equal(t, []models.Message{{SenderID: "u1", Text: "hello"}}, ev.History)
	assert.Empty(t, b.drain(), "B sees nothing during the resume")

	// B walks away for good.
	emit(hub, b, models.EventLeaveChat)
	ev, ok = a2.receive(recvTimeout)
	require.True(t, ok)
	assert.Equal(t, models.EventPartnerLeft, ev.Kind)
	time.Sleep(settle)
	assert.Zero(t, hub.Store.RoomCount())

	// A starts over.
	emit(hub, a2, models.EventFindPartner)
	time.Sleep(settle)
	assert.Equal(t, "u1", hub.Store.WaitingID())
}
