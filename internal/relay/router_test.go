package relay_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/relay"
)

func textMessage(sender, room, content string) models.Message {
	return models.Message{
		SenderID: sender,
		RoomID:   room,
		Content:  content,
		Kind:     models.KindText,
		SentAt:   time.Now(),
	}
}

func TestRouter_BroadcastSkipsSender(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	subA := newMockSubscriber("user_A")
	subB := newMockSubscriber("user_B")
	subC := newMockSubscriber("user_C")
	reg.Join("lobby", subA)
	reg.Join("lobby", subB)
	reg.Join("lobby", subC)

	router.Broadcast(textMessage("user_A", "lobby", "hi"))

	for _, sub := range []*mockSubscriber{subB, subC} {
		got := sub.received()
		assert.Len(t, got, 1)
		assert.Equal(t, "hi", got[0].Content)
		assert.Equal(t, "user_A", got[0].SenderID)
	}
	assert.Empty(t, subA.received(), "sender must not receive its own message")
}

func TestRouter_BroadcastStaysInRoom(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	subB := newMockSubscriber("user_B")
	subD := newMockSubscriber("user_D")
	reg.Join("lobby", subB)
	reg.Join("den", subD)

	router.Broadcast(textMessage("user_A", "lobby", "hi"))

	assert.Len(t, subB.received(), 1)
	assert.Empty(t, subD.received(), "subscribers of other rooms must not receive the message")
}

func TestRouter_LeaveStopsDelivery(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	subA := newMockSubscriber("user_A")
	subB := newMockSubscriber("user_B")
	subC := newMockSubscriber("user_C")
	reg.Join("lobby", subA)
	reg.Join("lobby", subB)
	reg.Join("lobby", subC)

	reg.Leave("lobby", subB)
	router.Broadcast(textMessage("user_A", "lobby", "bye"))

	assert.Empty(t, subB.received())
	got := subC.received()
	assert.Len(t, got, 1)
	assert.Equal(t, "bye", got[0].Content)
}

func TestRouter_PerSenderOrderPreserved(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	subB := newMockSubscriberBuffered("user_B", 20)
	reg.Join("lobby", subB)

	for i := 0; i < 10; i++ {
		router.Broadcast(textMessage("user_A", "lobby", fmt.Sprintf("msg_%d", i)))
	}

	got := subB.received()
	assert.Len(t, got, 10)
	for i, msg := range got {
		assert.Equal(t, fmt.Sprintf("msg_%d", i), msg.Content)
	}
}

func TestRouter_FullSinkDoesNotBlockOthers(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	slow := newMockSubscriberBuffered("user_B", 1)
	fast := newMockSubscriber("user_C")
	reg.Join("lobby", slow)
	reg.Join("lobby", fast)

	router.Broadcast(textMessage("user_A", "lobby", "first"))
	router.Broadcast(textMessage("user_A", "lobby", "second"))

	assert.Len(t, slow.received(), 1, "overflow is dropped for the slow subscriber only")
	assert.Len(t, fast.received(), 2)
}

func TestRouter_ClosedSinkIsSkipped(t *testing.T) {
	reg := relay.NewRegistry()
	router := relay.NewRouter(reg, nil, nil)

	dead := newMockSubscriber("user_B")
	alive := newMockSubscriber("user_C")
	reg.Join("lobby", dead)
	reg.Join("lobby", alive)

	dead.Close()
	router.Broadcast(textMessage("user_A", "lobby", "hi"))

	assert.Empty(t, dead.received())
	assert.Len(t, alive.received(), 1)
}

func TestRouter_RecordsBeforeDelivery(t *testing.T) {
	reg := relay.NewRegistry()
	recorder := new(MockRecorder)
	router := relay.NewRouter(reg, recorder, nil)

	subB := newMockSubscriber("user_B")
	reg.Join("lobby", subB)

	recorder.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	router.Broadcast(textMessage("user_A", "lobby", "hi"))

	recorder.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))
	assert.Len(t, subB.received(), 1)
}

func TestRouter_PublisherTakesOverDelivery(t *testing.T) {
	reg := relay.NewRegistry()
	publisher := new(MockPublisher)
	router := relay.NewRouter(reg, nil, publisher)

	subB := newMockSubscriber("user_B")
	reg.Join("lobby", subB)

	publisher.On("PublishMessage", "lobby", mock.AnythingOfType("models.Message")).Return(nil)

	msg := textMessage("user_A", "lobby", "hi")
	router.Broadcast(msg)

	publisher.AssertCalled(t, "PublishMessage", "lobby", mock.AnythingOfType("models.Message"))
	assert.Empty(t, subB.received(), "with a broker configured, local delivery happens in the bridge")

	// The bridge hands the broker's copy back for local delivery.
	router.Deliver(msg)
	assert.Len(t, subB.received(), 1)
}

func TestRouter_PublishFailureFallsBackToLocal(t *testing.T) {
	reg := relay.NewRegistry()
	publisher := new(MockPublisher)
	router := relay.NewRouter(reg, nil, publisher)

	subB := newMockSubscriber("user_B")
	reg.Join("lobby", subB)

	publisher.On("PublishMessage", "lobby", mock.AnythingOfType("models.Message")).
		Return(assert.AnError)

	router.Broadcast(textMessage("user_A", "lobby", "hi"))

	assert.Len(t, subB.received(), 1, "local subscribers still get the message when the broker is down")
}
