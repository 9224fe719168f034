package relay_test

import (
	"github.com/stretchr/testify/mock"

	"chatrelay/backend/internal/models"
)

// mockSubscriber is a relay.Subscriber backed by a buffered receive
// channel, so tests can inspect exactly what reached its sink.
type mockSubscriber struct {
	userID string
	roomID string
	closed bool

	// Recv is the subscriber's sink, readable by the test.
	Recv chan models.Message
}

func newMockSubscriber(userID string) *mockSubscriber {
	return newMockSubscriberBuffered(userID, 10)
}

// newMockSubscriberBuffered controls the sink capacity, for tests that
// need a sink to fill up.
func newMockSubscriberBuffered(userID string, size int) *mockSubscriber {
	return &mockSubscriber{
		userID: userID,
		Recv:   make(chan models.Message, size),
	}
}

func (c *mockSubscriber) GetUserID() string { return c.userID }

func (c *mockSubscriber) GetRoomID() string { return c.roomID }

func (c *mockSubscriber) SetRoomID(roomID string) { c.roomID = roomID }

func (c *mockSubscriber) TrySend(msg models.Message) bool {
	if c.closed {
		return false
	}
	select {
	case c.Recv <- msg:
		return true
	default:
		return false
	}
}

func (c *mockSubscriber) Run() {
	// Not needed for testing
}

func (c *mockSubscriber) Close() {
	c.closed = true
}

// received drains everything currently in the sink.
func (c *mockSubscriber) received() []models.Message {
	var out []models.Message
	for {
		select {
		case msg := <-c.Recv:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// MockRecorder is a testify mock of the relay.Recorder interface.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

// MockPublisher is a testify mock of the relay.Publisher interface.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMessage(roomID string, msg models.Message) error {
	args := m.Called(roomID, msg)
	return args.Error(0)
}

// MockPresence is a testify mock of the relay.Presence interface.
type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) AddRoomMember(roomID, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *MockPresence) RemoveRoomMember(roomID, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}
