package websocket

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	assignments map[uint]uint          // assignmentID -> courseID
	members     map[[2]uint]bool       // {courseID, userID}
}

func (s *stubAuthorizer) AssignmentCourse(_ context.Context, assignmentID uint) (uint, bool) {
	courseID, ok := s.assignments[assignmentID]
	return courseID, ok
}

func (s *stubAuthorizer) IsCourseMember(_ context.Context, courseID, userID uint) bool {
	return s.members[[2]uint{courseID, userID}]
}

func newTestHub(auth *stubAuthorizer) *Hub {
	if auth == nil {
		auth = &stubAuthorizer{
			assignments: map[uint]uint{},
			members:     map[[2]uint]bool{},
		}
	}
	return NewHub(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(hub *Hub, userID uint) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:    hub,
		send:   make(chan []byte, 256),
		userID: userID,
		topics: make(map[Topic]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// drain empties the client send buffer and returns the decoded frames.
func drain(t *testing.T, c *Client) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for {
		select {
		case raw := <-c.send:
			var frame map[string]any
			require.NoError(t, json.Unmarshal(raw, &frame))
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := newTestHub(nil)

	c1 := newTestClient(hub, 7)
	c2 := newTestClient(hub, 7)
	hub.register(c1)
	hub.register(c2)
	assert.Equal(t, 2, hub.UserConnections(7))

	hub.unregister(c1)
	assert.Equal(t, 1, hub.UserConnections(7))

	hub.unregister(c2)
	assert.Equal(t, 0, hub.UserConnections(7))

	// The user key must be gone, not an empty set.
	hub.mu.Lock()
	_, present := hub.users[7]
	hub.mu.Unlock()
	assert.False(t, present)
}

func TestUnregisterDropsTopicMemberships(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	hub.subscribe(c, AssignmentTopic(10))
	hub.subscribe(c, CourseTopic(20))
	assert.Equal(t, 1, hub.TopicSubscribers(AssignmentTopic(10)))
	assert.Equal(t, 1, hub.TopicSubscribers(CourseTopic(20)))

	hub.unregister(c)
	assert.Equal(t, 0, hub.TopicSubscribers(AssignmentTopic(10)))
	assert.Equal(t, 0, hub.TopicSubscribers(CourseTopic(20)))

	hub.mu.Lock()
	_, present := hub.topics[AssignmentTopic(10)]
	hub.mu.Unlock()
	assert.False(t, present, "empty topic key should be pruned")
}

func TestSubscribeIdempotent(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	topic := AssignmentTopic(5)
	hub.subscribe(c, topic)
	hub.subscribe(c, topic)
	assert.Equal(t, 1, hub.TopicSubscribers(topic))
}

func TestUnsubscribeUnknownTopicIsNoop(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	hub.unsubscribe(c, CourseTopic(99))
	assert.Equal(t, 0, hub.TopicSubscribers(CourseTopic(99)))
}

func TestBroadcastToTopic(t *testing.T) {
	hub := newTestHub(nil)

	subscriber := newTestClient(hub, 1)
	alsoSubscribed := newTestClient(hub, 2)
	bystander := newTestClient(hub, 3)
	for _, c := range []*Client{subscriber, alsoSubscribed, bystander} {
		hub.register(c)
	}

	topic := AssignmentTopic(42)
	hub.subscribe(subscriber, topic)
	hub.subscribe(alsoSubscribed, topic)

	hub.BroadcastToTopic(topic, EventChatMessage, map[string]any{"id": 1})

	for _, c := range []*Client{subscriber, alsoSubscribed} {
		frames := drain(t, c)
		require.Len(t, frames, 1)
		assert.Equal(t, EventChatMessage, frames[0]["type"])
	}
	assert.Empty(t, drain(t, bystander))
}

func TestBroadcastSkipsOtherTopicsOfSameKind(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)
	hub.subscribe(c, AssignmentTopic(1))

	hub.BroadcastToTopic(AssignmentTopic(2), EventAssignmentUpdated, nil)
	assert.Empty(t, drain(t, c))
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	hub := newTestHub(nil)

	c1 := newTestClient(hub, 9)
	c2 := newTestClient(hub, 9)
	other := newTestClient(hub, 10)
	for _, c := range []*Client{c1, c2, other} {
		hub.register(c)
	}

	hub.SendToUser(9, EventSubmissionGradedOwn, map[string]any{"score": "5"})

	for _, c := range []*Client{c1, c2} {
		frames := drain(t, c)
		require.Len(t, frames, 1)
		assert.Equal(t, EventSubmissionGradedOwn, frames[0]["type"])
	}
	assert.Empty(t, drain(t, other))
}

func TestBroadcastPrunesDeadSubscribers(t *testing.T) {
	hub := newTestHub(nil)

	live := newTestClient(hub, 1)
	dead := newTestClient(hub, 2)
	hub.register(live)
	hub.register(dead)

	topic := CourseTopic(3)
	hub.subscribe(live, topic)
	hub.subscribe(dead, topic)
	dead.close()

	hub.BroadcastToTopic(topic, EventAssignmentCreated, nil)

	assert.Equal(t, 1, hub.TopicSubscribers(topic))
	assert.Len(t, drain(t, live), 1)
}

func TestSendToUserPrunesDeadConnection(t *testing.T) {
	hub := newTestHub(nil)

	c := newTestClient(hub, 4)
	hub.register(c)
	c.close()

	hub.SendToUser(4, EventSubmissionCreated, nil)

	assert.Equal(t, 0, hub.UserConnections(4))
	hub.mu.Lock()
	_, present := hub.users[4]
	hub.mu.Unlock()
	assert.False(t, present)
}

func TestEnqueueFullBufferDropsClient(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	c.send = make(chan []byte, 1)
	hub.register(c)

	require.NoError(t, c.enqueue([]byte("a")))
	assert.ErrorIs(t, c.enqueue([]byte("b")), ErrClientDisconnected)
	assert.True(t, c.isClosed())
}

func TestShutdownClosesAllClients(t *testing.T) {
	hub := newTestHub(nil)
	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 2)
	hub.register(c1)
	hub.register(c2)

	hub.Shutdown()

	assert.True(t, c1.isClosed())
	assert.True(t, c2.isClosed())
}

func TestConcurrentSubscribeBroadcast(t *testing.T) {
	hub := newTestHub(nil)
	topic := CourseTopic(1)

	clients := make([]*Client, 20)
	for i := range clients {
		clients[i] = newTestClient(hub, uint(i+1))
		hub.register(clients[i])
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			hub.subscribe(c, topic)
			hub.unsubscribe(c, topic)
			hub.subscribe(c, topic)
		}(c)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BroadcastToTopic(topic, EventChatMessage, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, len(clients), hub.TopicSubscribers(topic))
}
