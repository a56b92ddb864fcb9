package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizedFor(assignmentID, courseID, userID uint) *stubAuthorizer {
	return &stubAuthorizer{
		assignments: map[uint]uint{assignmentID: courseID},
		members:     map[[2]uint]bool{{courseID, userID}: true},
	}
}

func TestSubscribeAssignmentAuthorized(t *testing.T) {
	hub := newTestHub(authorizedFor(10, 100, 1))
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`{"action":"subscribe_assignment","id":10}`))

	assert.Equal(t, 1, hub.TopicSubscribers(AssignmentTopic(10)))
	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "subscribed", frames[0]["type"])
	assert.Equal(t, "assignment", frames[0]["target"])
	assert.Equal(t, float64(10), frames[0]["id"])
}

// A subscribe the client is not entitled to gets no reply of any kind and
// leaves the registry untouched, so a denied request is indistinguishable
// from one naming a resource that does not exist.
func TestSubscribeDeniedIsSilent(t *testing.T) {
	hub := newTestHub(authorizedFor(10, 100, 1))

	outsider := newTestClient(hub, 2)
	hub.register(outsider)

	outsider.handleIncoming([]byte(`{"action":"subscribe_assignment","id":10}`))
	outsider.handleIncoming([]byte(`{"action":"subscribe_assignment","id":999}`))
	outsider.handleIncoming([]byte(`{"action":"subscribe_course","id":100}`))

	assert.Equal(t, 0, hub.TopicSubscribers(AssignmentTopic(10)))
	assert.Equal(t, 0, hub.TopicSubscribers(AssignmentTopic(999)))
	assert.Equal(t, 0, hub.TopicSubscribers(CourseTopic(100)))
	assert.Empty(t, drain(t, outsider))
	assert.False(t, outsider.isClosed(), "denial must not close the connection")
}

func TestSubscribeCourseAuthorized(t *testing.T) {
	hub := newTestHub(authorizedFor(10, 100, 1))
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`{"action":"subscribe_course","id":100}`))

	assert.Equal(t, 1, hub.TopicSubscribers(CourseTopic(100)))
	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "subscribed", frames[0]["type"])
	assert.Equal(t, "course", frames[0]["target"])
}

func TestUnsubscribeAcksEvenWhenNotSubscribed(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`{"action":"unsubscribe_assignment","id":5}`))

	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "unsubscribed", frames[0]["type"])
	assert.Equal(t, "assignment", frames[0]["target"])
}

func TestSubscribeThenUnsubscribe(t *testing.T) {
	hub := newTestHub(authorizedFor(10, 100, 1))
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`{"action":"subscribe_assignment","id":10}`))
	c.handleIncoming([]byte(`{"action":"unsubscribe_assignment","id":10}`))

	assert.Equal(t, 0, hub.TopicSubscribers(AssignmentTopic(10)))

	hub.BroadcastToTopic(AssignmentTopic(10), EventChatMessage, nil)
	frames := drain(t, c)
	require.Len(t, frames, 2, "only the two acks, no event after unsubscribe")
	assert.Equal(t, "subscribed", frames[0]["type"])
	assert.Equal(t, "unsubscribed", frames[1]["type"])
}

func TestPingPong(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`{"action":"ping"}`))

	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "pong", frames[0]["type"])
}

func TestMalformedFramesIgnored(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub, 1)
	hub.register(c)

	c.handleIncoming([]byte(`not json`))
	c.handleIncoming([]byte(`{"action":"no_such_action","id":1}`))
	c.handleIncoming([]byte(`{}`))

	assert.Empty(t, drain(t, c))
	assert.False(t, c.isClosed())
	assert.Equal(t, 1, hub.UserConnections(1))
}

// Two connections of the same user subscribe independently; an event on
// the topic reaches each subscribed connection exactly once.
func TestPerConnectionSubscriptions(t *testing.T) {
	hub := newTestHub(authorizedFor(10, 100, 1))

	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 1)
	hub.register(c1)
	hub.register(c2)

	c1.handleIncoming([]byte(`{"action":"subscribe_assignment","id":10}`))
	drain(t, c1)

	hub.BroadcastToTopic(AssignmentTopic(10), EventSubmissionCreated, nil)

	require.Len(t, drain(t, c1), 1)
	assert.Empty(t, drain(t, c2), "subscriptions are per connection, not per user")
}
