package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"log/slog"
)

var ErrClientDisconnected = fmt.Errorf("client disconnected")

// Authorizer answers the membership questions the hub asks before a
// subscribe is honored. The services layer implements it against the
// database; tests swap in a stub.
type Authorizer interface {
	// AssignmentCourse resolves an assignment to its course. Returns
	// false when the assignment does not exist.
	AssignmentCourse(ctx context.Context, assignmentID uint) (uint, bool)

	// IsCourseMember reports whether the user belongs to the course,
	// either as a member or as its creator.
	IsCourseMember(ctx context.Context, courseID, userID uint) bool
}

// Hub tracks every live connection and fans events out to them. Both
// maps are guarded by a single mutex; delivery happens outside the lock
// on snapshots so a slow peer can never stall the registry.
type Hub struct {
	mu     sync.Mutex
	users  map[uint]map[*Client]struct{}
	topics map[Topic]map[*Client]struct{}

	auth   Authorizer
	logger *slog.Logger
}

func NewHub(auth Authorizer, logger *slog.Logger) *Hub {
	return &Hub{
		users:  make(map[uint]map[*Client]struct{}),
		topics: make(map[Topic]map[*Client]struct{}),
		auth:   auth,
		logger: logger,
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[client.userID] == nil {
		h.users[client.userID] = make(map[*Client]struct{})
	}
	h.users[client.userID][client] = struct{}{}

	h.logger.Info("client connected", "userID", client.userID)
}

// unregister removes the client from the user set and from every topic it
// joined, dropping map keys that become empty.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.users[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.users, client.userID)
		}
	}

	for topic := range client.topics {
		h.dropFromTopicLocked(topic, client)
	}
	client.topics = make(map[Topic]struct{})

	h.logger.Info("client disconnected", "userID", client.userID)
}

func (h *Hub) dropFromTopicLocked(topic Topic, client *Client) {
	if set, ok := h.topics[topic]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
}

// subscribe adds the client to a topic. Idempotent.
func (h *Hub) subscribe(client *Client, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][client] = struct{}{}
	client.topics[topic] = struct{}{}
}

// unsubscribe removes the client from a topic. A no-op for topics the
// client never joined.
func (h *Hub) unsubscribe(client *Client, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromTopicLocked(topic, client)
	delete(client.topics, topic)
}

// BroadcastToTopic pushes one event to every subscriber of the topic.
// The payload is marshaled once; clients whose buffers are full are
// pruned from the topic after the delivery pass.
func (h *Hub) BroadcastToTopic(topic Topic, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	subscribers := make([]*Client, 0, len(h.topics[topic]))
	for client := range h.topics[topic] {
		subscribers = append(subscribers, client)
	}
	h.mu.Unlock()

	var dead []*Client
	for _, client := range subscribers {
		if err := client.enqueue(payload); err != nil {
			dead = append(dead, client)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, client := range dead {
			h.dropFromTopicLocked(topic, client)
			delete(client.topics, topic)
		}
		h.mu.Unlock()
	}
}

// SendToUser pushes one event to every connection the user holds,
// regardless of topic subscriptions.
func (h *Hub) SendToUser(userID uint, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*Client, 0, len(h.users[userID]))
	for client := range h.users[userID] {
		conns = append(conns, client)
	}
	h.mu.Unlock()

	var dead []*Client
	for _, client := range conns {
		if err := client.enqueue(payload); err != nil {
			dead = append(dead, client)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		if set, ok := h.users[userID]; ok {
			for _, client := range dead {
				delete(set, client)
			}
			if len(set) == 0 {
				delete(h.users, userID)
			}
		}
		h.mu.Unlock()
	}
}

// TopicSubscribers reports how many connections are subscribed to a topic.
func (h *Hub) TopicSubscribers(topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// UserConnections reports how many open connections a user holds.
func (h *Hub) UserConnections(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[userID])
}

// Shutdown closes every registered connection. Used during graceful
// server stop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := make([]*Client, 0)
	for _, set := range h.users {
		for client := range set {
			all = append(all, client)
		}
	}
	h.mu.Unlock()

	for _, client := range all {
		client.close()
	}
}
