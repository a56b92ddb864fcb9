package websocket

import "encoding/json"

// TopicKind distinguishes the two subscription scopes a client can hold.
type TopicKind string

const (
	TopicAssignment TopicKind = "assignment"
	TopicCourse     TopicKind = "course"
)

// Topic identifies a broadcast scope. Comparable, so it can key a map.
type Topic struct {
	Kind TopicKind
	ID   uint
}

func AssignmentTopic(assignmentID uint) Topic {
	return Topic{Kind: TopicAssignment, ID: assignmentID}
}

func CourseTopic(courseID uint) Topic {
	return Topic{Kind: TopicCourse, ID: courseID}
}

// Event types pushed to subscribers. The set is closed; handlers never
// invent ad-hoc type strings.
const (
	EventAssignmentCreated      = "assignment_created"
	EventAssignmentUpdated      = "assignment_updated"
	EventAssignmentDeleted      = "assignment_deleted"
	EventSubmissionCreated      = "submission_created"
	EventSubmissionUpdated      = "submission_updated"
	EventSubmissionViewed       = "submission_viewed"
	EventSubmissionGraded       = "submission_graded"
	EventSubmissionGradedOwn    = "submission_graded_personal"
	EventSubmissionDeleted      = "submission_deleted"
	EventChatMessage            = "chat_message"
	EventChatMessageDeleted     = "chat_message_deleted"
)

// Event is the envelope for every server push.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client frame actions.
const (
	actionSubscribeAssignment   = "subscribe_assignment"
	actionUnsubscribeAssignment = "unsubscribe_assignment"
	actionSubscribeCourse       = "subscribe_course"
	actionUnsubscribeCourse     = "unsubscribe_course"
	actionPing                  = "ping"
)

// command is one inbound client frame.
type command struct {
	Action string `json:"action"`
	ID     uint   `json:"id"`
}

// ack frames confirm a successful subscribe or unsubscribe.
type ack struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	ID     uint   `json:"id"`
}

func subscribedAck(t Topic) []byte {
	data, _ := json.Marshal(ack{Type: "subscribed", Target: string(t.Kind), ID: t.ID})
	return data
}

func unsubscribedAck(t Topic) []byte {
	data, _ := json.Marshal(ack{Type: "unsubscribed", Target: string(t.Kind), ID: t.ID})
	return data
}

var pongFrame = []byte(`{"type":"pong"}`)
