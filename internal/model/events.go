package model

import "encoding/json"

// EventType identifies a realtime event by name
type EventType string

const (
	// Server-pushed events
	EventNewQuizPending    EventType = "new_quiz_pending"
	EventQuizApproved      EventType = "quiz_approved"
	EventQuizRejected      EventType = "quiz_rejected"
	EventAdminNotification EventType = "admin_notification"
	EventSystemMessage     EventType = "system_message"
	EventError             EventType = "error"

	// Client-sent events
	EventJoinQuizRoom  EventType = "join_quiz_room"
	EventLeaveQuizRoom EventType = "leave_quiz_room"

	// Local connection-lifecycle events, never sent on the wire
	EventConnected       EventType = "connected"
	EventDisconnected    EventType = "disconnected"
	EventConnectError    EventType = "connect_error"
	EventReconnectFailed EventType = "reconnect_failed"
)

// Event is the wire envelope for the realtime channel
type Event struct {
	Type EventType       `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// QuizEventPayload is the data carried by quiz moderation events
type QuizEventPayload struct {
	QuizID QuizID `json:"quiz_id"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NotificationPayload is the data carried by admin and system messages
type NotificationPayload struct {
	Message   string `json:"message"`
	Kind      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RoomPayload addresses a quiz room for join/leave messages
type RoomPayload struct {
	QuizID QuizID `json:"quiz_id"`
}
