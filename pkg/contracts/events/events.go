// Package events contains the message contracts streamed to WebSocket
// clients while analysis runs progress.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeRunSnapshot carries the full state of one analysis run
	MessageTypeRunSnapshot MessageType = "analysis:snapshot"

	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Run and stage states
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Message represents a complete WebSocket message
type Message struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// RunSnapshot is the state of an analysis run after its latest transition.
// Every update resends the whole snapshot so late subscribers need no history.
type RunSnapshot struct {
	RunID        string          `json:"run_id"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	CurrentStage string          `json:"current_stage,omitempty"`
	Stages       []StageSnapshot `json:"stages"`
	StartedAt    time.Time       `json:"started_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// StageSnapshot represents the state of a single pipeline stage
type StageSnapshot struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ConnectData is sent to a client right after it connects
type ConnectData struct {
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}
