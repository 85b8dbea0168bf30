// Package sse implements Server-Sent Events so open browser tabs see borrows made elsewhere.
package sse

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookBorrowed is sent after a borrow has been recorded.
	EventBookBorrowed EventType = "ledger.borrowed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// BookBorrowedEventData is the payload of ledger.borrowed.
// It carries the full record so clients can append to their history without a refetch.
type BookBorrowedEventData struct {
	Record        domain.BorrowRecord `json:"record"`
	BorrowedCount int                 `json:"borrowed_count"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(t EventType, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Type:      t,
		Data:      data,
	}
}

// NewBookBorrowedEvent creates a ledger.borrowed event.
func NewBookBorrowedEvent(record domain.BorrowRecord, borrowedCount int) Event {
	return newEvent(EventBookBorrowed, BookBorrowedEventData{
		Record:        record,
		BorrowedCount: borrowedCount,
	})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}
