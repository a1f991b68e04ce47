package store

import (
	"context"
	"time"
)

// CallOutcome describes how a call left the connected state.
type CallOutcome string

const (
	// OutcomeHangup means the caller hung up on their own.
	OutcomeHangup CallOutcome = "hangup"
	// OutcomeKicked means the host removed the caller.
	OutcomeKicked CallOutcome = "kicked"
	// OutcomeHostEnded means the host detached while the call was up.
	OutcomeHostEnded CallOutcome = "host-ended"
	// OutcomeDisconnected means the caller's connection dropped.
	OutcomeDisconnected CallOutcome = "disconnected"
)

// Broadcast is one on-air period of the host.
type Broadcast struct {
	ID        int64
	StartedAt time.Time
	EndedAt   *time.Time
}

// Call is one caller's dial-in within a broadcast.
type Call struct {
	ID          int64
	BroadcastID int64
	ClientName  string
	DialedAt    time.Time
	EndedAt     *time.Time
	Outcome     *CallOutcome
}

// Journal persists broadcast and call history. It is written off the
// signaling path and never consulted for session decisions.
type Journal interface {
	// OpenBroadcast records the start of an on-air period.
	OpenBroadcast(ctx context.Context, startedAt time.Time) (int64, error)

	// CloseBroadcast records the end of an on-air period.
	CloseBroadcast(ctx context.Context, id int64, endedAt time.Time) error

	// OpenCall records a caller going connected within a broadcast.
	OpenCall(ctx context.Context, broadcastID int64, clientName string, dialedAt time.Time) (int64, error)

	// CloseCall records how and when a call ended.
	CloseCall(ctx context.Context, id int64, endedAt time.Time, outcome CallOutcome) error

	// ListRecentCalls returns the most recent calls, newest first.
	ListRecentCalls(ctx context.Context, limit int) ([]*Call, error)

	// Close closes the underlying database connection.
	Close() error
}
