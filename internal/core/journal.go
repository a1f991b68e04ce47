package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/store"
)

// JournalEventKind tags a journal event.
type JournalEventKind int

const (
	// JournalBroadcastStarted marks the host going live.
	JournalBroadcastStarted JournalEventKind = iota
	// JournalBroadcastEnded marks the host going offline or detaching.
	JournalBroadcastEnded
	// JournalCallStarted marks a caller going connected.
	JournalCallStarted
	// JournalCallEnded marks a call leaving the connected state.
	JournalCallEnded
)

// JournalEvent is one history fact emitted by the coordinator.
type JournalEvent struct {
	Kind       JournalEventKind
	ConnID     string
	ClientName string
	Outcome    store.CallOutcome
	At         time.Time
}

// Journal accepts history events. Record must never block: the coordinator
// calls it while holding the session lock.
type Journal interface {
	Record(ev JournalEvent)
}

// NopJournal discards all events.
type NopJournal struct{}

// Record implements Journal.
func (NopJournal) Record(JournalEvent) {}

// Recorder buffers journal events and writes them to the store from its own
// goroutine. It correlates start/end events into broadcast and call rows;
// events arrive on one channel so their order matches coordinator order.
type Recorder struct {
	store  store.Journal
	log    *zerolog.Logger
	events chan JournalEvent

	openBroadcast int64
	openCalls     map[string]int64
}

// NewRecorder builds a recorder over the given store.
func NewRecorder(st store.Journal, logger *zerolog.Logger) *Recorder {
	return &Recorder{
		store:     st,
		log:       logger,
		events:    make(chan JournalEvent, 256),
		openCalls: make(map[string]int64),
	}
}

// Record enqueues an event. Events are dropped when the buffer is full; the
// journal is best-effort history, the signaling path never waits for it.
func (r *Recorder) Record(ev JournalEvent) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn().Int("kind", int(ev.Kind)).Msg("journal buffer full, event dropped")
	}
}

// Run consumes events until ctx is canceled.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			r.apply(ctx, ev)
		}
	}
}

func (r *Recorder) apply(ctx context.Context, ev JournalEvent) {
	switch ev.Kind {
	case JournalBroadcastStarted:
		if r.openBroadcast != 0 {
			return
		}
		id, err := r.store.OpenBroadcast(ctx, ev.At)
		if err != nil {
			r.log.Error().Err(err).Msg("journal: open broadcast")
			return
		}
		r.openBroadcast = id

	case JournalBroadcastEnded:
		if r.openBroadcast == 0 {
			return
		}
		if err := r.store.CloseBroadcast(ctx, r.openBroadcast, ev.At); err != nil {
			r.log.Error().Err(err).Int64("broadcast_id", r.openBroadcast).Msg("journal: close broadcast")
		}
		r.openBroadcast = 0

	case JournalCallStarted:
		if r.openBroadcast == 0 {
			return
		}
		if _, open := r.openCalls[ev.ConnID]; open {
			return
		}
		id, err := r.store.OpenCall(ctx, r.openBroadcast, ev.ClientName, ev.At)
		if err != nil {
			r.log.Error().Err(err).Str("conn_id", ev.ConnID).Msg("journal: open call")
			return
		}
		r.openCalls[ev.ConnID] = id

	case JournalCallEnded:
		id, open := r.openCalls[ev.ConnID]
		if !open {
			return
		}
		if err := r.store.CloseCall(ctx, id, ev.At, ev.Outcome); err != nil {
			r.log.Error().Err(err).Int64("call_id", id).Msg("journal: close call")
		}
		delete(r.openCalls, ev.ConnID)
	}
}
