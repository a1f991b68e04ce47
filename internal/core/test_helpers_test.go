package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/proto"
	"github.com/ametelkin/onair-server/internal/session"
)

// busFrame is one captured delivery. ConnID is empty for broadcasts.
type busFrame struct {
	ConnID string
	Out    proto.Outbound
}

type fakeBus struct {
	mu     sync.Mutex
	frames []busFrame
}

func (b *fakeBus) Send(connID string, out proto.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, busFrame{ConnID: connID, Out: out})
}

func (b *fakeBus) Broadcast(out proto.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, busFrame{Out: out})
}

func (b *fakeBus) all() []busFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]busFrame(nil), b.frames...)
}

// lastState returns the most recently broadcast snapshot.
func (b *fakeBus) lastState(t *testing.T) session.Snapshot {
	t.Helper()
	frames := b.all()
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		if f.ConnID == "" && f.Out.Type == proto.OutboundTypeStateUpdate {
			return f.Out.Data.(session.Snapshot)
		}
	}
	t.Fatal("no state-update broadcast captured")
	return session.Snapshot{}
}

// sentTo returns frames of the given type unicast to connID.
func (b *fakeBus) sentTo(connID, typ string) []proto.Outbound {
	var out []proto.Outbound
	for _, f := range b.all() {
		if f.ConnID == connID && f.Out.Type == typ {
			out = append(out, f.Out)
		}
	}
	return out
}

type fakeJournal struct {
	mu     sync.Mutex
	events []JournalEvent
}

func (j *fakeJournal) Record(ev JournalEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
}

func (j *fakeJournal) all() []JournalEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]JournalEvent(nil), j.events...)
}

type fakeAuth struct {
	enabled bool
	token   string
}

func (f fakeAuth) Enabled() bool { return f.enabled }

func (f fakeAuth) ValidateHostToken(token string) error {
	if token == f.token {
		return nil
	}
	return errors.New("bad token")
}

func newTestCoordinator() (*Coordinator, *fakeBus, *fakeJournal) {
	bus := &fakeBus{}
	journal := &fakeJournal{}
	logger := zerolog.Nop()
	coord := NewCoordinator(session.New(), bus, nil, journal, &logger)
	return coord, bus, journal
}
