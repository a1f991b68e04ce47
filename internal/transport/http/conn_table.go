package http

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/proto"
)

const outboundBuffer = 32

// ConnTable maps connection ids to their outbound channels and implements
// core.Bus. Sends never block: a slow consumer loses frames instead of
// stalling the coordinator.
type ConnTable struct {
	mu    sync.RWMutex
	conns map[string]chan proto.Outbound
	log   *zerolog.Logger
}

// NewConnTable builds an empty table.
func NewConnTable(logger *zerolog.Logger) *ConnTable {
	return &ConnTable{
		conns: make(map[string]chan proto.Outbound),
		log:   logger,
	}
}

// Add registers a connection and returns its outbound channel.
func (t *ConnTable) Add(connID string) <-chan proto.Outbound {
	ch := make(chan proto.Outbound, outboundBuffer)
	t.mu.Lock()
	t.conns[connID] = ch
	t.mu.Unlock()
	return ch
}

// Remove forgets a connection. Frames addressed to it afterwards are dropped.
func (t *ConnTable) Remove(connID string) {
	t.mu.Lock()
	delete(t.conns, connID)
	t.mu.Unlock()
}

// Send delivers a frame to one connection, best effort.
func (t *ConnTable) Send(connID string, out proto.Outbound) {
	t.mu.RLock()
	ch, ok := t.conns[connID]
	t.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case ch <- out:
	default:
		t.log.Warn().Str("conn_id", connID).Str("type", out.Type).Msg("outbound buffer full, frame dropped")
	}
}

// Broadcast delivers a frame to every connection, best effort.
func (t *ConnTable) Broadcast(out proto.Outbound) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for connID, ch := range t.conns {
		select {
		case ch <- out:
		default:
			t.log.Warn().Str("conn_id", connID).Str("type", out.Type).Msg("outbound buffer full, frame dropped")
		}
	}
}
