// Package core contains the signaling coordinator: the single authority
// that tracks the host and callers, relays opaque negotiation payloads,
// enforces host-privileged operations, and fans out state snapshots.
package core

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/proto"
	"github.com/ametelkin/onair-server/internal/session"
	"github.com/ametelkin/onair-server/internal/store"
)

// Bus delivers outbound frames to live connections. Sends are best-effort
// and must never block; frames to unknown connections are dropped.
type Bus interface {
	Send(connID string, out proto.Outbound)
	Broadcast(out proto.Outbound)
}

// HostAuthorizer validates host claims. Implemented by the auth service.
type HostAuthorizer interface {
	// Enabled reports whether host registration requires a token.
	Enabled() bool
	// ValidateHostToken checks a token presented with register-host.
	ValidateHostToken(token string) error
}

// Coordinator owns the session aggregate. One mutex guards every
// read-mutate-broadcast sequence so no connection ever observes a partial
// mutation. Dropped messages are logged, never reported to the sender.
type Coordinator struct {
	mu      sync.Mutex
	session *session.Session
	bus     Bus
	auth    HostAuthorizer
	journal Journal
	log     *zerolog.Logger
}

// NewCoordinator wires the coordinator to its collaborators. journal may be
// NopJournal when call history is not wanted.
func NewCoordinator(sess *session.Session, bus Bus, auth HostAuthorizer, journal Journal, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		session: sess,
		bus:     bus,
		auth:    auth,
		journal: journal,
		log:     logger,
	}
}

// Connect delivers the current snapshot to a freshly attached connection.
func (c *Coordinator) Connect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug().Str("conn_id", connID).Msg("connection attached")
	c.bus.Send(connID, stateUpdate(c.session.Snapshot()))
}

// Disconnect releases whatever role the connection held and tells everyone.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hostID, ok := c.session.HostID(); ok && hostID == connID {
		c.log.Info().Str("conn_id", connID).Msg("host disconnected")
		c.detachHostLocked()
	} else {
		if cl, ok := c.session.Client(connID); ok {
			c.log.Info().Str("conn_id", connID).Str("name", cl.Name).Msg("caller disconnected")
			if cl.Status == session.StatusConnected {
				c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: connID, Outcome: store.OutcomeDisconnected, At: time.Now()})
			}
			c.session.RemoveClient(connID)
		}
	}

	c.broadcastStateLocked()
}

// RegisterHost makes the sending connection the host. When host auth is
// enabled an invalid token leaves the connection unprivileged. A connection
// holding a caller record loses it first: one role per connection,
// last write wins.
func (c *Coordinator) RegisterHost(connID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.auth != nil && c.auth.Enabled() {
		if err := c.auth.ValidateHostToken(token); err != nil {
			c.log.Warn().Err(err).Str("conn_id", connID).Msg("host registration rejected")
			return
		}
	}

	if cl, ok := c.session.Client(connID); ok {
		if cl.Status == session.StatusConnected {
			c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: connID, Outcome: store.OutcomeDisconnected, At: time.Now()})
		}
		c.session.RemoveClient(connID)
	}

	c.session.AttachHost(connID)
	c.log.Info().Str("conn_id", connID).Msg("host registered")
	c.broadcastStateLocked()
}

// RegisterClient adds the sending connection to the caller registry. The
// current host registering as a caller is detached first (last write wins).
// An empty name is ignored.
func (c *Coordinator) RegisterClient(connID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		c.log.Debug().Str("conn_id", connID).Msg("register-client without a name dropped")
		return
	}

	if hostID, ok := c.session.HostID(); ok && hostID == connID {
		c.log.Info().Str("conn_id", connID).Msg("host re-registered as caller")
		c.detachHostLocked()
	}

	// Re-registration overwrites the record and resets it to waiting, so a
	// call that was up ends here.
	if cl, ok := c.session.Client(connID); ok && cl.Status == session.StatusConnected {
		c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: connID, Outcome: store.OutcomeDisconnected, At: time.Now()})
	}

	c.session.RegisterClient(connID, name)
	c.log.Info().Str("conn_id", connID).Str("name", name).Msg("caller registered")
	c.broadcastStateLocked()
}

// GoLive opens the line for incoming calls. Host only.
func (c *Coordinator) GoLive(connID string) {
	c.setLive(connID, true)
}

// GoOffline closes the line. Host only.
func (c *Coordinator) GoOffline(connID string) {
	c.setLive(connID, false)
}

func (c *Coordinator) setLive(connID string, live bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isHostLocked(connID) {
		c.log.Warn().Str("conn_id", connID).Bool("live", live).Msg("live toggle from non-host dropped")
		return
	}

	wasLive := c.session.IsLive()
	c.session.SetLive(live)

	if live && !wasLive {
		c.journal.Record(JournalEvent{Kind: JournalBroadcastStarted, At: time.Now()})
	} else if !live && wasLive {
		c.journal.Record(JournalEvent{Kind: JournalBroadcastEnded, At: time.Now()})
	}

	c.log.Info().Bool("live", live).Msg("live state changed")
	c.broadcastStateLocked()
	c.bus.Broadcast(proto.Outbound{
		Type: proto.OutboundTypeStatusChange,
		Data: proto.StatusChangeData{IsLive: live},
	})
}

// DialIn forwards a caller's offer to the host. Accepted only from a
// registered caller while a host is attached and live; the caller is marked
// connected before any handshake confirmation so the host dashboard shows
// the incoming call immediately.
func (c *Coordinator) DialIn(connID string, offer json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hostID, hostOK := c.session.HostID()
	if !hostOK || !c.session.IsLive() {
		c.log.Debug().Str("conn_id", connID).Msg("dial-in while offline dropped")
		return
	}
	cl, ok := c.session.Client(connID)
	if !ok {
		c.log.Debug().Str("conn_id", connID).Msg("dial-in from unregistered connection dropped")
		return
	}

	if cl.Status != session.StatusConnected {
		c.journal.Record(JournalEvent{Kind: JournalCallStarted, ConnID: connID, ClientName: cl.Name, At: time.Now()})
	}
	c.session.SetClientStatus(connID, session.StatusConnected)

	c.log.Info().Str("conn_id", connID).Str("name", cl.Name).Msg("caller dialing in")
	c.bus.Send(hostID, proto.Outbound{
		Type: proto.OutboundTypeDialIn,
		Data: proto.DialInForward{
			ClientID: connID,
			Offer:    offer,
			Name:     cl.Name,
		},
	})
	c.broadcastStateLocked()
}

// Answer forwards the host's answer to one caller. Host only.
func (c *Coordinator) Answer(connID, clientID string, answer json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isHostLocked(connID) {
		c.log.Warn().Str("conn_id", connID).Msg("answer from non-host dropped")
		return
	}

	c.bus.Send(clientID, proto.Outbound{
		Type: proto.OutboundTypeAnswer,
		Data: proto.AnswerForward{Answer: answer},
	})
}

// ICECandidate forwards a candidate to a named connection, or to the host
// when the symbolic target is used. Dropped when the target cannot be
// resolved.
func (c *Coordinator) ICECandidate(connID, target string, candidate json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	targetID := target
	if target == proto.TargetHost {
		hostID, ok := c.session.HostID()
		if !ok {
			c.log.Debug().Str("conn_id", connID).Msg("candidate for absent host dropped")
			return
		}
		targetID = hostID
	}
	if targetID == "" {
		return
	}

	c.bus.Send(targetID, proto.Outbound{
		Type: proto.OutboundTypeICECandidate,
		Data: proto.CandidateForward{
			Source:    connID,
			Candidate: candidate,
		},
	})
}

// ToggleMute sets a caller's mute flag and commands the caller directly.
// Host only; unknown callers are ignored.
func (c *Coordinator) ToggleMute(connID, clientID string, muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isHostLocked(connID) {
		c.log.Warn().Str("conn_id", connID).Msg("toggle-mute from non-host dropped")
		return
	}
	if _, ok := c.session.Client(clientID); !ok {
		c.log.Debug().Str("client_id", clientID).Msg("toggle-mute for unknown caller dropped")
		return
	}

	c.session.SetClientMuted(clientID, muted)
	c.bus.Send(clientID, proto.Outbound{
		Type: proto.OutboundTypeMuteCommand,
		Data: proto.MuteCommandData{Muted: muted},
	})
	c.log.Info().Str("client_id", clientID).Bool("muted", muted).Msg("caller mute toggled")
	c.broadcastStateLocked()
}

// KickClient notifies a caller it is being removed, then deletes its
// record. Host only.
func (c *Coordinator) KickClient(connID, clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isHostLocked(connID) {
		c.log.Warn().Str("conn_id", connID).Msg("kick-client from non-host dropped")
		return
	}

	// The notice goes out before the record disappears so the caller can
	// tear down its media resources.
	c.bus.Send(clientID, proto.Outbound{
		Type: proto.OutboundTypeForceDisconnect,
		Data: proto.ForceDisconnectData{Reason: proto.ReasonHostKick},
	})

	if cl, ok := c.session.Client(clientID); ok {
		if cl.Status == session.StatusConnected {
			c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: clientID, Outcome: store.OutcomeKicked, At: time.Now()})
		}
		c.session.RemoveClient(clientID)
		c.log.Info().Str("client_id", clientID).Str("name", cl.Name).Msg("caller kicked")
	}

	c.broadcastStateLocked()
}

// Hangup moves the sending connection's own caller record back to waiting
// and re-mutes it. No authorization needed: a connection can only hang up
// itself.
func (c *Coordinator) Hangup(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := c.session.Client(connID)
	if !ok {
		c.log.Debug().Str("conn_id", connID).Msg("hangup from unregistered connection dropped")
		return
	}

	if cl.Status == session.StatusConnected {
		c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: connID, Outcome: store.OutcomeHangup, At: time.Now()})
	}
	c.session.SetClientStatus(connID, session.StatusWaiting)
	c.session.SetClientMuted(connID, true)

	c.log.Info().Str("conn_id", connID).Str("name", cl.Name).Msg("caller hung up")
	c.broadcastStateLocked()
}

// Snapshot returns the current session view. Used by the REST surface.
func (c *Coordinator) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

func (c *Coordinator) isHostLocked(connID string) bool {
	hostID, ok := c.session.HostID()
	return ok && hostID == connID
}

// detachHostLocked releases the host role and settles the journal: any
// connected call ends as host-ended, an open broadcast is closed.
func (c *Coordinator) detachHostLocked() {
	now := time.Now()
	for _, info := range c.session.Snapshot().Clients {
		if info.Status == session.StatusConnected {
			c.journal.Record(JournalEvent{Kind: JournalCallEnded, ConnID: info.ID, Outcome: store.OutcomeHostEnded, At: now})
		}
	}
	if c.session.IsLive() {
		c.journal.Record(JournalEvent{Kind: JournalBroadcastEnded, At: now})
	}
	c.session.DetachHost()
}

func (c *Coordinator) broadcastStateLocked() {
	c.bus.Broadcast(stateUpdate(c.session.Snapshot()))
}

func stateUpdate(snap session.Snapshot) proto.Outbound {
	return proto.Outbound{
		Type: proto.OutboundTypeStateUpdate,
		Data: snap,
	}
}
