// Package session holds the single in-memory session aggregate: host
// identity, live flag, and the caller registry. It has no locking and no
// transport awareness; the coordinator serializes every mutation.
package session

// Status describes a registered caller's relation to the host.
type Status string

const (
	// StatusWaiting means registered but without an active media session.
	StatusWaiting Status = "waiting"
	// StatusConnected means a negotiation with the host is in flight or
	// established.
	StatusConnected Status = "connected"
)

// Client is one registered caller.
type Client struct {
	Name   string
	Status Status
	Muted  bool
}

// ClientInfo is a caller entry inside a Snapshot.
type ClientInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	Muted  bool   `json:"muted"`
}

// Snapshot is the full serializable view of session state. It is what every
// connection receives after each mutation.
type Snapshot struct {
	IsLive        bool         `json:"isLive"`
	HostConnected bool         `json:"hostConnected"`
	Clients       []ClientInfo `json:"clients"`
}

// Session is the authoritative session state. One per process.
type Session struct {
	hostID  string
	live    bool
	clients map[string]*Client
	order   []string // registration order, keeps snapshots deterministic
}

// New constructs an empty session: no host, not live, no callers.
func New() *Session {
	return &Session{
		clients: make(map[string]*Client),
	}
}

// AttachHost makes connID the host. Existing caller records are untouched;
// a previous host id is simply replaced.
func (s *Session) AttachHost(connID string) {
	s.hostID = connID
}

// DetachHost clears the host, forces the session offline, and resets every
// caller to waiting. Media sessions cannot outlive the host. Mute flags are
// deliberately left as-is (see DESIGN.md).
func (s *Session) DetachHost() {
	s.hostID = ""
	s.live = false
	for _, c := range s.clients {
		c.Status = StatusWaiting
	}
}

// HostID returns the host connection id, if a host is attached.
func (s *Session) HostID() (string, bool) {
	return s.hostID, s.hostID != ""
}

// IsLive reports whether the host has opened the line.
func (s *Session) IsLive() bool {
	return s.live
}

// SetLive sets the live flag unconditionally. Callers enforce the host-only
// precondition.
func (s *Session) SetLive(live bool) {
	s.live = live
}

// RegisterClient inserts or overwrites a caller record with waiting status
// and mute on. An empty name is ignored.
func (s *Session) RegisterClient(connID, name string) {
	if name == "" {
		return
	}
	if _, exists := s.clients[connID]; !exists {
		s.order = append(s.order, connID)
	}
	s.clients[connID] = &Client{
		Name:   name,
		Status: StatusWaiting,
		Muted:  true,
	}
}

// RemoveClient deletes a caller record if present.
func (s *Session) RemoveClient(connID string) {
	if _, exists := s.clients[connID]; !exists {
		return
	}
	delete(s.clients, connID)
	for i, id := range s.order {
		if id == connID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Client returns a copy of the caller record for connID.
func (s *Session) Client(connID string) (Client, bool) {
	c, ok := s.clients[connID]
	if !ok {
		return Client{}, false
	}
	return *c, true
}

// SetClientStatus updates a caller's status. No-op for unknown ids.
func (s *Session) SetClientStatus(connID string, status Status) {
	if c, ok := s.clients[connID]; ok {
		c.Status = status
	}
}

// SetClientMuted updates a caller's mute flag. No-op for unknown ids.
func (s *Session) SetClientMuted(connID string, muted bool) {
	if c, ok := s.clients[connID]; ok {
		c.Muted = muted
	}
}

// Snapshot returns an immutable copy of the session state with callers in
// registration order.
func (s *Session) Snapshot() Snapshot {
	clients := make([]ClientInfo, 0, len(s.order))
	for _, id := range s.order {
		c := s.clients[id]
		clients = append(clients, ClientInfo{
			ID:     id,
			Name:   c.Name,
			Status: c.Status,
			Muted:  c.Muted,
		})
	}
	return Snapshot{
		IsLive:        s.live,
		HostConnected: s.hostID != "",
		Clients:       clients,
	}
}
