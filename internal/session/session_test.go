package session

import "testing"

func TestRegisterAndRemoveClients(t *testing.T) {
	s := New()

	s.RegisterClient("c1", "Ana")
	s.RegisterClient("c2", "Ben")
	s.RegisterClient("c3", "Eva")
	s.RemoveClient("c2")

	snap := s.Snapshot()
	if len(snap.Clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(snap.Clients))
	}
	if snap.Clients[0].ID != "c1" || snap.Clients[1].ID != "c3" {
		t.Fatalf("unexpected client order: %+v", snap.Clients)
	}

	// Removing an unknown id is a no-op.
	s.RemoveClient("ghost")
	if got := len(s.Snapshot().Clients); got != 2 {
		t.Fatalf("expected 2 clients after removing unknown id, got %d", got)
	}
}

func TestRegisterClientEmptyNameIgnored(t *testing.T) {
	s := New()
	s.RegisterClient("c1", "")

	if _, ok := s.Client("c1"); ok {
		t.Fatal("client with empty name should not be registered")
	}
	if got := len(s.Snapshot().Clients); got != 0 {
		t.Fatalf("expected empty registry, got %d clients", got)
	}
}

func TestRegisterClientOverwriteKeepsOrder(t *testing.T) {
	s := New()
	s.RegisterClient("c1", "Ana")
	s.RegisterClient("c2", "Ben")

	s.SetClientStatus("c1", StatusConnected)
	s.SetClientMuted("c1", false)
	s.RegisterClient("c1", "Ana2")

	snap := s.Snapshot()
	if snap.Clients[0].ID != "c1" {
		t.Fatalf("re-registration should keep position, got order %+v", snap.Clients)
	}
	if snap.Clients[0].Name != "Ana2" || snap.Clients[0].Status != StatusWaiting || !snap.Clients[0].Muted {
		t.Fatalf("re-registration should reset the record, got %+v", snap.Clients[0])
	}
}

func TestDetachHostResetsLiveAndStatuses(t *testing.T) {
	s := New()
	s.AttachHost("h")
	s.SetLive(true)
	s.RegisterClient("c1", "Ana")
	s.RegisterClient("c2", "Ben")
	s.SetClientStatus("c1", StatusConnected)
	s.SetClientStatus("c2", StatusConnected)

	s.DetachHost()

	if s.IsLive() {
		t.Fatal("detach must force live off")
	}
	if _, ok := s.HostID(); ok {
		t.Fatal("host id must be cleared")
	}
	for _, c := range s.Snapshot().Clients {
		if c.Status != StatusWaiting {
			t.Fatalf("client %s should be waiting, got %s", c.ID, c.Status)
		}
	}

	// Idempotent under repeated detach.
	s.DetachHost()
	if s.IsLive() {
		t.Fatal("repeated detach must keep live off")
	}
}

func TestDetachHostLeavesMuteFlag(t *testing.T) {
	s := New()
	s.AttachHost("h")
	s.SetLive(true)
	s.RegisterClient("c1", "Ana")
	s.SetClientStatus("c1", StatusConnected)
	s.SetClientMuted("c1", false)

	s.DetachHost()

	c, _ := s.Client("c1")
	if c.Status != StatusWaiting {
		t.Fatalf("expected waiting, got %s", c.Status)
	}
	// Detach resets status only; the mute flag keeps its last value. The
	// explicit hangup path is the one that re-mutes.
	if c.Muted {
		t.Fatal("detach should not touch the mute flag")
	}
}

func TestSetStatusAndMuteUnknownClientNoop(t *testing.T) {
	s := New()
	s.SetClientStatus("ghost", StatusConnected)
	s.SetClientMuted("ghost", false)

	if got := len(s.Snapshot().Clients); got != 0 {
		t.Fatalf("expected no clients, got %d", got)
	}
}

func TestAttachHostKeepsClients(t *testing.T) {
	s := New()
	s.RegisterClient("c1", "Ana")
	s.AttachHost("h")

	snap := s.Snapshot()
	if !snap.HostConnected {
		t.Fatal("expected host connected")
	}
	if len(snap.Clients) != 1 {
		t.Fatalf("attach must not alter client records, got %+v", snap.Clients)
	}
}
