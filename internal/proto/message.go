package proto

import "encoding/json"

// Inbound is the envelope for messages coming from a connection.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeRegisterHost   = "register-host"
	InboundTypeRegisterClient = "register-client"
	InboundTypeGoLive         = "go-live"
	InboundTypeGoOffline      = "go-offline"
	InboundTypeDialIn         = "dial-in"
	InboundTypeAnswer         = "answer"
	InboundTypeICECandidate   = "ice-candidate"
	InboundTypeToggleMute     = "toggle-mute"
	InboundTypeKickClient     = "kick-client"
	InboundTypeHangup         = "client-hangup"

	OutboundTypeStateUpdate     = "state-update"
	OutboundTypeStatusChange    = "status-change"
	OutboundTypeDialIn          = "dial-in"
	OutboundTypeAnswer          = "answer"
	OutboundTypeICECandidate    = "ice-candidate"
	OutboundTypeMuteCommand     = "mute-command"
	OutboundTypeForceDisconnect = "force-disconnect"
)

// TargetHost is the symbolic ice-candidate target that resolves to the
// current host connection.
const TargetHost = "host"

// ReasonHostKick is the force-disconnect reason sent to kicked callers.
const ReasonHostKick = "host-kick"

// RegisterHostData claims the host role for the sending connection.
// Token is required only when the server is configured with a host secret.
type RegisterHostData struct {
	Token string `json:"token,omitempty"`
}

// RegisterClientData registers the sending connection as a caller.
type RegisterClientData struct {
	Name string `json:"name"`
}

// DialInData carries an opaque negotiation offer from a caller to the host.
type DialInData struct {
	Offer json.RawMessage `json:"offer"`
}

// AnswerData carries the host's opaque negotiation answer for one caller.
type AnswerData struct {
	ClientID string          `json:"clientId"`
	Answer   json.RawMessage `json:"answer"`
}

// CandidateData carries an opaque ICE candidate addressed to a connection
// id, or to TargetHost.
type CandidateData struct {
	Target    string          `json:"target"`
	Candidate json.RawMessage `json:"candidate"`
}

// ToggleMuteData is the host's mute command for one caller.
type ToggleMuteData struct {
	ClientID string `json:"clientId"`
	Muted    bool   `json:"muted"`
}

// KickClientData is the host's request to remove one caller.
type KickClientData struct {
	ClientID string `json:"clientId"`
}

// Outbound is the envelope for messages sent to connections.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// DialInForward is the offer as delivered to the host connection.
type DialInForward struct {
	ClientID string          `json:"clientId"`
	Offer    json.RawMessage `json:"offer"`
	Name     string          `json:"name"`
}

// AnswerForward is the host's answer as delivered to the caller.
type AnswerForward struct {
	Answer json.RawMessage `json:"answer"`
}

// CandidateForward is an ICE candidate as delivered to its target.
type CandidateForward struct {
	Source    string          `json:"source"`
	Candidate json.RawMessage `json:"candidate"`
}

// StatusChangeData announces a live-state flip to every connection.
type StatusChangeData struct {
	IsLive bool `json:"isLive"`
}

// MuteCommandData tells a caller to enable or disable its outbound audio
// track. This command, not the snapshot, is the authoritative mute signal
// from the caller's perspective.
type MuteCommandData struct {
	Muted bool `json:"muted"`
}

// ForceDisconnectData tells a caller it is being removed.
type ForceDisconnectData struct {
	Reason string `json:"reason"`
}
