package http

import (
	"encoding/json"

	"github.com/ametelkin/onair-server/internal/proto"
)

// dispatch decodes one inbound envelope and invokes the matching
// coordinator operation. Malformed payloads and unknown types are dropped
// without a reply; nothing a connection sends can produce an error frame.
func (h *WSHandler) dispatch(connID string, inbound proto.Inbound) {
	switch inbound.Type {
	case proto.InboundTypeRegisterHost:
		// The token is optional, so an absent payload is fine.
		var data proto.RegisterHostData
		if len(inbound.Data) > 0 && !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.RegisterHost(connID, data.Token)

	case proto.InboundTypeRegisterClient:
		var data proto.RegisterClientData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.RegisterClient(connID, data.Name)

	case proto.InboundTypeGoLive:
		h.coord.GoLive(connID)

	case proto.InboundTypeGoOffline:
		h.coord.GoOffline(connID)

	case proto.InboundTypeDialIn:
		var data proto.DialInData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.DialIn(connID, data.Offer)

	case proto.InboundTypeAnswer:
		var data proto.AnswerData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.Answer(connID, data.ClientID, data.Answer)

	case proto.InboundTypeICECandidate:
		var data proto.CandidateData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.ICECandidate(connID, data.Target, data.Candidate)

	case proto.InboundTypeToggleMute:
		var data proto.ToggleMuteData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.ToggleMute(connID, data.ClientID, data.Muted)

	case proto.InboundTypeKickClient:
		var data proto.KickClientData
		if !h.decode(connID, inbound, &data) {
			return
		}
		h.coord.KickClient(connID, data.ClientID)

	case proto.InboundTypeHangup:
		h.coord.Hangup(connID)

	default:
		h.log.Debug().Str("conn_id", connID).Str("type", inbound.Type).Msg("unknown inbound type dropped")
	}
}

func (h *WSHandler) decode(connID string, inbound proto.Inbound, v any) bool {
	if len(inbound.Data) == 0 {
		h.log.Debug().Str("conn_id", connID).Str("type", inbound.Type).Msg("inbound without payload dropped")
		return false
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		h.log.Debug().Err(err).Str("conn_id", connID).Str("type", inbound.Type).Msg("malformed inbound payload dropped")
		return false
	}
	return true
}
