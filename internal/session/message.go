package session

import (
	"time"

	"github.com/chateo/client-go/internal/proto"
)

// ChatMessage is the rendering-ready shape every inbound chat event is
// normalized into, regardless of room or direct origin.
type ChatMessage struct {
	Author       string
	Body         string
	Timestamp    time.Time
	Conversation ConversationRef
	// Self is derived by comparing Author against the session identity,
	// never taken from the wire.
	Self bool
}

func roomMessage(ev proto.NuevoMensaje, identity string) ChatMessage {
	return ChatMessage{
		Author:       ev.Usuario,
		Body:         ev.Mensaje,
		Timestamp:    parseWireTime(ev.FechaHora),
		Conversation: RoomRef(ev.Sala),
		Self:         ev.Usuario == identity,
	}
}

func directMessage(ev proto.MensajePrivado, counterpart, identity string) ChatMessage {
	return ChatMessage{
		Author:       ev.Remitente,
		Body:         ev.Mensaje,
		Timestamp:    parseWireTime(ev.FechaHora),
		Conversation: DirectRef(counterpart),
		Self:         ev.Remitente == identity,
	}
}

// HistoryMessages normalizes a fetched room history, oldest-first,
// into transcript form.
func HistoryMessages(room string, entries []proto.HistorialEntry, identity string) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, ChatMessage{
			Author:       e.Usuario,
			Body:         e.Mensaje,
			Timestamp:    parseWireTime(e.FechaHora),
			Conversation: RoomRef(room),
			Self:         e.Usuario == identity,
		})
	}
	return msgs
}

// parseWireTime accepts the backend's fecha_hora format; a malformed value
// yields the zero time rather than an error, display comes first.
func parseWireTime(s string) time.Time {
	t, err := time.Parse(proto.TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
