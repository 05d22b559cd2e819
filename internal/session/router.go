package session

import (
	"encoding/json"
	"fmt"

	"github.com/chateo/client-go/internal/proto"
)

// HandleEvent is the typed dispatch table for inbound realtime events. Each
// event either targets the active conversation, a background one, or the
// roster as a whole; the per-event handlers decide relevance and mutate state
// exactly once. Unknown event tags are ignored so protocol additions do not
// break older clients.
func (s *Session) HandleEvent(env proto.Envelope) ([]Change, error) {
	switch env.Event {
	case proto.EventRegistroExitoso:
		var ev proto.RegistroExitoso
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handleRegistered(ev)
	case proto.EventError:
		var ev proto.ErrorData
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return []Change{{Kind: ChangeRejected, Reason: ev.Mensaje}}, nil
	case proto.EventUsuariosConectados, proto.EventUsuariosGlobales:
		var ev proto.Usuarios
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handleRosterSnapshot(ev.Usuarios), nil
	case proto.EventUsuarioUnido:
		var ev proto.UsuarioUnido
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handlePresenceChange(ev.Username, ev.Usuarios, true), nil
	case proto.EventUsuarioSalio:
		var ev proto.UsuarioSalio
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handlePresenceChange(ev.Username, ev.Usuarios, false), nil
	case proto.EventNuevoMensaje:
		var ev proto.NuevoMensaje
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handleRoomMessage(ev), nil
	case proto.EventMensajePrivado:
		var ev proto.MensajePrivado
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handleDirectMessage(ev), nil
	case proto.EventNuevaSala:
		var ev proto.NuevaSala
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		if s.UpsertRoom(ev.Sala) {
			return []Change{{Kind: ChangeRoomDiscovered, Room: ev.Sala}}, nil
		}
		return nil, nil
	case proto.EventUsuariosSala:
		var ev proto.UsuariosSala
		if err := decode(env, &ev); err != nil {
			return nil, err
		}
		return s.handleParticipantSnapshot(ev), nil
	default:
		return nil, nil
	}
}

func (s *Session) handleRegistered(ev proto.RegistroExitoso) ([]Change, error) {
	// A reconnect re-registers the same name; the repeated ack is a no-op.
	if s.identity == ev.Username {
		return nil, nil
	}
	if err := s.Register(ev.Username); err != nil {
		return nil, err
	}
	return []Change{{Kind: ChangeRegistered, Identity: ev.Username}}, nil
}

// counterpart returns the event participant that is not the session identity.
func (s *Session) counterpart(ev proto.MensajePrivado) string {
	if ev.Remitente == s.identity {
		return ev.Destinatario
	}
	return ev.Remitente
}

func decode(env proto.Envelope, v any) error {
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return nil
}
