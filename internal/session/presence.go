package session

import "github.com/chateo/client-go/internal/proto"

// handleRosterSnapshot applies a global presence snapshot. Snapshots replace
// the roster wholesale; reconciling individual join/leave transitions would
// drift whenever an intermediate event was missed.
func (s *Session) handleRosterSnapshot(names []string) []Change {
	s.ReplaceRoster(names)
	return []Change{{Kind: ChangeRosterReplaced, Users: s.Roster()}}
}

// handleParticipantSnapshot applies an on-request participant snapshot.
// A snapshot tagged with a room other than the active one is stale and dropped.
func (s *Session) handleParticipantSnapshot(ev proto.UsuariosSala) []Change {
	if !s.active.IsRoom() {
		return nil
	}
	if ev.Sala != "" && !s.active.Equal(RoomRef(ev.Sala)) {
		return nil
	}
	s.ReplaceParticipants(ev.Usuarios)
	return []Change{{Kind: ChangeParticipantsReplaced, Users: s.Participants()}}
}

// handlePresenceChange applies a room-scoped join or leave. The carried
// participant list replaces the active set wholesale; the actor name only
// feeds a transient notice on the active transcript, it is not state.
// Outside a room conversation the event is dropped.
func (s *Session) handlePresenceChange(actor string, participants []string, joined bool) []Change {
	if !s.active.IsRoom() {
		return nil
	}
	s.ReplaceParticipants(participants)

	changes := []Change{{Kind: ChangeParticipantsReplaced, Users: s.Participants()}}
	if actor != "" {
		notice := actor + " left the room"
		if joined {
			notice = actor + " joined the room"
		}
		changes = append(changes, Change{Kind: ChangeSystemNotice, Notice: notice})
	}
	return changes
}
