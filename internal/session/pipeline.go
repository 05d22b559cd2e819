package session

import "github.com/chateo/client-go/internal/proto"

// handleRoomMessage runs the pipeline for a room-scoped chat event:
// normalize, decide relevance, then append. A message for an unknown room
// still upserts the room set; the room list and the message stream race on
// the wire, so rejection would drop legitimate rooms. Messages for inactive
// rooms are dropped without an unseen flag (only direct chats track unseen).
func (s *Session) handleRoomMessage(ev proto.NuevoMensaje) []Change {
	var changes []Change
	if s.UpsertRoom(ev.Sala) {
		changes = append(changes, Change{Kind: ChangeRoomDiscovered, Room: ev.Sala})
	}

	if !s.active.Equal(RoomRef(ev.Sala)) {
		return changes
	}

	msg := roomMessage(ev, s.identity)
	return append(changes, s.appendMessage(msg))
}

// handleDirectMessage runs the pipeline for a private chat event. The
// counterpart is the participant that is not the session identity; a message
// for a background chat only marks the unseen flag.
func (s *Session) handleDirectMessage(ev proto.MensajePrivado) []Change {
	other := s.counterpart(ev)

	if !s.active.Equal(DirectRef(other)) {
		if s.RecordUnseen(other) {
			return []Change{{Kind: ChangeUnseenMarked, Peer: other}}
		}
		return nil
	}

	msg := directMessage(ev, other, s.identity)
	return []Change{s.appendMessage(msg)}
}

// appendMessage appends one accepted message to the transcript, in arrival
// order; the client never reorders by timestamp. Scroll eligibility is read
// from the viewport before the append, because appending changes the scroll
// height the check depends on.
func (s *Session) appendMessage(msg ChatMessage) Change {
	scroll := msg.Self || s.viewport.DistanceFromBottom() < s.scrollThreshold

	s.transcript = append(s.transcript, msg)
	s.phase = ViewPopulated

	return Change{Kind: ChangeMessageAppended, Message: msg, Scroll: scroll}
}

// BeginHistoryLoad marks the active conversation's transcript as loading and
// returns the token that a later CompleteHistoryLoad must present. The token
// captures both the target conversation and the fetch generation, so a fetch
// that outlives a conversation switch is discarded instead of clobbering the
// new transcript.
func (s *Session) BeginHistoryLoad() (ConversationRef, uint64) {
	s.phase = ViewLoading
	return s.active, s.fetchGen
}

// CompleteHistoryLoad replaces the transcript wholesale with fetched history.
// It reports false when the result is stale: the target no longer matches the
// active conversation or the generation has moved on.
func (s *Session) CompleteHistoryLoad(target ConversationRef, gen uint64, msgs []ChatMessage) ([]Change, bool) {
	if gen != s.fetchGen || !s.active.Equal(target) {
		return nil, false
	}

	s.transcript = make([]ChatMessage, len(msgs))
	copy(s.transcript, msgs)
	s.phase = ViewPopulated

	// Initial load always lands at the newest message, no eligibility check.
	return []Change{{
		Kind:     ChangeTranscriptReplaced,
		Messages: s.Transcript(),
		Scroll:   true,
	}}, true
}

// AbortHistoryLoad resets the loading phase after a failed fetch, leaving the
// transcript empty. Stale failures are ignored the same way as stale results.
func (s *Session) AbortHistoryLoad(target ConversationRef, gen uint64) bool {
	if gen != s.fetchGen || !s.active.Equal(target) {
		return false
	}
	s.phase = ViewEmpty
	return true
}
