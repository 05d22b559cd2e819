package session

import (
	"encoding/json"
	"testing"

	"github.com/chateo/client-go/internal/proto"
)

// fakeViewport reports a fixed scroll distance.
type fakeViewport struct {
	distance int
}

func (v *fakeViewport) DistanceFromBottom() int { return v.distance }

func envelope(t *testing.T, event string, payload any) proto.Envelope {
	t.Helper()
	env, err := proto.NewEnvelope(event, payload)
	if err != nil {
		t.Fatalf("envelope %s: %v", event, err)
	}
	return env
}

func registeredSession(t *testing.T, vp Viewport) *Session {
	t.Helper()
	s := New(vp, 0)
	changes, err := s.HandleEvent(envelope(t, proto.EventRegistroExitoso, proto.RegistroExitoso{Username: "ana"}))
	if err != nil {
		t.Fatalf("register event: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeRegistered || changes[0].Identity != "ana" {
		t.Fatalf("unexpected register changes: %+v", changes)
	}
	return s
}

func TestRoomMessageForActiveRoom(t *testing.T) {
	vp := &fakeViewport{distance: 0}
	s := registeredSession(t, vp)
	s.SetActiveConversation(RoomRef("General"))

	changes, err := s.HandleEvent(envelope(t, proto.EventNuevoMensaje, proto.NuevoMensaje{
		Usuario:   "bob",
		Mensaje:   "hola",
		FechaHora: "2026-03-01 10:30:00",
		Sala:      "General",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(changes) != 1 || changes[0].Kind != ChangeMessageAppended {
		t.Fatalf("changes = %+v, want one appended message", changes)
	}
	msg := changes[0].Message
	if msg.Author != "bob" || msg.Body != "hola" || msg.Self {
		t.Fatalf("normalized message wrong: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should parse")
	}
	if got := s.Transcript(); len(got) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(got))
	}
	if s.Phase() != ViewPopulated {
		t.Fatalf("phase = %v, want ViewPopulated", s.Phase())
	}
}

func TestRoomMessageForInactiveRoomLeavesTranscriptAlone(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(RoomRef("General"))

	changes, err := s.HandleEvent(envelope(t, proto.EventNuevoMensaje, proto.NuevoMensaje{
		Usuario: "bob", Mensaje: "psst", FechaHora: "2026-03-01 10:31:00", Sala: "Dev",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(s.Transcript()) != 0 {
		t.Fatal("active transcript must be unchanged by a background room message")
	}
	// Rooms are upserted lazily even from message events.
	if len(changes) != 1 || changes[0].Kind != ChangeRoomDiscovered || changes[0].Room != "Dev" {
		t.Fatalf("changes = %+v, want room discovery only", changes)
	}
	// No unseen tracking for rooms.
	if len(s.UnseenPeers()) != 0 {
		t.Fatalf("room messages must not set unseen flags: %v", s.UnseenPeers())
	}
}

func TestSelfMessageScrollsRegardlessOfPosition(t *testing.T) {
	vp := &fakeViewport{distance: 5000} // far from the bottom
	s := registeredSession(t, vp)
	s.SetActiveConversation(RoomRef("General"))

	changes, err := s.HandleEvent(envelope(t, proto.EventNuevoMensaje, proto.NuevoMensaje{
		Usuario: "ana", Mensaje: "hi", FechaHora: "2026-03-01 10:32:00", Sala: "General",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(changes) != 1 || changes[0].Kind != ChangeMessageAppended {
		t.Fatalf("changes = %+v", changes)
	}
	if !changes[0].Message.Self {
		t.Fatal("message authored by the identity must have Self=true")
	}
	if !changes[0].Scroll {
		t.Fatal("self-authored message must scroll regardless of position")
	}
}

func TestScrollEligibilityThreshold(t *testing.T) {
	cases := []struct {
		name     string
		distance int
		want     bool
	}{
		{"pinned to bottom", 0, true},
		{"just inside threshold", 99, true},
		{"at threshold", 100, false},
		{"scrolled away", 900, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vp := &fakeViewport{distance: tc.distance}
			s := registeredSession(t, vp)
			s.SetActiveConversation(RoomRef("General"))

			changes, err := s.HandleEvent(envelope(t, proto.EventNuevoMensaje, proto.NuevoMensaje{
				Usuario: "bob", Mensaje: "hola", FechaHora: "2026-03-01 10:33:00", Sala: "General",
			}))
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if len(changes) != 1 {
				t.Fatalf("changes = %+v", changes)
			}
			if changes[0].Scroll != tc.want {
				t.Fatalf("scroll = %v, want %v at distance %d", changes[0].Scroll, tc.want, tc.distance)
			}
		})
	}
}

func TestDirectMessageForBackgroundPeerMarksUnseen(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(DirectRef("bob"))

	changes, err := s.HandleEvent(envelope(t, proto.EventMensajePrivado, proto.MensajePrivado{
		Remitente:    "carla",
		Destinatario: "ana",
		Mensaje:      "hey",
		FechaHora:    "2026-03-01 10:34:00",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(s.Transcript()) != 0 {
		t.Fatal("bob's transcript must be unchanged by carla's message")
	}
	if len(changes) != 1 || changes[0].Kind != ChangeUnseenMarked || changes[0].Peer != "carla" {
		t.Fatalf("changes = %+v, want unseen mark for carla", changes)
	}
	if !s.HasUnseen("carla") {
		t.Fatal("carla must be flagged unseen")
	}

	// Opening the chat clears the flag.
	s.SetActiveConversation(DirectRef("carla"))
	if s.HasUnseen("carla") {
		t.Fatal("opening carla's chat must clear the flag")
	}
}

func TestDirectMessageForActivePeerAppends(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(DirectRef("bob"))

	changes, err := s.HandleEvent(envelope(t, proto.EventMensajePrivado, proto.MensajePrivado{
		Remitente: "bob", Destinatario: "ana", Mensaje: "hola ana", FechaHora: "2026-03-01 10:35:00",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(changes) != 1 || changes[0].Kind != ChangeMessageAppended {
		t.Fatalf("changes = %+v", changes)
	}
	msg := changes[0].Message
	if msg.Author != "bob" || msg.Self || !msg.Conversation.Equal(DirectRef("bob")) {
		t.Fatalf("normalized direct message wrong: %+v", msg)
	}
}

func TestOwnDirectEchoIsSelf(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(DirectRef("bob"))

	// The server echoes the sender's own message back.
	changes, err := s.HandleEvent(envelope(t, proto.EventMensajePrivado, proto.MensajePrivado{
		Remitente: "ana", Destinatario: "bob", Mensaje: "hi bob", FechaHora: "2026-03-01 10:36:00",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeMessageAppended {
		t.Fatalf("changes = %+v", changes)
	}
	if !changes[0].Message.Self {
		t.Fatal("own echo must derive Self=true from the identity, not the wire")
	}
	if !changes[0].Message.Conversation.Equal(DirectRef("bob")) {
		t.Fatal("counterpart of an own echo is the destinatario")
	}
}

func TestHistoryLoadScenario(t *testing.T) {
	s := registeredSession(t, nil)
	s.UpsertRoom("General")
	s.SetActiveConversation(RoomRef("General"))

	target, gen := s.BeginHistoryLoad()
	if s.Phase() != ViewLoading {
		t.Fatalf("phase = %v, want ViewLoading", s.Phase())
	}

	history := HistoryMessages("General", []proto.HistorialEntry{
		{Usuario: "bob", Mensaje: "hola", FechaHora: "2026-03-01 09:00:00"},
	}, s.Identity())

	changes, ok := s.CompleteHistoryLoad(target, gen, history)
	if !ok {
		t.Fatal("fresh history load must apply")
	}
	if len(changes) != 1 || changes[0].Kind != ChangeTranscriptReplaced || !changes[0].Scroll {
		t.Fatalf("changes = %+v, want transcript replacement with scroll", changes)
	}

	transcript := s.Transcript()
	if len(transcript) != 1 || transcript[0].Author != "bob" || transcript[0].Self {
		t.Fatalf("transcript = %+v", transcript)
	}
	if s.Phase() != ViewPopulated {
		t.Fatalf("phase = %v, want ViewPopulated", s.Phase())
	}
}

func TestStaleHistoryLoadDiscarded(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(RoomRef("General"))
	target, gen := s.BeginHistoryLoad()

	// The user switches away before the fetch resolves.
	s.SetActiveConversation(RoomRef("Dev"))

	changes, ok := s.CompleteHistoryLoad(target, gen, HistoryMessages("General", []proto.HistorialEntry{
		{Usuario: "bob", Mensaje: "old", FechaHora: "2026-03-01 09:00:00"},
	}, s.Identity()))
	if ok || changes != nil {
		t.Fatalf("stale history must be discarded, got ok=%v changes=%+v", ok, changes)
	}
	if len(s.Transcript()) != 0 {
		t.Fatal("stale history must not touch the new transcript")
	}

	// Same guard when the fetch fails.
	if s.AbortHistoryLoad(target, gen) {
		t.Fatal("stale abort must be ignored")
	}
}

func TestPresenceSnapshotsAndNotices(t *testing.T) {
	s := registeredSession(t, nil)

	changes, err := s.HandleEvent(envelope(t, proto.EventUsuariosConectados, proto.Usuarios{
		Usuarios: []string{"ana", "bob", "carla"},
	}))
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeRosterReplaced {
		t.Fatalf("changes = %+v", changes)
	}
	if got := s.Roster(); len(got) != 2 {
		t.Fatalf("roster = %v, identity must be filtered", got)
	}

	// Join outside a room conversation is dropped.
	changes, err = s.HandleEvent(envelope(t, proto.EventUsuarioUnido, proto.UsuarioUnido{
		Username: "bob", Usuarios: []string{"ana", "bob"},
	}))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if changes != nil {
		t.Fatalf("join without a room must be dropped, got %+v", changes)
	}

	s.SetActiveConversation(RoomRef("General"))
	changes, err = s.HandleEvent(envelope(t, proto.EventUsuarioUnido, proto.UsuarioUnido{
		Username: "bob", Usuarios: []string{"ana", "bob"},
	}))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(changes) != 2 || changes[0].Kind != ChangeParticipantsReplaced || changes[1].Kind != ChangeSystemNotice {
		t.Fatalf("changes = %+v, want participants + notice", changes)
	}
	if got := s.Participants(); len(got) != 2 {
		t.Fatalf("participants = %v", got)
	}

	changes, err = s.HandleEvent(envelope(t, proto.EventUsuarioSalio, proto.UsuarioSalio{
		Username: "bob", Usuarios: []string{"ana"},
	}))
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(changes) != 2 || changes[1].Notice != "bob left the room" {
		t.Fatalf("changes = %+v", changes)
	}
}

func TestParticipantSnapshotForOtherRoomDropped(t *testing.T) {
	s := registeredSession(t, nil)
	s.SetActiveConversation(RoomRef("General"))
	s.ReplaceParticipants([]string{"ana", "bob"})

	changes, err := s.HandleEvent(envelope(t, proto.EventUsuariosSala, proto.UsuariosSala{
		Sala: "Dev", Usuarios: []string{"zoe"},
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if changes != nil {
		t.Fatalf("stale snapshot must be dropped, got %+v", changes)
	}
	if got := s.Participants(); len(got) != 2 {
		t.Fatalf("participants clobbered by stale snapshot: %v", got)
	}
}

func TestNewRoomAnnouncement(t *testing.T) {
	s := registeredSession(t, nil)

	changes, err := s.HandleEvent(envelope(t, proto.EventNuevaSala, proto.NuevaSala{Sala: "Random"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeRoomDiscovered || changes[0].Room != "Random" {
		t.Fatalf("changes = %+v", changes)
	}

	// Repeated announcement is idempotent.
	changes, err = s.HandleEvent(envelope(t, proto.EventNuevaSala, proto.NuevaSala{Sala: "Random"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if changes != nil {
		t.Fatalf("duplicate announcement must be a no-op, got %+v", changes)
	}
}

func TestServerRejectionSurfacedVerbatim(t *testing.T) {
	s := New(nil, 0)

	changes, err := s.HandleEvent(envelope(t, proto.EventError, proto.ErrorData{
		Mensaje: "Nombre de usuario ya en uso",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeRejected || changes[0].Reason != "Nombre de usuario ya en uso" {
		t.Fatalf("changes = %+v", changes)
	}
	if s.Registered() {
		t.Fatal("rejection must not assign an identity")
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	s := New(nil, 0)
	changes, err := s.HandleEvent(proto.Envelope{Event: "typing", Data: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("unknown event must not error: %v", err)
	}
	if changes != nil {
		t.Fatalf("unknown event must be ignored, got %+v", changes)
	}
}

func TestReconnectReRegistrationIsNoOp(t *testing.T) {
	s := registeredSession(t, nil)

	changes, err := s.HandleEvent(envelope(t, proto.EventRegistroExitoso, proto.RegistroExitoso{Username: "ana"}))
	if err != nil {
		t.Fatalf("re-ack: %v", err)
	}
	if changes != nil {
		t.Fatalf("repeated ack for the same identity must be a no-op, got %+v", changes)
	}
}
