package session

// ConversationKind tags the variant of a ConversationRef.
type ConversationKind int

const (
	// ConversationNone means no conversation is open.
	ConversationNone ConversationKind = iota
	// ConversationRoom is a public room.
	ConversationRoom
	// ConversationDirect is a private one-to-one chat.
	ConversationDirect
)

// ConversationRef identifies a conversation: a room by name, a direct chat
// by peer name, or nothing. It is the routing key for inbound chat events.
// The zero value is NoConversation.
type ConversationRef struct {
	Kind   ConversationKind
	Target string
}

// NoConversation returns the empty selector.
func NoConversation() ConversationRef {
	return ConversationRef{}
}

// RoomRef selects the room with the given name.
func RoomRef(name string) ConversationRef {
	return ConversationRef{Kind: ConversationRoom, Target: name}
}

// DirectRef selects the private chat with the given peer.
func DirectRef(peer string) ConversationRef {
	return ConversationRef{Kind: ConversationDirect, Target: peer}
}

// IsNone reports whether no conversation is selected.
func (r ConversationRef) IsNone() bool { return r.Kind == ConversationNone }

// IsRoom reports whether the selector points at a room.
func (r ConversationRef) IsRoom() bool { return r.Kind == ConversationRoom }

// IsDirect reports whether the selector points at a private chat.
func (r ConversationRef) IsDirect() bool { return r.Kind == ConversationDirect }

// Equal reports whether both refs select the same conversation.
func (r ConversationRef) Equal(other ConversationRef) bool {
	return r == other
}

func (r ConversationRef) String() string {
	switch r.Kind {
	case ConversationRoom:
		return "room:" + r.Target
	case ConversationDirect:
		return "direct:" + r.Target
	default:
		return "none"
	}
}
