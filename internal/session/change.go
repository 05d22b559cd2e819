package session

// ChangeKind tags a state change the view must reflect.
type ChangeKind int

const (
	// ChangeRegistered fires once when the identity is assigned.
	ChangeRegistered ChangeKind = iota
	// ChangeRejected carries a server-side rejection message verbatim.
	ChangeRejected
	// ChangeRosterReplaced fires on every global presence snapshot.
	ChangeRosterReplaced
	// ChangeParticipantsReplaced fires on active-room participant snapshots.
	ChangeParticipantsReplaced
	// ChangeRoomDiscovered fires when a room name enters the room set.
	ChangeRoomDiscovered
	// ChangeConversationOpened fires when the active conversation switches.
	ChangeConversationOpened
	// ChangeTranscriptReplaced delivers a wholesale transcript (history load).
	ChangeTranscriptReplaced
	// ChangeMessageAppended delivers one accepted message for the active view.
	ChangeMessageAppended
	// ChangeSystemNotice is a transient join/leave notice, not part of state.
	ChangeSystemNotice
	// ChangeUnseenMarked sets the unseen badge for a peer.
	ChangeUnseenMarked
	// ChangeUnseenCleared clears the unseen badge for a peer.
	ChangeUnseenCleared
)

// Change describes one state mutation (or display-only notice) produced while
// handling an event. The view projection maps changes to UI effects; nothing
// here touches the UI directly.
type Change struct {
	Kind         ChangeKind
	Identity     string
	Reason       string
	Users        []string
	Room         string
	Conversation ConversationRef
	Message      ChatMessage
	Messages     []ChatMessage
	// Scroll means the view must scroll to the bottom after rendering the
	// appended or replaced transcript content.
	Scroll bool
	Notice string
	Peer   string
}
