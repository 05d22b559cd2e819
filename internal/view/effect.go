package view

import "github.com/chateo/client-go/internal/session"

// EffectKind tags a UI effect.
type EffectKind int

const (
	// EffectShowIdentity displays the registered identity.
	EffectShowIdentity EffectKind = iota
	// EffectShowError displays a non-fatal error message inline.
	EffectShowError
	// EffectRenderRoster re-renders the online user list.
	EffectRenderRoster
	// EffectRenderParticipants re-renders the active room's participant list.
	EffectRenderParticipants
	// EffectAddRoomEntry adds one room to the room list.
	EffectAddRoomEntry
	// EffectOpenConversation clears the message view and sets the header.
	EffectOpenConversation
	// EffectAppendMessage appends one rendered message to the message view.
	EffectAppendMessage
	// EffectReplaceTranscript swaps the whole message view content.
	EffectReplaceTranscript
	// EffectScrollToBottom pins the message view to the newest message. It is
	// always emitted after the append/replace it belongs to and must be
	// applied only once that content has been laid out.
	EffectScrollToBottom
	// EffectShowNotice appends a transient system notice to the message view.
	EffectShowNotice
	// EffectSetUnseenBadge marks a peer's list entry as having unseen mail.
	EffectSetUnseenBadge
	// EffectClearUnseenBadge removes the unseen marker from a peer's entry.
	EffectClearUnseenBadge
)

// Message is the display form of a chat message: body sanitized against
// markup injection, timestamp pre-formatted.
type Message struct {
	Author string
	Body   string
	Time   string
	Self   bool
	Direct bool
}

// Effect is one UI mutation the renderer must perform. Effects are ordered;
// a scroll effect always follows the content change that made it necessary.
type Effect struct {
	Kind         EffectKind
	Identity     string
	Error        string
	Users        []string
	Room         string
	Conversation session.ConversationRef
	Message      Message
	Messages     []Message
	Notice       string
	Peer         string
}
