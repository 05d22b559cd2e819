package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/chateo/client-go/internal/session"
)

// TermRenderer applies effects to a line-oriented terminal. A terminal
// transcript always follows its tail, so the viewport reports distance zero
// and scroll effects are satisfied by the write itself.
type TermRenderer struct {
	out io.Writer
}

// NewTermRenderer builds a renderer writing to out.
func NewTermRenderer(out io.Writer) *TermRenderer {
	return &TermRenderer{out: out}
}

// DistanceFromBottom implements session.Viewport.
func (r *TermRenderer) DistanceFromBottom() int { return 0 }

// Apply performs the effects in order.
func (r *TermRenderer) Apply(effects []Effect) {
	for _, e := range effects {
		switch e.Kind {
		case EffectShowIdentity:
			fmt.Fprintf(r.out, "logged in as %s\n", e.Identity)
		case EffectShowError:
			fmt.Fprintf(r.out, "error: %s\n", e.Error)
		case EffectRenderRoster:
			fmt.Fprintf(r.out, "online: %s\n", joinOrNone(e.Users))
		case EffectRenderParticipants:
			fmt.Fprintf(r.out, "participants (%d): %s\n", len(e.Users), joinOrNone(e.Users))
		case EffectAddRoomEntry:
			fmt.Fprintf(r.out, "room available: %s\n", e.Room)
		case EffectOpenConversation:
			r.renderHeader(e.Conversation)
		case EffectAppendMessage:
			r.renderMessage(e.Message)
		case EffectReplaceTranscript:
			for _, m := range e.Messages {
				r.renderMessage(m)
			}
		case EffectScrollToBottom:
			// Terminal output is already at the newest line.
		case EffectShowNotice:
			fmt.Fprintf(r.out, "* %s\n", e.Notice)
		case EffectSetUnseenBadge:
			fmt.Fprintf(r.out, "new private message from %s\n", e.Peer)
		case EffectClearUnseenBadge:
			// Nothing to erase on an append-only terminal.
		}
	}
}

func (r *TermRenderer) renderHeader(ref session.ConversationRef) {
	switch {
	case ref.IsRoom():
		fmt.Fprintf(r.out, "--- %s ---\n", ref.Target)
	case ref.IsDirect():
		fmt.Fprintf(r.out, "--- private chat with %s ---\n", ref.Target)
	default:
		fmt.Fprintln(r.out, "--- no conversation ---")
	}
}

func (r *TermRenderer) renderMessage(m Message) {
	author := m.Author
	if m.Self {
		author = "you"
	}
	prefix := ""
	if m.Direct {
		prefix = "(private) "
	}
	if m.Time != "" {
		fmt.Fprintf(r.out, "[%s] %s%s: %s\n", m.Time, prefix, author, m.Body)
		return
	}
	fmt.Fprintf(r.out, "%s%s: %s\n", prefix, author, m.Body)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(nobody)"
	}
	return strings.Join(names, ", ")
}
