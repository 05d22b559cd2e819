package view

import (
	"html"
	"strings"

	"github.com/chateo/client-go/internal/session"
)

// Project maps session changes to an ordered list of UI effects. It owns no
// state and performs no mutation: the same changes always yield the same
// effects. Scroll effects are emitted after the content effect they belong
// to, so a renderer that applies effects in order gets render-then-scroll
// for free.
func Project(changes []session.Change) []Effect {
	var effects []Effect
	for _, c := range changes {
		switch c.Kind {
		case session.ChangeRegistered:
			effects = append(effects, Effect{Kind: EffectShowIdentity, Identity: c.Identity})
		case session.ChangeRejected:
			effects = append(effects, Effect{Kind: EffectShowError, Error: c.Reason})
		case session.ChangeRosterReplaced:
			effects = append(effects, Effect{Kind: EffectRenderRoster, Users: c.Users})
		case session.ChangeParticipantsReplaced:
			effects = append(effects, Effect{Kind: EffectRenderParticipants, Users: c.Users})
		case session.ChangeRoomDiscovered:
			effects = append(effects, Effect{Kind: EffectAddRoomEntry, Room: c.Room})
		case session.ChangeConversationOpened:
			effects = append(effects, Effect{Kind: EffectOpenConversation, Conversation: c.Conversation})
		case session.ChangeMessageAppended:
			effects = append(effects, Effect{Kind: EffectAppendMessage, Message: renderMessage(c.Message)})
			if c.Scroll {
				effects = append(effects, Effect{Kind: EffectScrollToBottom})
			}
		case session.ChangeTranscriptReplaced:
			msgs := make([]Message, 0, len(c.Messages))
			for _, m := range c.Messages {
				msgs = append(msgs, renderMessage(m))
			}
			effects = append(effects, Effect{Kind: EffectReplaceTranscript, Messages: msgs})
			if c.Scroll {
				effects = append(effects, Effect{Kind: EffectScrollToBottom})
			}
		case session.ChangeSystemNotice:
			effects = append(effects, Effect{Kind: EffectShowNotice, Notice: c.Notice})
		case session.ChangeUnseenMarked:
			effects = append(effects, Effect{Kind: EffectSetUnseenBadge, Peer: c.Peer})
		case session.ChangeUnseenCleared:
			effects = append(effects, Effect{Kind: EffectClearUnseenBadge, Peer: c.Peer})
		}
	}
	return effects
}

func renderMessage(m session.ChatMessage) Message {
	t := ""
	if !m.Timestamp.IsZero() {
		t = m.Timestamp.Format("15:04")
	}
	return Message{
		Author: EscapeBody(m.Author),
		Body:   EscapeBody(m.Body),
		Time:   t,
		Self:   m.Self,
		Direct: m.Conversation.IsDirect(),
	}
}

// EscapeBody neutralizes inbound text before display: markup is escaped and
// control characters dropped, so neither HTML nor terminal escape sequences
// survive from the wire.
func EscapeBody(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return html.EscapeString(b.String())
}

// FilterNames returns the names containing term, case-insensitively.
// An empty term keeps everything.
func FilterNames(names []string, term string) []string {
	if term == "" {
		return names
	}
	lower := strings.ToLower(term)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			out = append(out, n)
		}
	}
	return out
}
