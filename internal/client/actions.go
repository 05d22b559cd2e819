package client

import (
	"context"
	"strings"

	"github.com/chateo/client-go/internal/session"
	"github.com/chateo/client-go/internal/view"
)

// SendMessage sends text to the active conversation. Empty text (after
// trimming) or no active conversation makes it a no-op. The message is not
// appended locally; the server echo comes back through the normal inbound
// path so the transcript has a single source of truth.
func (c *Client) SendMessage(ctx context.Context, text string) {
	c.post(ctx, func(ctx context.Context) { c.doSendMessage(ctx, text) })
}

// CreateRoom validates the name locally, then asks the backend to create it
// and joins it on success.
func (c *Client) CreateRoom(ctx context.Context, name string) {
	c.post(ctx, func(ctx context.Context) { c.doCreateRoom(ctx, name) })
}

// JoinRoom opens a room conversation: upsert, activate, announce, fetch history.
func (c *Client) JoinRoom(ctx context.Context, name string) {
	c.post(ctx, func(ctx context.Context) { c.doJoinRoom(ctx, name) })
}

// OpenDirectChat opens the private conversation with peer.
func (c *Client) OpenDirectChat(ctx context.Context, peer string) {
	c.post(ctx, func(ctx context.Context) { c.doOpenDirectChat(ctx, peer) })
}

// RequestParticipants asks the server for the active room's participant list.
func (c *Client) RequestParticipants(ctx context.Context) {
	c.post(ctx, func(ctx context.Context) { c.doRequestParticipants(ctx) })
}

func (c *Client) doSendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	active := c.session.Active()
	switch active.Kind {
	case session.ConversationRoom:
		if err := c.emitter.EmitRoomMessage(ctx, text, active.Target); err != nil {
			c.log.Warn().Err(err).Str("room", active.Target).Msg("send failed")
		}
	case session.ConversationDirect:
		if err := c.emitter.EmitPrivateMessage(ctx, text, active.Target); err != nil {
			c.log.Warn().Err(err).Str("peer", active.Target).Msg("send failed")
		}
	default:
		// No conversation open: silently dropped.
	}
}

func (c *Client) doCreateRoom(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.renderer.Apply([]view.Effect{{Kind: view.EffectShowError, Error: "room name is required"}})
		return
	}

	go func() {
		err := c.api.CreateRoom(ctx, name)
		c.post(ctx, func(ctx context.Context) {
			if err != nil {
				c.renderer.Apply([]view.Effect{{Kind: view.EffectShowError, Error: err.Error()}})
				return
			}
			c.doJoinRoom(ctx, name)
		})
	}()
}

func (c *Client) doJoinRoom(ctx context.Context, name string) {
	changes := c.session.SetActiveConversation(session.RoomRef(name))
	c.render(changes)

	if err := c.emitter.EmitJoinRoom(ctx, name); err != nil {
		c.log.Warn().Err(err).Str("room", name).Msg("join announcement failed")
	}

	target, gen := c.session.BeginHistoryLoad()
	go func() {
		entries, err := c.api.History(ctx, name)
		c.post(ctx, func(ctx context.Context) {
			if err != nil {
				// View stays in its prior/empty state, no retry.
				c.log.Error().Err(err).Str("room", name).Msg("history fetch failed")
				c.session.AbortHistoryLoad(target, gen)
				return
			}
			msgs := session.HistoryMessages(name, entries, c.session.Identity())
			if changes, ok := c.session.CompleteHistoryLoad(target, gen, msgs); ok {
				c.render(changes)
			}
		})
	}()
}

func (c *Client) doOpenDirectChat(ctx context.Context, peer string) {
	// No private-history endpoint exists; the transcript starts empty.
	changes := c.session.SetActiveConversation(session.DirectRef(peer))
	c.render(changes)
}

func (c *Client) doRequestParticipants(ctx context.Context) {
	active := c.session.Active()
	if !active.IsRoom() {
		return
	}
	if err := c.emitter.EmitRequestRoomUsers(ctx, active.Target); err != nil {
		c.log.Warn().Err(err).Str("room", active.Target).Msg("participant request failed")
	}
}
