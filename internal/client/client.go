// Package client runs the single-threaded event loop that joins server-pushed
// events and user actions over the shared session state. All session mutation
// happens on the loop goroutine; I/O runs elsewhere and re-enters the loop as
// a continuation task.
package client

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/proto"
	"github.com/chateo/client-go/internal/session"
	"github.com/chateo/client-go/internal/view"
)

// DefaultRoom is auto-joined after registration when the server lists it.
const DefaultRoom = "General"

// Emitter sends typed outbound events to the realtime connection.
type Emitter interface {
	EmitRegister(ctx context.Context, username string) error
	EmitJoinRoom(ctx context.Context, sala string) error
	EmitRoomMessage(ctx context.Context, mensaje, sala string) error
	EmitPrivateMessage(ctx context.Context, mensaje, destinatario string) error
	EmitRequestRoomUsers(ctx context.Context, sala string) error
}

// RoomAPI is the REST collaborator for room listing, creation, and history.
type RoomAPI interface {
	ListRooms(ctx context.Context) ([]string, error)
	CreateRoom(ctx context.Context, name string) error
	History(ctx context.Context, room string) ([]proto.HistorialEntry, error)
}

// Renderer applies projected UI effects.
type Renderer interface {
	Apply([]view.Effect)
}

// Client owns the event loop. Exported action methods are safe to call from
// any goroutine; they enqueue work that the loop executes.
type Client struct {
	session  *session.Session
	emitter  Emitter
	api      RoomAPI
	renderer Renderer
	log      *zerolog.Logger

	// tasks carries both user actions and async continuations back onto
	// the loop goroutine.
	tasks chan func(context.Context)
}

// New wires a client around the given collaborators.
func New(s *session.Session, emitter Emitter, roomAPI RoomAPI, renderer Renderer, logger *zerolog.Logger) *Client {
	return &Client{
		session:  s,
		emitter:  emitter,
		api:      roomAPI,
		renderer: renderer,
		log:      logger,
		tasks:    make(chan func(context.Context), 16),
	}
}

// Run consumes events and tasks until ctx is cancelled or the event stream
// closes. Events and tasks are processed strictly in arrival order; no two
// session mutations ever overlap.
func (c *Client) Run(ctx context.Context, events <-chan proto.Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-events:
			if !ok {
				return nil
			}
			c.handleEnvelope(ctx, env)
		case task := <-c.tasks:
			task(ctx)
		}
	}
}

func (c *Client) handleEnvelope(ctx context.Context, env proto.Envelope) {
	changes, err := c.session.HandleEvent(env)
	if err != nil {
		c.log.Warn().Err(err).Str("event", env.Event).Msg("event rejected")
		return
	}
	c.render(changes)

	for _, ch := range changes {
		if ch.Kind == session.ChangeRegistered {
			c.loadRooms(ctx)
		}
	}
}

func (c *Client) render(changes []session.Change) {
	if len(changes) == 0 {
		return
	}
	c.renderer.Apply(view.Project(changes))
}

// post enqueues work for the loop goroutine, dropping it if the loop is gone.
func (c *Client) post(ctx context.Context, task func(context.Context)) {
	select {
	case c.tasks <- task:
	case <-ctx.Done():
	}
}

// loadRooms fetches the room list off-loop, then merges it and auto-joins the
// default room from the loop.
func (c *Client) loadRooms(ctx context.Context) {
	go func() {
		rooms, err := c.api.ListRooms(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("room list fetch failed")
			return
		}
		c.post(ctx, func(ctx context.Context) {
			var changes []session.Change
			hasDefault := false
			for _, r := range rooms {
				if c.session.UpsertRoom(r) {
					changes = append(changes, session.Change{Kind: session.ChangeRoomDiscovered, Room: r})
				}
				if r == DefaultRoom {
					hasDefault = true
				}
			}
			c.render(changes)
			if hasDefault {
				c.doJoinRoom(ctx, DefaultRoom)
			}
		})
	}()
}
