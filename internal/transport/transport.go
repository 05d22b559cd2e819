// Package transport wraps the realtime connection to the chat backend as a
// typed inbound-event stream and a typed outbound-event emitter.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/proto"
)

// ErrNotConnected is returned by emits while the adapter has no live socket.
var ErrNotConnected = errors.New("transport: not connected")

// Adapter maintains the websocket connection, reconnecting with capped
// exponential backoff, and fans inbound envelopes into a single channel
// consumed by the client event loop.
type Adapter struct {
	url        string
	minBackoff time.Duration
	maxBackoff time.Duration
	log        *zerolog.Logger

	events    chan proto.Envelope
	onConnect func(context.Context)

	mu   sync.Mutex
	conn *websocket.Conn
}

// New builds an adapter for the given websocket URL.
func New(url string, minBackoff, maxBackoff time.Duration, logger *zerolog.Logger) *Adapter {
	if minBackoff <= 0 {
		minBackoff = 500 * time.Millisecond
	}
	if maxBackoff < minBackoff {
		maxBackoff = 15 * time.Second
	}
	return &Adapter{
		url:        url,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		log:        logger,
		events:     make(chan proto.Envelope, 32),
	}
}

// Events returns the inbound event stream. The channel is closed when Run
// returns.
func (a *Adapter) Events() <-chan proto.Envelope {
	return a.events
}

// OnConnect registers a hook invoked after every successful dial, including
// reconnects. The client uses it to re-submit registration.
func (a *Adapter) OnConnect(f func(context.Context)) {
	a.onConnect = f
}

// Run dials and reads until ctx is cancelled. Read failures trigger a redial
// with backoff; missed events are not replayed.
func (a *Adapter) Run(ctx context.Context) error {
	defer close(a.events)

	backoff := a.minBackoff
	for {
		conn, _, err := websocket.Dial(ctx, a.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.log.Warn().Err(err).Str("url", a.url).Dur("backoff", backoff).Msg("dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, a.maxBackoff)
			continue
		}
		backoff = a.minBackoff

		a.setConn(conn)
		a.log.Info().Str("url", a.url).Msg("connected")
		if a.onConnect != nil {
			a.onConnect(ctx)
		}

		err = a.readLoop(ctx, conn)
		a.setConn(nil)
		conn.Close(websocket.StatusNormalClosure, "closing")

		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil
		}
		a.log.Warn().Err(err).Msg("connection lost, reconnecting")
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, a.maxBackoff)
	}
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return err
		}
		select {
		case a.events <- env:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// EmitRegister submits the display name for registration.
func (a *Adapter) EmitRegister(ctx context.Context, username string) error {
	return a.emit(ctx, proto.EventRegistrarUsuario, proto.RegistrarUsuario{Username: username})
}

// EmitJoinRoom announces joining a room.
func (a *Adapter) EmitJoinRoom(ctx context.Context, sala string) error {
	return a.emit(ctx, proto.EventUnirseSala, proto.UnirseSala{Sala: sala})
}

// EmitRoomMessage sends a chat message to a room.
func (a *Adapter) EmitRoomMessage(ctx context.Context, mensaje, sala string) error {
	return a.emit(ctx, proto.EventEnviarMensaje, proto.EnviarMensaje{Mensaje: mensaje, Sala: sala})
}

// EmitPrivateMessage sends a direct message.
func (a *Adapter) EmitPrivateMessage(ctx context.Context, mensaje, destinatario string) error {
	return a.emit(ctx, proto.EventEnviarMensajePrivado, proto.EnviarMensajePrivado{Mensaje: mensaje, Destinatario: destinatario})
}

// EmitRequestRoomUsers asks for the participant snapshot of a room.
func (a *Adapter) EmitRequestRoomUsers(ctx context.Context, sala string) error {
	return a.emit(ctx, proto.EventSolicitarUsuariosSala, proto.SolicitarUsuariosSala{Sala: sala})
}

func (a *Adapter) emit(ctx context.Context, event string, payload any) error {
	env, err := proto.NewEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return ErrNotConnected
	}
	if err := wsjson.Write(ctx, a.conn, env); err != nil {
		return fmt.Errorf("write %s: %w", event, err)
	}
	return nil
}

func (a *Adapter) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
