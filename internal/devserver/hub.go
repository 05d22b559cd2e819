package devserver

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/proto"
)

// conn is one websocket client as the hub sees it.
type conn struct {
	id       string
	username string
	room     string
	send     chan proto.Envelope
}

func (c *conn) push(env proto.Envelope) {
	select {
	case c.send <- env:
	default:
		// Drop if slow consumer.
	}
}

// Hub tracks connected users and room membership in memory and implements
// the broadcast semantics of the production backend: global roster snapshots
// on register/disconnect, room-scoped join/leave/message fan-out, and private
// messages echoed to both parties.
type Hub struct {
	store *Store
	log   *zerolog.Logger

	mu    sync.Mutex
	conns map[string]*conn
}

// NewHub builds a hub over the given store.
func NewHub(store *Store, logger *zerolog.Logger) *Hub {
	return &Hub{
		store: store,
		log:   logger,
		conns: make(map[string]*conn),
	}
}

func (h *Hub) addConn(c *conn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

// Register assigns a username to the connection. Duplicate or empty names
// get an error event; success broadcasts the fresh roster to everyone.
func (h *Hub) Register(c *conn, username string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if username == "" {
		c.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "Nombre de usuario requerido"}))
		return
	}
	for _, other := range h.conns {
		if other.username == username {
			c.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "Nombre de usuario ya en uso"}))
			return
		}
	}

	c.username = username
	roster := h.rosterLocked()
	for _, other := range h.conns {
		other.push(mustEnvelope(proto.EventUsuariosConectados, proto.Usuarios{Usuarios: roster}))
	}
	c.push(mustEnvelope(proto.EventRegistroExitoso, proto.RegistroExitoso{Username: username}))

	h.log.Info().Str("username", username).Msg("user registered")
}

// Disconnect removes the connection, notifying its room and refreshing the
// global roster.
func (h *Hub) Disconnect(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, c.id)
	if c.username == "" {
		return
	}
	if c.room != "" {
		h.notifyRoomLocked(c.room, proto.EventUsuarioSalio, c.username)
	}

	roster := h.rosterLocked()
	for _, other := range h.conns {
		other.push(mustEnvelope(proto.EventUsuariosGlobales, proto.Usuarios{Usuarios: roster}))
	}

	h.log.Info().Str("username", c.username).Msg("user disconnected")
}

// Join moves the connection into a room, announcing the leave to the old room
// and the join to the new one.
func (h *Hub) Join(c *conn, sala string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.username == "" {
		c.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "Usuario no registrado"}))
		return
	}

	if prev := c.room; prev != "" && prev != sala {
		c.room = ""
		h.notifyRoomLocked(prev, proto.EventUsuarioSalio, c.username)
	}

	c.room = sala
	h.notifyRoomLocked(sala, proto.EventUsuarioUnido, c.username)
}

// RoomMessage persists and fans a chat message out to the room.
func (h *Hub) RoomMessage(ctx context.Context, c *conn, mensaje, sala string) {
	if c.username == "" {
		c.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "Usuario no registrado"}))
		return
	}

	now := time.Now()
	if err := h.store.SaveRoomMessage(ctx, c.username, sala, mensaje, now); err != nil {
		h.log.Error().Err(err).Str("sala", sala).Msg("persist message failed")
	}

	env := mustEnvelope(proto.EventNuevoMensaje, proto.NuevoMensaje{
		Usuario:   c.username,
		Mensaje:   mensaje,
		FechaHora: now.Format(proto.TimeLayout),
		Sala:      sala,
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, other := range h.conns {
		if other.room == sala {
			other.push(env)
		}
	}
}

// PrivateMessage persists a direct message and delivers it to the recipient
// plus an echo to the sender.
func (h *Hub) PrivateMessage(ctx context.Context, c *conn, mensaje, destinatario string) {
	if c.username == "" {
		c.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "Usuario no registrado"}))
		return
	}

	now := time.Now()
	if err := h.store.SavePrivateMessage(ctx, c.username, destinatario, mensaje, now); err != nil {
		h.log.Error().Err(err).Str("destinatario", destinatario).Msg("persist private message failed")
	}

	env := mustEnvelope(proto.EventMensajePrivado, proto.MensajePrivado{
		Remitente:    c.username,
		Destinatario: destinatario,
		Mensaje:      mensaje,
		FechaHora:    now.Format(proto.TimeLayout),
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, other := range h.conns {
		if other.username == destinatario {
			other.push(env)
		}
	}
	c.push(env)
}

// RoomUsers answers a participant snapshot request.
func (h *Hub) RoomUsers(c *conn, sala string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.push(mustEnvelope(proto.EventUsuariosSala, proto.UsuariosSala{
		Sala:     sala,
		Usuarios: h.roomUsersLocked(sala),
	}))
}

// AnnounceRoom broadcasts a freshly created room to everyone.
func (h *Hub) AnnounceRoom(sala string) {
	env := mustEnvelope(proto.EventNuevaSala, proto.NuevaSala{Sala: sala})
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, other := range h.conns {
		other.push(env)
	}
}

// notifyRoomLocked sends a join/leave event with the current participant
// snapshot to every member of the room.
func (h *Hub) notifyRoomLocked(sala, event, actor string) {
	users := h.roomUsersLocked(sala)
	var env proto.Envelope
	if event == proto.EventUsuarioUnido {
		env = mustEnvelope(event, proto.UsuarioUnido{Username: actor, Usuarios: users})
	} else {
		env = mustEnvelope(event, proto.UsuarioSalio{Username: actor, Usuarios: users})
	}
	for _, other := range h.conns {
		if other.room == sala {
			other.push(env)
		}
	}
}

func (h *Hub) rosterLocked() []string {
	users := make([]string, 0, len(h.conns))
	for _, c := range h.conns {
		if c.username != "" {
			users = append(users, c.username)
		}
	}
	return users
}

func (h *Hub) roomUsersLocked(sala string) []string {
	users := make([]string, 0)
	for _, c := range h.conns {
		if c.room == sala && c.username != "" {
			users = append(users, c.username)
		}
	}
	return users
}

func mustEnvelope(event string, payload any) proto.Envelope {
	env, err := proto.NewEnvelope(event, payload)
	if err != nil {
		// Payload types here are all static structs; this cannot fail.
		panic(err)
	}
	return env
}
