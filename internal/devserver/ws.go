package devserver

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chateo/client-go/internal/proto"
)

// handleWS upgrades the request and bridges the connection to the hub.
func (s *Server) handleWS(c *gin.Context) {
	wsConn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer wsConn.Close(websocket.StatusInternalError, "internal error")

	client := &conn{
		id:   uuid.NewString(),
		send: make(chan proto.Envelope, 16),
	}
	s.hub.addConn(client)
	defer s.hub.Disconnect(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.readLoop(ctx, wsConn, client)
	}()
	go func() {
		errCh <- s.writeLoop(ctx, wsConn, client)
	}()

	err = <-errCh
	cancel()
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, -1:
	default:
		s.log.Debug().Err(err).Str("conn_id", client.id).Msg("ws closed with error")
	}
	wsConn.Close(status, reason)
}

func (s *Server) readLoop(ctx context.Context, wsConn *websocket.Conn, client *conn) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, wsConn, &env); err != nil {
			return err
		}
		s.dispatch(ctx, client, env)
	}
}

func (s *Server) writeLoop(ctx context.Context, wsConn *websocket.Conn, client *conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-client.send:
			if err := wsjson.Write(ctx, wsConn, env); err != nil {
				return err
			}
		}
	}
}

func (s *Server) dispatch(ctx context.Context, client *conn, env proto.Envelope) {
	switch env.Event {
	case proto.EventRegistrarUsuario:
		var ev proto.RegistrarUsuario
		if !s.decode(env.Data, &ev, client) {
			return
		}
		s.hub.Register(client, ev.Username)
	case proto.EventUnirseSala:
		var ev proto.UnirseSala
		if !s.decode(env.Data, &ev, client) {
			return
		}
		s.hub.Join(client, ev.Sala)
	case proto.EventEnviarMensaje:
		var ev proto.EnviarMensaje
		if !s.decode(env.Data, &ev, client) {
			return
		}
		s.hub.RoomMessage(ctx, client, ev.Mensaje, ev.Sala)
	case proto.EventEnviarMensajePrivado:
		var ev proto.EnviarMensajePrivado
		if !s.decode(env.Data, &ev, client) {
			return
		}
		s.hub.PrivateMessage(ctx, client, ev.Mensaje, ev.Destinatario)
	case proto.EventSolicitarUsuariosSala:
		var ev proto.SolicitarUsuariosSala
		if !s.decode(env.Data, &ev, client) {
			return
		}
		s.hub.RoomUsers(client, ev.Sala)
	default:
		client.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "evento desconocido"}))
	}
}

func (s *Server) decode(data json.RawMessage, v any, client *conn) bool {
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn().Err(err).Str("conn_id", client.id).Msg("bad payload")
		client.push(mustEnvelope(proto.EventError, proto.ErrorData{Mensaje: "payload inválido"}))
		return false
	}
	return true
}
