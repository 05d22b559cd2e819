// Package devserver is a self-contained stand-in for the production chat
// backend: the REST endpoints and realtime protocol the client targets,
// backed by SQLite. It exists for local development and end-to-end tests.
package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/proto"
)

// Server exposes the REST API and the websocket endpoint.
type Server struct {
	store *Store
	hub   *Hub
	log   *zerolog.Logger
}

// New builds a server over the given store.
func New(store *Store, logger *zerolog.Logger) *Server {
	return &Server{
		store: store,
		hub:   NewHub(store, logger),
		log:   logger,
	}
}

// Handler returns the HTTP handler for the whole server.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/api/salas", s.listRooms)
	r.POST("/api/crear-sala", s.createRoom)
	r.GET("/api/historial/:sala", s.history)
	r.GET("/ws", s.handleWS)

	return r
}

func (s *Server) listRooms(c *gin.Context) {
	rooms, err := s.store.ListRooms(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list rooms failed")
		c.JSON(http.StatusOK, []string{})
		return
	}
	if rooms == nil {
		rooms = []string{}
	}
	c.JSON(http.StatusOK, rooms)
}

func (s *Server) createRoom(c *gin.Context) {
	var req proto.CrearSalaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nombre == "" {
		c.JSON(http.StatusBadRequest, proto.APIError{Error: "Nombre de sala requerido"})
		return
	}

	if err := s.store.CreateRoom(c.Request.Context(), req.Nombre); err != nil {
		if errors.Is(err, ErrRoomExists) {
			c.JSON(http.StatusBadRequest, proto.APIError{Error: "La sala ya existe"})
			return
		}
		s.log.Error().Err(err).Str("sala", req.Nombre).Msg("create room failed")
		c.JSON(http.StatusInternalServerError, proto.APIError{Error: "Error al crear sala"})
		return
	}

	s.hub.AnnounceRoom(req.Nombre)
	c.JSON(http.StatusOK, proto.CrearSalaResponse{Success: true, Sala: req.Nombre})
}

func (s *Server) history(c *gin.Context) {
	entries, err := s.store.History(c.Request.Context(), c.Param("sala"))
	if err != nil {
		s.log.Error().Err(err).Str("sala", c.Param("sala")).Msg("history failed")
		c.JSON(http.StatusOK, []proto.HistorialEntry{})
		return
	}
	c.JSON(http.StatusOK, entries)
}
