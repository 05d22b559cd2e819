// Package api talks to the chat backend's REST endpoints: room listing,
// room creation, and room history.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/proto"
	"github.com/chateo/client-go/internal/session"
)

// Client is the REST collaborator. All calls are plain request/response;
// no state is kept between them.
type Client struct {
	base string
	http *http.Client
	log  *zerolog.Logger
}

// New builds a client for the given base URL (scheme://host[:port]).
func New(base string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  logger,
	}
}

// ListRooms fetches the available room names.
func (c *Client) ListRooms(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/salas", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list rooms: unexpected status %d", resp.StatusCode)
	}

	var rooms []string
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("list rooms: decode: %w", err)
	}
	return rooms, nil
}

// CreateRoom asks the backend to create a room. A 4xx response maps to
// session.ErrDuplicateName with the server's message attached verbatim;
// any other failure maps to a generic server error.
func (c *Client) CreateRoom(ctx context.Context, name string) error {
	body, err := json.Marshal(proto.CrearSalaRequest{Nombre: name})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/crear-sala", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	reason := serverReason(resp.Body)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%s: %w", reason, session.ErrDuplicateName)
	}
	return fmt.Errorf("create room: %s: status %d", reason, resp.StatusCode)
}

// History fetches a room's message history, oldest-first.
func (c *Client) History(ctx context.Context, room string) ([]proto.HistorialEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/historial/"+url.PathEscape(room), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", room, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history %s: unexpected status %d", room, resp.StatusCode)
	}

	var entries []proto.HistorialEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("history %s: decode: %w", room, err)
	}
	return entries, nil
}

func serverReason(body io.Reader) string {
	var apiErr proto.APIError
	if err := json.NewDecoder(body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return "server error"
}
