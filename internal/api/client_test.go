package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chateo/client-go/internal/session"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	logger := zerolog.Nop()
	return New(ts.URL, time.Second, &logger)
}

func TestListRooms(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/salas" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["General","Dev"]`))
	}))

	rooms, err := c.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if !reflect.DeepEqual(rooms, []string{"General", "Dev"}) {
		t.Fatalf("rooms = %v", rooms)
	}
}

func TestCreateRoomDuplicate(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"La sala ya existe"}`))
	}))

	err := c.CreateRoom(context.Background(), "General")
	if !errors.Is(err, session.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if got := err.Error(); !strings.Contains(got, "La sala ya existe") {
		t.Fatalf("server message not surfaced verbatim: %q", got)
	}
}

func TestCreateRoomServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := c.CreateRoom(context.Background(), "General")
	if err == nil || errors.Is(err, session.ErrDuplicateName) {
		t.Fatalf("err = %v, want generic server error", err)
	}
}

func TestCreateRoomSuccess(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/crear-sala" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"sala":"Random"}`))
	}))

	if err := c.CreateRoom(context.Background(), "Random"); err != nil {
		t.Fatalf("create room: %v", err)
	}
}

func TestHistory(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/historial/General" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[{"usuario":"bob","mensaje":"hola","fecha_hora":"2026-03-01 09:00:00"}]`))
	}))

	entries, err := c.History(context.Background(), "General")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].Usuario != "bob" {
		t.Fatalf("entries = %+v", entries)
	}
}
