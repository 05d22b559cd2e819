package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chateo/client-go/internal/proto"
)

// ErrRoomExists is returned when creating a room whose name is taken.
var ErrRoomExists = errors.New("room already exists")

// historyLimit caps how many messages a history request returns.
const historyLimit = 100

// Store persists rooms and messages in SQLite, mirroring the production
// backend's schema.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and initializes) the database at path. ":memory:" works
// for tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS salas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre TEXT UNIQUE NOT NULL,
	fecha_creacion TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS mensajes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	usuario TEXT NOT NULL,
	sala TEXT,
	destinatario TEXT,
	mensaje TEXT NOT NULL,
	fecha_hora TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	tipo TEXT DEFAULT 'sala'
);
INSERT INTO salas (nombre) VALUES ('General') ON CONFLICT (nombre) DO NOTHING;
`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListRooms returns all room names, alphabetically.
func (s *Store) ListRooms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT nombre FROM salas ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, name)
	}
	return rooms, rows.Err()
}

// CreateRoom inserts a room, failing with ErrRoomExists on a name collision.
func (s *Store) CreateRoom(ctx context.Context, nombre string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO salas (nombre) VALUES (?)`, nombre)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrRoomExists
		}
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// SaveRoomMessage persists a room-scoped message.
func (s *Store) SaveRoomMessage(ctx context.Context, usuario, sala, mensaje string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mensajes (usuario, sala, mensaje, fecha_hora, tipo) VALUES (?, ?, ?, ?, 'sala')`,
		usuario, sala, mensaje, ts.Format(proto.TimeLayout))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// SavePrivateMessage persists a direct message.
func (s *Store) SavePrivateMessage(ctx context.Context, remitente, destinatario, mensaje string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mensajes (usuario, destinatario, mensaje, fecha_hora, tipo) VALUES (?, ?, ?, ?, 'privado')`,
		remitente, destinatario, mensaje, ts.Format(proto.TimeLayout))
	if err != nil {
		return fmt.Errorf("insert private message: %w", err)
	}
	return nil
}

// History returns a room's messages, oldest-first, capped at historyLimit.
func (s *Store) History(ctx context.Context, sala string) ([]proto.HistorialEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT usuario, mensaje, fecha_hora
		FROM mensajes
		WHERE sala = ? AND tipo = 'sala'
		ORDER BY fecha_hora ASC
		LIMIT ?`, sala, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	entries := make([]proto.HistorialEntry, 0)
	for rows.Next() {
		var e proto.HistorialEntry
		if err := rows.Scan(&e.Usuario, &e.Mensaje, &e.FechaHora); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
