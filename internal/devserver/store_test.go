package devserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedsGeneralRoom(t *testing.T) {
	store := testStore(t)

	rooms, err := store.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0] != "General" {
		t.Fatalf("rooms = %v, want seeded General", rooms)
	}
}

func TestStoreCreateRoomDuplicate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.CreateRoom(ctx, "Dev"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateRoom(ctx, "Dev"); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("duplicate create = %v, want ErrRoomExists", err)
	}
}

func TestStoreHistoryOrderedOldestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, text := range []string{"uno", "dos", "tres"} {
		if err := store.SaveRoomMessage(ctx, "bob", "General", text, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// Private messages never show up in room history.
	if err := store.SavePrivateMessage(ctx, "bob", "ana", "secreto", base); err != nil {
		t.Fatalf("save private: %v", err)
	}

	entries, err := store.History(ctx, "General")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %+v, want 3", entries)
	}
	for i, want := range []string{"uno", "dos", "tres"} {
		if entries[i].Mensaje != want {
			t.Fatalf("entry %d = %q, want %q (oldest first)", i, entries[i].Mensaje, want)
		}
	}
}
