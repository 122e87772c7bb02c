package store

import (
	"errors"
	"testing"

	"botornot/internal/domain"
)

func TestRoomRegistry(t *testing.T) {
	r := NewRoomRegistry()

	// The registry never dereferences its values, so a nil session is
	// fine for exercising the keying behavior
	if err := r.Create("AAAAA", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Create("AAAAA", nil); !errors.Is(err, domain.ErrRoomExists) {
		t.Errorf("duplicate create: got %v, want ErrRoomExists", err)
	}

	if _, err := r.Get("AAAAA"); err != nil {
		t.Errorf("get: %v", err)
	}
	if _, err := r.Get("ZZZZZ"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("missing get: got %v, want ErrRoomNotFound", err)
	}

	if got := r.Len(); got != 1 {
		t.Errorf("len: got %d, want 1", got)
	}

	r.Delete("AAAAA")
	if _, err := r.Get("AAAAA"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("get after delete: got %v, want ErrRoomNotFound", err)
	}
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()

	s.Save("tok1", "ROOMA", "u1")
	s.Save("tok2", "ROOMA", "u2")
	s.Save("tok3", "ROOMB", "u3")

	room, user, ok := s.Resolve("tok1")
	if !ok || room != "ROOMA" || user != "u1" {
		t.Errorf("resolve tok1: got (%s, %s, %v)", room, user, ok)
	}

	if _, _, ok := s.Resolve("unknown"); ok {
		t.Error("unknown token resolved")
	}

	s.Delete("tok2")
	if _, _, ok := s.Resolve("tok2"); ok {
		t.Error("deleted token still resolves")
	}

	s.DropRoom("ROOMA")
	if _, _, ok := s.Resolve("tok1"); ok {
		t.Error("token survives DropRoom of its room")
	}
	if _, _, ok := s.Resolve("tok3"); !ok {
		t.Error("DropRoom invalidated a session of another room")
	}
}
