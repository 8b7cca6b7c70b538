package theme

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestState_ToggleRoundTrip(t *testing.T) {
	store := &MemoryStore{}
	s := NewState(store, ModeLight)
	if s.Mode() != ModeLight {
		t.Fatalf("initial mode = %q, want light", s.Mode())
	}

	m, err := s.Toggle()
	if err != nil {
		t.Fatal(err)
	}
	if m != ModeDark {
		t.Errorf("toggle = %q, want dark", m)
	}
	if stored, _ := store.Load(); stored != ModeDark {
		t.Errorf("stored = %q, want dark", stored)
	}

	// a fresh state picks up the persisted value
	if again := NewState(store, ModeLight); again.Mode() != ModeDark {
		t.Errorf("reloaded mode = %q, want dark", again.Mode())
	}
}

type failingStore struct{}

func (failingStore) Load() (Mode, error) { return "", errors.New("boom") }
func (failingStore) Save(Mode) error     { return errors.New("boom") }

func TestState_SaveFailureKeepsMode(t *testing.T) {
	s := NewState(failingStore{}, ModeLight)
	if _, err := s.Toggle(); err == nil {
		t.Fatal("expected error")
	}
	if s.Mode() != ModeLight {
		t.Errorf("mode = %q, want light after failed save", s.Mode())
	}
}

func TestCookieStore(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/theme", nil)
	s := NewState(NewCookieStore("", req, rec), ModeLight)
	if _, err := s.Toggle(); err != nil {
		t.Fatal(err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if cookies[0].Name != DefaultStorageKey || cookies[0].Value != "true" {
		t.Errorf("cookie = %s=%s", cookies[0].Name, cookies[0].Value)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded := NewState(NewCookieStore("", next, httptest.NewRecorder()), ModeLight)
	if loaded.Mode() != ModeDark {
		t.Errorf("mode from cookie = %q, want dark", loaded.Mode())
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeLight, "false": ModeLight, "light": ModeLight, "true": ModeDark, "dark": ModeDark}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("sepia"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestConfigPalette(t *testing.T) {
	c := DefaultConfig()
	if c.Palette() != c.Light {
		t.Error("light mode should use light palette")
	}
	if d := c.WithMode(ModeDark); d.Palette() != c.Dark {
		t.Error("dark mode should use dark palette")
	}
	if c.Mode != ModeLight {
		t.Error("WithMode must not modify the receiver")
	}
}
