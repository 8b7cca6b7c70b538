// Package theme holds the presentation theme configuration and the light/dark
// mode state with its persistence port.
package theme

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Mode is the colour mode of the site.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// DefaultStorageKey names the persisted mode entry.
const DefaultStorageKey = "codeboosttheme"

// Palette is one set of colours.
type Palette struct {
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
	Accent     string `yaml:"accent" json:"accent"`
	Highlight  string `yaml:"highlight" json:"highlight"`
}

// Config is the typed theme handed to the renderer.
type Config struct {
	Mode       Mode    `yaml:"mode" json:"mode"`
	Light      Palette `yaml:"light" json:"light"`
	Dark       Palette `yaml:"dark" json:"dark"`
	FontHeader string  `yaml:"font_header" json:"fontHeader"`
	FontBody   string  `yaml:"font_body" json:"fontBody"`
	StorageKey string  `yaml:"storage_key" json:"storageKey"`
}

// DefaultConfig returns the stock theme.
func DefaultConfig() Config {
	return Config{
		Mode: ModeLight,
		Light: Palette{
			Background: "#ffffff",
			Text:       "#1C1E2F",
			Accent:     "#01a692",
			Highlight:  "#fad000",
		},
		Dark: Palette{
			Background: "#1C1E2F",
			Text:       "#f4f4f4",
			Accent:     "#84cf00",
			Highlight:  "#fad000",
		},
		FontHeader: "Montserrat, sans-serif",
		FontBody:   "Merriweather, Georgia, serif",
		StorageKey: DefaultStorageKey,
	}
}

// Palette returns the palette for the configured mode.
func (c Config) Palette() Palette {
	if c.Mode == ModeDark {
		return c.Dark
	}
	return c.Light
}

// WithMode returns a copy of c using mode m.
func (c Config) WithMode(m Mode) Config {
	c.Mode = m
	return c
}

// ParseMode accepts "light", "dark" and the legacy boolean encoding where
// "true" means dark.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case string(ModeLight), "false", "":
		return ModeLight, nil
	case string(ModeDark), "true":
		return ModeDark, nil
	}
	return "", fmt.Errorf("theme: unknown mode %q", raw)
}

// Store persists the mode between visits.
type Store interface {
	Load() (Mode, error)
	Save(m Mode) error
}

// State is the mode selection of one visitor.
type State struct {
	mu    sync.Mutex
	mode  Mode
	store Store
}

// NewState loads the persisted mode, falling back to def when nothing is
// stored or the stored value is unreadable.
func NewState(store Store, def Mode) *State {
	s := &State{mode: def, store: store}
	if m, err := store.Load(); err == nil && m != "" {
		s.mode = m
	}
	return s
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set changes and persists the mode.
func (s *State) Set(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(m); err != nil {
		return err
	}
	s.mode = m
	return nil
}

// Toggle flips between light and dark and persists the result.
func (s *State) Toggle() (Mode, error) {
	next := ModeDark
	if s.Mode() == ModeDark {
		next = ModeLight
	}
	if err := s.Set(next); err != nil {
		return s.Mode(), err
	}
	return next, nil
}

// MemoryStore keeps the mode in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	mode Mode
}

func (m *MemoryStore) Load() (Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, nil
}

func (m *MemoryStore) Save(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	return nil
}

// CookieStore persists the mode in a cookie on one request/response pair.
// The value is "true" for dark and "false" for light.
type CookieStore struct {
	name string
	r    *http.Request
	w    http.ResponseWriter
}

// NewCookieStore binds a store to the given exchange.
func NewCookieStore(name string, r *http.Request, w http.ResponseWriter) *CookieStore {
	if name == "" {
		name = DefaultStorageKey
	}
	return &CookieStore{name: name, r: r, w: w}
}

func (c *CookieStore) Load() (Mode, error) {
	ck, err := c.r.Cookie(c.name)
	if err != nil {
		return "", nil
	}
	return ParseMode(ck.Value)
}

func (c *CookieStore) Save(m Mode) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    strconv.FormatBool(m == ModeDark),
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*CookieStore)(nil)
)
